package sprite

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Stack owns the device, the presentation surface and the render target
// and runs one frame: acquire, record the Draw into a render pass, submit
// and present.
//
// Without a surface the stack is headless and renders into an offscreen
// target of the configured size.
type Stack struct {
	device  hal.Device
	queue   hal.Queue
	surface hal.Surface

	config      Config
	format      gputypes.TextureFormat
	presentMode gputypes.PresentMode
	clear       gputypes.Color

	msaa      *RenderTarget // nil when SampleCount is 1
	offscreen *RenderTarget // headless only
	viewport  *Viewport

	frames  uint64
	skipped uint64
}

// NewStack configures surface (which may be nil) and creates the render
// targets.
func NewStack(device hal.Device, queue hal.Queue, surface hal.Surface, cfg Config) (*Stack, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	format, _ := cfg.TextureFormat()
	mode, _ := cfg.SurfacePresentMode()
	return newStack(device, queue, surface, cfg, format, mode)
}

// NewStackFromProvider builds a stack on a device shared by the host
// application. The provider must expose its HAL device and queue. When cfg
// leaves Format empty the provider's surface format is used.
func NewStackFromProvider(provider gpucontext.DeviceProvider, surface hal.Surface, cfg Config) (*Stack, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNilProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNilProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNilProvider)
	}

	explicitFormat := cfg.Format != ""
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	format, _ := cfg.TextureFormat()
	if pf := provider.SurfaceFormat(); !explicitFormat && pf != gputypes.TextureFormatUndefined {
		format = pf
	}
	mode, _ := cfg.SurfacePresentMode()

	info := provider.AdapterInfo()
	Logger().Info("sprite: using shared device",
		"adapter", info.Name, "type", info.Type, "format", format)

	return newStack(device, queue, surface, cfg, format, mode)
}

func newStack(device hal.Device, queue hal.Queue, surface hal.Surface, cfg Config, format gputypes.TextureFormat, mode gputypes.PresentMode) (*Stack, error) {
	clear := cfg.ClearColor
	s := &Stack{
		device:      device,
		queue:       queue,
		surface:     surface,
		config:      cfg,
		format:      format,
		presentMode: mode,
		clear:       gputypes.Color{R: float64(clear.R), G: float64(clear.G), B: float64(clear.B), A: float64(clear.A)},
		viewport:    NewViewport(cfg.Width, cfg.Height),
	}
	if err := s.configure(); err != nil {
		s.Destroy()
		return nil, err
	}
	Logger().Info("sprite: stack ready",
		"width", cfg.Width, "height", cfg.Height,
		"samples", cfg.SampleCount, "headless", surface == nil)
	return s, nil
}

// configure (re)applies the surface configuration and rebuilds the targets
// for the current size.
func (s *Stack) configure() error {
	w, h := s.config.Width, s.config.Height

	if s.surface != nil {
		err := s.surface.Configure(s.device, &hal.SurfaceConfiguration{
			Width:       w,
			Height:      h,
			Format:      s.format,
			Usage:       gputypes.TextureUsageRenderAttachment,
			PresentMode: s.presentMode,
			AlphaMode:   gputypes.CompositeAlphaModeOpaque,
		})
		if err != nil {
			return fmt.Errorf("configure surface: %w", err)
		}
	}

	s.destroyTargets()
	if s.config.SampleCount > 1 {
		msaa, err := NewRenderTarget(s.device, w, h, s.format, s.config.SampleCount)
		if err != nil {
			return err
		}
		s.msaa = msaa
	}
	if s.surface == nil {
		off, err := NewRenderTarget(s.device, w, h, s.format, 1)
		if err != nil {
			return err
		}
		s.offscreen = off
	}
	return nil
}

// Resize reconfigures the surface and targets. Zero sizes (minimized
// windows) are ignored. Batches are not touched; their instance matrices
// pick up the new size on the next Submit.
func (s *Stack) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	if width == s.config.Width && height == s.config.Height {
		return nil
	}
	s.config.Width = width
	s.config.Height = height
	s.viewport.Resize(width, height)
	Logger().Info("sprite: resize", "width", width, "height", height)
	return s.configure()
}

// Frame draws one frame of d. Surface loss, an outdated surface and
// timeouts skip the frame and return nil; the surface is reconfigured where
// needed. Any other error means the frame failed and IsFatal tells whether
// rendering can continue.
func (s *Stack) Frame(d *Draw) error {
	var (
		target   hal.TextureView
		acquired *hal.AcquiredSurfaceTexture
	)
	if s.surface != nil {
		var err error
		acquired, err = s.surface.AcquireTexture(nil)
		if err != nil {
			return s.recover(err, "acquire")
		}
		view, err := s.device.CreateTextureView(acquired.Texture, &hal.TextureViewDescriptor{
			Label:         "sprite_surface_view",
			Format:        s.format,
			Dimension:     gputypes.TextureViewDimension2D,
			Aspect:        gputypes.TextureAspectAll,
			MipLevelCount: 1,
		})
		if err != nil {
			s.surface.DiscardTexture(acquired.Texture)
			return fmt.Errorf("create surface view: %w", err)
		}
		defer s.device.DestroyTextureView(view)
		target = view
	} else {
		target = s.offscreen.View()
	}

	if err := s.record(d, target); err != nil {
		if acquired != nil {
			s.surface.DiscardTexture(acquired.Texture)
		}
		return s.recover(err, "submit")
	}

	if acquired != nil {
		if err := s.queue.Present(s.surface, acquired.Texture, nil); err != nil {
			return s.recover(err, "present")
		}
		if acquired.Suboptimal {
			Logger().Debug("sprite: suboptimal surface, reconfiguring")
			if err := s.configure(); err != nil {
				return err
			}
		}
	}
	s.frames++
	return nil
}

// record encodes one render pass drawing d into target and submits it.
func (s *Stack) record(d *Draw, target hal.TextureView) error {
	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "sprite_frame"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("sprite_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	color := hal.RenderPassColorAttachment{
		View:       target,
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
		ClearValue: s.clear,
	}
	if s.msaa != nil {
		color.View = s.msaa.View()
		color.ResolveTarget = target
		color.StoreOp = gputypes.StoreOpDiscard
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "sprite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{color},
	})
	if err := d.Submit(rp, s.viewport.Size()); err != nil {
		rp.End()
		encoder.DiscardEncoding()
		return err
	}
	rp.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmd)

	if _, err := s.queue.Submit([]hal.CommandBuffer{cmd}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}

// recover applies the frame error policy.
func (s *Stack) recover(err error, stage string) error {
	switch {
	case IsSkippable(err):
		s.skipped++
		Logger().Warn("sprite: surface needs reconfiguration, frame skipped", "stage", stage, "err", err)
		if cerr := s.configure(); cerr != nil {
			return errors.Join(err, cerr)
		}
		return nil
	case IsTransient(err):
		s.skipped++
		Logger().Warn("sprite: frame skipped", "stage", stage, "err", err)
		return nil
	}
	return fmt.Errorf("sprite: %s: %w", stage, err)
}

// Device returns the HAL device.
func (s *Stack) Device() hal.Device { return s.device }

// Queue returns the HAL queue.
func (s *Stack) Queue() hal.Queue { return s.queue }

// Viewport returns the surface-size tracker passed to Draw.Submit.
func (s *Stack) Viewport() *Viewport { return s.viewport }

// Config returns the effective configuration.
func (s *Stack) Config() Config { return s.config }

// Format returns the color format of the surface and targets.
func (s *Stack) Format() gputypes.TextureFormat { return s.format }

// BuiltinsConfig returns the pipeline settings matching this stack's
// targets.
func (s *Stack) BuiltinsConfig() BuiltinsConfig {
	return BuiltinsConfig{Format: s.format, SampleCount: s.config.SampleCount}
}

// Offscreen returns the headless color target, nil when presenting to a
// surface.
func (s *Stack) Offscreen() *RenderTarget { return s.offscreen }

// Frames returns the number of frames presented.
func (s *Stack) Frames() uint64 { return s.frames }

// Skipped returns the number of frames dropped by the error policy.
func (s *Stack) Skipped() uint64 { return s.skipped }

func (s *Stack) destroyTargets() {
	if s.offscreen != nil {
		s.offscreen.Destroy(s.device)
		s.offscreen = nil
	}
	if s.msaa != nil {
		s.msaa.Destroy(s.device)
		s.msaa = nil
	}
}

// Destroy releases the targets and unconfigures the surface. The device,
// queue and surface themselves belong to the caller.
func (s *Stack) Destroy() {
	s.viewport.Destroy(s.device)
	s.destroyTargets()
	if s.surface != nil {
		s.surface.Unconfigure(s.device)
	}
}
