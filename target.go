package sprite

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// RenderTarget is a color texture the frame is drawn into: the multisampled
// target resolved into the surface, or the offscreen image of a headless
// stack.
type RenderTarget struct {
	texture hal.Texture
	view    hal.TextureView

	width, height uint32
	sampleCount   uint32
}

// NewRenderTarget creates a 2D color target. A sampleCount above 1 makes it
// a multisample target that must be resolved.
func NewRenderTarget(device hal.Device, width, height uint32, format gputypes.TextureFormat, sampleCount uint32) (*RenderTarget, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: render target %dx%d", ErrZeroSize, width, height)
	}
	if sampleCount == 0 {
		sampleCount = 1
	}

	usage := gputypes.TextureUsageRenderAttachment
	if sampleCount == 1 {
		usage |= gputypes.TextureUsageTextureBinding
	}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "sprite_render_target",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create render target: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "sprite_render_target_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create render target view: %w", err)
	}

	return &RenderTarget{
		texture:     tex,
		view:        view,
		width:       width,
		height:      height,
		sampleCount: sampleCount,
	}, nil
}

// View returns the texture view to attach to a render pass.
func (t *RenderTarget) View() hal.TextureView { return t.view }

// Size returns the target size in pixels.
func (t *RenderTarget) Size() (width, height uint32) { return t.width, t.height }

// SampleCount returns the MSAA sample count.
func (t *RenderTarget) SampleCount() uint32 { return t.sampleCount }

// Destroy releases the view and texture.
func (t *RenderTarget) Destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		device.DestroyTexture(t.texture)
		t.texture = nil
	}
}
