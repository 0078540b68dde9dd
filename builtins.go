package sprite

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/sprite.wgsl
var spriteShaderSource string

// SpriteShaderSource returns the WGSL source of the built-in sprite shader.
func SpriteShaderSource() string { return spriteShaderSource }

// CompileSPIRV compiles WGSL to SPIR-V words with naga.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	spirv, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not a multiple of 4", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}

// ValidateShaders compiles the built-in shaders offline and reports the
// first error.
func ValidateShaders() error {
	_, err := CompileSPIRV(spriteShaderSource)
	return err
}

// BuiltinsConfig selects the render target the sprite pipeline draws into.
type BuiltinsConfig struct {
	// Format is the color target format. Defaults to BGRA8Unorm.
	Format gputypes.TextureFormat

	// SampleCount is the MSAA sample count. Defaults to DefaultSampleCount.
	SampleCount uint32

	// SPIRV hands the device precompiled SPIR-V instead of WGSL, for
	// backends without a WGSL front end.
	SPIRV bool
}

func (c BuiltinsConfig) withDefaults() BuiltinsConfig {
	if c.Format == gputypes.TextureFormatUndefined {
		c.Format = gputypes.TextureFormatBGRA8Unorm
	}
	if c.SampleCount == 0 {
		c.SampleCount = DefaultSampleCount
	}
	return c
}

// Builtins holds the GPU objects shared by every sprite: the texture and
// camera bind group layouts, the sprite pipeline and a linear clamp sampler.
type Builtins struct {
	device hal.Device
	config BuiltinsConfig

	shader         hal.ShaderModule
	textureLayout  hal.BindGroupLayout
	cameraLayout   hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.RenderPipeline
	sampler        hal.Sampler
}

// NewBuiltins compiles the sprite shader and creates the shared objects.
// On failure everything created so far is released.
func NewBuiltins(device hal.Device, cfg BuiltinsConfig) (*Builtins, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	b := &Builtins{device: device, config: cfg.withDefaults()}
	if err := b.create(); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

func (b *Builtins) create() error { //nolint:funlen // one descriptor per object
	source := hal.ShaderSource{WGSL: spriteShaderSource}
	if b.config.SPIRV {
		words, err := CompileSPIRV(spriteShaderSource)
		if err != nil {
			return err
		}
		source = hal.ShaderSource{SPIRV: words}
	}
	shader, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "sprite_shader",
		Source: source,
	})
	if err != nil {
		return fmt.Errorf("compile sprite shader: %w", err)
	}
	b.shader = shader

	textureLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite texture layout: %w", err)
	}
	b.textureLayout = textureLayout

	cameraLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_camera_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite camera layout: %w", err)
	}
	b.cameraLayout = cameraLayout

	pipelineLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sprite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.textureLayout},
	})
	if err != nil {
		return fmt.Errorf("create sprite pipeline layout: %w", err)
	}
	b.pipelineLayout = pipelineLayout

	blend := gputypes.BlendStateAlpha()
	pipeline, err := b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "sprite_pipeline",
		Layout: b.pipelineLayout,
		Vertex: hal.VertexState{
			Module:     b.shader,
			EntryPoint: "vs_main",
			Buffers:    []gputypes.VertexBufferLayout{QuadVertexLayout(), InstanceBufferLayout()},
		},
		Fragment: &hal.FragmentState{
			Module:     b.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    b.config.Format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: b.config.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite pipeline: %w", err)
	}
	b.pipeline = pipeline

	sampler, err := b.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "sprite_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create sprite sampler: %w", err)
	}
	b.sampler = sampler

	return nil
}

// Pipeline returns the sprite render pipeline.
func (b *Builtins) Pipeline() hal.RenderPipeline { return b.pipeline }

// TextureLayout returns the layout of a sprite texture bind group:
// texture at binding 0, sampler at binding 1.
func (b *Builtins) TextureLayout() hal.BindGroupLayout { return b.textureLayout }

// CameraLayout returns the layout of a single uniform mat4 at binding 0,
// used by Viewport's bind group.
func (b *Builtins) CameraLayout() hal.BindGroupLayout { return b.cameraLayout }

// Sampler returns the shared linear clamp-to-edge sampler.
func (b *Builtins) Sampler() hal.Sampler { return b.sampler }

// Config returns the configuration the pipeline was built with.
func (b *Builtins) Config() BuiltinsConfig { return b.config }

// Destroy releases all objects in reverse creation order. Safe to call more
// than once.
func (b *Builtins) Destroy() {
	if b.device == nil {
		return
	}
	if b.sampler != nil {
		b.device.DestroySampler(b.sampler)
		b.sampler = nil
	}
	if b.pipeline != nil {
		b.device.DestroyRenderPipeline(b.pipeline)
		b.pipeline = nil
	}
	if b.pipelineLayout != nil {
		b.device.DestroyPipelineLayout(b.pipelineLayout)
		b.pipelineLayout = nil
	}
	if b.cameraLayout != nil {
		b.device.DestroyBindGroupLayout(b.cameraLayout)
		b.cameraLayout = nil
	}
	if b.textureLayout != nil {
		b.device.DestroyBindGroupLayout(b.textureLayout)
		b.textureLayout = nil
	}
	if b.shader != nil {
		b.device.DestroyShaderModule(b.shader)
		b.shader = nil
	}
}
