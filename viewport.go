package sprite

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// viewportUniformSize is one mat4x4<f32>.
const viewportUniformSize = 64

// Viewport tracks the surface size in pixels. Draw.Submit uses it as the
// extent of cameras without an explicit size.
//
// It can also publish a pixel-space projection (origin top-left, +Y down) as
// a uniform bind group for custom pipelines that draw in window coordinates.
// The built-in sprite pipeline does not use it.
type Viewport struct {
	// Position offsets the pixel-space projection.
	Position Point

	size Point

	buffer    hal.Buffer
	bindGroup hal.BindGroup
}

// NewViewport creates a viewport of the given size.
func NewViewport(width, height uint32) *Viewport {
	return &Viewport{size: Pt(float64(width), float64(height))}
}

// Size returns the current size in pixels.
func (v *Viewport) Size() Point { return v.size }

// Resize records a new surface size. Zero sizes are ignored.
func (v *Viewport) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	v.size = Pt(float64(width), float64(height))
}

// Matrix returns the pixel-space projection for the current size.
func (v *Viewport) Matrix() mgl32.Mat4 {
	view := mgl32.Translate3D(float32(-v.Position.X), float32(-v.Position.Y), 1)
	proj := orthoLH(0, float32(v.size.X), float32(v.size.Y), 0, cameraNear, cameraFar)
	return proj.Mul4(view)
}

// Upload writes Matrix into the uniform buffer, creating the buffer and its
// bind group (builtins' camera layout) on first use.
func (v *Viewport) Upload(device hal.Device, queue hal.Queue, builtins *Builtins) error {
	if v.buffer == nil {
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: "sprite_viewport_uniform",
			Size:  viewportUniformSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("%w: viewport uniform: %w", ErrBufferAllocation, err)
		}
		group, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "sprite_viewport_bind_group",
			Layout: builtins.CameraLayout(),
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: viewportUniformSize}},
			},
		})
		if err != nil {
			device.DestroyBuffer(buf)
			return fmt.Errorf("create viewport bind group: %w", err)
		}
		v.buffer = buf
		v.bindGroup = group
	}

	m := v.Matrix()
	data := make([]byte, viewportUniformSize)
	for i, f := range m {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(f))
	}
	if err := queue.WriteBuffer(v.buffer, 0, data); err != nil {
		return fmt.Errorf("%w: viewport uniform: %w", ErrBufferUpload, err)
	}
	return nil
}

// BindGroup returns the uniform bind group, nil before the first Upload.
func (v *Viewport) BindGroup() hal.BindGroup { return v.bindGroup }

// Destroy releases the uniform buffer and bind group.
func (v *Viewport) Destroy(device hal.Device) {
	if v.bindGroup != nil {
		device.DestroyBindGroup(v.bindGroup)
		v.bindGroup = nil
	}
	if v.buffer != nil {
		device.DestroyBuffer(v.buffer)
		v.buffer = nil
	}
}
