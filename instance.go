package sprite

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// RawInstanceSize is the byte stride of one instance in the instance buffer.
// Layout per instance:
//
//	matrix column 0 (vec4<f32>) = 16 bytes (location 2)
//	matrix column 1 (vec4<f32>) = 16 bytes (location 3)
//	matrix column 2 (vec4<f32>) = 16 bytes (location 4)
//	matrix column 3 (vec4<f32>) = 16 bytes (location 5)
//	color           (vec4<f32>) = 16 bytes (location 6)
//
// Total = 80 bytes per instance.
const RawInstanceSize = 80

// instanceFirstLocation is the shader location of the first matrix column.
// Locations 0 and 1 belong to the quad vertex buffer.
const instanceFirstLocation = 2

// Instance is one logical sprite draw: the camera active when it was
// requested, its model transform and its tint.
type Instance struct {
	Camera Camera
	Model  mgl32.Mat4
	Color  Color
}

// RawInstance is the GPU form of an Instance: the combined clip-space matrix
// in column-major order followed by the tint.
type RawInstance struct {
	Matrix [16]float32
	Color  [4]float32
}

// Raw bakes the camera into the model matrix for the given viewport size.
func (in Instance) Raw(viewport Point) RawInstance {
	return RawInstance{
		Matrix: in.Camera.Matrix(viewport).Mul4(in.Model),
		Color:  in.Color.Array(),
	}
}

// Mat4 returns the matrix as an mgl32 value.
func (r RawInstance) Mat4() mgl32.Mat4 {
	return mgl32.Mat4(r.Matrix)
}

// put writes r into dst, which must hold at least RawInstanceSize bytes.
func (r *RawInstance) put(dst []byte) {
	for i, v := range r.Matrix {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
	for i, v := range r.Color {
		binary.LittleEndian.PutUint32(dst[64+i*4:], math.Float32bits(v))
	}
}

// UnpackInstance decodes one RawInstance from b.
func UnpackInstance(b []byte) RawInstance {
	var r RawInstance
	for i := range r.Matrix {
		r.Matrix[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	for i := range r.Color {
		r.Color[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[64+i*4:]))
	}
	return r
}

// PackInstances converts instances into their byte form using staging as
// scratch space, growing it when it is too small. It returns the (possibly
// reallocated) staging slice and the valid data.
func PackInstances(instances []Instance, viewport Point, staging []byte) ([]byte, []byte) {
	needed := len(instances) * RawInstanceSize
	if needed == 0 {
		return staging, nil
	}
	if cap(staging) < needed {
		staging = make([]byte, needed)
	} else {
		staging = staging[:needed]
	}

	for i := range instances {
		raw := instances[i].Raw(viewport)
		raw.put(staging[i*RawInstanceSize:])
	}
	return staging, staging
}

// InstanceBufferLayout returns the per-instance vertex buffer layout
// (vertex buffer slot 1).
func InstanceBufferLayout() gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, 5)
	for i := range attrs {
		attrs[i] = gputypes.VertexAttribute{
			Format:         gputypes.VertexFormatFloat32x4,
			Offset:         uint64(i * 16),                    //nolint:gosec // G115: i < 5
			ShaderLocation: uint32(instanceFirstLocation + i), //nolint:gosec // G115: i < 5
		}
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: RawInstanceSize,
		StepMode:    gputypes.VertexStepModeInstance,
		Attributes:  attrs,
	}
}
