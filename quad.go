package sprite

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// QuadIndexCount is the number of indices drawn per sprite.
const QuadIndexCount = 6

// quadVertexStride is position (vec2<f32>, location 0) + uv (vec2<f32>,
// location 1).
const quadVertexStride = 16

// quadVertices is the unit quad centered on the origin, (x, y, u, v).
var quadVertices = [4][4]float32{
	{-0.5, -0.5, 0, 0},
	{0.5, -0.5, 1, 0},
	{0.5, 0.5, 1, 1},
	{-0.5, 0.5, 0, 1},
}

// quadIndices are two triangles over quadVertices.
var quadIndices = [QuadIndexCount]uint16{2, 0, 3, 2, 1, 0}

// Quad is the shared unit-quad mesh every sprite instance is drawn with.
type Quad struct {
	vertices hal.Buffer
	indices  hal.Buffer
}

// NewQuad allocates and uploads the quad vertex and index buffers.
func NewQuad(device hal.Device, queue hal.Queue) (*Quad, error) {
	vdata := quadVertexBytes()
	vbuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sprite_quad_vertices",
		Size:  uint64(len(vdata)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: quad vertices: %w", ErrBufferAllocation, err)
	}
	if err := queue.WriteBuffer(vbuf, 0, vdata); err != nil {
		device.DestroyBuffer(vbuf)
		return nil, fmt.Errorf("%w: quad vertices: %w", ErrBufferUpload, err)
	}

	idata := quadIndexBytes()
	ibuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "sprite_quad_indices",
		Size:  uint64(len(idata)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		device.DestroyBuffer(vbuf)
		return nil, fmt.Errorf("%w: quad indices: %w", ErrBufferAllocation, err)
	}
	if err := queue.WriteBuffer(ibuf, 0, idata); err != nil {
		device.DestroyBuffer(ibuf)
		device.DestroyBuffer(vbuf)
		return nil, fmt.Errorf("%w: quad indices: %w", ErrBufferUpload, err)
	}

	return &Quad{vertices: vbuf, indices: ibuf}, nil
}

// Apply binds the quad to vertex slot 0 and the index buffer.
func (q *Quad) Apply(pass RenderPass) {
	pass.SetVertexBuffer(0, q.vertices, 0)
	pass.SetIndexBuffer(q.indices, gputypes.IndexFormatUint16, 0)
}

// Destroy releases both buffers.
func (q *Quad) Destroy(device hal.Device) {
	if q.indices != nil {
		device.DestroyBuffer(q.indices)
		q.indices = nil
	}
	if q.vertices != nil {
		device.DestroyBuffer(q.vertices)
		q.vertices = nil
	}
}

// QuadVertexLayout returns the per-vertex layout (vertex buffer slot 0).
func QuadVertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: quadVertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // uv
		},
	}
}

func quadVertexBytes() []byte {
	buf := make([]byte, len(quadVertices)*quadVertexStride)
	for i, v := range quadVertices {
		for j, f := range v {
			binary.LittleEndian.PutUint32(buf[i*quadVertexStride+j*4:], math.Float32bits(f))
		}
	}
	return buf
}

// quadIndexBytes packs the indices. The result is padded to a multiple of 4
// bytes because buffer writes must be 4-byte aligned.
func quadIndexBytes() []byte {
	buf := make([]byte, (len(quadIndices)*2+3)&^3)
	for i, idx := range quadIndices {
		binary.LittleEndian.PutUint16(buf[i*2:], idx)
	}
	return buf
}
