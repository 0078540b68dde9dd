package sprite

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// newNoopDevice opens a device on the noop backend.
func newNoopDevice(t testing.TB) (hal.Device, hal.Queue) {
	t.Helper()

	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("no noop adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

// readBuffer copies size bytes out of a noop buffer.
func readBuffer(t *testing.T, device hal.Device, buf hal.Buffer, size uint64) []byte {
	t.Helper()
	m, err := device.MapBuffer(buf, 0, size)
	if err != nil {
		t.Fatalf("MapBuffer: %v", err)
	}
	return append([]byte(nil), unsafe.Slice((*byte)(m.Ptr), size)...)
}

// fakeBindGroup is a bind group with an identity, since noop bind groups
// are all zero-size values.
type fakeBindGroup struct{ name string }

func (*fakeBindGroup) Destroy() {}

type fakePipeline struct{ name string }

func (*fakePipeline) Destroy() {}

// passCall is one command recorded by recordingPass.
type passCall struct {
	op        string
	slot      uint32
	group     hal.BindGroup
	pipeline  hal.RenderPipeline
	buffer    hal.Buffer
	indices   uint32
	instances uint32
}

// recordingPass records the commands issued to it.
type recordingPass struct {
	calls []passCall
}

func (p *recordingPass) SetPipeline(pipeline hal.RenderPipeline) {
	p.calls = append(p.calls, passCall{op: "pipeline", pipeline: pipeline})
}

func (p *recordingPass) SetBindGroup(index uint32, group hal.BindGroup, _ []uint32) {
	p.calls = append(p.calls, passCall{op: "bind", slot: index, group: group})
}

func (p *recordingPass) SetVertexBuffer(slot uint32, buffer hal.Buffer, _ uint64) {
	p.calls = append(p.calls, passCall{op: "vertex", slot: slot, buffer: buffer})
}

func (p *recordingPass) SetIndexBuffer(buffer hal.Buffer, _ gputypes.IndexFormat, _ uint64) {
	p.calls = append(p.calls, passCall{op: "index", buffer: buffer})
}

func (p *recordingPass) DrawIndexed(indexCount, instanceCount, _ uint32, _ int32, _ uint32) {
	p.calls = append(p.calls, passCall{op: "draw", indices: indexCount, instances: instanceCount})
}

// draws returns the recorded draw calls.
func (p *recordingPass) draws() []passCall {
	var out []passCall
	for _, c := range p.calls {
		if c.op == "draw" {
			out = append(out, c)
		}
	}
	return out
}

// ops returns the operation names in order.
func (p *recordingPass) ops() []string {
	out := make([]string, len(p.calls))
	for i, c := range p.calls {
		out[i] = c.op
	}
	return out
}

// countingQueue counts buffer writes.
type countingQueue struct {
	hal.Queue
	writes int
	fail   error
}

func (q *countingQueue) WriteBuffer(buf hal.Buffer, offset uint64, data []byte) error {
	if q.fail != nil {
		return q.fail
	}
	q.writes++
	return q.Queue.WriteBuffer(buf, offset, data)
}

// failingDevice fails buffer creation once armed, and counts live buffers.
type failingDevice struct {
	hal.Device
	failBuffers bool
	created     int
	destroyed   int
}

var errOutOfMemory = errors.Join(errors.New("test: allocation refused"), hal.ErrDeviceOutOfMemory)

func (d *failingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if d.failBuffers {
		return nil, errOutOfMemory
	}
	d.created++
	return d.Device.CreateBuffer(desc)
}

func (d *failingDevice) DestroyBuffer(buf hal.Buffer) {
	d.destroyed++
	d.Device.DestroyBuffer(buf)
}

// testTexture returns a wrapped texture with a distinct bind group.
func testTexture(key string, w, h float64) *Texture {
	return WrapTexture(key, Pt(w, h), &fakeBindGroup{name: key})
}

// newTestDraw builds a Draw on the noop device with fake builtins so
// pipeline identity can be checked.
func newTestDraw(t testing.TB, device hal.Device, queue hal.Queue, opts ...DrawOption) *Draw {
	t.Helper()
	builtins := &Builtins{pipeline: &fakePipeline{name: "sprite"}}
	d, err := NewDraw(device, queue, builtins, opts...)
	if err != nil {
		t.Fatalf("NewDraw: %v", err)
	}
	t.Cleanup(d.Destroy)
	return d
}
