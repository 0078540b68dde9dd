package sprite

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultBatchLifetime is the number of consecutive idle frames after which
// a batch is evicted.
const DefaultBatchLifetime = 10

// DrawBatch holds every instance sharing one batch key and the GPU buffer
// they are uploaded into. The buffer survives across frames and only grows.
type DrawBatch struct {
	label       string
	attachments []Attachment
	instances   []Instance

	buffer   hal.Buffer
	capacity uint64 // bytes

	count       uint32
	lifetime    int
	maxLifetime int

	staging []byte
}

// newDrawBatch creates a batch holding instances. The instance buffer is
// sized for exactly those instances; an empty batch allocates nothing.
func newDrawBatch(device hal.Device, label string, attachments []Attachment, instances []Instance, lifetime int) (*DrawBatch, error) {
	if lifetime <= 0 {
		lifetime = DefaultBatchLifetime
	}
	b := &DrawBatch{
		label:       label,
		attachments: attachments,
		instances:   instances,
		count:       uint32(len(instances)), //nolint:gosec // G115: instance counts fit uint32
		lifetime:    lifetime,
		maxLifetime: lifetime,
	}
	if len(instances) > 0 {
		if err := b.allocate(device, uint64(len(instances))*RawInstanceSize); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// add queues one more instance for the next write.
func (b *DrawBatch) add(in Instance) {
	b.instances = append(b.instances, in)
	b.count++
}

// write uploads the pending instances and returns how many should be drawn.
//
// If the buffer is too small it is replaced by one of exactly the required
// size. The lifetime is refilled when instances were pending and otherwise
// counts down to zero. Pending instances are consumed.
//
// On error nothing is consumed and the lifetime is unchanged.
func (b *DrawBatch) write(device hal.Device, queue hal.Queue, viewport Point) (uint32, error) {
	size := uint64(b.count) * RawInstanceSize

	if size > b.capacity {
		prev := b.capacity
		old := b.buffer
		if err := b.allocate(device, size); err != nil {
			return 0, err
		}
		if old != nil {
			device.DestroyBuffer(old)
		}
		Logger().Debug("sprite: instance buffer grown",
			"batch", b.label, "from", prev, "to", size)
	}

	if size > 0 {
		staging, data := PackInstances(b.instances, viewport, b.staging)
		b.staging = staging
		if err := queue.WriteBuffer(b.buffer, 0, data); err != nil {
			return 0, fmt.Errorf("%w: batch %q: %w", ErrBufferUpload, b.label, err)
		}
		b.lifetime = b.maxLifetime
	} else if b.lifetime > 0 {
		b.lifetime--
	}

	n := b.count
	b.count = 0
	b.instances = b.instances[:0]
	return n, nil
}

// allocate replaces b.buffer with a new buffer of size bytes. The old buffer
// is left for the caller to release.
func (b *DrawBatch) allocate(device hal.Device, size uint64) error {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label + " instance buffer",
		Size:  size,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("%w: batch %q (%d bytes): %w", ErrBufferAllocation, b.label, size, err)
	}
	b.buffer = buf
	b.capacity = size
	return nil
}

// destroy releases the instance buffer.
func (b *DrawBatch) destroy(device hal.Device) {
	if b.buffer != nil {
		device.DestroyBuffer(b.buffer)
		b.buffer = nil
	}
	b.capacity = 0
}

// Label returns the batch's debug label (its key).
func (b *DrawBatch) Label() string { return b.label }

// Attachments returns the state bound before the batch is drawn, in order.
func (b *DrawBatch) Attachments() []Attachment { return b.attachments }

// Buffer returns the instance buffer, nil until the first non-empty write.
func (b *DrawBatch) Buffer() hal.Buffer { return b.buffer }

// Capacity returns the instance buffer size in bytes.
func (b *DrawBatch) Capacity() uint64 { return b.capacity }

// Pending returns the number of instances queued since the last write.
func (b *DrawBatch) Pending() uint32 { return b.count }

// Lifetime returns the remaining idle frames before eviction.
func (b *DrawBatch) Lifetime() int { return b.lifetime }
