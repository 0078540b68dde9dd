package sprite

import (
	"sort"

	"github.com/gogpu/wgpu/hal"
)

// Batcher maps batch keys to their DrawBatch and evicts idle batches.
// It is not safe for concurrent use.
type Batcher struct {
	batches  map[string]*DrawBatch
	lifetime int
}

// NewBatcher creates an empty batcher. A lifetime <= 0 selects
// DefaultBatchLifetime.
func NewBatcher(lifetime int) *Batcher {
	if lifetime <= 0 {
		lifetime = DefaultBatchLifetime
	}
	return &Batcher{
		batches:  make(map[string]*DrawBatch),
		lifetime: lifetime,
	}
}

// Add queues instance on the batch for key, creating the batch with exactly
// that instance when the key is new. The attachments of an existing batch
// are kept.
func (bt *Batcher) Add(device hal.Device, key string, attachments []Attachment, instance Instance) error {
	if b, ok := bt.batches[key]; ok {
		b.add(instance)
		return nil
	}

	b, err := newDrawBatch(device, key, attachments, []Instance{instance}, bt.lifetime)
	if err != nil {
		return err
	}
	bt.batches[key] = b
	Logger().Debug("sprite: batch created", "batch", key)
	return nil
}

// Cleanup removes every batch whose lifetime reached zero, releasing its
// buffer, and returns the evicted keys.
func (bt *Batcher) Cleanup(device hal.Device) []string {
	var evicted []string
	for key, b := range bt.batches {
		if b.lifetime != 0 {
			continue
		}
		b.destroy(device)
		delete(bt.batches, key)
		evicted = append(evicted, key)
	}
	if len(evicted) > 0 {
		sort.Strings(evicted)
		Logger().Debug("sprite: batches evicted", "keys", evicted)
	}
	return evicted
}

// Len returns the number of live batches.
func (bt *Batcher) Len() int { return len(bt.batches) }

// Batch returns the batch for key, or nil.
func (bt *Batcher) Batch(key string) *DrawBatch { return bt.batches[key] }

// Keys returns the live batch keys in sorted order.
func (bt *Batcher) Keys() []string {
	keys := make([]string, 0, len(bt.batches))
	for k := range bt.batches {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lifetime returns the eviction threshold in idle frames.
func (bt *Batcher) Lifetime() int { return bt.lifetime }

// Destroy releases every batch.
func (bt *Batcher) Destroy(device hal.Device) {
	for key, b := range bt.batches {
		b.destroy(device)
		delete(bt.batches, key)
	}
}
