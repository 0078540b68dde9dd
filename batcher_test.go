package sprite

import (
	"errors"
	"reflect"
	"testing"
)

func TestBatcherGroupsByKey(t *testing.T) {
	device, _ := newNoopDevice(t)
	bt := NewBatcher(0)

	for i, key := range []string{"a", "b", "a", "c", "a", "b"} {
		if err := bt.Add(device, key, nil, testInstance(float64(i))); err != nil {
			t.Fatalf("Add(%q): %v", key, err)
		}
	}

	if bt.Len() != 3 {
		t.Fatalf("Len = %d, want 3", bt.Len())
	}
	if got, want := bt.Keys(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
	want := map[string]uint32{"a": 3, "b": 2, "c": 1}
	for key, n := range want {
		if got := bt.Batch(key).Pending(); got != n {
			t.Errorf("batch %q pending = %d, want %d", key, got, n)
		}
	}
	// A new batch is sized for the instance that created it.
	if got := bt.Batch("a").Capacity(); got != RawInstanceSize {
		t.Errorf("batch a capacity = %d, want %d", got, RawInstanceSize)
	}
}

func TestBatcherKeepsFirstAttachments(t *testing.T) {
	device, _ := newNoopDevice(t)
	bt := NewBatcher(0)

	first := []Attachment{PipelineAttachment{Pipeline: &fakePipeline{name: "first"}}}
	second := []Attachment{PipelineAttachment{Pipeline: &fakePipeline{name: "second"}}}
	_ = bt.Add(device, "k", first, testInstance(0))
	_ = bt.Add(device, "k", second, testInstance(1))

	got := bt.Batch("k").Attachments()
	if len(got) != 1 || got[0] != first[0] {
		t.Errorf("attachments = %v, want the first set", got)
	}
}

func TestBatcherCleanupEvictsOnlyExpired(t *testing.T) {
	device, queue := newNoopDevice(t)
	fd := &failingDevice{Device: device}
	bt := NewBatcher(3)

	_ = bt.Add(fd, "idle", nil, testInstance(0))
	_ = bt.Add(fd, "busy", nil, testInstance(0))

	frame := func() []string {
		for _, key := range bt.Keys() {
			if _, err := bt.Batch(key).write(fd, queue, Pt(10, 10)); err != nil {
				t.Fatalf("write %q: %v", key, err)
			}
		}
		return bt.Cleanup(fd)
	}

	if ev := frame(); len(ev) != 0 {
		t.Fatalf("evicted %v on first frame", ev)
	}
	for i := 0; i < 2; i++ {
		_ = bt.Add(fd, "busy", nil, testInstance(1))
		if ev := frame(); len(ev) != 0 {
			t.Fatalf("idle frame %d evicted %v", i+1, ev)
		}
	}
	_ = bt.Add(fd, "busy", nil, testInstance(1))
	ev := frame()
	if !reflect.DeepEqual(ev, []string{"idle"}) {
		t.Fatalf("evicted = %v, want [idle]", ev)
	}
	if bt.Batch("idle") != nil {
		t.Error("idle batch still present")
	}
	if bt.Batch("busy") == nil {
		t.Error("busy batch evicted")
	}
	if fd.destroyed != 1 {
		t.Errorf("buffers destroyed = %d, want 1", fd.destroyed)
	}
}

func TestBatcherAddCreationFailure(t *testing.T) {
	device, _ := newNoopDevice(t)
	fd := &failingDevice{Device: device, failBuffers: true}
	bt := NewBatcher(0)

	err := bt.Add(fd, "x", nil, testInstance(0))
	if !errors.Is(err, ErrBufferAllocation) {
		t.Fatalf("err = %v, want ErrBufferAllocation", err)
	}
	if bt.Len() != 0 {
		t.Errorf("Len = %d after failed creation, want 0", bt.Len())
	}
}

func TestBatcherReaddAfterEviction(t *testing.T) {
	device, queue := newNoopDevice(t)
	bt := NewBatcher(1)

	_ = bt.Add(device, "k", nil, testInstance(0))
	_, _ = bt.Batch("k").write(device, queue, Pt(10, 10))
	_ = bt.Cleanup(device)
	_, _ = bt.Batch("k").write(device, queue, Pt(10, 10))
	if ev := bt.Cleanup(device); len(ev) != 1 {
		t.Fatalf("evicted %v, want [k]", ev)
	}

	if err := bt.Add(device, "k", nil, testInstance(0)); err != nil {
		t.Fatalf("re-Add: %v", err)
	}
	b := bt.Batch("k")
	if b == nil || b.Lifetime() != 1 || b.Pending() != 1 {
		t.Errorf("re-created batch = %+v, want fresh batch with 1 pending", b)
	}
}
