package sprite

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// FrameStats describes the last submitted frame.
type FrameStats struct {
	Batches     int    // live batches after cleanup
	DrawCalls   int    // indexed draws issued
	Instances   uint64 // sprites drawn
	Evicted     int    // batches removed by cleanup
	BufferBytes uint64 // total instance buffer capacity after cleanup
}

// Draw collects sprite requests for a frame and records them into a render
// pass, one instanced draw per batch.
//
// The per-frame order is BeginFrame, any number of SetCamera/Sprite calls,
// then Submit. Draw is not safe for concurrent use.
type Draw struct {
	device   hal.Device
	queue    hal.Queue
	builtins *Builtins

	quad    *Quad
	batcher *Batcher

	defaultCamera Camera
	camera        *Camera

	stats     FrameStats
	destroyed bool
}

// NewDraw creates a submitter drawing with the builtins' sprite pipeline.
func NewDraw(device hal.Device, queue hal.Queue, builtins *Builtins, opts ...DrawOption) (*Draw, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if builtins == nil {
		return nil, ErrNilBuiltins
	}
	o := defaultDrawOptions()
	for _, opt := range opts {
		opt(&o)
	}

	quad, err := NewQuad(device, queue)
	if err != nil {
		return nil, fmt.Errorf("create sprite quad: %w", err)
	}

	return &Draw{
		device:        device,
		queue:         queue,
		builtins:      builtins,
		quad:          quad,
		batcher:       NewBatcher(o.lifetime),
		defaultCamera: o.camera,
	}, nil
}

// BeginFrame drops the camera set during the previous frame.
func (d *Draw) BeginFrame() {
	d.camera = nil
}

// SetCamera sets the camera for subsequent Sprite calls in this frame. The
// camera is copied. Nil reverts to the default camera.
//
// Start from NewCamera: a Camera literal has Zoom 0, which clamps to
// MinZoom and shrinks every sprite to nothing.
func (d *Draw) SetCamera(c *Camera) {
	if c == nil {
		d.camera = nil
		return
	}
	cc := c.clone()
	d.camera = &cc
}

// Camera returns the camera Sprite would use right now.
func (d *Draw) Camera() Camera {
	if d.camera != nil {
		return *d.camera
	}
	return d.defaultCamera
}

// Sprite queues tex centered at position. The sprite is tex.Size() world
// units large before scaling.
func (d *Draw) Sprite(tex *Texture, position Point, opts ...SpriteOption) error {
	if d.destroyed {
		return ErrDestroyed
	}
	if tex == nil {
		return ErrNilTexture
	}
	if tex.Destroyed() {
		return fmt.Errorf("%w: texture %q", ErrDestroyed, tex.Key())
	}
	p := defaultSpriteParams()
	for _, opt := range opts {
		opt(&p)
	}

	in := Instance{
		Camera: d.Camera(),
		Model:  ModelMatrix(position, p.rotation, tex.Size().Scale(p.scale)),
		Color:  p.tint,
	}

	key := tex.Key()
	if b := d.batcher.Batch(key); b != nil {
		b.add(in)
		return nil
	}
	attachments := []Attachment{
		PipelineAttachment{Pipeline: d.builtins.Pipeline()},
		TextureAttachment{Group: 0, BindGroup: tex.BindGroup()},
	}
	return d.batcher.Add(d.device, key, attachments, in)
}

// Submit uploads every batch and records its draw into pass, then evicts
// batches idle for the configured lifetime. viewport is the surface size in
// pixels, used by cameras without an explicit size.
//
// Batches with nothing to draw record nothing. An upload or allocation error
// aborts the frame; check it with IsFatal.
func (d *Draw) Submit(pass RenderPass, viewport Point) error {
	if d.destroyed {
		return ErrDestroyed
	}
	stats := FrameStats{}

	d.quad.Apply(pass)

	for _, key := range d.batcher.Keys() {
		b := d.batcher.Batch(key)
		n, err := b.write(d.device, d.queue, viewport)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		for _, a := range b.attachments {
			a.Attach(pass)
		}
		pass.SetVertexBuffer(1, b.buffer, 0)
		pass.DrawIndexed(QuadIndexCount, n, 0, 0, 0)

		stats.DrawCalls++
		stats.Instances += uint64(n)
	}

	stats.Evicted = len(d.batcher.Cleanup(d.device))
	stats.Batches = d.batcher.Len()
	for _, key := range d.batcher.Keys() {
		stats.BufferBytes += d.batcher.Batch(key).Capacity()
	}
	d.stats = stats
	return nil
}

// Stats returns statistics of the last Submit.
func (d *Draw) Stats() FrameStats { return d.stats }

// BatchCount returns the number of live batches.
func (d *Draw) BatchCount() int { return d.batcher.Len() }

// Uses reports whether a live batch is keyed by key, meaning its texture
// may still be bound by a future Submit.
func (d *Draw) Uses(key string) bool { return d.batcher.Batch(key) != nil }

// Batcher exposes the batch table for inspection.
func (d *Draw) Batcher() *Batcher { return d.batcher }

// Destroy releases every batch and the quad. Textures and builtins belong
// to the caller.
func (d *Draw) Destroy() {
	if d.destroyed {
		return
	}
	d.batcher.Destroy(d.device)
	d.quad.Destroy(d.device)
	d.destroyed = true
}
