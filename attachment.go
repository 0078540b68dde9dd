package sprite

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// RenderPass is the part of hal.RenderPassEncoder the submitter records
// into. Any hal.RenderPassEncoder satisfies it.
type RenderPass interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32)
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	SetIndexBuffer(buffer hal.Buffer, format gputypes.IndexFormat, offset uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

var _ RenderPass = hal.RenderPassEncoder(nil)

// Attachment is a piece of pass state bound before a batch is drawn.
// The set of variants is closed: PipelineAttachment and TextureAttachment.
type Attachment interface {
	// Attach binds the attachment on pass.
	Attach(pass RenderPass)

	attachment()
}

// PipelineAttachment selects the render pipeline.
type PipelineAttachment struct {
	Pipeline hal.RenderPipeline
}

// Attach sets the pipeline.
func (a PipelineAttachment) Attach(pass RenderPass) {
	pass.SetPipeline(a.Pipeline)
}

func (PipelineAttachment) attachment() {}

// TextureAttachment binds a texture+sampler bind group.
type TextureAttachment struct {
	Group     uint32
	BindGroup hal.BindGroup
}

// Attach sets the bind group at Group.
func (a TextureAttachment) Attach(pass RenderPass) {
	pass.SetBindGroup(a.Group, a.BindGroup, nil)
}

func (TextureAttachment) attachment() {}
