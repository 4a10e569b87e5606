// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package command

import (
	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/types"
)

// QueueType is a bitset of command queue classes. Classes are ordered:
// copy ⊂ compute ⊂ graphics. A command list's queue type is the union of
// the classes of its commands; it may only be submitted to a queue of its
// highest class or above.
type QueueType int8

const (
	// QueueNone is an empty command list.
	QueueNone QueueType = 0x00
	// QueueCopy marks copy-class work.
	QueueCopy QueueType = 0x01
	// QueueCompute marks compute-class work.
	QueueCompute QueueType = 0x02
	// QueueGraphics marks graphics-class work.
	QueueGraphics QueueType = 0x04
	// QueueAll covers every class.
	QueueAll = QueueCopy | QueueCompute | QueueGraphics
)

// Class returns the highest queue class present in q.
func (q QueueType) Class() QueueType {
	switch {
	case q&QueueGraphics != 0:
		return QueueGraphics
	case q&QueueCompute != 0:
		return QueueCompute
	case q&QueueCopy != 0:
		return QueueCopy
	default:
		return QueueNone
	}
}

// Accepts reports whether a queue of class q can execute work of class
// other.
func (q QueueType) Accepts(other QueueType) bool {
	return q.Class() >= other.Class()
}

// Command is one recorded entry of a command list. The concrete type is the
// discriminator; the compiler dispatches with a type switch.
type Command interface {
	// Queue returns the queue class the command requires.
	Queue() QueueType
}

// Draw rasterizes primitives. Indexed or non-indexed is determined by the
// draw binding set's index buffer.
type Draw struct {
	// PipelineBinding is the pipeline binding set to draw with.
	PipelineBinding core.Handle
	// DrawBinding is the draw binding set, or zero for no input assembler
	// bindings.
	DrawBinding core.Handle
	// FrameBinding is the frame binding set rendered into.
	FrameBinding core.Handle
	// DrawState is the dynamic state for this draw.
	DrawState *types.DrawState
	// Primitive is the topology to rasterize.
	Primitive types.PrimitiveTopology
	// IndexOffset is the first index. Ignored for non-indexed draws.
	IndexOffset int32
	// VertexOffset is added to each vertex index.
	VertexOffset int32
	// NumVertices is the vertex (or index) count.
	NumVertices int32
	// FirstInstance is the first instance ID.
	FirstInstance int32
	// NumInstances is the instance count.
	NumInstances int32
}

// Queue implements Command.
func (*Draw) Queue() QueueType { return QueueGraphics }

// DrawIndirect rasterizes primitives with GPU-generated parameters.
type DrawIndirect struct {
	// PipelineBinding is the pipeline binding set to draw with.
	PipelineBinding core.Handle
	// DrawBinding is the draw binding set, or zero.
	DrawBinding core.Handle
	// FrameBinding is the frame binding set rendered into.
	FrameBinding core.Handle
	// DrawState is the dynamic state for this draw.
	DrawState *types.DrawState
	// Primitive is the topology to rasterize.
	Primitive types.PrimitiveTopology
	// IndirectBuffer holds the draw arguments.
	IndirectBuffer core.Handle
	// ArgByteOffset is the byte offset of the first argument struct.
	ArgByteOffset int32
	// CountBuffer optionally holds the draw count.
	CountBuffer core.Handle
	// CountByteOffset is the byte offset of the count value.
	CountByteOffset int32
	// MaxCommands bounds the number of executed draws.
	MaxCommands int32
}

// Queue implements Command.
func (*DrawIndirect) Queue() QueueType { return QueueGraphics }

// Dispatch launches compute groups.
type Dispatch struct {
	// PipelineBinding is the pipeline binding set to dispatch with.
	PipelineBinding core.Handle
	// XGroups is the group count along X.
	XGroups int32
	// YGroups is the group count along Y.
	YGroups int32
	// ZGroups is the group count along Z.
	ZGroups int32
}

// Queue implements Command.
func (*Dispatch) Queue() QueueType { return QueueCompute }

// DispatchIndirect launches compute groups with GPU-generated parameters.
type DispatchIndirect struct {
	// PipelineBinding is the pipeline binding set to dispatch with.
	PipelineBinding core.Handle
	// IndirectBuffer holds the dispatch arguments.
	IndirectBuffer core.Handle
	// ArgByteOffset is the byte offset of the first argument struct.
	ArgByteOffset int32
	// CountBuffer optionally holds the dispatch count.
	CountBuffer core.Handle
	// CountByteOffset is the byte offset of the count value.
	CountByteOffset int32
	// MaxCommands bounds the number of executed dispatches.
	MaxCommands int32
}

// Queue implements Command.
func (*DispatchIndirect) Queue() QueueType { return QueueCompute }

// ClearRTV clears one render target view of a frame binding set.
type ClearRTV struct {
	// FrameBinding contains the RTV to clear.
	FrameBinding core.Handle
	// RTVIdx is the RTV index within the frame binding.
	RTVIdx int32
	// Color is the clear color.
	Color [4]float32
}

// Queue implements Command.
func (*ClearRTV) Queue() QueueType { return QueueGraphics }

// ClearDSV clears the depth stencil view of a frame binding set.
type ClearDSV struct {
	// FrameBinding contains the DSV to clear.
	FrameBinding core.Handle
	// Depth is the depth clear value.
	Depth float32
	// Stencil is the stencil clear value.
	Stencil uint8
}

// Queue implements Command.
func (*ClearDSV) Queue() QueueType { return QueueGraphics }

// ClearUAV clears one unordered access view of a pipeline binding set.
type ClearUAV struct {
	// PipelineBinding contains the UAV to clear.
	PipelineBinding core.Handle
	// UAVIdx is the UAV index within the pipeline binding.
	UAVIdx int16
	// F is the float clear payload, valid when IsFloat.
	F [4]float32
	// U is the uint clear payload, valid when !IsFloat.
	U [4]uint32
	// IsFloat selects between F and U.
	IsFloat bool
}

// Queue implements Command.
func (*ClearUAV) Queue() QueueType { return QueueGraphics }

// UpdateBuffer stages Data into the per-frame upload heap and copies it
// into the target buffer range.
type UpdateBuffer struct {
	// Buffer is the destination buffer.
	Buffer core.Handle
	// Offset is the destination byte offset.
	Offset int32
	// Size is the update byte size.
	Size int32
	// Data is the payload; it lives in the command list arena.
	Data []byte
}

// Queue implements Command.
func (*UpdateBuffer) Queue() QueueType { return QueueCopy }

// UpdateTextureSubResource stages texel data into the per-frame upload heap
// and copies it into one texture subresource.
type UpdateTextureSubResource struct {
	// Texture is the destination texture.
	Texture core.Handle
	// SubResourceIdx is the destination subresource.
	SubResourceIdx int16
	// Data is the source texel layout.
	Data types.TextureSubResourceData
}

// Queue implements Command.
func (*UpdateTextureSubResource) Queue() QueueType { return QueueCopy }

// CopyBuffer copies a byte range between two distinct buffers.
type CopyBuffer struct {
	// DstBuffer is the destination buffer.
	DstBuffer core.Handle
	// DstOffset is the destination byte offset.
	DstOffset int32
	// SrcBuffer is the source buffer.
	SrcBuffer core.Handle
	// SrcOffset is the source byte offset.
	SrcOffset int32
	// SrcSize is the copy byte size.
	SrcSize int32
}

// Queue implements Command.
func (*CopyBuffer) Queue() QueueType { return QueueCopy }

// CopyTextureSubResource copies a box between two texture subresources.
type CopyTextureSubResource struct {
	// DstTexture is the destination texture.
	DstTexture core.Handle
	// DstSubResourceIdx is the destination subresource.
	DstSubResourceIdx int16
	// DstPoint is the destination origin.
	DstPoint types.Point
	// SrcTexture is the source texture.
	SrcTexture core.Handle
	// SrcSubResourceIdx is the source subresource.
	SrcSubResourceIdx int16
	// SrcBox is the source region.
	SrcBox types.Box
}

// Queue implements Command.
func (*CopyTextureSubResource) Queue() QueueType { return QueueCopy }

// BeginEvent opens a scoped debug event.
type BeginEvent struct {
	// MetaData is user metadata attached to the event.
	MetaData int32
	// Text is the event label.
	Text string
}

// Queue implements Command.
func (*BeginEvent) Queue() QueueType { return QueueNone }

// EndEvent closes the innermost open debug event.
type EndEvent struct{}

// Queue implements Command.
func (*EndEvent) Queue() QueueType { return QueueNone }
