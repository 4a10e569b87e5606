// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package command

import (
	"fmt"

	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/types"
)

// DefaultBufferSize is the default arena capacity of a command list.
const DefaultBufferSize = 1024 * 1024

// List is the software-side command list: an append-only payload arena plus
// an index of typed commands.
//
// Lists are built and compiled prior to submission to a GPU queue; a single
// list must be recorded from one goroutine, while separate lists may record
// concurrently.
type List struct {
	// handles validates handles passed into recording calls.
	handles *core.HandleAllocator

	queueType      QueueType
	allocatedBytes int
	commandData    []byte
	commands       []Command

	drawState       types.DrawState
	cachedDrawState *types.DrawState

	eventLabelDepth int
}

// NewList creates a command list with the given arena capacity in bytes.
// The handle allocator is used to validate every handle recorded.
func NewList(bufferSize int, handles *core.HandleAllocator) *List {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &List{
		handles:     handles,
		commandData: make([]byte, bufferSize),
	}
}

// Alloc reserves bytes from the command list arena. The returned slice is
// valid until Reset. Returns nil when the arena is exhausted.
func (l *List) Alloc(bytes int) []byte {
	if bytes <= 0 || l.allocatedBytes+bytes > len(l.commandData) {
		return nil
	}
	data := l.commandData[l.allocatedBytes : l.allocatedBytes+bytes : l.allocatedBytes+bytes]
	l.allocatedBytes += bytes
	return data
}

// Push copies data into the command list arena. The returned slice is valid
// until Reset. Returns nil when the arena is exhausted.
func (l *List) Push(data []byte) []byte {
	dst := l.Alloc(len(data))
	if dst != nil {
		copy(dst, data)
	}
	return dst
}

// Reset rewinds the arena and drops all recorded commands. Memory handed
// out by Alloc or Push becomes invalid.
func (l *List) Reset() {
	l.queueType = QueueNone
	l.allocatedBytes = 0
	l.commands = l.commands[:0]
	l.cachedDrawState = nil
	l.eventLabelDepth = 0
}

// QueueType returns the queue classes accumulated so far.
func (l *List) QueueType() QueueType {
	return l.queueType
}

// NumCommands returns the number of recorded commands.
func (l *List) NumCommands() int {
	return len(l.commands)
}

// Commands returns the recorded command stream in order. The slice is owned
// by the list and valid until Reset.
func (l *List) Commands() []Command {
	return l.commands
}

// append records a command and upgrades the queue type.
func (l *List) append(cmd Command) {
	l.queueType |= cmd.Queue()
	l.commands = append(l.commands, cmd)
}

// bindDrawState caches the draw state so that runs of draws with identical
// state share one copy.
func (l *List) bindDrawState(ds *types.DrawState) *types.DrawState {
	if ds == nil {
		ds = &l.drawState
	}
	if l.cachedDrawState != nil && *l.cachedDrawState == *ds {
		return l.cachedDrawState
	}
	stored := *ds
	l.cachedDrawState = &stored
	return l.cachedDrawState
}

// argErr builds an invalid-argument error for a recording call.
func argErr(op, detail string) error {
	return fmt.Errorf("%w: %s: %s", types.ErrInvalidArgument, op, detail)
}

func (l *List) validHandle(h core.Handle, kind core.Kind) bool {
	return l.handles != nil && l.handles.IsValidKind(h, kind)
}

// Draw records a draw. drawBinding may be zero; the draw is then non-indexed
// with no input-assembler bindings.
func (l *List) Draw(pipelineBinding, drawBinding, frameBinding core.Handle, drawState *types.DrawState,
	primitive types.PrimitiveTopology, indexOffset, vertexOffset, numVertices, firstInstance, numInstances int32) error {
	if !l.validHandle(pipelineBinding, core.KindPipelineBindingSet) {
		return argErr("Draw", "pipelineBinding is not a valid PipelineBindingSet")
	}
	if !drawBinding.IsZero() && !l.validHandle(drawBinding, core.KindDrawBindingSet) {
		return argErr("Draw", "drawBinding is not a valid DrawBindingSet")
	}
	if !l.validHandle(frameBinding, core.KindFrameBindingSet) {
		return argErr("Draw", "frameBinding is not a valid FrameBindingSet")
	}
	if indexOffset < 0 || vertexOffset < 0 || firstInstance < 0 {
		return argErr("Draw", "negative offset")
	}
	if numVertices <= 0 || numInstances <= 0 {
		return argErr("Draw", "counts must be greater than zero")
	}

	l.append(&Draw{
		PipelineBinding: pipelineBinding,
		DrawBinding:     drawBinding,
		FrameBinding:    frameBinding,
		DrawState:       l.bindDrawState(drawState),
		Primitive:       primitive,
		IndexOffset:     indexOffset,
		VertexOffset:    vertexOffset,
		NumVertices:     numVertices,
		FirstInstance:   firstInstance,
		NumInstances:    numInstances,
	})
	return nil
}

// DrawIndirect records a draw whose parameters come from a GPU buffer.
// countBuffer may be zero; maxCommands draws are then issued.
func (l *List) DrawIndirect(pipelineBinding, drawBinding, frameBinding core.Handle, drawState *types.DrawState,
	primitive types.PrimitiveTopology, indirectBuffer core.Handle, argByteOffset int32,
	countBuffer core.Handle, countByteOffset, maxCommands int32) error {
	if !l.validHandle(pipelineBinding, core.KindPipelineBindingSet) {
		return argErr("DrawIndirect", "pipelineBinding is not a valid PipelineBindingSet")
	}
	if !drawBinding.IsZero() && !l.validHandle(drawBinding, core.KindDrawBindingSet) {
		return argErr("DrawIndirect", "drawBinding is not a valid DrawBindingSet")
	}
	if !l.validHandle(frameBinding, core.KindFrameBindingSet) {
		return argErr("DrawIndirect", "frameBinding is not a valid FrameBindingSet")
	}
	if !l.validHandle(indirectBuffer, core.KindBuffer) {
		return argErr("DrawIndirect", "indirectBuffer is not a valid Buffer")
	}
	if !countBuffer.IsZero() && !l.validHandle(countBuffer, core.KindBuffer) {
		return argErr("DrawIndirect", "countBuffer is not a valid Buffer")
	}
	if argByteOffset < 0 || countByteOffset < 0 {
		return argErr("DrawIndirect", "negative byte offset")
	}
	if maxCommands <= 0 {
		return argErr("DrawIndirect", "maxCommands must be greater than zero")
	}

	l.append(&DrawIndirect{
		PipelineBinding: pipelineBinding,
		DrawBinding:     drawBinding,
		FrameBinding:    frameBinding,
		DrawState:       l.bindDrawState(drawState),
		Primitive:       primitive,
		IndirectBuffer:  indirectBuffer,
		ArgByteOffset:   argByteOffset,
		CountBuffer:     countBuffer,
		CountByteOffset: countByteOffset,
		MaxCommands:     maxCommands,
	})
	return nil
}

// Dispatch records a compute dispatch.
func (l *List) Dispatch(pipelineBinding core.Handle, xGroups, yGroups, zGroups int32) error {
	if !l.validHandle(pipelineBinding, core.KindPipelineBindingSet) {
		return argErr("Dispatch", "pipelineBinding is not a valid PipelineBindingSet")
	}
	if xGroups <= 0 || yGroups <= 0 || zGroups <= 0 {
		return argErr("Dispatch", "group counts must be greater than zero")
	}

	l.append(&Dispatch{
		PipelineBinding: pipelineBinding,
		XGroups:         xGroups,
		YGroups:         yGroups,
		ZGroups:         zGroups,
	})
	return nil
}

// DispatchIndirect records a dispatch whose parameters come from a GPU
// buffer. countBuffer may be zero.
func (l *List) DispatchIndirect(pipelineBinding, indirectBuffer core.Handle, argByteOffset int32,
	countBuffer core.Handle, countByteOffset, maxCommands int32) error {
	if !l.validHandle(pipelineBinding, core.KindPipelineBindingSet) {
		return argErr("DispatchIndirect", "pipelineBinding is not a valid PipelineBindingSet")
	}
	if !l.validHandle(indirectBuffer, core.KindBuffer) {
		return argErr("DispatchIndirect", "indirectBuffer is not a valid Buffer")
	}
	if !countBuffer.IsZero() && !l.validHandle(countBuffer, core.KindBuffer) {
		return argErr("DispatchIndirect", "countBuffer is not a valid Buffer")
	}
	if argByteOffset < 0 || countByteOffset < 0 {
		return argErr("DispatchIndirect", "negative byte offset")
	}
	if maxCommands <= 0 {
		return argErr("DispatchIndirect", "maxCommands must be greater than zero")
	}

	l.append(&DispatchIndirect{
		PipelineBinding: pipelineBinding,
		IndirectBuffer:  indirectBuffer,
		ArgByteOffset:   argByteOffset,
		CountBuffer:     countBuffer,
		CountByteOffset: countByteOffset,
		MaxCommands:     maxCommands,
	})
	return nil
}

// ClearRTV records a render target clear.
func (l *List) ClearRTV(frameBinding core.Handle, rtvIdx int32, color [4]float32) error {
	if !l.validHandle(frameBinding, core.KindFrameBindingSet) {
		return argErr("ClearRTV", "frameBinding is not a valid FrameBindingSet")
	}
	if rtvIdx < 0 || rtvIdx >= types.MaxBoundRTVs {
		return argErr("ClearRTV", "rtvIdx out of range")
	}

	l.append(&ClearRTV{
		FrameBinding: frameBinding,
		RTVIdx:       rtvIdx,
		Color:        color,
	})
	return nil
}

// ClearDSV records a depth stencil clear.
func (l *List) ClearDSV(frameBinding core.Handle, depth float32, stencil uint8) error {
	if !l.validHandle(frameBinding, core.KindFrameBindingSet) {
		return argErr("ClearDSV", "frameBinding is not a valid FrameBindingSet")
	}

	l.append(&ClearDSV{
		FrameBinding: frameBinding,
		Depth:        depth,
		Stencil:      stencil,
	})
	return nil
}

// ClearUAVFloat records a float UAV clear.
func (l *List) ClearUAVFloat(pipelineBinding core.Handle, uavIdx int16, values [4]float32) error {
	if !l.validHandle(pipelineBinding, core.KindPipelineBindingSet) {
		return argErr("ClearUAV", "pipelineBinding is not a valid PipelineBindingSet")
	}
	if uavIdx < 0 || uavIdx >= types.MaxUAVBindings {
		return argErr("ClearUAV", "uavIdx out of range")
	}

	l.append(&ClearUAV{
		PipelineBinding: pipelineBinding,
		UAVIdx:          uavIdx,
		F:               values,
		IsFloat:         true,
	})
	return nil
}

// ClearUAVUint records a uint UAV clear.
func (l *List) ClearUAVUint(pipelineBinding core.Handle, uavIdx int16, values [4]uint32) error {
	if !l.validHandle(pipelineBinding, core.KindPipelineBindingSet) {
		return argErr("ClearUAV", "pipelineBinding is not a valid PipelineBindingSet")
	}
	if uavIdx < 0 || uavIdx >= types.MaxUAVBindings {
		return argErr("ClearUAV", "uavIdx out of range")
	}

	l.append(&ClearUAV{
		PipelineBinding: pipelineBinding,
		UAVIdx:          uavIdx,
		U:               values,
	})
	return nil
}

// UpdateBuffer records a buffer update. The payload is copied into the
// command list arena.
func (l *List) UpdateBuffer(buffer core.Handle, offset int32, data []byte) error {
	if !l.validHandle(buffer, core.KindBuffer) {
		return argErr("UpdateBuffer", "buffer is not a valid Buffer")
	}
	if offset < 0 {
		return argErr("UpdateBuffer", "negative offset")
	}
	if len(data) == 0 {
		return argErr("UpdateBuffer", "empty data")
	}

	stored := l.Push(data)
	if stored == nil {
		return fmt.Errorf("%w: UpdateBuffer: command list arena exhausted", types.ErrOutOfMemory)
	}

	l.append(&UpdateBuffer{
		Buffer: buffer,
		Offset: offset,
		Size:   int32(len(data)),
		Data:   stored,
	})
	return nil
}

// UpdateTextureSubResource records a texture subresource update. The texel
// payload is copied into the command list arena.
func (l *List) UpdateTextureSubResource(texture core.Handle, subResourceIdx int16, data types.TextureSubResourceData) error {
	if !l.validHandle(texture, core.KindTexture) {
		return argErr("UpdateTextureSubResource", "texture is not a valid Texture")
	}
	if subResourceIdx < 0 {
		return argErr("UpdateTextureSubResource", "negative subresource index")
	}
	if len(data.Data) == 0 || data.RowPitch <= 0 || data.SlicePitch <= 0 {
		return argErr("UpdateTextureSubResource", "invalid subresource data")
	}

	stored := l.Push(data.Data)
	if stored == nil {
		return fmt.Errorf("%w: UpdateTextureSubResource: command list arena exhausted", types.ErrOutOfMemory)
	}
	data.Data = stored

	l.append(&UpdateTextureSubResource{
		Texture:        texture,
		SubResourceIdx: subResourceIdx,
		Data:           data,
	})
	return nil
}

// CopyBuffer records a buffer-to-buffer copy. Source and destination must be
// distinct buffers.
func (l *List) CopyBuffer(dstBuffer core.Handle, dstOffset int32, srcBuffer core.Handle, srcOffset, srcSize int32) error {
	if !l.validHandle(dstBuffer, core.KindBuffer) {
		return argErr("CopyBuffer", "dstBuffer is not a valid Buffer")
	}
	if !l.validHandle(srcBuffer, core.KindBuffer) {
		return argErr("CopyBuffer", "srcBuffer is not a valid Buffer")
	}
	if dstBuffer == srcBuffer {
		return argErr("CopyBuffer", "source and destination must differ")
	}
	if dstOffset < 0 || srcOffset < 0 {
		return argErr("CopyBuffer", "negative offset")
	}
	if srcSize <= 0 {
		return argErr("CopyBuffer", "size must be greater than zero")
	}

	l.append(&CopyBuffer{
		DstBuffer: dstBuffer,
		DstOffset: dstOffset,
		SrcBuffer: srcBuffer,
		SrcOffset: srcOffset,
		SrcSize:   srcSize,
	})
	return nil
}

// CopyTextureSubResource records a texture region copy. The destination
// subresource must differ from the source subresource.
func (l *List) CopyTextureSubResource(dstTexture core.Handle, dstSubResourceIdx int16, dstPoint types.Point,
	srcTexture core.Handle, srcSubResourceIdx int16, srcBox types.Box) error {
	if !l.validHandle(dstTexture, core.KindTexture) {
		return argErr("CopyTextureSubResource", "dstTexture is not a valid Texture")
	}
	if !l.validHandle(srcTexture, core.KindTexture) {
		return argErr("CopyTextureSubResource", "srcTexture is not a valid Texture")
	}
	if dstTexture == srcTexture && dstSubResourceIdx == srcSubResourceIdx {
		return argErr("CopyTextureSubResource", "source and destination subresource must differ")
	}
	if dstSubResourceIdx < 0 || srcSubResourceIdx < 0 {
		return argErr("CopyTextureSubResource", "negative subresource index")
	}
	if srcBox.W <= 0 || srcBox.H <= 0 || srcBox.D <= 0 {
		return argErr("CopyTextureSubResource", "empty source box")
	}
	if dstPoint.X < 0 || dstPoint.Y < 0 || dstPoint.Z < 0 || srcBox.X < 0 || srcBox.Y < 0 || srcBox.Z < 0 {
		return argErr("CopyTextureSubResource", "negative copy coordinates")
	}

	l.append(&CopyTextureSubResource{
		DstTexture:        dstTexture,
		DstSubResourceIdx: dstSubResourceIdx,
		DstPoint:          dstPoint,
		SrcTexture:        srcTexture,
		SrcSubResourceIdx: srcSubResourceIdx,
		SrcBox:            srcBox,
	})
	return nil
}

// ScopedEvent closes a debug event pushed by Event.
type ScopedEvent struct {
	list *List
}

// End pops the event. Calling End more than once is a no-op.
func (e *ScopedEvent) End() {
	if e.list != nil {
		e.list.endEvent()
		e.list = nil
	}
}

// Event pushes a scoped text event into the command list for debugging.
// The returned ScopedEvent pops the event on End.
func (l *List) Event(metaData int32, text string) ScopedEvent {
	l.append(&BeginEvent{MetaData: metaData, Text: text})
	l.eventLabelDepth++
	return ScopedEvent{list: l}
}

// Eventf pushes a formatted scoped text event into the command list.
func (l *List) Eventf(metaData int32, format string, args ...any) ScopedEvent {
	return l.Event(metaData, fmt.Sprintf(format, args...))
}

func (l *List) endEvent() {
	if l.eventLabelDepth > 0 {
		l.eventLabelDepth--
		l.append(&EndEvent{})
	}
}
