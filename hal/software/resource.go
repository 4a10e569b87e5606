// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package software

import (
	"github.com/gogpu/gal/command"
	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/types"
)

// resource is the state-tracking header shared by every GPU memory object.
// The compiler transitions resources between states and restores them to
// defaultState at the end of every command list.
type resource struct {
	// handle is the owning handle. Swap chain back-buffers carry the
	// swap chain's handle.
	handle core.Handle

	numSubResources int32
	supportedStates types.ResourceState
	defaultState    types.ResourceState
}

// buffer is a memory-backed buffer resource.
type buffer struct {
	resource
	desc types.BufferDesc
	data []byte
}

// texture is a memory-backed texture resource. Each subresource is stored
// tightly packed at its computed footprint.
type texture struct {
	resource
	desc       types.TextureDesc
	subData    [][]byte
	footprints []types.Footprint
}

// subResourceDims returns the mip-adjusted dimensions of a subresource.
func (t *texture) subResourceDims(subRsc int32) (w, h, d int32) {
	mip := subRsc % t.desc.Levels
	w = t.desc.Width >> uint(mip)
	h = t.desc.Height >> uint(mip)
	d = t.desc.Depth
	if t.desc.Type == types.Texture3D {
		d = t.desc.Depth >> uint(mip)
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if d < 1 {
		d = 1
	}
	return w, h, d
}

// swapChain is an ordered set of back-buffer textures plus the current
// back-buffer index.
type swapChain struct {
	desc     types.SwapChainDesc
	textures []*texture
	bbIdx    int32
}

// shader stores an opaque bytecode blob.
type shader struct {
	byteCode []byte
}

// rootSignatureType selects one of the device's fixed root signatures.
type rootSignatureType int8

const (
	rootSignatureGraphics rootSignatureType = iota
	rootSignatureCompute
	rootSignatureMax
)

// graphicsPipelineState is an immutable compiled graphics pipeline.
type graphicsPipelineState struct {
	rootSignature rootSignatureType
	desc          types.GraphicsPipelineStateDesc
	shaders       [types.ShaderTypeMax][]byte
	stencilRef    uint32
}

// computePipelineState is an immutable compiled compute pipeline.
type computePipelineState struct {
	rootSignature rootSignatureType
	desc          types.ComputePipelineStateDesc
	shader        []byte
}

// subresourceRange records which state a bound descriptor demands from
// which subresources, so the compiler knows what to transition.
type subresourceRange struct {
	res         *resource
	firstSubRsc int32
	numSubRsc   int32
	state       types.ResourceState
	// pixelVisible distinguishes pixel from non-pixel SRV reads; it only
	// applies to shader resource views.
	pixelVisible bool

	// buf/tex point at the backing storage for commands that touch data
	// (clears, copies). At most one is set.
	buf *buffer
	tex *texture
}

func (r *subresourceRange) valid() bool {
	return r.res != nil && r.numSubRsc > 0
}

// pipelineBindingSet holds the four parallel descriptor ranges of a bound
// pipeline plus the cached per-descriptor transitions.
type pipelineBindingSet struct {
	pipelineState core.Handle
	rootSignature rootSignatureType

	cbvs     descriptorAllocation
	srvs     descriptorAllocation
	uavs     descriptorAllocation
	samplers descriptorAllocation

	cbvTransitions []subresourceRange
	srvTransitions []subresourceRange
	uavTransitions []subresourceRange

	shaderVisible bool
	temporary     bool
}

// drawBindingSet captures input-assembler bindings with resolved resource
// pointers.
type drawBindingSet struct {
	desc        types.DrawBindingSetDesc
	vbResources [types.MaxVertexStreams]*resource
	ibResource  *resource
}

// frameBindingSet captures output-merger bindings. When a swap chain is
// bound at RTV 0 the set holds one RTV group per back-buffer and selects by
// the swap chain's bbIdx.
type frameBindingSet struct {
	desc types.FrameBindingSetDesc

	rtvs descriptorAllocation
	dsv  descriptorAllocation

	// rtvRanges is indexed [buffer][rtv].
	rtvRanges [][]subresourceRange
	dsvRange  subresourceRange

	swapChain  *swapChain
	numRTs     int32
	numBuffers int32
}

// fence is a monotonically signalled counter with blocking waits.
type fence struct {
	state *fenceState
}

// listState is the lifecycle of a native command list.
type listState int8

const (
	listIdle listState = iota
	listOpen
	listRecorded
	listClosed
	listSubmitted
)

// barrierRecord is one emitted resource transition.
type barrierRecord struct {
	// Resource is the owning handle of the transitioned resource.
	Resource core.Handle
	// SubResource is the transitioned subresource, or allSubResources.
	SubResource int32
	// Before and After are the transition states.
	Before types.ResourceState
	After  types.ResourceState
	// UAV marks an unordered-access ordering barrier (Before == After).
	UAV bool
}

// allSubResources marks a barrier covering every subresource.
const allSubResources int32 = -1

// barrierBatch is one coalesced flush of barriers.
type barrierBatch struct {
	Records []barrierRecord
}

// commandList is the native command list of the software backend: a list of
// execution thunks plus the emitted barrier batches, which tests inspect.
type commandList struct {
	state     listState
	queueType command.QueueType

	ops      []func(d *Device)
	barriers []barrierBatch

	numDraws      int32
	numDispatches int32
	eventDepth    int32
}

// reset returns the list to the open state for recompilation.
func (l *commandList) reset() {
	l.ops = l.ops[:0]
	l.barriers = l.barriers[:0]
	l.numDraws = 0
	l.numDispatches = 0
	l.eventDepth = 0
	l.queueType = command.QueueNone
	l.state = listOpen
}

// BarrierBatches exposes the coalesced barrier batches of the last compile
// for verification.
func (l *commandList) BarrierBatches() []barrierBatch {
	return l.barriers
}
