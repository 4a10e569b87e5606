// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hal

import (
	"github.com/gogpu/gal/command"
	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/types"
)

// Backend is the contract every GPU backend implements. The facade forwards
// creation, compilation, submission, and presentation to it.
//
// All operations return an error; success is nil. Resource identity flows
// through generation-safe handles allocated by the facade: the facade
// allocates a handle, the backend stores its native record under the
// handle's index.
type Backend interface {
	// EnumerateAdapters lists the physical adapters of the backend.
	EnumerateAdapters() ([]types.AdapterInfo, error)

	// IsInitialized reports whether Initialize completed.
	IsInitialized() bool

	// Initialize binds the backend to one adapter and creates its queues,
	// root signatures, descriptor heaps, and per-frame allocators.
	Initialize(adapterIdx int) error

	// CreateSwapChain creates a swap chain and its back-buffer textures.
	CreateSwapChain(h core.Handle, desc *types.SwapChainDesc, debugName string) error

	// CreateBuffer creates a buffer, optionally uploading initial data
	// through the copy queue.
	CreateBuffer(h core.Handle, desc *types.BufferDesc, initialData []byte, debugName string) error

	// CreateTexture creates a texture, optionally uploading one initial
	// data layout per subresource through the copy queue.
	CreateTexture(h core.Handle, desc *types.TextureDesc, initialData []types.TextureSubResourceData, debugName string) error

	// CreateSamplerState creates a sampler.
	CreateSamplerState(h core.Handle, state *types.SamplerState, debugName string) error

	// CreateShader stores an opaque shader bytecode blob.
	CreateShader(h core.Handle, desc *types.ShaderDesc, debugName string) error

	// CreateGraphicsPipelineState creates an immutable graphics pipeline.
	CreateGraphicsPipelineState(h core.Handle, desc *types.GraphicsPipelineStateDesc, debugName string) error

	// CreateComputePipelineState creates an immutable compute pipeline.
	CreateComputePipelineState(h core.Handle, desc *types.ComputePipelineStateDesc, debugName string) error

	// CreatePipelineBindingSet allocates the descriptor tables of a
	// pipeline binding set.
	CreatePipelineBindingSet(h core.Handle, desc *types.PipelineBindingSetDesc, debugName string) error

	// CreateDrawBindingSet captures input-assembler bindings.
	CreateDrawBindingSet(h core.Handle, desc *types.DrawBindingSetDesc, debugName string) error

	// CreateFrameBindingSet captures output-merger bindings. When RTV 0
	// is a swap chain, the set holds one RTV group per back-buffer.
	CreateFrameBindingSet(h core.Handle, desc *types.FrameBindingSetDesc, debugName string) error

	// CreateCommandList creates a native command list.
	CreateCommandList(h core.Handle, debugName string) error

	// CreateFence creates a fence with the given initial value.
	CreateFence(h core.Handle, initialValue uint64, debugName string) error

	// DestroyResource destroys the native resource stored under a handle.
	// Destruction is deferred until the GPU has completed the frames in
	// flight that may still reference it.
	DestroyResource(h core.Handle) error

	// AllocTemporaryPipelineBindingSet allocates a binding set from the
	// per-frame linear descriptor stream. It is valid for the current
	// frame only and must not be destroyed.
	AllocTemporaryPipelineBindingSet(h core.Handle, desc *types.PipelineBindingSetDesc) error

	// UpdateCBVs, UpdateSRVs, UpdateUAVs and UpdateSamplers write
	// descriptors into a binding set range.
	UpdateCBVs(h core.Handle, first int32, cbvs []types.BindingCBV) error
	UpdateSRVs(h core.Handle, first int32, srvs []types.BindingSRV) error
	UpdateUAVs(h core.Handle, first int32, uavs []types.BindingUAV) error
	UpdateSamplers(h core.Handle, first int32, samplers []types.BindingSampler) error

	// CopyPipelineBindings copies descriptor ranges between binding sets
	// using the native descriptor copy path.
	CopyPipelineBindings(dst, src core.Handle) error

	// CompileCommandList compiles a recorded command list into the native
	// command list stored under h, inserting resource state barriers and
	// restoring every touched resource to its default state.
	CompileCommandList(h core.Handle, cmds *command.List) error

	// SubmitCommandLists submits compiled command lists in order to the
	// queue class they require.
	SubmitCommandLists(hs []core.Handle) error

	// PresentSwapChain presents the current back-buffer and advances the
	// back-buffer index.
	PresentSwapChain(h core.Handle) error

	// ResizeSwapChain drains all in-flight frames, then resizes the
	// back-buffers.
	ResizeSwapChain(h core.Handle, width, height int32) error

	// NextFrame advances the frame index, blocking while the full
	// MaxGpuFrames window is in flight, and rotates the per-frame upload
	// and descriptor allocators.
	NextFrame() error

	// SignalFence signals a fence to value from the direct queue.
	SignalFence(h core.Handle, value uint64) error

	// WaitFence blocks until the fence completed value reaches value.
	WaitFence(h core.Handle, value uint64) error

	// ReadbackBuffer copies a completed buffer range into dst.
	ReadbackBuffer(h core.Handle, offset int64, dst []byte) error

	// ReadbackTextureSubresource copies a completed texture subresource
	// into the given layout.
	ReadbackTextureSubresource(h core.Handle, subResourceIdx int32, data *types.TextureSubResourceData) error

	// Destroy tears the backend down. All resources must be destroyed
	// first.
	Destroy()
}
