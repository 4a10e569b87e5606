// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package noop is a no-op backend for testing. Every operation succeeds
// without doing GPU work: creates are bookkeeping only, compiles discard
// the stream, fences complete immediately, and readbacks return zeroes.
//
// It is the baseline other backends are diffed against: anything that
// fails on noop fails in the frontend, not in a driver.
package noop

import (
	"fmt"
	"sync"

	"github.com/gogpu/gal/command"
	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/hal"
	"github.com/gogpu/gal/types"
)

// API is the backend's registered API name.
const API = "noop"

func init() {
	hal.RegisterBackend(hal.BackendDescriptor{
		API: API,
		CreateBackend: func(params *types.SetupParams) (hal.Backend, error) {
			return New(), nil
		},
	})
}

// Backend implements hal.Backend with no-op semantics.
type Backend struct {
	mu          sync.Mutex
	initialized bool
	swapChains  map[core.Handle]*swapState
	fences      map[core.Handle]uint64
	closed      map[core.Handle]bool
}

type swapState struct {
	bufferCount int32
	bbIdx       int32
}

// New creates an uninitialized noop backend.
func New() *Backend {
	return &Backend{
		swapChains: make(map[core.Handle]*swapState),
		fences:     make(map[core.Handle]uint64),
		closed:     make(map[core.Handle]bool),
	}
}

// EnumerateAdapters lists one null adapter.
func (b *Backend) EnumerateAdapters() ([]types.AdapterInfo, error) {
	return []types.AdapterInfo{{Name: "gal noop adapter"}}, nil
}

// IsInitialized reports whether Initialize completed.
func (b *Backend) IsInitialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}

// Initialize binds the null adapter.
func (b *Backend) Initialize(adapterIdx int) error {
	if adapterIdx != 0 {
		return fmt.Errorf("%w: adapter index %d", types.ErrInvalidArgument, adapterIdx)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initialized = true
	return nil
}

// CreateSwapChain tracks the back-buffer count for Present.
func (b *Backend) CreateSwapChain(h core.Handle, desc *types.SwapChainDesc, _ string) error {
	if desc.BufferCount <= 0 {
		return types.ErrInvalidArgument
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.swapChains[h] = &swapState{bufferCount: desc.BufferCount}
	return nil
}

// CreateBuffer is a no-op.
func (b *Backend) CreateBuffer(core.Handle, *types.BufferDesc, []byte, string) error { return nil }

// CreateTexture is a no-op.
func (b *Backend) CreateTexture(core.Handle, *types.TextureDesc, []types.TextureSubResourceData, string) error {
	return nil
}

// CreateSamplerState is a no-op.
func (b *Backend) CreateSamplerState(core.Handle, *types.SamplerState, string) error { return nil }

// CreateShader is a no-op.
func (b *Backend) CreateShader(core.Handle, *types.ShaderDesc, string) error { return nil }

// CreateGraphicsPipelineState is a no-op.
func (b *Backend) CreateGraphicsPipelineState(core.Handle, *types.GraphicsPipelineStateDesc, string) error {
	return nil
}

// CreateComputePipelineState is a no-op.
func (b *Backend) CreateComputePipelineState(core.Handle, *types.ComputePipelineStateDesc, string) error {
	return nil
}

// CreatePipelineBindingSet is a no-op.
func (b *Backend) CreatePipelineBindingSet(core.Handle, *types.PipelineBindingSetDesc, string) error {
	return nil
}

// CreateDrawBindingSet is a no-op.
func (b *Backend) CreateDrawBindingSet(core.Handle, *types.DrawBindingSetDesc, string) error {
	return nil
}

// CreateFrameBindingSet is a no-op.
func (b *Backend) CreateFrameBindingSet(core.Handle, *types.FrameBindingSetDesc, string) error {
	return nil
}

// CreateCommandList is a no-op.
func (b *Backend) CreateCommandList(core.Handle, string) error { return nil }

// CreateFence starts a fence at its initial value.
func (b *Backend) CreateFence(h core.Handle, initialValue uint64, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fences[h] = initialValue
	return nil
}

// DestroyResource drops any bookkeeping for the handle.
func (b *Backend) DestroyResource(h core.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.swapChains, h)
	delete(b.fences, h)
	delete(b.closed, h)
	return nil
}

// AllocTemporaryPipelineBindingSet is a no-op.
func (b *Backend) AllocTemporaryPipelineBindingSet(core.Handle, *types.PipelineBindingSetDesc) error {
	return nil
}

// UpdateCBVs is a no-op.
func (b *Backend) UpdateCBVs(core.Handle, int32, []types.BindingCBV) error { return nil }

// UpdateSRVs is a no-op.
func (b *Backend) UpdateSRVs(core.Handle, int32, []types.BindingSRV) error { return nil }

// UpdateUAVs is a no-op.
func (b *Backend) UpdateUAVs(core.Handle, int32, []types.BindingUAV) error { return nil }

// UpdateSamplers is a no-op.
func (b *Backend) UpdateSamplers(core.Handle, int32, []types.BindingSampler) error { return nil }

// CopyPipelineBindings is a no-op.
func (b *Backend) CopyPipelineBindings(core.Handle, core.Handle) error { return nil }

// CompileCommandList discards the stream and marks the list closed.
func (b *Backend) CompileCommandList(h core.Handle, _ *command.List) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed[h] = true
	return nil
}

// SubmitCommandLists requires lists to be compiled first.
func (b *Backend) SubmitCommandLists(hs []core.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range hs {
		if !b.closed[h] {
			return fmt.Errorf("%w: command list %s is not closed", types.ErrInvalidState, h)
		}
	}
	return nil
}

// PresentSwapChain advances the back-buffer index.
func (b *Backend) PresentSwapChain(h core.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	sc, ok := b.swapChains[h]
	if !ok {
		return types.ErrInvalidArgument
	}
	sc.bbIdx = (sc.bbIdx + 1) % sc.bufferCount
	return nil
}

// ResizeSwapChain is a no-op.
func (b *Backend) ResizeSwapChain(h core.Handle, width, height int32) error {
	if width <= 0 || height <= 0 {
		return types.ErrInvalidArgument
	}
	return nil
}

// NextFrame is a no-op; the noop GPU is always caught up.
func (b *Backend) NextFrame() error { return nil }

// SignalFence completes the fence immediately.
func (b *Backend) SignalFence(h core.Handle, value uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if value > b.fences[h] {
		b.fences[h] = value
	}
	return nil
}

// WaitFence returns once the fence value has been signalled.
func (b *Backend) WaitFence(h core.Handle, value uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fences[h] < value {
		return types.ErrNotReady
	}
	return nil
}

// ReadbackBuffer zero-fills dst.
func (b *Backend) ReadbackBuffer(_ core.Handle, _ int64, dst []byte) error {
	clear(dst)
	return nil
}

// ReadbackTextureSubresource zero-fills the destination layout.
func (b *Backend) ReadbackTextureSubresource(_ core.Handle, _ int32, data *types.TextureSubResourceData) error {
	clear(data.Data)
	return nil
}

// Destroy is a no-op.
func (b *Backend) Destroy() {}

// Compile-time interface assertion.
var _ hal.Backend = (*Backend)(nil)
