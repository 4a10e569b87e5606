// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package gal

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gal/command"
	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/hal"
	"github.com/gogpu/gal/internal/thread"
	"github.com/gogpu/gal/types"
)

// pendingRelease defers a handle free until the GPU has left the frames in
// flight that may still reference it.
type pendingRelease struct {
	h     core.Handle
	frame uint64
}

// Manager is the facade over the selected backend: a scoped owner of the
// handle allocator and the backend, dispatching creation, compilation,
// submission, presentation, and frame advancement.
//
// Device loss is sticky: once the backend reports it, every subsequent
// operation fails with ErrDeviceLost until the manager is torn down.
type Manager struct {
	params  types.SetupParams
	backend hal.Backend
	handles *core.HandleAllocator

	adapters    []types.AdapterInfo
	adapterIdx  int
	initialized atomic.Bool
	lost        atomic.Bool

	// submit serialises command-list submission through one OS thread.
	submit *thread.Thread

	frameMu  sync.Mutex
	frameIdx uint64
	releases []pendingRelease
}

// New creates a manager over the backend selected by params.API (the first
// registered backend when empty). Destroy must be called to tear it down.
func New(params types.SetupParams) (*Manager, error) {
	backend, err := hal.CreateBackend(&params)
	if err != nil {
		return nil, err
	}
	return &Manager{
		params:     params,
		backend:    backend,
		handles:    core.NewHandleAllocator(),
		adapterIdx: -1,
		submit:     thread.New(),
	}, nil
}

// Destroy tears down the manager and its backend, draining queued GPU
// work first.
func (m *Manager) Destroy() {
	if m.submit != nil {
		m.submit.Stop()
	}
	if m.backend != nil {
		m.backend.Destroy()
		m.backend = nil
	}
}

// Handles exposes the handle allocator, e.g. for constructing recorders.
func (m *Manager) Handles() *core.HandleAllocator {
	return m.handles
}

// NewRecorder creates a command recorder validating against this manager's
// handles. bufferSize <= 0 selects the default arena size.
func (m *Manager) NewRecorder(bufferSize int) *command.List {
	return command.NewList(bufferSize, m.handles)
}

// EnumerateAdapters lists the backend's adapters.
func (m *Manager) EnumerateAdapters() ([]types.AdapterInfo, error) {
	if err := m.check(); err != nil {
		return nil, err
	}
	adapters, err := m.backend.EnumerateAdapters()
	if err != nil {
		return nil, m.filter(err)
	}
	m.adapters = adapters
	return adapters, nil
}

// Initialize binds the backend to an adapter.
func (m *Manager) Initialize(adapterIdx int) error {
	if err := m.check(); err != nil {
		return err
	}
	if err := m.backend.Initialize(adapterIdx); err != nil {
		return m.filter(err)
	}
	m.adapterIdx = adapterIdx
	m.initialized.Store(true)
	return nil
}

// IsInitialized reports whether an adapter is bound.
func (m *Manager) IsInitialized() bool {
	return m.initialized.Load()
}

// check gates every operation on liveness and stickiness of device loss.
func (m *Manager) check() error {
	if m.backend == nil {
		return types.ErrInvalidState
	}
	if m.lost.Load() {
		return types.ErrDeviceLost
	}
	return nil
}

// filter makes device loss sticky.
func (m *Manager) filter(err error) error {
	if errors.Is(err, types.ErrDeviceLost) {
		m.lost.Store(true)
	}
	return err
}

// create runs one backend creation under a freshly allocated handle,
// releasing the handle again when creation fails.
func (m *Manager) create(kind core.Kind, fn func(h core.Handle) error) (core.Handle, error) {
	if err := m.check(); err != nil {
		return 0, err
	}
	h := m.handles.Alloc(kind)
	if err := fn(h); err != nil {
		m.handles.Free(h)
		return 0, m.filter(err)
	}
	return h, nil
}

// CreateSwapChain creates a swap chain.
func (m *Manager) CreateSwapChain(desc types.SwapChainDesc, debugName string) (core.Handle, error) {
	return m.create(core.KindSwapChain, func(h core.Handle) error {
		return m.backend.CreateSwapChain(h, &desc, debugName)
	})
}

// CreateBuffer creates a buffer, optionally uploading initial data.
func (m *Manager) CreateBuffer(desc types.BufferDesc, initialData []byte, debugName string) (core.Handle, error) {
	return m.create(core.KindBuffer, func(h core.Handle) error {
		return m.backend.CreateBuffer(h, &desc, initialData, debugName)
	})
}

// CreateTexture creates a texture, optionally uploading one initial data
// layout per subresource.
func (m *Manager) CreateTexture(desc types.TextureDesc, initialData []types.TextureSubResourceData, debugName string) (core.Handle, error) {
	return m.create(core.KindTexture, func(h core.Handle) error {
		return m.backend.CreateTexture(h, &desc, initialData, debugName)
	})
}

// CreateSamplerState creates a sampler.
func (m *Manager) CreateSamplerState(state types.SamplerState, debugName string) (core.Handle, error) {
	return m.create(core.KindSampler, func(h core.Handle) error {
		return m.backend.CreateSamplerState(h, &state, debugName)
	})
}

// CreateShader stores opaque shader bytecode.
func (m *Manager) CreateShader(desc types.ShaderDesc, debugName string) (core.Handle, error) {
	return m.create(core.KindShader, func(h core.Handle) error {
		return m.backend.CreateShader(h, &desc, debugName)
	})
}

// CreateGraphicsPipelineState creates an immutable graphics pipeline.
func (m *Manager) CreateGraphicsPipelineState(desc types.GraphicsPipelineStateDesc, debugName string) (core.Handle, error) {
	return m.create(core.KindGraphicsPipelineState, func(h core.Handle) error {
		return m.backend.CreateGraphicsPipelineState(h, &desc, debugName)
	})
}

// CreateComputePipelineState creates an immutable compute pipeline.
func (m *Manager) CreateComputePipelineState(desc types.ComputePipelineStateDesc, debugName string) (core.Handle, error) {
	return m.create(core.KindComputePipelineState, func(h core.Handle) error {
		return m.backend.CreateComputePipelineState(h, &desc, debugName)
	})
}

// CreatePipelineBindingSet creates a persistent pipeline binding set.
func (m *Manager) CreatePipelineBindingSet(desc types.PipelineBindingSetDesc, debugName string) (core.Handle, error) {
	return m.create(core.KindPipelineBindingSet, func(h core.Handle) error {
		return m.backend.CreatePipelineBindingSet(h, &desc, debugName)
	})
}

// CreateDrawBindingSet creates a draw binding set.
func (m *Manager) CreateDrawBindingSet(desc types.DrawBindingSetDesc, debugName string) (core.Handle, error) {
	return m.create(core.KindDrawBindingSet, func(h core.Handle) error {
		return m.backend.CreateDrawBindingSet(h, &desc, debugName)
	})
}

// CreateFrameBindingSet creates a frame binding set. Binding a swap chain
// anywhere but RTV 0 fails with ErrInvalidArgument.
func (m *Manager) CreateFrameBindingSet(desc types.FrameBindingSetDesc, debugName string) (core.Handle, error) {
	return m.create(core.KindFrameBindingSet, func(h core.Handle) error {
		return m.backend.CreateFrameBindingSet(h, &desc, debugName)
	})
}

// CreateCommandList creates a native command list.
func (m *Manager) CreateCommandList(debugName string) (core.Handle, error) {
	return m.create(core.KindCommandList, func(h core.Handle) error {
		return m.backend.CreateCommandList(h, debugName)
	})
}

// CreateFence creates a fence with an initial value.
func (m *Manager) CreateFence(initialValue uint64, debugName string) (core.Handle, error) {
	return m.create(core.KindFence, func(h core.Handle) error {
		return m.backend.CreateFence(h, initialValue, debugName)
	})
}

// AllocTemporaryPipelineBindingSet allocates a frame-lifetime binding set
// from the per-frame descriptor stream. Its handle is recycled
// automatically after MaxGpuFrames frames.
func (m *Manager) AllocTemporaryPipelineBindingSet(desc types.PipelineBindingSetDesc) (core.Handle, error) {
	h, err := m.create(core.KindPipelineBindingSet, func(h core.Handle) error {
		return m.backend.AllocTemporaryPipelineBindingSet(h, &desc)
	})
	if err != nil {
		return 0, err
	}
	m.deferRelease(h)
	return h, nil
}

// DestroyResource destroys a resource. The native record and the handle
// are recycled only after the GPU has completed the frames in flight.
func (m *Manager) DestroyResource(h core.Handle) error {
	if err := m.check(); err != nil {
		return err
	}
	if !m.handles.IsValid(h) {
		return fmt.Errorf("%w: %s", types.ErrInvalidArgument, h)
	}
	if err := m.backend.DestroyResource(h); err != nil {
		return m.filter(err)
	}
	m.deferRelease(h)
	return nil
}

// deferRelease queues a handle free for frame retirement.
func (m *Manager) deferRelease(h core.Handle) {
	m.frameMu.Lock()
	defer m.frameMu.Unlock()
	m.releases = append(m.releases, pendingRelease{h: h, frame: m.frameIdx})
}

// UpdateCBVs writes constant buffer view descriptors into a binding set.
func (m *Manager) UpdateCBVs(h core.Handle, first int32, cbvs []types.BindingCBV) error {
	if err := m.checkHandle(h, core.KindPipelineBindingSet); err != nil {
		return err
	}
	return m.filter(m.backend.UpdateCBVs(h, first, cbvs))
}

// UpdateSRVs writes shader resource view descriptors into a binding set.
func (m *Manager) UpdateSRVs(h core.Handle, first int32, srvs []types.BindingSRV) error {
	if err := m.checkHandle(h, core.KindPipelineBindingSet); err != nil {
		return err
	}
	return m.filter(m.backend.UpdateSRVs(h, first, srvs))
}

// UpdateUAVs writes unordered access view descriptors into a binding set.
func (m *Manager) UpdateUAVs(h core.Handle, first int32, uavs []types.BindingUAV) error {
	if err := m.checkHandle(h, core.KindPipelineBindingSet); err != nil {
		return err
	}
	return m.filter(m.backend.UpdateUAVs(h, first, uavs))
}

// UpdateSamplers writes sampler descriptors into a binding set.
func (m *Manager) UpdateSamplers(h core.Handle, first int32, samplers []types.BindingSampler) error {
	if err := m.checkHandle(h, core.KindPipelineBindingSet); err != nil {
		return err
	}
	return m.filter(m.backend.UpdateSamplers(h, first, samplers))
}

// CopyPipelineBindings copies descriptor ranges between binding sets.
func (m *Manager) CopyPipelineBindings(dst, src core.Handle) error {
	if err := m.checkHandle(dst, core.KindPipelineBindingSet); err != nil {
		return err
	}
	if err := m.checkHandle(src, core.KindPipelineBindingSet); err != nil {
		return err
	}
	return m.filter(m.backend.CopyPipelineBindings(dst, src))
}

// CompileCommandList compiles a recorded command list into the native list
// stored under h.
func (m *Manager) CompileCommandList(h core.Handle, cmds *command.List) error {
	if err := m.checkHandle(h, core.KindCommandList); err != nil {
		return err
	}
	return m.filter(m.backend.CompileCommandList(h, cmds))
}

// SubmitCommandList submits one compiled command list.
func (m *Manager) SubmitCommandList(h core.Handle) error {
	return m.SubmitCommandLists([]core.Handle{h})
}

// SubmitCommandLists submits compiled command lists in order.
func (m *Manager) SubmitCommandLists(hs []core.Handle) error {
	if err := m.check(); err != nil {
		return err
	}
	for _, h := range hs {
		if !m.handles.IsValidKind(h, core.KindCommandList) {
			return fmt.Errorf("%w: %s", types.ErrInvalidArgument, h)
		}
	}
	// Submission is serialised through one pinned thread so concurrent
	// recorders keep strict FIFO order on the direct queue.
	err, _ := m.submit.Call(func() any {
		return m.backend.SubmitCommandLists(hs)
	}).(error)
	return m.filter(err)
}

// PresentSwapChain presents and advances the back-buffer index.
func (m *Manager) PresentSwapChain(h core.Handle) error {
	if err := m.checkHandle(h, core.KindSwapChain); err != nil {
		return err
	}
	return m.filter(m.backend.PresentSwapChain(h))
}

// ResizeSwapChain drains in-flight frames and resizes the back-buffers.
func (m *Manager) ResizeSwapChain(h core.Handle, width, height int32) error {
	if err := m.checkHandle(h, core.KindSwapChain); err != nil {
		return err
	}
	return m.filter(m.backend.ResizeSwapChain(h, width, height))
}

// SignalFence signals a fence to value through the direct queue.
func (m *Manager) SignalFence(h core.Handle, value uint64) error {
	if err := m.checkHandle(h, core.KindFence); err != nil {
		return err
	}
	return m.filter(m.backend.SignalFence(h, value))
}

// WaitFence blocks until the fence reaches value.
func (m *Manager) WaitFence(h core.Handle, value uint64) error {
	if err := m.checkHandle(h, core.KindFence); err != nil {
		return err
	}
	return m.filter(m.backend.WaitFence(h, value))
}

// ReadbackBuffer copies a completed buffer range into dst.
func (m *Manager) ReadbackBuffer(h core.Handle, offset int64, dst []byte) error {
	if err := m.checkHandle(h, core.KindBuffer); err != nil {
		return err
	}
	return m.filter(m.backend.ReadbackBuffer(h, offset, dst))
}

// ReadbackTextureSubresource copies a completed texture subresource into
// the caller's layout.
func (m *Manager) ReadbackTextureSubresource(h core.Handle, subResourceIdx int32, data *types.TextureSubResourceData) error {
	if err := m.checkHandle(h, core.KindTexture); err != nil {
		return err
	}
	return m.filter(m.backend.ReadbackTextureSubresource(h, subResourceIdx, data))
}

// NextFrame advances the frame, blocking while the in-flight window is
// full, and recycles handles freed MaxGpuFrames frames ago.
func (m *Manager) NextFrame() error {
	if err := m.check(); err != nil {
		return err
	}
	if err := m.backend.NextFrame(); err != nil {
		return m.filter(err)
	}

	m.frameMu.Lock()
	m.frameIdx++
	if m.frameIdx >= types.MaxGpuFrames {
		safe := m.frameIdx - types.MaxGpuFrames
		kept := m.releases[:0]
		for _, r := range m.releases {
			if r.frame > safe {
				kept = append(kept, r)
			} else {
				m.handles.Free(r.h)
			}
		}
		m.releases = kept
	}
	m.frameMu.Unlock()
	return nil
}

// checkHandle gates an operation on liveness plus handle validity.
func (m *Manager) checkHandle(h core.Handle, kind core.Kind) error {
	if err := m.check(); err != nil {
		return err
	}
	if !m.handles.IsValidKind(h, kind) {
		return fmt.Errorf("%w: %s", types.ErrInvalidArgument, h)
	}
	return nil
}
