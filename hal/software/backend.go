// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"

	"github.com/gogpu/gal/command"
	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/hal"
	"github.com/gogpu/gal/types"
)

// Backend is the in-tree software implementation of the hal.Backend
// contract. Resources are memory-backed, the command-list compiler runs the
// full state-transition machinery, and GPU progress is modelled by a
// deterministic timeline drained on fence waits.
type Backend struct {
	params types.SetupParams
	device *Device

	buffers             *core.Pool[buffer]
	textures            *core.Pool[texture]
	swapChains          *core.Pool[swapChain]
	samplers            *core.Pool[types.SamplerState]
	shaders             *core.Pool[shader]
	graphicsPSOs        *core.Pool[graphicsPipelineState]
	computePSOs         *core.Pool[computePipelineState]
	pipelineBindingSets *core.Pool[pipelineBindingSet]
	drawBindingSets     *core.Pool[drawBindingSet]
	frameBindingSets    *core.Pool[frameBindingSet]
	commandLists        *core.Pool[commandList]
	fences              *core.Pool[fence]
}

// New creates an uninitialized software backend.
func New(params *types.SetupParams) *Backend {
	return &Backend{
		params:              *params,
		buffers:             core.NewPool[buffer](),
		textures:            core.NewPool[texture](),
		swapChains:          core.NewPool[swapChain](),
		samplers:            core.NewPool[types.SamplerState](),
		shaders:             core.NewPool[shader](),
		graphicsPSOs:        core.NewPool[graphicsPipelineState](),
		computePSOs:         core.NewPool[computePipelineState](),
		pipelineBindingSets: core.NewPool[pipelineBindingSet](),
		drawBindingSets:     core.NewPool[drawBindingSet](),
		frameBindingSets:    core.NewPool[frameBindingSet](),
		commandLists:        core.NewPool[commandList](),
		fences:              core.NewPool[fence](),
	}
}

// softwareAdapter is the single adapter the software backend exposes.
var softwareAdapter = types.AdapterInfo{
	Name:                 "gal software rasterizer",
	VendorID:             0x1414,
	DeviceID:             0x008c,
	DedicatedVideoMemory: 0,
	SharedSystemMemory:   1 << 30,
}

// EnumerateAdapters lists the software adapter.
func (b *Backend) EnumerateAdapters() ([]types.AdapterInfo, error) {
	return []types.AdapterInfo{softwareAdapter}, nil
}

// IsInitialized reports whether Initialize completed.
func (b *Backend) IsInitialized() bool {
	return b.device != nil
}

// Initialize binds the backend to an adapter and builds the device.
func (b *Backend) Initialize(adapterIdx int) error {
	if adapterIdx != 0 {
		return fmt.Errorf("%w: adapter index %d", types.ErrInvalidArgument, adapterIdx)
	}
	if b.device != nil {
		return types.ErrInvalidState
	}
	b.device = newDevice(softwareAdapter, b.params.DebugFlags)
	b.device.destroyFn = b.destroyNow
	return nil
}

// Device exposes the device for tests and tooling.
func (b *Backend) Device() *Device {
	return b.device
}

func (b *Backend) initialized() error {
	if b.device == nil {
		return hal.ErrNotInitialized
	}
	return nil
}

// CreateSwapChain creates a swap chain and its back-buffers.
func (b *Backend) CreateSwapChain(h core.Handle, desc *types.SwapChainDesc, debugName string) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.swapChains.Write(h)
	defer guard.Release()
	if err := b.device.initSwapChain(guard.Get(), h, desc); err != nil {
		*guard.Get() = swapChain{}
		return err
	}
	hal.Logger().Debug("software: created swap chain", "name", debugName,
		"width", desc.Width, "height", desc.Height, "buffers", desc.BufferCount)
	return nil
}

// CreateBuffer creates a memory-backed buffer.
func (b *Backend) CreateBuffer(h core.Handle, desc *types.BufferDesc, initialData []byte, debugName string) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.buffers.Write(h)
	defer guard.Release()
	if err := b.device.initBuffer(guard.Get(), h, desc, initialData); err != nil {
		*guard.Get() = buffer{}
		return err
	}
	hal.Logger().Debug("software: created buffer", "name", debugName, "size", desc.Size)
	return nil
}

// CreateTexture creates a memory-backed texture.
func (b *Backend) CreateTexture(h core.Handle, desc *types.TextureDesc, initialData []types.TextureSubResourceData, debugName string) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.textures.Write(h)
	defer guard.Release()
	if err := b.device.initTexture(guard.Get(), h, desc, initialData); err != nil {
		*guard.Get() = texture{}
		return err
	}
	hal.Logger().Debug("software: created texture", "name", debugName,
		"width", desc.Width, "height", desc.Height, "format", desc.Format)
	return nil
}

// CreateSamplerState stores a sampler record.
func (b *Backend) CreateSamplerState(h core.Handle, state *types.SamplerState, debugName string) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.samplers.Write(h)
	defer guard.Release()
	*guard.Get() = *state
	return nil
}

// CreateShader stores an opaque bytecode blob. The blob is copied; the
// caller's slice is not retained.
func (b *Backend) CreateShader(h core.Handle, desc *types.ShaderDesc, debugName string) error {
	if err := b.initialized(); err != nil {
		return err
	}
	if len(desc.Data) == 0 {
		return fmt.Errorf("%w: empty shader bytecode", types.ErrInvalidArgument)
	}
	guard := b.shaders.Write(h)
	defer guard.Release()
	code := make([]byte, len(desc.Data))
	copy(code, desc.Data)
	*guard.Get() = shader{byteCode: code}
	return nil
}

// CreateGraphicsPipelineState captures shader bytecode and fixed-function
// state into an immutable pipeline.
func (b *Backend) CreateGraphicsPipelineState(h core.Handle, desc *types.GraphicsPipelineStateDesc, debugName string) error {
	if err := b.initialized(); err != nil {
		return err
	}
	if desc.NumRTs < 0 || desc.NumRTs > types.MaxBoundRTVs {
		return fmt.Errorf("%w: NumRTs out of range", types.ErrInvalidArgument)
	}
	if desc.NumVertexElements < 0 || desc.NumVertexElements > types.MaxVertexElements {
		return fmt.Errorf("%w: NumVertexElements out of range", types.ErrInvalidArgument)
	}

	pso := graphicsPipelineState{
		rootSignature: rootSignatureGraphics,
		desc:          *desc,
	}
	for stage, sh := range desc.Shaders {
		if sh.IsZero() {
			continue
		}
		code, err := b.shaderByteCode(sh)
		if err != nil {
			return err
		}
		pso.shaders[stage] = code
	}
	if pso.shaders[types.ShaderTypeVertex] == nil {
		return fmt.Errorf("%w: graphics pipeline requires a vertex shader", types.ErrInvalidArgument)
	}

	guard := b.graphicsPSOs.Write(h)
	defer guard.Release()
	*guard.Get() = pso
	return nil
}

// CreateComputePipelineState captures a compute shader into an immutable
// pipeline.
func (b *Backend) CreateComputePipelineState(h core.Handle, desc *types.ComputePipelineStateDesc, debugName string) error {
	if err := b.initialized(); err != nil {
		return err
	}
	code, err := b.shaderByteCode(desc.Shader)
	if err != nil {
		return err
	}
	guard := b.computePSOs.Write(h)
	defer guard.Release()
	*guard.Get() = computePipelineState{
		rootSignature: rootSignatureCompute,
		desc:          *desc,
		shader:        code,
	}
	return nil
}

func (b *Backend) shaderByteCode(h core.Handle) ([]byte, error) {
	if h.Kind() != core.KindShader {
		return nil, fmt.Errorf("%w: %s is not a shader", types.ErrInvalidArgument, h)
	}
	guard := b.shaders.Read(h)
	defer guard.Release()
	if guard.Get().byteCode == nil {
		return nil, fmt.Errorf("%w: shader %s has no bytecode", types.ErrInvalidArgument, h)
	}
	return guard.Get().byteCode, nil
}

// CreatePipelineBindingSet allocates the four descriptor ranges of a
// binding set from the persistent heap allocators.
func (b *Backend) CreatePipelineBindingSet(h core.Handle, desc *types.PipelineBindingSetDesc, debugName string) error {
	if err := b.initialized(); err != nil {
		return err
	}
	pbs, err := b.buildPipelineBindingSet(desc, false)
	if err != nil {
		return err
	}
	guard := b.pipelineBindingSets.Write(h)
	defer guard.Release()
	*guard.Get() = pbs
	return nil
}

// AllocTemporaryPipelineBindingSet allocates a binding set from the
// per-frame linear descriptor stream. Tier-1 padding applies: every class
// table is padded to its full binding capacity.
func (b *Backend) AllocTemporaryPipelineBindingSet(h core.Handle, desc *types.PipelineBindingSetDesc) error {
	if err := b.initialized(); err != nil {
		return err
	}
	pbs, err := b.buildPipelineBindingSet(desc, true)
	if err != nil {
		return err
	}
	guard := b.pipelineBindingSets.Write(h)
	defer guard.Release()
	*guard.Get() = pbs
	return nil
}

func (b *Backend) buildPipelineBindingSet(desc *types.PipelineBindingSetDesc, temporary bool) (pipelineBindingSet, error) {
	if desc.NumCBVs < 0 || desc.NumCBVs > types.MaxCBVBindings ||
		desc.NumSRVs < 0 || desc.NumSRVs > types.MaxSRVBindings ||
		desc.NumUAVs < 0 || desc.NumUAVs > types.MaxUAVBindings ||
		desc.NumSamplers < 0 || desc.NumSamplers > types.MaxSamplerBindings {
		return pipelineBindingSet{}, fmt.Errorf("%w: binding counts exceed capacity", types.ErrInvalidArgument)
	}

	pbs := pipelineBindingSet{
		pipelineState:  desc.PipelineState,
		shaderVisible:  desc.ShaderVisible,
		temporary:      temporary,
		cbvTransitions: make([]subresourceRange, desc.NumCBVs),
		srvTransitions: make([]subresourceRange, desc.NumSRVs),
		uavTransitions: make([]subresourceRange, desc.NumUAVs),
	}

	switch desc.PipelineState.Kind() {
	case core.KindGraphicsPipelineState:
		pbs.rootSignature = rootSignatureGraphics
	case core.KindComputePipelineState:
		pbs.rootSignature = rootSignatureCompute
	case core.KindInvalid:
		pbs.rootSignature = rootSignatureGraphics
	default:
		return pipelineBindingSet{}, fmt.Errorf("%w: pipelineState is not a pipeline", types.ErrInvalidArgument)
	}

	var err error
	if temporary {
		frame := b.device.currentFrame()
		if pbs.cbvs, err = frame.cbvSub.Alloc(desc.NumCBVs, types.MaxCBVBindings); err != nil {
			return pipelineBindingSet{}, err
		}
		if pbs.srvs, err = frame.srvSub.Alloc(desc.NumSRVs, types.MaxSRVBindings); err != nil {
			return pipelineBindingSet{}, err
		}
		if pbs.uavs, err = frame.uavSub.Alloc(desc.NumUAVs, types.MaxUAVBindings); err != nil {
			return pipelineBindingSet{}, err
		}
		if pbs.samplers, err = frame.samplerSub.Alloc(desc.NumSamplers, types.MaxSamplerBindings); err != nil {
			return pipelineBindingSet{}, err
		}
		return pbs, nil
	}

	if pbs.cbvs, err = b.device.viewHeap.Alloc(desc.NumCBVs); err != nil {
		return pipelineBindingSet{}, err
	}
	if pbs.srvs, err = b.device.viewHeap.Alloc(desc.NumSRVs); err != nil {
		b.device.viewHeap.Free(pbs.cbvs)
		return pipelineBindingSet{}, err
	}
	if pbs.uavs, err = b.device.viewHeap.Alloc(desc.NumUAVs); err != nil {
		b.device.viewHeap.Free(pbs.cbvs)
		b.device.viewHeap.Free(pbs.srvs)
		return pipelineBindingSet{}, err
	}
	if pbs.samplers, err = b.device.samplerHeap.Alloc(desc.NumSamplers); err != nil {
		b.device.viewHeap.Free(pbs.cbvs)
		b.device.viewHeap.Free(pbs.srvs)
		b.device.viewHeap.Free(pbs.uavs)
		return pipelineBindingSet{}, err
	}
	return pbs, nil
}

// CreateDrawBindingSet captures input-assembler bindings with resolved
// resource pointers.
func (b *Backend) CreateDrawBindingSet(h core.Handle, desc *types.DrawBindingSetDesc, debugName string) error {
	if err := b.initialized(); err != nil {
		return err
	}

	dbs := drawBindingSet{desc: *desc}
	for i := range desc.VBs {
		vb := &desc.VBs[i]
		if vb.Resource.IsZero() {
			continue
		}
		res, err := b.resolveResource(vb.Resource)
		if err != nil {
			return err
		}
		dbs.vbResources[i] = res
	}
	if !desc.IB.Resource.IsZero() {
		if desc.IB.Stride != 2 && desc.IB.Stride != 4 {
			return fmt.Errorf("%w: index stride must be 2 or 4", types.ErrInvalidArgument)
		}
		res, err := b.resolveResource(desc.IB.Resource)
		if err != nil {
			return err
		}
		dbs.ibResource = res
	}

	guard := b.drawBindingSets.Write(h)
	defer guard.Release()
	*guard.Get() = dbs
	return nil
}

// CreateFrameBindingSet captures output-merger bindings. Swap chains may
// only be bound at RTV 0; the set then holds one RTV group per back-buffer.
func (b *Backend) CreateFrameBindingSet(h core.Handle, desc *types.FrameBindingSetDesc, debugName string) error {
	if err := b.initialized(); err != nil {
		return err
	}

	fbs := frameBindingSet{desc: *desc, numBuffers: 1}

	// Count contiguous bound RTVs and reject swap chains beyond slot 0.
	for i := range desc.RTVs {
		rtv := &desc.RTVs[i]
		if rtv.Resource.IsZero() {
			break
		}
		if rtv.Resource.Kind() == core.KindSwapChain && i != 0 {
			return fmt.Errorf("%w: swap chain may only be bound at RTV 0", types.ErrInvalidArgument)
		}
		fbs.numRTs++
	}

	if fbs.numRTs > 0 && desc.RTVs[0].Resource.Kind() == core.KindSwapChain {
		scGuard := b.swapChains.Read(desc.RTVs[0].Resource)
		sc := scGuard.Get()
		if len(sc.textures) == 0 {
			scGuard.Release()
			return fmt.Errorf("%w: swap chain has no back-buffers", types.ErrInvalidArgument)
		}
		fbs.swapChain = sc
		fbs.numBuffers = int32(len(sc.textures))
		scGuard.Release()
	}

	fbs.rtvRanges = make([][]subresourceRange, fbs.numBuffers)
	for bb := int32(0); bb < fbs.numBuffers; bb++ {
		fbs.rtvRanges[bb] = make([]subresourceRange, fbs.numRTs)
		for i := int32(0); i < fbs.numRTs; i++ {
			rtv := &desc.RTVs[i]
			var res *resource
			var tex *texture
			if i == 0 && fbs.swapChain != nil {
				tex = fbs.swapChain.textures[bb]
				res = &tex.resource
			} else {
				ref, err := b.resolveStorage(rtv.Resource)
				if err != nil {
					return err
				}
				res, tex = ref.res, ref.tex
			}
			fbs.rtvRanges[bb][i] = subresourceRange{
				res:         res,
				tex:         tex,
				firstSubRsc: rtv.MipSlice,
				numSubRsc:   1,
				state:       types.StateRenderTarget,
			}
		}
	}

	if !desc.DSV.Resource.IsZero() {
		ref, err := b.resolveStorage(desc.DSV.Resource)
		if err != nil {
			return err
		}
		state := types.StateDepthWrite
		if desc.DSV.Flags.Contains(types.DSVReadOnlyDepth) {
			state = types.StateDepthRead
		}
		fbs.dsvRange = subresourceRange{
			res:         ref.res,
			tex:         ref.tex,
			firstSubRsc: desc.DSV.MipSlice,
			numSubRsc:   1,
			state:       state,
		}
	}

	// RTV and DSV descriptors live in the CPU-only heaps.
	var err error
	if fbs.rtvs, err = b.device.rtvHeap.Alloc(fbs.numRTs * fbs.numBuffers); err != nil {
		return err
	}
	if fbs.dsvRange.valid() {
		if fbs.dsv, err = b.device.dsvHeap.Alloc(1); err != nil {
			b.device.rtvHeap.Free(fbs.rtvs)
			return err
		}
	}

	guard := b.frameBindingSets.Write(h)
	defer guard.Release()
	*guard.Get() = fbs
	return nil
}

// CreateCommandList creates an idle native command list.
func (b *Backend) CreateCommandList(h core.Handle, debugName string) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.commandLists.Write(h)
	defer guard.Release()
	*guard.Get() = commandList{state: listIdle}
	return nil
}

// CreateFence creates a fence.
func (b *Backend) CreateFence(h core.Handle, initialValue uint64, debugName string) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.fences.Write(h)
	defer guard.Release()
	*guard.Get() = fence{state: newFenceState(initialValue)}
	return nil
}

// storageRef bundles the state-tracking header of a resource with its
// backing storage. Pool blocks are stable, so the pointers stay valid for
// the resource's lifetime.
type storageRef struct {
	res *resource
	buf *buffer
	tex *texture
	sc  *swapChain
}

// resolveStorage resolves a buffer, texture, or swap chain handle. For a
// swap chain the current back-buffer is returned.
func (b *Backend) resolveStorage(h core.Handle) (storageRef, error) {
	switch h.Kind() {
	case core.KindBuffer:
		guard := b.buffers.Read(h)
		defer guard.Release()
		buf := guard.Get()
		if buf.data == nil {
			return storageRef{}, fmt.Errorf("%w: %s", types.ErrInvalidArgument, h)
		}
		return storageRef{res: &buf.resource, buf: buf}, nil
	case core.KindTexture:
		guard := b.textures.Read(h)
		defer guard.Release()
		tex := guard.Get()
		if tex.subData == nil {
			return storageRef{}, fmt.Errorf("%w: %s", types.ErrInvalidArgument, h)
		}
		return storageRef{res: &tex.resource, tex: tex}, nil
	case core.KindSwapChain:
		guard := b.swapChains.Read(h)
		defer guard.Release()
		sc := guard.Get()
		if len(sc.textures) == 0 {
			return storageRef{}, fmt.Errorf("%w: %s", types.ErrInvalidArgument, h)
		}
		bb := sc.textures[sc.bbIdx]
		return storageRef{res: &bb.resource, tex: bb, sc: sc}, nil
	default:
		return storageRef{}, fmt.Errorf("%w: %s is not a GPU memory resource", types.ErrInvalidArgument, h)
	}
}

// resolveResource returns just the state-tracking header.
func (b *Backend) resolveResource(h core.Handle) (*resource, error) {
	ref, err := b.resolveStorage(h)
	if err != nil {
		return nil, err
	}
	return ref.res, nil
}

// UpdateCBVs writes constant buffer view descriptors.
func (b *Backend) UpdateCBVs(h core.Handle, first int32, cbvs []types.BindingCBV) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.pipelineBindingSets.Write(h)
	defer guard.Release()
	pbs := guard.Get()
	if first < 0 || int(first)+len(cbvs) > int(pbs.cbvs.size) {
		return fmt.Errorf("%w: CBV range out of bounds", types.ErrInvalidArgument)
	}

	for i := range cbvs {
		res, err := b.resolveResource(cbvs[i].Resource)
		if err != nil {
			return err
		}
		*pbs.cbvs.at(first + int32(i)) = descriptor{
			subType:     descriptorCBV,
			resource:    cbvs[i].Resource,
			offset:      cbvs[i].Offset,
			size:        cbvs[i].Size,
			firstSubRsc: 0,
			numSubRsc:   res.numSubResources,
		}
		pbs.cbvTransitions[first+int32(i)] = subresourceRange{
			res:         res,
			firstSubRsc: 0,
			numSubRsc:   res.numSubResources,
			state:       types.StateVertexAndConstantBuffer,
		}
	}
	return nil
}

// UpdateSRVs writes shader resource view descriptors.
func (b *Backend) UpdateSRVs(h core.Handle, first int32, srvs []types.BindingSRV) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.pipelineBindingSets.Write(h)
	defer guard.Release()
	pbs := guard.Get()
	if first < 0 || int(first)+len(srvs) > int(pbs.srvs.size) {
		return fmt.Errorf("%w: SRV range out of bounds", types.ErrInvalidArgument)
	}

	for i := range srvs {
		srv := &srvs[i]
		res, err := b.resolveResource(srv.Resource)
		if err != nil {
			return err
		}
		firstSub, numSub := srvSubRange(srv, res)
		*pbs.srvs.at(first + int32(i)) = descriptor{
			subType:     descriptorSRV,
			resource:    srv.Resource,
			firstSubRsc: firstSub,
			numSubRsc:   numSub,
		}
		pbs.srvTransitions[first+int32(i)] = subresourceRange{
			res:          res,
			firstSubRsc:  firstSub,
			numSubRsc:    numSub,
			state:        types.StateShaderResource,
			pixelVisible: srv.PixelVisible,
		}
	}
	return nil
}

// srvSubRange computes the subresource range an SRV covers.
func srvSubRange(srv *types.BindingSRV, res *resource) (first, num int32) {
	num = srv.MipLevels
	if num <= 0 {
		num = res.numSubResources - srv.MostDetailedMip
	}
	if num <= 0 {
		num = res.numSubResources
		return 0, num
	}
	return srv.MostDetailedMip, num
}

// UpdateUAVs writes unordered access view descriptors.
func (b *Backend) UpdateUAVs(h core.Handle, first int32, uavs []types.BindingUAV) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.pipelineBindingSets.Write(h)
	defer guard.Release()
	pbs := guard.Get()
	if first < 0 || int(first)+len(uavs) > int(pbs.uavs.size) {
		return fmt.Errorf("%w: UAV range out of bounds", types.ErrInvalidArgument)
	}

	for i := range uavs {
		uav := &uavs[i]
		ref, err := b.resolveStorage(uav.Resource)
		if err != nil {
			return err
		}
		*pbs.uavs.at(first + int32(i)) = descriptor{
			subType:     descriptorUAV,
			resource:    uav.Resource,
			firstSubRsc: uav.MipSlice,
			numSubRsc:   1,
		}
		pbs.uavTransitions[first+int32(i)] = subresourceRange{
			res:         ref.res,
			buf:         ref.buf,
			tex:         ref.tex,
			firstSubRsc: uav.MipSlice,
			numSubRsc:   1,
			state:       types.StateUnorderedAccess,
		}
	}
	return nil
}

// UpdateSamplers writes sampler descriptors.
func (b *Backend) UpdateSamplers(h core.Handle, first int32, samplers []types.BindingSampler) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.pipelineBindingSets.Write(h)
	defer guard.Release()
	pbs := guard.Get()
	if first < 0 || int(first)+len(samplers) > int(pbs.samplers.size) {
		return fmt.Errorf("%w: sampler range out of bounds", types.ErrInvalidArgument)
	}

	for i := range samplers {
		s := &samplers[i]
		if s.Resource.Kind() != core.KindSampler {
			return fmt.Errorf("%w: %s is not a sampler", types.ErrInvalidArgument, s.Resource)
		}
		stateGuard := b.samplers.Read(s.Resource)
		state := *stateGuard.Get()
		stateGuard.Release()
		*pbs.samplers.at(first + int32(i)) = descriptor{
			subType:  descriptorSampler,
			resource: s.Resource,
			sampler:  state,
		}
	}
	return nil
}

// CopyPipelineBindings copies all four descriptor ranges (and their cached
// transitions) from src into dst using the descriptor copy path.
func (b *Backend) CopyPipelineBindings(dst, src core.Handle) error {
	if err := b.initialized(); err != nil {
		return err
	}
	if dst == src {
		return fmt.Errorf("%w: source and destination binding sets must differ", types.ErrInvalidArgument)
	}
	srcGuard := b.pipelineBindingSets.Read(src)
	defer srcGuard.Release()
	dstGuard := b.pipelineBindingSets.Write(dst)
	defer dstGuard.Release()

	s, d := srcGuard.Get(), dstGuard.Get()
	copyDescriptorRange(&d.cbvs, &s.cbvs)
	copyDescriptorRange(&d.srvs, &s.srvs)
	copyDescriptorRange(&d.uavs, &s.uavs)
	copyDescriptorRange(&d.samplers, &s.samplers)
	copy(d.cbvTransitions, s.cbvTransitions)
	copy(d.srvTransitions, s.srvTransitions)
	copy(d.uavTransitions, s.uavTransitions)
	return nil
}

func copyDescriptorRange(dst, src *descriptorAllocation) {
	if !dst.valid() || !src.valid() {
		return
	}
	n := dst.size
	if src.size < n {
		n = src.size
	}
	copy(dst.heap.descriptors[dst.offset:dst.offset+n],
		src.heap.descriptors[src.offset:src.offset+n])
}

// CompileCommandList compiles a recorded command list into the native list
// stored under h.
func (b *Backend) CompileCommandList(h core.Handle, cmds *command.List) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.commandLists.Write(h)
	defer guard.Release()

	ctx := compileContext{backend: b, device: b.device, out: guard.Get()}
	return ctx.compile(cmds)
}

// SubmitCommandLists submits compiled lists in order. The queue is chosen
// by the recorded queue class; graphics work is serialised through the
// direct queue.
func (b *Backend) SubmitCommandLists(hs []core.Handle) error {
	if err := b.initialized(); err != nil {
		return err
	}

	for _, h := range hs {
		guard := b.commandLists.Write(h)
		cl := guard.Get()
		if cl.state != listClosed {
			guard.Release()
			return fmt.Errorf("%w: command list %s is not closed", types.ErrInvalidState, h)
		}

		var q *queue
		switch cl.queueType.Class() {
		case command.QueueCopy:
			q = b.device.copyQueue
		case command.QueueCompute:
			q = b.device.asyncComputeQueue
		default:
			q = b.device.directQueue
		}
		if !q.accepts(cl.queueType) {
			guard.Release()
			return hal.ErrQueueClass
		}

		q.timeline.submit(cl.ops)
		cl.state = listSubmitted
		guard.Release()
	}
	return nil
}

// PresentSwapChain advances the back-buffer index.
func (b *Backend) PresentSwapChain(h core.Handle) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.swapChains.Write(h)
	defer guard.Release()
	sc := guard.Get()
	if len(sc.textures) == 0 {
		return fmt.Errorf("%w: %s", types.ErrInvalidArgument, h)
	}
	sc.bbIdx = (sc.bbIdx + 1) % int32(len(sc.textures))
	return nil
}

// ResizeSwapChain drains in-flight frames and resizes the back-buffers.
func (b *Backend) ResizeSwapChain(h core.Handle, width, height int32) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.swapChains.Write(h)
	defer guard.Release()
	return b.device.resizeSwapChain(guard.Get(), width, height)
}

// NextFrame rotates the frame window.
func (b *Backend) NextFrame() error {
	if err := b.initialized(); err != nil {
		return err
	}
	b.device.NextFrame()
	return nil
}

// SignalFence signals the fence from the direct queue.
func (b *Backend) SignalFence(h core.Handle, value uint64) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.fences.Read(h)
	f := guard.Get().state
	guard.Release()
	if f == nil {
		return fmt.Errorf("%w: %s", types.ErrInvalidArgument, h)
	}
	b.device.directQueue.timeline.signal(f, value)
	return nil
}

// WaitFence blocks until the fence reaches value.
func (b *Backend) WaitFence(h core.Handle, value uint64) error {
	if err := b.initialized(); err != nil {
		return err
	}
	guard := b.fences.Read(h)
	f := guard.Get().state
	guard.Release()
	if f == nil {
		return fmt.Errorf("%w: %s", types.ErrInvalidArgument, h)
	}
	b.device.timeline.waitFence(f, value)
	return nil
}

// ReadbackBuffer copies a completed buffer range into dst.
func (b *Backend) ReadbackBuffer(h core.Handle, offset int64, dst []byte) error {
	if err := b.initialized(); err != nil {
		return err
	}
	b.device.flush()

	guard := b.buffers.Read(h)
	defer guard.Release()
	buf := guard.Get()
	if buf.data == nil {
		return fmt.Errorf("%w: %s", types.ErrInvalidArgument, h)
	}
	if offset < 0 || offset+int64(len(dst)) > int64(len(buf.data)) {
		return fmt.Errorf("%w: readback range out of bounds", types.ErrInvalidArgument)
	}
	copy(dst, buf.data[offset:])
	return nil
}

// ReadbackTextureSubresource copies a completed texture subresource into
// the caller's layout, repitching rows as needed.
func (b *Backend) ReadbackTextureSubresource(h core.Handle, subResourceIdx int32, data *types.TextureSubResourceData) error {
	if err := b.initialized(); err != nil {
		return err
	}
	b.device.flush()

	guard := b.textures.Read(h)
	defer guard.Release()
	tex := guard.Get()
	if tex.subData == nil || subResourceIdx < 0 || subResourceIdx >= tex.numSubResources {
		return fmt.Errorf("%w: invalid subresource", types.ErrInvalidArgument)
	}

	_, hgt, dep := tex.subResourceDims(subResourceIdx)
	info := types.FormatInfo(tex.desc.Format)
	rows := (hgt + info.BlockH - 1) / info.BlockH
	dstFp := types.Footprint{RowPitch: data.RowPitch, SlicePitch: data.SlicePitch}
	return types.CopyTextureData(data.Data, dstFp, tex.subData[subResourceIdx], tex.footprints[subResourceIdx], rows, dep)
}

// DestroyResource releases descriptor allocations immediately and defers
// the record teardown until the GPU has left the frames in flight.
func (b *Backend) DestroyResource(h core.Handle) error {
	if err := b.initialized(); err != nil {
		return err
	}

	switch h.Kind() {
	case core.KindPipelineBindingSet:
		guard := b.pipelineBindingSets.Write(h)
		pbs := guard.Get()
		if pbs.temporary {
			guard.Release()
			return fmt.Errorf("%w: temporary binding sets are frame-owned", types.ErrInvalidArgument)
		}
		b.device.viewHeap.Free(pbs.cbvs)
		b.device.viewHeap.Free(pbs.srvs)
		b.device.viewHeap.Free(pbs.uavs)
		b.device.samplerHeap.Free(pbs.samplers)
		guard.Release()
	case core.KindFrameBindingSet:
		guard := b.frameBindingSets.Write(h)
		fbs := guard.Get()
		b.device.rtvHeap.Free(fbs.rtvs)
		b.device.dsvHeap.Free(fbs.dsv)
		guard.Release()
	}

	b.device.deferDestroy(h)
	return nil
}

// destroyNow zeroes the record of a retired handle.
func (b *Backend) destroyNow(h core.Handle) {
	switch h.Kind() {
	case core.KindSwapChain:
		guard := b.swapChains.Write(h)
		*guard.Get() = swapChain{}
		guard.Release()
	case core.KindBuffer:
		guard := b.buffers.Write(h)
		*guard.Get() = buffer{}
		guard.Release()
	case core.KindTexture:
		guard := b.textures.Write(h)
		*guard.Get() = texture{}
		guard.Release()
	case core.KindSampler:
		guard := b.samplers.Write(h)
		*guard.Get() = types.SamplerState{}
		guard.Release()
	case core.KindShader:
		guard := b.shaders.Write(h)
		*guard.Get() = shader{}
		guard.Release()
	case core.KindGraphicsPipelineState:
		guard := b.graphicsPSOs.Write(h)
		*guard.Get() = graphicsPipelineState{}
		guard.Release()
	case core.KindComputePipelineState:
		guard := b.computePSOs.Write(h)
		*guard.Get() = computePipelineState{}
		guard.Release()
	case core.KindPipelineBindingSet:
		guard := b.pipelineBindingSets.Write(h)
		*guard.Get() = pipelineBindingSet{}
		guard.Release()
	case core.KindDrawBindingSet:
		guard := b.drawBindingSets.Write(h)
		*guard.Get() = drawBindingSet{}
		guard.Release()
	case core.KindFrameBindingSet:
		guard := b.frameBindingSets.Write(h)
		*guard.Get() = frameBindingSet{}
		guard.Release()
	case core.KindCommandList:
		guard := b.commandLists.Write(h)
		*guard.Get() = commandList{}
		guard.Release()
	case core.KindFence:
		guard := b.fences.Write(h)
		*guard.Get() = fence{}
		guard.Release()
	}
}

// Destroy tears the backend down, draining any queued work.
func (b *Backend) Destroy() {
	if b.device != nil {
		b.device.flush()
		b.device = nil
	}
}

// Compile-time interface assertion.
var _ hal.Backend = (*Backend)(nil)
