// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"
	"sync"

	"github.com/gogpu/gal/command"
	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/hal"
	"github.com/gogpu/gal/types"
)

// Descriptor heap sizing, patterned after Tier-1 shader-visible limits.
const (
	viewHeapBlockSize    = 32768
	samplerHeapBlockSize = 2048
	rtvHeapBlockSize     = 1024
	dsvHeapBlockSize     = 1024

	linearViewHeapSize    = 65536
	linearSamplerHeapSize = 2048
)

// rootSignature is one of the device's fixed root signatures: the four
// descriptor table capacities the binding sets are laid out against.
type rootSignature struct {
	name        string
	numCBVs     int32
	numSRVs     int32
	numUAVs     int32
	numSamplers int32
}

// frameResources is the per-in-flight-frame allocator state, rotated by
// NextFrame once the matching frame fence has completed.
type frameResources struct {
	upload *linearUploadAllocator

	viewLinear    *linearDescriptorAllocator
	samplerLinear *linearDescriptorAllocator

	cbvSub     *linearDescriptorSubAllocator
	srvSub     *linearDescriptorSubAllocator
	uavSub     *linearDescriptorSubAllocator
	samplerSub *linearDescriptorSubAllocator
}

func newFrameResources() *frameResources {
	f := &frameResources{
		upload:        newLinearUploadAllocator(minUploadBlockSize),
		viewLinear:    newLinearDescriptorAllocator(heapTypeCbvSrvUav, linearViewHeapSize, "Per-frame CBV/SRV/UAV stream"),
		samplerLinear: newLinearDescriptorAllocator(heapTypeSampler, linearSamplerHeapSize, "Per-frame sampler stream"),
	}
	f.cbvSub = newLinearDescriptorSubAllocator(f.viewLinear, descriptorCBV, 256)
	f.srvSub = newLinearDescriptorSubAllocator(f.viewLinear, descriptorSRV, 256)
	f.uavSub = newLinearDescriptorSubAllocator(f.viewLinear, descriptorUAV, 256)
	f.samplerSub = newLinearDescriptorSubAllocator(f.samplerLinear, descriptorSampler, 64)
	return f
}

// reset rewinds every per-frame allocator. Callable only once the frame
// that used them has completed on the GPU.
func (f *frameResources) reset() {
	f.upload.Reset()
	f.viewLinear.Reset()
	f.samplerLinear.Reset()
	f.cbvSub.Reset()
	f.srvSub.Reset()
	f.uavSub.Reset()
	f.samplerSub.Reset()
}

// pendingDestroy is a deferred native destroy.
type pendingDestroy struct {
	h     core.Handle
	frame uint64
}

// Device owns the simulated queues, the fixed root signatures and default
// pipeline state, the persistent descriptor heap allocators, and the
// per-frame upload and descriptor allocators.
type Device struct {
	adapter types.AdapterInfo
	debug   types.DebugFlags

	timeline *timeline

	directQueue       *queue
	copyQueue         *queue
	asyncComputeQueue *queue

	rootSignatures [rootSignatureMax]rootSignature
	defaultPSO     graphicsPipelineState
	defaultCSO     computePipelineState

	viewHeap    *descriptorHeapAllocator
	samplerHeap *descriptorHeapAllocator
	rtvHeap     *descriptorHeapAllocator
	dsvHeap     *descriptorHeapAllocator

	frames   [types.MaxGpuFrames]*frameResources
	frameIdx uint64

	frameFence *fenceState

	uploadMu       sync.Mutex
	uploadFence    *fenceState
	uploadFenceIdx uint64

	destroyMu sync.Mutex
	destroys  []pendingDestroy

	// destroyFn tears down the record of a retired handle. Set by the
	// owning backend.
	destroyFn func(core.Handle)
}

func newDevice(adapter types.AdapterInfo, debug types.DebugFlags) *Device {
	d := &Device{
		adapter:    adapter,
		debug:      debug,
		frameFence: newFenceState(0),
	}
	d.timeline = &timeline{device: d}

	d.createCommandQueues()
	d.createRootSignatures()
	d.createDefaultPSOs()
	d.createDescriptorHeapAllocators()
	d.createUploadAllocators()

	hal.Logger().Info("software: device initialized", "adapter", adapter.Name)
	return d
}

func (d *Device) createCommandQueues() {
	d.directQueue = &queue{class: command.QueueGraphics, timeline: d.timeline}
	d.copyQueue = &queue{class: command.QueueCopy, timeline: d.timeline}
	d.asyncComputeQueue = &queue{class: command.QueueCompute, timeline: d.timeline}
}

func (d *Device) createRootSignatures() {
	d.rootSignatures[rootSignatureGraphics] = rootSignature{
		name:        "Graphics",
		numCBVs:     types.MaxCBVBindings,
		numSRVs:     types.MaxSRVBindings,
		numUAVs:     types.MaxUAVBindings,
		numSamplers: types.MaxSamplerBindings,
	}
	d.rootSignatures[rootSignatureCompute] = rootSignature{
		name:        "Compute",
		numCBVs:     types.MaxCBVBindings,
		numSRVs:     types.MaxSRVBindings,
		numUAVs:     types.MaxUAVBindings,
		numSamplers: types.MaxSamplerBindings,
	}
}

func (d *Device) createDefaultPSOs() {
	d.defaultPSO = graphicsPipelineState{
		rootSignature: rootSignatureGraphics,
		desc: types.GraphicsPipelineStateDesc{
			RenderState: types.DefaultRenderState(),
		},
	}
	d.defaultCSO = computePipelineState{
		rootSignature: rootSignatureCompute,
	}
}

func (d *Device) createDescriptorHeapAllocators() {
	d.viewHeap = newDescriptorHeapAllocator(heapTypeCbvSrvUav, viewHeapBlockSize, "CBV, SRV, and UAV Descriptor Heap")
	d.samplerHeap = newDescriptorHeapAllocator(heapTypeSampler, samplerHeapBlockSize, "Sampler Descriptor Heap")
	d.rtvHeap = newDescriptorHeapAllocator(heapTypeRTV, rtvHeapBlockSize, "RTV Descriptor Heap")
	d.dsvHeap = newDescriptorHeapAllocator(heapTypeDSV, dsvHeapBlockSize, "DSV Descriptor Heap")
}

func (d *Device) createUploadAllocators() {
	for i := range d.frames {
		d.frames[i] = newFrameResources()
	}
	d.uploadFence = newFenceState(0)
}

// currentFrame returns the allocator state of the current frame slot.
func (d *Device) currentFrame() *frameResources {
	return d.frames[d.frameIdx%types.MaxGpuFrames]
}

// NextFrame steps the frame index. If the full in-flight window is
// occupied, it blocks until the oldest frame completes, then resets that
// frame's allocators and signals the new frame on the frame fence through
// the direct queue.
func (d *Device) NextFrame() {
	if d.frameIdx-d.frameFence.Completed() >= types.MaxGpuFrames {
		d.timeline.mu.Lock()
		d.timeline.stalls++
		d.timeline.mu.Unlock()
		d.timeline.waitFence(d.frameFence, d.frameIdx-types.MaxGpuFrames+1)
	}

	d.frameIdx++

	// Reset the allocators of the slot this frame reuses.
	d.currentFrame().reset()
	d.retireDestroys()
	d.timeline.signal(d.frameFence, d.frameIdx)
}

// FrameStalls returns how many times NextFrame blocked on a full frame
// window (for testing).
func (d *Device) FrameStalls() int64 {
	d.timeline.mu.Lock()
	defer d.timeline.mu.Unlock()
	return d.timeline.stalls
}

// deferDestroy queues a native destroy for when the current frame has
// safely left the GPU.
func (d *Device) deferDestroy(h core.Handle) {
	d.destroyMu.Lock()
	defer d.destroyMu.Unlock()
	d.destroys = append(d.destroys, pendingDestroy{h: h, frame: d.frameIdx})
}

// retireDestroys drops destroys whose frame has been waited out.
func (d *Device) retireDestroys() {
	if d.frameIdx < types.MaxGpuFrames {
		return
	}
	safe := d.frameIdx - types.MaxGpuFrames

	d.destroyMu.Lock()
	kept := d.destroys[:0]
	var retired []pendingDestroy
	for _, p := range d.destroys {
		if p.frame > safe {
			kept = append(kept, p)
		} else {
			retired = append(retired, p)
		}
	}
	d.destroys = kept
	d.destroyMu.Unlock()

	if d.destroyFn != nil {
		for _, p := range retired {
			d.destroyFn(p.h)
		}
	}
}

// flush drains all queued GPU work.
func (d *Device) flush() {
	d.timeline.drain()
}

// initBuffer fills in a buffer record: states derived from the bind flags
// (copy source/dest always added) and zeroed storage.
func (d *Device) initBuffer(out *buffer, h core.Handle, desc *types.BufferDesc, initialData []byte) error {
	if desc.Size <= 0 {
		return fmt.Errorf("%w: buffer size must be greater than zero", types.ErrInvalidArgument)
	}

	out.handle = h
	out.desc = *desc
	out.numSubResources = 1
	out.supportedStates = types.ResourceStates(desc.BindFlags)
	out.defaultState = types.DefaultResourceState(desc.BindFlags)
	out.data = make([]byte, desc.Size)

	if initialData != nil {
		if int64(len(initialData)) > desc.Size {
			return fmt.Errorf("%w: initial data exceeds buffer size", types.ErrInvalidArgument)
		}
		return d.uploadInitialBufferData(out, initialData)
	}
	return nil
}

// uploadInitialBufferData stages initial data and issues the copy on the
// copy queue, fenced so later work observes it.
func (d *Device) uploadInitialBufferData(buf *buffer, data []byte) error {
	alloc, err := d.currentFrame().upload.Alloc(int64(len(data)), types.UploadAlignment)
	if err != nil {
		return err
	}
	copy(alloc.data, data)

	d.uploadMu.Lock()
	defer d.uploadMu.Unlock()

	src := alloc
	d.copyQueue.timeline.submit([]func(d *Device){
		func(*Device) {
			copy(buf.data, src.data)
		},
	})
	d.uploadFenceIdx++
	d.copyQueue.timeline.signal(d.uploadFence, d.uploadFenceIdx)
	return nil
}

// initTexture fills in a texture record with per-subresource storage at
// tight footprints and optionally uploads initial data.
func (d *Device) initTexture(out *texture, h core.Handle, desc *types.TextureDesc, initialData []types.TextureSubResourceData) error {
	if desc.Width <= 0 || desc.Height <= 0 {
		return fmt.Errorf("%w: texture dimensions must be greater than zero", types.ErrInvalidArgument)
	}
	if desc.Depth <= 0 {
		desc.Depth = 1
	}
	if desc.Elements <= 0 {
		desc.Elements = 1
	}
	if desc.Levels <= 0 {
		desc.Levels = 1
	}

	out.handle = h
	out.desc = *desc
	out.numSubResources = desc.SubResourceCount()
	out.supportedStates = types.ResourceStates(desc.BindFlags)
	out.defaultState = types.DefaultResourceState(desc.BindFlags)

	out.subData = make([][]byte, out.numSubResources)
	out.footprints = make([]types.Footprint, out.numSubResources)
	info := types.FormatInfo(desc.Format)
	for i := int32(0); i < out.numSubResources; i++ {
		w, hgt, dep := out.subResourceDims(i)
		// Physical storage of compressed mips is rounded up to whole
		// blocks.
		if info.Compressed {
			w = (w + info.BlockW - 1) / info.BlockW * info.BlockW
			hgt = (hgt + info.BlockH - 1) / info.BlockH * info.BlockH
		}
		fp, err := types.GetTextureFootprint(desc.Format, w, hgt, dep, 0, 0)
		if err != nil {
			return err
		}
		out.footprints[i] = fp
		out.subData[i] = make([]byte, fp.TotalBytes)
	}

	if initialData != nil {
		if int32(len(initialData)) != out.numSubResources {
			return fmt.Errorf("%w: expected %d initial data layouts", types.ErrInvalidArgument, out.numSubResources)
		}
		return d.uploadInitialTextureData(out, initialData)
	}
	return nil
}

// uploadInitialTextureData stages every subresource and issues the copies
// on the copy queue.
func (d *Device) uploadInitialTextureData(tex *texture, initialData []types.TextureSubResourceData) error {
	staged := make([][]byte, len(initialData))
	for i := range initialData {
		fp := tex.footprints[i]
		alloc, err := d.currentFrame().upload.Alloc(fp.TotalBytes, types.MaxUploadAlignment)
		if err != nil {
			return err
		}
		_, h, dep := tex.subResourceDims(int32(i))
		info := types.FormatInfo(tex.desc.Format)
		rows := (h + info.BlockH - 1) / info.BlockH
		srcFp := types.Footprint{RowPitch: initialData[i].RowPitch, SlicePitch: initialData[i].SlicePitch}
		if err := types.CopyTextureData(alloc.data, fp, initialData[i].Data, srcFp, rows, dep); err != nil {
			return err
		}
		staged[i] = alloc.data
	}

	d.uploadMu.Lock()
	defer d.uploadMu.Unlock()

	d.copyQueue.timeline.submit([]func(d *Device){
		func(*Device) {
			for i := range staged {
				copy(tex.subData[i], staged[i])
			}
		},
	})
	d.uploadFenceIdx++
	d.copyQueue.timeline.signal(d.uploadFence, d.uploadFenceIdx)
	return nil
}

// initSwapChain creates the back-buffer textures of a swap chain.
func (d *Device) initSwapChain(out *swapChain, h core.Handle, desc *types.SwapChainDesc) error {
	if desc.Width <= 0 || desc.Height <= 0 || desc.BufferCount <= 0 {
		return fmt.Errorf("%w: invalid swap chain dimensions", types.ErrInvalidArgument)
	}

	out.desc = *desc
	out.bbIdx = 0
	out.textures = make([]*texture, desc.BufferCount)

	texDesc := types.TextureDesc{
		Type:      types.Texture2D,
		BindFlags: types.BindRenderTarget | types.BindPresent,
		Format:    desc.Format,
		Width:     desc.Width,
		Height:    desc.Height,
		Depth:     1,
		Elements:  1,
		Levels:    1,
	}
	for i := range out.textures {
		out.textures[i] = &texture{}
		if err := d.initTexture(out.textures[i], h, &texDesc, nil); err != nil {
			return err
		}
	}
	return nil
}

// resizeSwapChain recreates back-buffer storage in place so that frame
// binding sets referencing the textures stay valid.
func (d *Device) resizeSwapChain(sc *swapChain, width, height int32) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid swap chain dimensions", types.ErrInvalidArgument)
	}

	// Drain all in-flight frames before touching back-buffers.
	d.flush()

	sc.desc.Width = width
	sc.desc.Height = height
	for _, tex := range sc.textures {
		desc := tex.desc
		desc.Width = width
		desc.Height = height
		owner := tex.handle
		if err := d.initTexture(tex, owner, &desc, nil); err != nil {
			return err
		}
	}
	sc.bbIdx = 0
	return nil
}
