// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package software

import (
	"sync"
	"sync/atomic"

	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/hal"
	"github.com/gogpu/gal/types"
)

// descriptorHeapType selects which class of views a heap stores.
type descriptorHeapType int8

const (
	heapTypeCbvSrvUav descriptorHeapType = iota
	heapTypeSampler
	heapTypeRTV
	heapTypeDSV
)

// descriptorSubType marks what a written descriptor slot holds. Freshly
// allocated ranges are cleared to descriptorInvalid so that undisturbed
// slots are rejected on use.
type descriptorSubType int8

const (
	descriptorInvalid descriptorSubType = iota
	descriptorCBV
	descriptorSRV
	descriptorUAV
	descriptorSampler
	descriptorRTV
	descriptorDSV
)

// descriptor is one simulated descriptor slot.
type descriptor struct {
	subType descriptorSubType

	resource core.Handle
	// firstSubRsc/numSubRsc select the viewed subresource range.
	firstSubRsc int32
	numSubRsc   int32
	// offset/size select a buffer byte range for CBVs.
	offset int64
	size   int64

	sampler types.SamplerState
}

// descriptorHeap is a simulated descriptor heap: a flat array of slots.
type descriptorHeap struct {
	heapType    descriptorHeapType
	descriptors []descriptor
}

func newDescriptorHeap(heapType descriptorHeapType, size int32) *descriptorHeap {
	return &descriptorHeap{
		heapType:    heapType,
		descriptors: make([]descriptor, size),
	}
}

// clearRange resets a descriptor range to a sentinel sub-type.
func (h *descriptorHeap) clearRange(subType descriptorSubType, offset, size int32) {
	for i := offset; i < offset+size; i++ {
		h.descriptors[i] = descriptor{subType: subType}
	}
}

// descriptorAllocation is a range of descriptors within one heap.
// Offset doubles as the CPU and GPU base handle of the simulated heap.
type descriptorAllocation struct {
	heap    *descriptorHeap
	offset  int32
	size    int32
	allocID uint32
}

func (a *descriptorAllocation) valid() bool {
	return a.heap != nil && a.size > 0
}

// at returns the idx'th descriptor slot of the allocation.
func (a *descriptorAllocation) at(idx int32) *descriptor {
	return &a.heap.descriptors[a.offset+idx]
}

// rangeAlloc is one live range inside a block's interval allocator.
type rangeAlloc struct {
	offset int32
	size   int32
}

// rangeAllocator hands out intervals from a fixed-size span using a
// first-fit free list. Freed ranges are merged back.
type rangeAllocator struct {
	capacity int32
	free     []rangeAlloc
	allocs   map[uint16]rangeAlloc
	nextID   uint16
}

func newRangeAllocator(capacity int32) *rangeAllocator {
	return &rangeAllocator{
		capacity: capacity,
		free:     []rangeAlloc{{offset: 0, size: capacity}},
		allocs:   make(map[uint16]rangeAlloc),
		nextID:   1,
	}
}

// allocRange reserves size descriptors. Returns the allocation id and
// offset, or ok == false when no free interval fits.
func (r *rangeAllocator) allocRange(size int32) (id uint16, offset int32, ok bool) {
	for i := range r.free {
		if r.free[i].size >= size {
			offset = r.free[i].offset
			r.free[i].offset += size
			r.free[i].size -= size
			if r.free[i].size == 0 {
				r.free = append(r.free[:i], r.free[i+1:]...)
			}
			id = r.nextID
			r.nextID++
			if r.nextID == 0 {
				r.nextID = 1
			}
			r.allocs[id] = rangeAlloc{offset: offset, size: size}
			return id, offset, true
		}
	}
	return 0, 0, false
}

// freeRange returns a range to the free list, merging adjacent intervals.
func (r *rangeAllocator) freeRange(id uint16) {
	alloc, ok := r.allocs[id]
	if !ok {
		return
	}
	delete(r.allocs, id)

	// Insert sorted by offset.
	idx := 0
	for idx < len(r.free) && r.free[idx].offset < alloc.offset {
		idx++
	}
	r.free = append(r.free, rangeAlloc{})
	copy(r.free[idx+1:], r.free[idx:])
	r.free[idx] = alloc

	// Merge with the next interval.
	if idx+1 < len(r.free) && r.free[idx].offset+r.free[idx].size == r.free[idx+1].offset {
		r.free[idx].size += r.free[idx+1].size
		r.free = append(r.free[:idx+1], r.free[idx+2:]...)
	}
	// Merge with the previous interval.
	if idx > 0 && r.free[idx-1].offset+r.free[idx-1].size == r.free[idx].offset {
		r.free[idx-1].size += r.free[idx].size
		r.free = append(r.free[:idx], r.free[idx+1:]...)
	}
}

// descriptorBlock is one heap plus its interval allocator.
type descriptorBlock struct {
	heap      *descriptorHeap
	allocator *rangeAllocator
	numAllocs int32
}

// descriptorHeapAllocator is the persistent block-pool descriptor
// allocator. Alloc scans blocks front to back; when no block fits, a new
// block is appended. Blocks are never shrunk.
//
// A mutex guards the block free lists; contention is rare since allocation
// happens at resource-creation time.
type descriptorHeapAllocator struct {
	mu        sync.Mutex
	heapType  descriptorHeapType
	blockSize int32
	blocks    []*descriptorBlock
	debugName string
}

func newDescriptorHeapAllocator(heapType descriptorHeapType, blockSize int32, debugName string) *descriptorHeapAllocator {
	a := &descriptorHeapAllocator{
		heapType:  heapType,
		blockSize: blockSize,
		debugName: debugName,
	}
	a.addBlock()
	return a
}

// Alloc reserves a cleared descriptor range.
func (a *descriptorHeapAllocator) Alloc(size int32) (descriptorAllocation, error) {
	if size == 0 {
		return descriptorAllocation{}, nil
	}
	if size < 0 || size > a.blockSize {
		return descriptorAllocation{}, types.ErrInvalidArgument
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; ; i++ {
		block := a.blocks[i]
		if id, offset, ok := block.allocator.allocRange(size); ok {
			block.numAllocs++
			block.heap.clearRange(descriptorInvalid, offset, size)
			return descriptorAllocation{
				heap:    block.heap,
				offset:  offset,
				size:    size,
				allocID: uint32(i)<<16 | uint32(id),
			}, nil
		}
		if i == len(a.blocks)-1 {
			a.addBlock()
			hal.Logger().Warn("software: descriptor heap grew",
				"heap", a.debugName, "blocks", len(a.blocks))
		}
	}
}

// Free returns a descriptor range to its block.
func (a *descriptorHeapAllocator) Free(alloc descriptorAllocation) {
	if alloc.allocID == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	blockIdx := alloc.allocID >> 16
	if int(blockIdx) >= len(a.blocks) {
		return
	}
	block := a.blocks[blockIdx]
	block.allocator.freeRange(uint16(alloc.allocID & 0xffff))
	block.numAllocs--
}

// addBlock appends a fresh block. Must be called with the mutex held (or
// from the constructor).
func (a *descriptorHeapAllocator) addBlock() {
	heap := newDescriptorHeap(a.heapType, a.blockSize)
	heap.clearRange(descriptorInvalid, 0, a.blockSize)
	a.blocks = append(a.blocks, &descriptorBlock{
		heap:      heap,
		allocator: newRangeAllocator(a.blockSize),
	})
}

// BlockCount returns the number of heap blocks (for testing).
func (a *descriptorHeapAllocator) BlockCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks)
}

// linearDescriptorAllocator is the per-frame bump allocator over one
// shader-visible heap. Alloc uses a relaxed atomic bump; Reset is only
// called once no in-flight frame references the stream.
type linearDescriptorAllocator struct {
	heap        *descriptorHeap
	blockSize   int32
	allocOffset atomic.Int32
	debugName   string
}

func newLinearDescriptorAllocator(heapType descriptorHeapType, blockSize int32, debugName string) *linearDescriptorAllocator {
	return &linearDescriptorAllocator{
		heap:      newDescriptorHeap(heapType, blockSize),
		blockSize: blockSize,
		debugName: debugName,
	}
}

// Alloc reserves num descriptors stamped with the given sub-type.
func (a *linearDescriptorAllocator) Alloc(num int32, subType descriptorSubType) (descriptorAllocation, error) {
	offset := a.allocOffset.Add(num) - num
	if offset+num > a.blockSize {
		return descriptorAllocation{}, types.ErrOutOfMemory
	}

	alloc := descriptorAllocation{
		heap:   a.heap,
		offset: offset,
		size:   num,
	}
	if subType != descriptorInvalid {
		a.heap.clearRange(subType, offset, num)
	}
	return alloc, nil
}

// Copy allocates size descriptors and copies an existing range into them,
// the software analogue of CopyDescriptorsSimple.
func (a *linearDescriptorAllocator) Copy(src descriptorAllocation, size int32, subType descriptorSubType) (descriptorAllocation, error) {
	dst, err := a.Alloc(size, subType)
	if err != nil {
		return descriptorAllocation{}, err
	}
	copySize := size
	if src.size < copySize {
		copySize = src.size
	}
	if copySize > 0 {
		copy(dst.heap.descriptors[dst.offset:dst.offset+copySize],
			src.heap.descriptors[src.offset:src.offset+copySize])
	}
	return dst, nil
}

// Reset sentinel-fills the heap and rewinds the bump offset.
func (a *linearDescriptorAllocator) Reset() {
	a.heap.clearRange(descriptorInvalid, 0, a.blockSize)
	a.allocOffset.Store(0)
}

// linearDescriptorSubAllocator carves padded binding tables out of a linear
// allocator so Tier-1 style hardware always sees a contiguous table of the
// expected size.
type linearDescriptorSubAllocator struct {
	mu        sync.Mutex
	allocator *linearDescriptorAllocator
	subType   descriptorSubType
	blockSize int32

	alloc       descriptorAllocation
	allocOffset int32
}

func newLinearDescriptorSubAllocator(allocator *linearDescriptorAllocator, subType descriptorSubType, blockSize int32) *linearDescriptorSubAllocator {
	return &linearDescriptorSubAllocator{
		allocator: allocator,
		subType:   subType,
		blockSize: blockSize,
	}
}

// Alloc reserves padding descriptors (padding >= num) from the current
// sub-block, grabbing a new block of at least max(blockSize, padding) when
// the remainder is too small. Only num descriptors advance the cursor; the
// padded tail may be reused by the next request.
func (a *linearDescriptorSubAllocator) Alloc(num, padding int32) (descriptorAllocation, error) {
	if num < 0 || padding < num {
		return descriptorAllocation{}, types.ErrInvalidArgument
	}
	if padding == 0 {
		return descriptorAllocation{}, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.alloc.size-a.allocOffset < padding {
		blockSize := a.blockSize
		if padding > blockSize {
			blockSize = padding
		}
		alloc, err := a.allocator.Alloc(blockSize, a.subType)
		if err != nil {
			return descriptorAllocation{}, err
		}
		a.alloc = alloc
		a.allocOffset = 0
	}

	retVal := a.alloc
	retVal.offset += a.allocOffset
	retVal.size = padding
	retVal.heap.clearRange(a.subType, retVal.offset, retVal.size)

	a.allocOffset += num
	return retVal, nil
}

// Reset drops the current sub-block. The underlying linear allocator is
// reset separately.
func (a *linearDescriptorSubAllocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alloc = descriptorAllocation{}
	a.allocOffset = 0
}
