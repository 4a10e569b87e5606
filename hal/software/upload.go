// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package software

import (
	"sync"

	"github.com/gogpu/gal/types"
)

// minUploadBlockSize is the smallest upload block the allocator creates.
const minUploadBlockSize = 1024 * 1024

// uploadBlock is one mapped upload heap.
type uploadBlock struct {
	data          []byte
	currentOffset int64
	allocCounter  int64
}

// uploadAllocation is a range of mapped upload memory. The range stays
// valid until the frame it belongs to has completed on the GPU and its
// allocator is reset.
type uploadAllocation struct {
	// base is the backing upload block.
	base *uploadBlock
	// offsetInBase is the byte offset of the range within the block.
	offsetInBase int64
	// data is the mapped range.
	data []byte
	// size is the allocation size in bytes.
	size int64
}

// linearUploadAllocator is the per-frame upload-heap bump allocator. One
// instance exists per in-flight frame slot; Reset rewinds all block offsets
// while retaining the blocks.
type linearUploadAllocator struct {
	mu           sync.Mutex
	minBlockSize int64
	blocks       []*uploadBlock
}

func newLinearUploadAllocator(minBlockSize int64) *linearUploadAllocator {
	if minBlockSize < minUploadBlockSize {
		minBlockSize = minUploadBlockSize
	}
	return &linearUploadAllocator{minBlockSize: minBlockSize}
}

// Alloc reserves size bytes aligned to align (default 256, max 64 KiB).
// When the current block cannot fit the aligned range, a new block of
// max(minBlockSize, size) is created.
func (a *linearUploadAllocator) Alloc(size, align int64) (uploadAllocation, error) {
	if size <= 0 {
		return uploadAllocation{}, types.ErrInvalidArgument
	}
	if align <= 0 {
		align = types.UploadAlignment
	}
	if align > types.MaxUploadAlignment || align&(align-1) != 0 {
		return uploadAllocation{}, types.ErrInvalidArgument
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, block := range a.blocks {
		offset := (block.currentOffset + align - 1) &^ (align - 1)
		if offset+size <= int64(len(block.data)) {
			block.currentOffset = offset + size
			block.allocCounter++
			return uploadAllocation{
				base:         block,
				offsetInBase: offset,
				data:         block.data[offset : offset+size : offset+size],
				size:         size,
			}, nil
		}
	}

	blockSize := a.minBlockSize
	if size > blockSize {
		blockSize = size
	}
	block := &uploadBlock{data: make([]byte, blockSize)}
	block.currentOffset = size
	block.allocCounter = 1
	a.blocks = append(a.blocks, block)

	return uploadAllocation{
		base:         block,
		offsetInBase: 0,
		data:         block.data[0:size:size],
		size:         size,
	}, nil
}

// Reset rewinds all block offsets but retains the blocks.
func (a *linearUploadAllocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, block := range a.blocks {
		block.currentOffset = 0
		block.allocCounter = 0
	}
}

// BlockCount returns the number of upload blocks (for testing).
func (a *linearUploadAllocator) BlockCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks)
}
