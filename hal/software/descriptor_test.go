package software

import (
	"errors"
	"testing"

	"github.com/gogpu/gal/types"
)

func TestRangeAllocatorMerge(t *testing.T) {
	r := newRangeAllocator(64)

	idA, offA, ok := r.allocRange(16)
	if !ok || offA != 0 {
		t.Fatalf("alloc A: ok=%v off=%d", ok, offA)
	}
	idB, offB, ok := r.allocRange(16)
	if !ok || offB != 16 {
		t.Fatalf("alloc B: ok=%v off=%d", ok, offB)
	}
	idC, offC, ok := r.allocRange(32)
	if !ok || offC != 32 {
		t.Fatalf("alloc C: ok=%v off=%d", ok, offC)
	}
	if _, _, ok := r.allocRange(1); ok {
		t.Fatal("allocation from a full span succeeded")
	}

	// Free B then A; the intervals must merge so a 32-wide alloc fits.
	r.freeRange(idB)
	r.freeRange(idA)
	if _, off, ok := r.allocRange(32); !ok || off != 0 {
		t.Fatalf("merged alloc: ok=%v off=%d", ok, off)
	}
	r.freeRange(idC)
}

func TestDescriptorHeapAllocator(t *testing.T) {
	a := newDescriptorHeapAllocator(heapTypeCbvSrvUav, 64, "test heap")

	alloc, err := a.Alloc(16)
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	if alloc.size != 16 || alloc.heap == nil {
		t.Fatalf("bad allocation %+v", alloc)
	}

	// Freshly allocated slots are sentinel-cleared.
	for i := int32(0); i < alloc.size; i++ {
		if alloc.at(i).subType != descriptorInvalid {
			t.Fatalf("slot %d not cleared", i)
		}
	}

	// Invariant: offset + size within heap capacity.
	if int(alloc.offset+alloc.size) > len(alloc.heap.descriptors) {
		t.Error("allocation exceeds heap capacity")
	}

	a.Free(alloc)
	alloc2, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("full-block alloc after free failed: %v", err)
	}
	a.Free(alloc2)
}

func TestDescriptorHeapAllocatorGrows(t *testing.T) {
	a := newDescriptorHeapAllocator(heapTypeSampler, 8, "grow heap")

	var allocs []descriptorAllocation
	for i := 0; i < 3; i++ {
		alloc, err := a.Alloc(8)
		if err != nil {
			t.Fatalf("alloc %d failed: %v", i, err)
		}
		allocs = append(allocs, alloc)
	}
	if a.BlockCount() < 3 {
		t.Errorf("block count: got %d, want >= 3", a.BlockCount())
	}
	for _, alloc := range allocs {
		a.Free(alloc)
	}
}

func TestDescriptorHeapAllocZero(t *testing.T) {
	a := newDescriptorHeapAllocator(heapTypeRTV, 8, "zero heap")
	alloc, err := a.Alloc(0)
	if err != nil {
		t.Fatalf("zero alloc failed: %v", err)
	}
	if alloc.valid() {
		t.Error("zero alloc must be invalid")
	}
}

func TestLinearDescriptorAllocator(t *testing.T) {
	a := newLinearDescriptorAllocator(heapTypeCbvSrvUav, 32, "linear")

	alloc, err := a.Alloc(8, descriptorSRV)
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	if alloc.offset != 0 || alloc.size != 8 {
		t.Fatalf("bad allocation %+v", alloc)
	}
	for i := int32(0); i < 8; i++ {
		if alloc.at(i).subType != descriptorSRV {
			t.Fatal("range not stamped with sub-type")
		}
	}

	alloc2, err := a.Alloc(8, descriptorCBV)
	if err != nil || alloc2.offset != 8 {
		t.Fatalf("bump failed: %v %+v", err, alloc2)
	}

	// Exhaustion fails with out-of-memory.
	if _, err := a.Alloc(32, descriptorSRV); !errors.Is(err, types.ErrOutOfMemory) {
		t.Errorf("got %v, want ErrOutOfMemory", err)
	}

	a.Reset()
	alloc3, err := a.Alloc(32, descriptorSRV)
	if err != nil || alloc3.offset != 0 {
		t.Fatalf("alloc after reset: %v %+v", err, alloc3)
	}
}

func TestLinearDescriptorCopy(t *testing.T) {
	a := newLinearDescriptorAllocator(heapTypeCbvSrvUav, 64, "copy")

	src, err := a.Alloc(4, descriptorSRV)
	if err != nil {
		t.Fatal(err)
	}
	src.at(0).firstSubRsc = 5

	dst, err := a.Copy(src, 8, descriptorSRV)
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if dst.size != 8 {
		t.Fatalf("copy size: got %d, want 8", dst.size)
	}
	if dst.at(0).firstSubRsc != 5 {
		t.Error("descriptor contents not copied")
	}
}

func TestSubAllocatorPadding(t *testing.T) {
	linear := newLinearDescriptorAllocator(heapTypeCbvSrvUav, 1024, "sub")
	sub := newLinearDescriptorSubAllocator(linear, descriptorSRV, 64)

	// Every allocation is padded to the requested table size.
	a1, err := sub.Alloc(3, types.MaxSRVBindings)
	if err != nil {
		t.Fatal(err)
	}
	if a1.size != types.MaxSRVBindings {
		t.Errorf("padded size: got %d, want %d", a1.size, types.MaxSRVBindings)
	}

	// The next allocation starts past the used descriptors, not the pad.
	a2, err := sub.Alloc(3, types.MaxSRVBindings)
	if err != nil {
		t.Fatal(err)
	}
	if a2.offset != a1.offset+3 {
		t.Errorf("cursor: got %d, want %d", a2.offset, a1.offset+3)
	}

	// padding < num is rejected.
	if _, err := sub.Alloc(8, 4); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}

func TestSubAllocatorNewBlock(t *testing.T) {
	linear := newLinearDescriptorAllocator(heapTypeCbvSrvUav, 1024, "sub2")
	sub := newLinearDescriptorSubAllocator(linear, descriptorUAV, 16)

	// A padding larger than the block size forces a bigger block.
	a1, err := sub.Alloc(32, 32)
	if err != nil {
		t.Fatal(err)
	}
	if a1.size != 32 {
		t.Errorf("got size %d, want 32", a1.size)
	}
}
