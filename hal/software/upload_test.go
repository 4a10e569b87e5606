package software

import (
	"errors"
	"testing"

	"github.com/gogpu/gal/types"
)

func TestUploadAllocatorAlignment(t *testing.T) {
	a := newLinearUploadAllocator(0)

	a1, err := a.Alloc(100, 0)
	if err != nil {
		t.Fatalf("alloc failed: %v", err)
	}
	if a1.offsetInBase != 0 || a1.size != 100 {
		t.Fatalf("bad allocation %+v", a1)
	}

	// Default alignment is 256; the next allocation is rounded up.
	a2, err := a.Alloc(16, 0)
	if err != nil {
		t.Fatal(err)
	}
	if a2.offsetInBase != 256 {
		t.Errorf("offset: got %d, want 256", a2.offsetInBase)
	}

	a3, err := a.Alloc(16, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if a3.offsetInBase%1024 != 0 {
		t.Errorf("offset %d not 1024-aligned", a3.offsetInBase)
	}
}

func TestUploadAllocatorRejectsBadArgs(t *testing.T) {
	a := newLinearUploadAllocator(0)

	if _, err := a.Alloc(0, 0); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("zero size: got %v", err)
	}
	if _, err := a.Alloc(16, types.MaxUploadAlignment*2); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("oversize alignment: got %v", err)
	}
	if _, err := a.Alloc(16, 100); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("non-power-of-two alignment: got %v", err)
	}
}

func TestUploadAllocatorGrowsForLargeAlloc(t *testing.T) {
	a := newLinearUploadAllocator(0)

	big := int64(minUploadBlockSize * 2)
	alloc, err := a.Alloc(big, 0)
	if err != nil {
		t.Fatalf("large alloc failed: %v", err)
	}
	if alloc.size != big || int64(len(alloc.data)) != big {
		t.Fatalf("bad allocation %+v", alloc)
	}
}

func TestUploadAllocatorReset(t *testing.T) {
	a := newLinearUploadAllocator(0)

	if _, err := a.Alloc(1024, 0); err != nil {
		t.Fatal(err)
	}
	blocks := a.BlockCount()

	a.Reset()
	if a.BlockCount() != blocks {
		t.Error("reset dropped blocks")
	}

	alloc, err := a.Alloc(16, 0)
	if err != nil {
		t.Fatal(err)
	}
	if alloc.offsetInBase != 0 {
		t.Errorf("offset after reset: got %d, want 0", alloc.offsetInBase)
	}
}
