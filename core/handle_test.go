package core

import (
	"sync"
	"testing"
)

func TestHandlePacking(t *testing.T) {
	h := NewHandle(KindTexture, 123456, 789)
	if h.Kind() != KindTexture {
		t.Errorf("kind: got %v, want Texture", h.Kind())
	}
	if h.Index() != 123456 {
		t.Errorf("index: got %d, want 123456", h.Index())
	}
	if h.Generation() != 789 {
		t.Errorf("generation: got %d, want 789", h.Generation())
	}
}

func TestHandleZero(t *testing.T) {
	var h Handle
	if !h.IsZero() {
		t.Error("zero handle must report IsZero")
	}
	a := NewHandleAllocator()
	if a.IsValid(h) {
		t.Error("zero handle must never be valid")
	}
}

func TestHandleAllocFree(t *testing.T) {
	a := NewHandleAllocator()

	h := a.Alloc(KindBuffer)
	if !a.IsValid(h) {
		t.Fatal("fresh handle is invalid")
	}
	if h.Generation() != 1 {
		t.Errorf("first generation: got %d, want 1", h.Generation())
	}

	a.Free(h)
	if a.IsValid(h) {
		t.Error("freed handle is still valid")
	}

	// The index is reused with a bumped generation.
	h2 := a.Alloc(KindBuffer)
	if h2.Index() != h.Index() {
		t.Errorf("index not reused: got %d, want %d", h2.Index(), h.Index())
	}
	if h2.Generation() != h.Generation()+1 {
		t.Errorf("generation not bumped: got %d", h2.Generation())
	}
	if a.IsValid(h) {
		t.Error("stale handle still validates after reuse")
	}
	if !a.IsValid(h2) {
		t.Error("reused handle is invalid")
	}
}

func TestHandleKindSeparation(t *testing.T) {
	a := NewHandleAllocator()
	hb := a.Alloc(KindBuffer)
	ht := a.Alloc(KindTexture)

	if hb.Index() != ht.Index() {
		t.Fatalf("per-kind pools should both start at index 0")
	}
	if !a.IsValidKind(hb, KindBuffer) || a.IsValidKind(hb, KindTexture) {
		t.Error("kind validation mismatch")
	}
}

func TestHandleDoubleFree(t *testing.T) {
	a := NewHandleAllocator()
	h := a.Alloc(KindFence)
	a.Free(h)
	a.Free(h) // must be a no-op

	if got := a.FreeCount(KindFence); got != 1 {
		t.Errorf("free count after double free: got %d, want 1", got)
	}
}

func TestHandleAllocatorConcurrent(t *testing.T) {
	a := NewHandleAllocator()

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				h := a.Alloc(KindBuffer)
				if !a.IsValid(h) {
					t.Error("allocated handle invalid")
					return
				}
				a.Free(h)
			}
		}()
	}
	wg.Wait()

	if got := a.Count(KindBuffer); got != 0 {
		t.Errorf("live count after churn: got %d, want 0", got)
	}
}
