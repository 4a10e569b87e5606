package noop

import (
	"errors"
	"testing"

	"github.com/gogpu/gal/command"
	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/types"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	b := New()
	if err := b.Initialize(0); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return b
}

func TestNoopLifecycle(t *testing.T) {
	b := New()
	if b.IsInitialized() {
		t.Error("fresh backend reports initialized")
	}
	adapters, err := b.EnumerateAdapters()
	if err != nil || len(adapters) != 1 {
		t.Fatalf("adapters: %v (%d)", err, len(adapters))
	}
	if err := b.Initialize(1); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("bad adapter index: got %v", err)
	}
	if err := b.Initialize(0); err != nil {
		t.Fatal(err)
	}
	if !b.IsInitialized() {
		t.Error("backend not initialized")
	}
}

func TestNoopSubmitRequiresCompile(t *testing.T) {
	b := newBackend(t)
	handles := core.NewHandleAllocator()
	cl := handles.Alloc(core.KindCommandList)

	if err := b.CreateCommandList(cl, "test"); err != nil {
		t.Fatal(err)
	}
	if err := b.SubmitCommandLists([]core.Handle{cl}); !errors.Is(err, types.ErrInvalidState) {
		t.Fatalf("submit before compile: got %v", err)
	}

	rec := command.NewList(0, handles)
	if err := b.CompileCommandList(cl, rec); err != nil {
		t.Fatal(err)
	}
	if err := b.SubmitCommandLists([]core.Handle{cl}); err != nil {
		t.Fatalf("submit after compile: %v", err)
	}
}

func TestNoopPresentCyclesIndex(t *testing.T) {
	b := newBackend(t)
	handles := core.NewHandleAllocator()
	sc := handles.Alloc(core.KindSwapChain)

	if err := b.CreateSwapChain(sc, &types.SwapChainDesc{
		Width: 8, Height: 8, Format: types.FormatRGBA8Unorm, BufferCount: 2,
	}, "test"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		if err := b.PresentSwapChain(sc); err != nil {
			t.Fatalf("present %d: %v", i, err)
		}
	}
	b.mu.Lock()
	idx := b.swapChains[sc].bbIdx
	b.mu.Unlock()
	if idx != 0 {
		t.Errorf("bbIdx after 4 presents of a 2-buffer chain: got %d, want 0", idx)
	}
}

func TestNoopFences(t *testing.T) {
	b := newBackend(t)
	handles := core.NewHandleAllocator()
	f := handles.Alloc(core.KindFence)

	if err := b.CreateFence(f, 0, "test"); err != nil {
		t.Fatal(err)
	}
	if err := b.WaitFence(f, 1); !errors.Is(err, types.ErrNotReady) {
		t.Errorf("wait before signal: got %v", err)
	}
	if err := b.SignalFence(f, 1); err != nil {
		t.Fatal(err)
	}
	if err := b.WaitFence(f, 1); err != nil {
		t.Errorf("wait after signal: %v", err)
	}
}

func TestNoopReadbackZeroFills(t *testing.T) {
	b := newBackend(t)
	dst := []byte{1, 2, 3, 4}
	if err := b.ReadbackBuffer(0, 0, dst); err != nil {
		t.Fatal(err)
	}
	for i, v := range dst {
		if v != 0 {
			t.Fatalf("byte %d not cleared: %d", i, v)
		}
	}
}
