package gal_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/gal"
	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/hal"
	"github.com/gogpu/gal/hal/software"
	"github.com/gogpu/gal/types"
)

func newManager(t *testing.T) *gal.Manager {
	t.Helper()
	m, err := gal.New(types.SetupParams{API: software.API})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	t.Cleanup(m.Destroy)

	adapters, err := m.EnumerateAdapters()
	if err != nil || len(adapters) == 0 {
		t.Fatalf("enumerate adapters: %v (%d found)", err, len(adapters))
	}
	if err := m.Initialize(0); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return m
}

func TestManagerLifecycle(t *testing.T) {
	m := newManager(t)
	if !m.IsInitialized() {
		t.Error("manager not initialized")
	}
}

func TestManagerUnknownBackend(t *testing.T) {
	_, err := gal.New(types.SetupParams{API: "no-such-backend"})
	if !errors.Is(err, hal.ErrBackendNotFound) {
		t.Fatalf("got %v, want ErrBackendNotFound", err)
	}
}

func TestManagerBufferRoundTrip(t *testing.T) {
	m := newManager(t)

	src, err := m.CreateBuffer(types.BufferDesc{Size: 1 << 20, BindFlags: types.BindShaderResource}, nil, "src")
	if err != nil {
		t.Fatal(err)
	}
	dst, err := m.CreateBuffer(types.BufferDesc{Size: 1 << 20}, nil, "dst")
	if err != nil {
		t.Fatal(err)
	}
	fence, err := m.CreateFence(0, "fence")
	if err != nil {
		t.Fatal(err)
	}
	cl, err := m.CreateCommandList("round-trip")
	if err != nil {
		t.Fatal(err)
	}

	payload := make([]byte, 32)
	for i, f := range []float32{1, 2, 3, 4, 0.1, 0.2, 0.3, 0.4} {
		binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(f))
	}

	rec := m.NewRecorder(0)
	if err := rec.UpdateBuffer(src, 0, payload[:16]); err != nil {
		t.Fatal(err)
	}
	if err := rec.UpdateBuffer(src, 16, payload[16:]); err != nil {
		t.Fatal(err)
	}
	if err := rec.CopyBuffer(dst, 0, src, 0, 1<<20); err != nil {
		t.Fatal(err)
	}

	if err := m.CompileCommandList(cl, rec); err != nil {
		t.Fatalf("compile: %v", err)
	}
	if err := m.SubmitCommandList(cl); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := m.SignalFence(fence, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.WaitFence(fence, 1); err != nil {
		t.Fatal(err)
	}

	got := make([]byte, 32)
	if err := m.ReadbackBuffer(dst, 0, got); err != nil {
		t.Fatalf("readback: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("readback mismatch:\n got %v\nwant %v", got, payload)
	}

	for _, h := range []core.Handle{src, dst, fence, cl} {
		if err := m.DestroyResource(h); err != nil {
			t.Errorf("destroy %s: %v", h, err)
		}
	}
}

func TestManagerDeferredHandleRecycling(t *testing.T) {
	m := newManager(t)

	h, err := m.CreateBuffer(types.BufferDesc{Size: 256}, nil, "victim")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.DestroyResource(h); err != nil {
		t.Fatal(err)
	}

	// The index must not be reusable until MaxGpuFrames frames later.
	for i := 0; i < types.MaxGpuFrames-1; i++ {
		if err := m.NextFrame(); err != nil {
			t.Fatal(err)
		}
		if got := m.Handles().FreeCount(core.KindBuffer); got != 0 {
			t.Fatalf("frame %d: handle recycled early (free count %d)", i+1, got)
		}
	}
	if err := m.NextFrame(); err != nil {
		t.Fatal(err)
	}
	if got := m.Handles().FreeCount(core.KindBuffer); got != 1 {
		t.Fatalf("handle not recycled after %d frames (free count %d)", types.MaxGpuFrames, got)
	}
	if m.Handles().IsValid(h) {
		t.Error("stale handle still valid after recycling")
	}
}

func TestManagerDestroyInvalidHandle(t *testing.T) {
	m := newManager(t)

	bogus := core.NewHandle(core.KindBuffer, 42, 7)
	if err := m.DestroyResource(bogus); !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestManagerTemporaryBindingSet(t *testing.T) {
	m := newManager(t)

	h, err := m.AllocTemporaryPipelineBindingSet(types.PipelineBindingSetDesc{
		NumCBVs: 2, NumSRVs: 4, ShaderVisible: true,
	})
	if err != nil {
		t.Fatalf("alloc temporary: %v", err)
	}
	if !m.Handles().IsValid(h) {
		t.Fatal("temporary binding set handle invalid")
	}

	// Frame-owned: the handle recycles by itself.
	for i := 0; i < types.MaxGpuFrames; i++ {
		if err := m.NextFrame(); err != nil {
			t.Fatal(err)
		}
	}
	if m.Handles().IsValid(h) {
		t.Error("temporary binding set handle survived the frame window")
	}
}

func TestManagerBindingCapacityEnforced(t *testing.T) {
	m := newManager(t)

	_, err := m.CreatePipelineBindingSet(types.PipelineBindingSetDesc{
		NumSRVs: types.MaxSRVBindings + 1,
	}, "too big")
	if !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestManagerPresentCycle(t *testing.T) {
	m := newManager(t)

	sc, err := m.CreateSwapChain(types.SwapChainDesc{
		Width: 320, Height: 240, Format: types.FormatRGBA8Unorm, BufferCount: 2,
	}, "swap")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		if err := m.PresentSwapChain(sc); err != nil {
			t.Fatalf("present %d: %v", i, err)
		}
		if err := m.NextFrame(); err != nil {
			t.Fatalf("next frame %d: %v", i, err)
		}
	}
}
