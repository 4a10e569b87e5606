package command

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gal/core"
	"github.com/gogpu/gal/types"
)

func testHandles(t *testing.T) (*core.HandleAllocator, map[core.Kind]core.Handle) {
	t.Helper()
	a := core.NewHandleAllocator()
	hs := make(map[core.Kind]core.Handle)
	for _, k := range []core.Kind{
		core.KindBuffer, core.KindTexture, core.KindPipelineBindingSet,
		core.KindDrawBindingSet, core.KindFrameBindingSet,
	} {
		hs[k] = a.Alloc(k)
	}
	return a, hs
}

func TestListAlloc(t *testing.T) {
	a := core.NewHandleAllocator()
	l := NewList(32, a)

	// Four 8-byte blocks fit, the fifth does not.
	for i := 0; i < 4; i++ {
		if l.Alloc(8) == nil {
			t.Fatalf("alloc %d failed", i)
		}
	}
	if l.Alloc(8) != nil {
		t.Fatal("alloc beyond capacity succeeded")
	}

	l.Reset()
	if l.Alloc(8) == nil {
		t.Fatal("alloc after reset failed")
	}
}

func TestListPush(t *testing.T) {
	a := core.NewHandleAllocator()
	l := NewList(64, a)

	data := []byte{1, 2, 3, 4}
	stored := l.Push(data)
	if stored == nil {
		t.Fatal("push failed")
	}
	data[0] = 99
	if stored[0] != 1 {
		t.Error("push did not copy the payload")
	}
}

func TestListCommands(t *testing.T) {
	a, hs := testHandles(t)
	l := NewList(DefaultBufferSize, a)

	ds := types.DrawState{}

	if err := l.Draw(hs[core.KindPipelineBindingSet], hs[core.KindDrawBindingSet], hs[core.KindFrameBindingSet],
		&ds, gputypes.PrimitiveTopologyTriangleList, 0, 0, 3, 0, 1); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := l.DrawIndirect(hs[core.KindPipelineBindingSet], hs[core.KindDrawBindingSet], hs[core.KindFrameBindingSet],
		&ds, gputypes.PrimitiveTopologyTriangleList, hs[core.KindBuffer], 0, 0, 0, 1); err != nil {
		t.Fatalf("DrawIndirect: %v", err)
	}
	if err := l.Dispatch(hs[core.KindPipelineBindingSet], 1, 1, 1); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if err := l.DispatchIndirect(hs[core.KindPipelineBindingSet], hs[core.KindBuffer], 0, 0, 0, 1); err != nil {
		t.Fatalf("DispatchIndirect: %v", err)
	}
	if err := l.ClearRTV(hs[core.KindFrameBindingSet], 0, [4]float32{}); err != nil {
		t.Fatalf("ClearRTV: %v", err)
	}
	if err := l.ClearDSV(hs[core.KindFrameBindingSet], 0, 0); err != nil {
		t.Fatalf("ClearDSV: %v", err)
	}
	if err := l.ClearUAVFloat(hs[core.KindPipelineBindingSet], 0, [4]float32{}); err != nil {
		t.Fatalf("ClearUAVFloat: %v", err)
	}
	if err := l.ClearUAVUint(hs[core.KindPipelineBindingSet], 0, [4]uint32{}); err != nil {
		t.Fatalf("ClearUAVUint: %v", err)
	}
	if err := l.UpdateBuffer(hs[core.KindBuffer], 0, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("UpdateBuffer: %v", err)
	}
	if err := l.UpdateTextureSubResource(hs[core.KindTexture], 0, types.TextureSubResourceData{
		Data: []byte{1, 2, 3, 4}, RowPitch: 4, SlicePitch: 4,
	}); err != nil {
		t.Fatalf("UpdateTextureSubResource: %v", err)
	}

	if l.NumCommands() != 10 {
		t.Errorf("command count: got %d, want 10", l.NumCommands())
	}
	if l.QueueType().Class() != QueueGraphics {
		t.Errorf("queue class: got %v, want graphics", l.QueueType().Class())
	}
}

func TestListInvalidHandle(t *testing.T) {
	a, hs := testHandles(t)
	l := NewList(DefaultBufferSize, a)

	stale := hs[core.KindBuffer]
	a.Free(stale)

	err := l.UpdateBuffer(stale, 0, []byte{1})
	if !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
	if l.NumCommands() != 0 {
		t.Error("failed command was appended")
	}

	// Wrong kind is rejected too.
	err = l.UpdateBuffer(hs[core.KindTexture], 0, []byte{1})
	if !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestListCopyBufferSelfCopy(t *testing.T) {
	a, hs := testHandles(t)
	l := NewList(DefaultBufferSize, a)

	b := hs[core.KindBuffer]
	err := l.CopyBuffer(b, 0, b, 0, 4)
	if !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("self copy: got %v, want ErrInvalidArgument", err)
	}
}

func TestListCopyTextureSameSubresource(t *testing.T) {
	a, hs := testHandles(t)
	l := NewList(DefaultBufferSize, a)

	tex := hs[core.KindTexture]
	box := types.Box{W: 1, H: 1, D: 1}
	if err := l.CopyTextureSubResource(tex, 0, types.Point{}, tex, 0, box); !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("same subresource: got %v, want ErrInvalidArgument", err)
	}
	// Different subresources of the same texture are allowed.
	if err := l.CopyTextureSubResource(tex, 1, types.Point{}, tex, 0, box); err != nil {
		t.Fatalf("mip copy: %v", err)
	}
}

func TestListQueueTypeUpgrade(t *testing.T) {
	a, hs := testHandles(t)
	l := NewList(DefaultBufferSize, a)

	if l.QueueType() != QueueNone {
		t.Fatal("fresh list has a queue class")
	}

	if err := l.UpdateBuffer(hs[core.KindBuffer], 0, []byte{1}); err != nil {
		t.Fatal(err)
	}
	if l.QueueType().Class() != QueueCopy {
		t.Errorf("after update: got %v, want copy", l.QueueType().Class())
	}

	if err := l.Dispatch(hs[core.KindPipelineBindingSet], 1, 1, 1); err != nil {
		t.Fatal(err)
	}
	if l.QueueType().Class() != QueueCompute {
		t.Errorf("after dispatch: got %v, want compute", l.QueueType().Class())
	}

	if err := l.ClearRTV(hs[core.KindFrameBindingSet], 0, [4]float32{}); err != nil {
		t.Fatal(err)
	}
	if l.QueueType().Class() != QueueGraphics {
		t.Errorf("after clear: got %v, want graphics", l.QueueType().Class())
	}
}

func TestQueueTypeAccepts(t *testing.T) {
	if !QueueGraphics.Accepts(QueueCopy) || !QueueGraphics.Accepts(QueueCompute) {
		t.Error("graphics must accept lower classes")
	}
	if QueueCopy.Accepts(QueueCompute) || QueueCompute.Accepts(QueueGraphics) {
		t.Error("lower classes must refuse higher-class work")
	}
}

func TestListValidationRejectsBadCounts(t *testing.T) {
	a, hs := testHandles(t)
	l := NewList(DefaultBufferSize, a)

	if err := l.Draw(hs[core.KindPipelineBindingSet], 0, hs[core.KindFrameBindingSet],
		nil, gputypes.PrimitiveTopologyTriangleList, 0, 0, 0, 0, 1); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("zero vertices: got %v", err)
	}
	if err := l.Dispatch(hs[core.KindPipelineBindingSet], 0, 1, 1); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("zero groups: got %v", err)
	}
	if err := l.ClearRTV(hs[core.KindFrameBindingSet], -1, [4]float32{}); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("negative rtvIdx: got %v", err)
	}
	if err := l.UpdateBuffer(hs[core.KindBuffer], -1, []byte{1}); !errors.Is(err, types.ErrInvalidArgument) {
		t.Errorf("negative offset: got %v", err)
	}
	if l.NumCommands() != 0 {
		t.Error("rejected commands were appended")
	}
}

func TestListEvents(t *testing.T) {
	a, _ := testHandles(t)
	l := NewList(DefaultBufferSize, a)

	ev := l.Eventf(1, "pass %d", 7)
	ev.End()
	ev.End() // second End is a no-op

	cmds := l.Commands()
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	begin, ok := cmds[0].(*BeginEvent)
	if !ok || begin.Text != "pass 7" {
		t.Errorf("unexpected begin event %+v", cmds[0])
	}
	if _, ok := cmds[1].(*EndEvent); !ok {
		t.Errorf("unexpected end event %+v", cmds[1])
	}
}

func TestListDrawStateCaching(t *testing.T) {
	a, hs := testHandles(t)
	l := NewList(DefaultBufferSize, a)

	ds := types.DrawState{StencilRef: 3}
	for i := 0; i < 3; i++ {
		if err := l.Draw(hs[core.KindPipelineBindingSet], 0, hs[core.KindFrameBindingSet],
			&ds, gputypes.PrimitiveTopologyTriangleList, 0, 0, 3, 0, 1); err != nil {
			t.Fatal(err)
		}
	}

	cmds := l.Commands()
	first := cmds[0].(*Draw).DrawState
	for i := 1; i < 3; i++ {
		if cmds[i].(*Draw).DrawState != first {
			t.Error("identical draw states were not deduplicated")
		}
	}

	ds.StencilRef = 4
	if err := l.Draw(hs[core.KindPipelineBindingSet], 0, hs[core.KindFrameBindingSet],
		&ds, gputypes.PrimitiveTopologyTriangleList, 0, 0, 3, 0, 1); err != nil {
		t.Fatal(err)
	}
	if l.Commands()[3].(*Draw).DrawState == first {
		t.Error("changed draw state shared the cached pointer")
	}
}
