package types

import (
	"bytes"
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestFormatInfo(t *testing.T) {
	tests := []struct {
		format     Format
		blockW     int32
		blockBits  int32
		compressed bool
		depth      bool
		stencil    bool
	}{
		{FormatR8Unorm, 1, 8, false, false, false},
		{FormatRGBA8Unorm, 1, 32, false, false, false},
		{FormatR32Float, 1, 32, false, false, false},
		{FormatRGBA32Float, 1, 128, false, false, false},
		{FormatD32Float, 1, 32, false, true, false},
		{FormatD24UnormS8Uint, 1, 32, false, true, true},
		{FormatBC1Unorm, 4, 64, true, false, false},
		{FormatBC7Unorm, 4, 128, true, false, false},
	}

	for _, tt := range tests {
		info := FormatInfo(tt.format)
		if info.BlockW != tt.blockW || info.BlockBits != tt.blockBits {
			t.Errorf("format %d: got block %dx? %d bits, want %d / %d",
				tt.format, info.BlockW, info.BlockBits, tt.blockW, tt.blockBits)
		}
		if info.Compressed != tt.compressed || info.Depth != tt.depth || info.Stencil != tt.stencil {
			t.Errorf("format %d: flag mismatch", tt.format)
		}
	}
}

func TestGetTextureFootprint(t *testing.T) {
	fp, err := GetTextureFootprint(FormatR32Float, 4, 2, 1, 0, 0)
	if err != nil {
		t.Fatalf("footprint failed: %v", err)
	}
	if fp.RowPitch != 16 || fp.SlicePitch != 32 || fp.TotalBytes != 32 {
		t.Errorf("got %+v, want row 16 slice 32 total 32", fp)
	}
}

func TestGetTextureFootprintCompressed(t *testing.T) {
	// 8x8 BC1: 2x2 blocks of 8 bytes.
	fp, err := GetTextureFootprint(FormatBC1Unorm, 8, 8, 1, 0, 0)
	if err != nil {
		t.Fatalf("footprint failed: %v", err)
	}
	if fp.RowPitch != 16 || fp.TotalBytes != 32 {
		t.Errorf("got %+v, want row 16 total 32", fp)
	}

	// Block-unaligned dimensions must be rejected.
	if _, err := GetTextureFootprint(FormatBC1Unorm, 6, 4, 1, 0, 0); !errors.Is(err, ErrUnsupported) {
		t.Errorf("unaligned BC1 footprint: got %v, want ErrUnsupported", err)
	}
}

func TestGetTextureFootprintPitchOverride(t *testing.T) {
	fp, err := GetTextureFootprint(FormatRGBA8Unorm, 4, 4, 1, 256, 0)
	if err != nil {
		t.Fatalf("footprint failed: %v", err)
	}
	if fp.RowPitch != 256 || fp.SlicePitch != 1024 {
		t.Errorf("got %+v, want row 256 slice 1024", fp)
	}

	// Pitch below the tight row size is invalid.
	if _, err := GetTextureFootprint(FormatRGBA8Unorm, 4, 4, 1, 8, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("short pitch: got %v, want ErrInvalidArgument", err)
	}
}

func TestGetTextureFootprintInvalidDims(t *testing.T) {
	if _, err := GetTextureFootprint(FormatR8Unorm, 0, 1, 1, 0, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero width: got %v, want ErrInvalidArgument", err)
	}
}

func TestCopyTextureDataRepitch(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	srcFp := Footprint{RowPitch: 4, SlicePitch: 8}
	dst := make([]byte, 16)
	dstFp := Footprint{RowPitch: 8, SlicePitch: 16}

	if err := CopyTextureData(dst, dstFp, src, srcFp, 2, 1); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	want := []byte{1, 2, 3, 4, 0, 0, 0, 0, 5, 6, 7, 8, 0, 0, 0, 0}
	if !bytes.Equal(dst, want) {
		t.Errorf("got %v, want %v", dst, want)
	}
}

func TestCopyTextureDataBounds(t *testing.T) {
	src := make([]byte, 4)
	dst := make([]byte, 4)
	fp := Footprint{RowPitch: 4, SlicePitch: 4}
	if err := CopyTextureData(dst, fp, src, fp, 2, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("out-of-bounds copy: got %v, want ErrInvalidArgument", err)
	}
}

func TestResourceStatesDerivation(t *testing.T) {
	states := ResourceStates(BindShaderResource | BindRenderTarget)
	for _, want := range []ResourceState{StateCopySource, StateCopyDest, StateShaderResource, StateRenderTarget} {
		if !states.Contains(want) {
			t.Errorf("states %#x missing %#x", states, want)
		}
	}
	if states.Contains(StateDepthWrite) {
		t.Errorf("states %#x should not include depth write", states)
	}
}

func TestDefaultResourceState(t *testing.T) {
	tests := []struct {
		flags BindFlags
		want  ResourceState
	}{
		{BindNone, StateCommon},
		{BindShaderResource, StateShaderResource},
		{BindRenderTarget | BindPresent, StatePresent},
		{BindRenderTarget, StateRenderTarget},
		{BindDepthStencil, StateDepthWrite},
		{BindVertexBuffer, StateVertexAndConstantBuffer},
		{BindIndexBuffer, StateIndexBuffer},
		{BindIndirectBuffer, StateIndirectArgument},
		{BindShaderResource | BindUnorderedAccess, StateShaderResource},
	}
	for _, tt := range tests {
		if got := DefaultResourceState(tt.flags); got != tt.want {
			t.Errorf("flags %#x: got %#x, want %#x", tt.flags, got, tt.want)
		}
	}

	// The default state is always within the supported set.
	for flags := BindFlags(0); flags < 1<<9; flags++ {
		if !ResourceStates(flags).Contains(DefaultResourceState(flags)) {
			t.Fatalf("flags %#x: default state outside supported set", flags)
		}
	}
}

func TestSubResourceCount(t *testing.T) {
	desc := TextureDesc{Type: Texture2D, Levels: 4, Elements: 3}
	if got := desc.SubResourceCount(); got != 12 {
		t.Errorf("got %d, want 12", got)
	}
	desc.Type = TextureCube
	if got := desc.SubResourceCount(); got != 72 {
		t.Errorf("cube: got %d, want 72", got)
	}
}

func TestGetStride(t *testing.T) {
	elements := []VertexElement{
		{StreamIdx: 0, Format: gputypes.VertexFormatFloat32x3, Usage: VertexUsagePosition},
		{StreamIdx: 0, Format: gputypes.VertexFormatFloat32x2, Usage: VertexUsageTexcoord},
		{StreamIdx: 1, Format: gputypes.VertexFormatUnorm8x4, Usage: VertexUsageColor},
	}
	if got := GetStride(elements, 0); got != 20 {
		t.Errorf("stream 0: got %d, want 20", got)
	}
	if got := GetStride(elements, 1); got != 4 {
		t.Errorf("stream 1: got %d, want 4", got)
	}
	if got := GetStride(elements, 2); got != 0 {
		t.Errorf("stream 2: got %d, want 0", got)
	}
}
