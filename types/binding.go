// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gal/core"
)

// ViewDimension selects how a view interprets a texture resource.
type ViewDimension int8

const (
	// ViewDimensionBuffer views a buffer.
	ViewDimensionBuffer ViewDimension = iota
	// ViewDimensionTex1D views a 1D texture.
	ViewDimensionTex1D
	// ViewDimensionTex1DArray views a 1D texture array.
	ViewDimensionTex1DArray
	// ViewDimensionTex2D views a 2D texture.
	ViewDimensionTex2D
	// ViewDimensionTex2DArray views a 2D texture array.
	ViewDimensionTex2DArray
	// ViewDimensionTex3D views a volume texture.
	ViewDimensionTex3D
	// ViewDimensionTexCube views a cube map.
	ViewDimensionTexCube
	// ViewDimensionTexCubeArray views a cube map array.
	ViewDimensionTexCubeArray
)

// DSVFlags modify depth stencil view behaviour.
type DSVFlags uint8

const (
	// DSVReadOnlyDepth binds the depth aspect read-only.
	DSVReadOnlyDepth DSVFlags = 1 << 0
	// DSVReadOnlyStencil binds the stencil aspect read-only.
	DSVReadOnlyStencil DSVFlags = 1 << 1
)

// Contains reports whether all flags in other are present in f.
func (f DSVFlags) Contains(other DSVFlags) bool {
	return f&other == other
}

// BindingCBV binds a buffer range as a constant buffer view.
type BindingCBV struct {
	// Resource is the buffer to bind.
	Resource core.Handle
	// Offset is the byte offset of the range.
	Offset int64
	// Size is the byte size of the range.
	Size int64
}

// BindingSRV binds a resource as a shader resource view.
type BindingSRV struct {
	// Resource is the buffer or texture to bind.
	Resource core.Handle
	// Format optionally reinterprets the resource format.
	Format Format
	// Dimension selects the view dimensionality.
	Dimension ViewDimension
	// MostDetailedMip is the first mip level visible.
	MostDetailedMip int32
	// MipLevels is the number of mip levels visible (0 = all remaining).
	MipLevels int32
	// FirstArraySlice is the first array slice visible.
	FirstArraySlice int32
	// ArraySize is the number of array slices visible.
	ArraySize int32
	// StructureByteStride is the element stride for structured buffers.
	StructureByteStride int32
	// FirstElement is the first buffer element visible.
	FirstElement int64
	// NumElements is the number of buffer elements visible.
	NumElements int64
	// PixelVisible marks the SRV as read by the pixel stage; otherwise it
	// is treated as a non-pixel stage read for state derivation.
	PixelVisible bool
}

// BindingUAV binds a resource as an unordered access view.
type BindingUAV struct {
	// Resource is the buffer or texture to bind.
	Resource core.Handle
	// Format optionally reinterprets the resource format.
	Format Format
	// Dimension selects the view dimensionality.
	Dimension ViewDimension
	// MipSlice is the mip level accessed.
	MipSlice int32
	// FirstArraySlice is the first array slice accessed.
	FirstArraySlice int32
	// ArraySize is the number of array slices accessed.
	ArraySize int32
	// StructureByteStride is the element stride for structured buffers.
	StructureByteStride int32
	// FirstElement is the first buffer element accessed.
	FirstElement int64
	// NumElements is the number of buffer elements accessed.
	NumElements int64
}

// BindingRTV binds a texture subresource as a render target view.
type BindingRTV struct {
	// Resource is the texture (or swap chain, RTV 0 only) to bind.
	Resource core.Handle
	// Format optionally reinterprets the resource format.
	Format Format
	// Dimension selects the view dimensionality.
	Dimension ViewDimension
	// MipSlice is the mip level rendered to.
	MipSlice int32
	// FirstArraySlice is the first array slice rendered to.
	FirstArraySlice int32
	// ArraySize is the number of array slices rendered to.
	ArraySize int32
}

// BindingDSV binds a texture subresource as a depth stencil view.
type BindingDSV struct {
	// Resource is the texture to bind.
	Resource core.Handle
	// Format optionally reinterprets the resource format.
	Format Format
	// Dimension selects the view dimensionality.
	Dimension ViewDimension
	// MipSlice is the mip level bound.
	MipSlice int32
	// Flags select read-only aspects.
	Flags DSVFlags
}

// BindingSampler binds a sampler state slot.
type BindingSampler struct {
	// Resource is the sampler to bind.
	Resource core.Handle
}

// PipelineBindingSetDesc describes the shader-visible descriptor tables of a
// pipeline binding set. Slice lengths are bounded by the binding capacities
// in limits.go.
type PipelineBindingSetDesc struct {
	// PipelineState is the graphics or compute pipeline the set binds for.
	PipelineState core.Handle
	// NumCBVs reserves constant buffer view slots.
	NumCBVs int32
	// NumSRVs reserves shader resource view slots.
	NumSRVs int32
	// NumUAVs reserves unordered access view slots.
	NumUAVs int32
	// NumSamplers reserves sampler slots.
	NumSamplers int32
	// ShaderVisible allocates the tables from the shader-visible heap.
	ShaderVisible bool
}

// VertexBufferBinding binds one vertex stream.
type VertexBufferBinding struct {
	// Resource is the vertex buffer.
	Resource core.Handle
	// Offset is the byte offset of the first vertex.
	Offset int32
	// Size is the byte size of the bound range.
	Size int32
	// Stride is the byte stride between vertices.
	Stride int32
}

// IndexBufferBinding binds the index buffer.
type IndexBufferBinding struct {
	// Resource is the index buffer.
	Resource core.Handle
	// Offset is the byte offset of the first index.
	Offset int32
	// Size is the byte size of the bound range.
	Size int32
	// Stride is the byte size of one index; 2 or 4.
	Stride int32
}

// DrawBindingSetDesc describes the input-assembler bindings for draws.
type DrawBindingSetDesc struct {
	// VBs are the vertex stream bindings.
	VBs [MaxVertexStreams]VertexBufferBinding
	// IB is the optional index buffer binding. A zero Resource handle
	// selects non-indexed draws.
	IB IndexBufferBinding
}

// FrameBindingSetDesc describes the output-merger bindings for draws.
type FrameBindingSetDesc struct {
	// RTVs are the render target views. A swap chain may only be bound
	// at RTV 0.
	RTVs [MaxBoundRTVs]BindingRTV
	// DSV is the optional depth stencil view.
	DSV BindingDSV
}

// Viewport is the rasterizer viewport transform.
type Viewport struct {
	X    float32
	Y    float32
	W    float32
	H    float32
	ZMin float32
	ZMax float32
}

// ScissorRect clips rasterization to a rectangle.
type ScissorRect struct {
	X int32
	Y int32
	W int32
	H int32
}

// DrawState is the per-draw dynamic state.
type DrawState struct {
	// Viewport is the viewport transform.
	Viewport Viewport
	// ScissorRect is the scissor rectangle.
	ScissorRect ScissorRect
	// StencilRef is the stencil reference value.
	StencilRef uint8
}

// PrimitiveTopology re-exports the shared topology vocabulary so callers of
// the recorder only need this package for draw parameters.
type PrimitiveTopology = gputypes.PrimitiveTopology
