// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

// BindFlags describe how a resource may be bound to the pipeline.
type BindFlags uint32

const (
	// BindNone leaves the resource usable only as a copy source/dest.
	BindNone BindFlags = 0
	// BindVertexBuffer allows binding as a vertex buffer.
	BindVertexBuffer BindFlags = 1 << 0
	// BindIndexBuffer allows binding as an index buffer.
	BindIndexBuffer BindFlags = 1 << 1
	// BindConstantBuffer allows binding as a constant buffer.
	BindConstantBuffer BindFlags = 1 << 2
	// BindIndirectBuffer allows use as an indirect argument buffer.
	BindIndirectBuffer BindFlags = 1 << 3
	// BindShaderResource allows binding as a shader resource view.
	BindShaderResource BindFlags = 1 << 4
	// BindUnorderedAccess allows binding as an unordered access view.
	BindUnorderedAccess BindFlags = 1 << 5
	// BindRenderTarget allows binding as a render target view.
	BindRenderTarget BindFlags = 1 << 6
	// BindDepthStencil allows binding as a depth stencil view.
	BindDepthStencil BindFlags = 1 << 7
	// BindPresent marks a swap chain back-buffer.
	BindPresent BindFlags = 1 << 8
)

// Contains reports whether all flags in other are present in f.
func (f BindFlags) Contains(other BindFlags) bool {
	return f&other == other
}

// ResourceState is a bitset of resource usage states a resource can be
// transitioned between. StateCommon is the zero value.
type ResourceState uint32

const (
	// StateCommon is the idle state.
	StateCommon ResourceState = 0
	// StateVertexAndConstantBuffer covers vertex and constant buffer reads.
	StateVertexAndConstantBuffer ResourceState = 1 << 0
	// StateIndexBuffer covers index buffer reads.
	StateIndexBuffer ResourceState = 1 << 1
	// StateRenderTarget covers render target writes.
	StateRenderTarget ResourceState = 1 << 2
	// StateUnorderedAccess covers unordered access reads and writes.
	StateUnorderedAccess ResourceState = 1 << 3
	// StateDepthWrite covers depth stencil writes.
	StateDepthWrite ResourceState = 1 << 4
	// StateDepthRead covers read-only depth stencil access.
	StateDepthRead ResourceState = 1 << 5
	// StateNonPixelShaderResource covers SRV reads outside the pixel stage.
	StateNonPixelShaderResource ResourceState = 1 << 6
	// StatePixelShaderResource covers SRV reads in the pixel stage.
	StatePixelShaderResource ResourceState = 1 << 7
	// StateIndirectArgument covers indirect argument reads.
	StateIndirectArgument ResourceState = 1 << 8
	// StateCopyDest covers copy destination writes.
	StateCopyDest ResourceState = 1 << 9
	// StateCopySource covers copy source reads.
	StateCopySource ResourceState = 1 << 10
	// StatePresent is the resting state of a swap chain back-buffer.
	StatePresent ResourceState = 1 << 11

	// StateShaderResource covers SRV reads in any stage.
	StateShaderResource = StatePixelShaderResource | StateNonPixelShaderResource
)

// Contains reports whether all bits of other are present in s.
func (s ResourceState) Contains(other ResourceState) bool {
	return s&other == other
}

// ResourceStates derives the full set of states a resource with the given
// bind flags may occupy. Copy source/dest are always legal.
func ResourceStates(bindFlags BindFlags) ResourceState {
	states := StateCopySource | StateCopyDest
	if bindFlags.Contains(BindVertexBuffer) || bindFlags.Contains(BindConstantBuffer) {
		states |= StateVertexAndConstantBuffer
	}
	if bindFlags.Contains(BindIndexBuffer) {
		states |= StateIndexBuffer
	}
	if bindFlags.Contains(BindIndirectBuffer) {
		states |= StateIndirectArgument
	}
	if bindFlags.Contains(BindShaderResource) {
		states |= StateShaderResource
	}
	if bindFlags.Contains(BindUnorderedAccess) {
		states |= StateUnorderedAccess
	}
	if bindFlags.Contains(BindRenderTarget) {
		states |= StateRenderTarget
	}
	if bindFlags.Contains(BindDepthStencil) {
		states |= StateDepthWrite | StateDepthRead
	}
	if bindFlags.Contains(BindPresent) {
		states |= StatePresent
	}
	return states
}

// DefaultResourceState derives the single resting state for a resource with
// the given bind flags. This is the state the resource is created in and
// restored to at the end of every compiled command list.
func DefaultResourceState(bindFlags BindFlags) ResourceState {
	switch {
	case bindFlags.Contains(BindPresent):
		return StatePresent
	case bindFlags.Contains(BindDepthStencil):
		return StateDepthWrite
	case bindFlags.Contains(BindRenderTarget):
		return StateRenderTarget
	case bindFlags.Contains(BindShaderResource):
		return StateShaderResource
	case bindFlags.Contains(BindUnorderedAccess):
		return StateUnorderedAccess
	case bindFlags.Contains(BindVertexBuffer), bindFlags.Contains(BindConstantBuffer):
		return StateVertexAndConstantBuffer
	case bindFlags.Contains(BindIndexBuffer):
		return StateIndexBuffer
	case bindFlags.Contains(BindIndirectBuffer):
		return StateIndirectArgument
	default:
		return StateCommon
	}
}

// TextureType selects the dimensionality of a texture.
type TextureType int8

const (
	// Texture1D is a one-dimensional texture.
	Texture1D TextureType = iota
	// Texture2D is a two-dimensional texture.
	Texture2D
	// Texture3D is a volume texture.
	Texture3D
	// TextureCube is a cube map (six 2D faces per element).
	TextureCube
)

// BufferDesc describes a buffer resource.
type BufferDesc struct {
	// Size is the buffer size in bytes.
	Size int64
	// BindFlags describe the allowed bindings.
	BindFlags BindFlags
}

// TextureDesc describes a texture resource.
type TextureDesc struct {
	// Type is the texture dimensionality.
	Type TextureType
	// BindFlags describe the allowed bindings.
	BindFlags BindFlags
	// Width in texels.
	Width int32
	// Height in texels.
	Height int32
	// Depth in texels (3D textures only).
	Depth int32
	// Elements is the number of array elements.
	Elements int32
	// Levels is the number of mip levels.
	Levels int32
	// Format of the texture data.
	Format Format
}

// SubResourceCount returns the number of subresources of the texture:
// levels × elements, ×6 for cube maps.
func (d *TextureDesc) SubResourceCount() int32 {
	n := d.Levels * d.Elements
	if d.Type == TextureCube {
		n *= 6
	}
	return n
}

// SwapChainDesc describes a swap chain.
type SwapChainDesc struct {
	// Width of the back-buffers in pixels.
	Width int32
	// Height of the back-buffers in pixels.
	Height int32
	// Format of the back-buffers.
	Format Format
	// BufferCount is the number of back-buffers.
	BufferCount int32
	// OutputWindow is the opaque native window handle.
	OutputWindow uintptr
}

// TextureSubResourceData points at source texel data for an update.
type TextureSubResourceData struct {
	// Data is the texel payload.
	Data []byte
	// RowPitch is the byte stride between rows.
	RowPitch int64
	// SlicePitch is the byte stride between depth slices.
	SlicePitch int64
}

// Point is an integer offset into a texture subresource.
type Point struct {
	X int32
	Y int32
	Z int32
}

// Box is an integer region of a texture subresource.
type Box struct {
	X int32
	Y int32
	Z int32
	W int32
	H int32
	D int32
}

// ShaderDesc carries opaque compiled shader bytecode.
type ShaderDesc struct {
	// Data is the backend-specific bytecode blob.
	Data []byte
}
