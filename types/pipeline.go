// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/gal/core"
)

// StencilOp selects a stencil buffer operation.
type StencilOp uint8

const (
	// StencilOpKeep keeps the current value.
	StencilOpKeep StencilOp = iota
	// StencilOpZero sets the value to zero.
	StencilOpZero
	// StencilOpReplace replaces the value with the reference.
	StencilOpReplace
	// StencilOpIncrClamp increments with clamping.
	StencilOpIncrClamp
	// StencilOpDecrClamp decrements with clamping.
	StencilOpDecrClamp
	// StencilOpInvert bit-inverts the value.
	StencilOpInvert
	// StencilOpIncrWrap increments with wrapping.
	StencilOpIncrWrap
	// StencilOpDecrWrap decrements with wrapping.
	StencilOpDecrWrap
)

// StencilFaceState describes stencil behaviour for one face orientation.
type StencilFaceState struct {
	// Fail is applied when the stencil test fails.
	Fail StencilOp
	// DepthFail is applied when the depth test fails.
	DepthFail StencilOp
	// Pass is applied when both tests pass.
	Pass StencilOp
	// Func is the stencil comparison function.
	Func gputypes.CompareFunction
}

// RenderState is the fixed-function state baked into a graphics pipeline.
type RenderState struct {
	// BlendStates configure blending per bound render target.
	BlendStates [MaxBoundRTVs]BlendState
	// DepthEnable enables the depth test.
	DepthEnable bool
	// DepthWriteMask enables depth writes.
	DepthWriteMask bool
	// DepthFunc is the depth comparison function.
	DepthFunc gputypes.CompareFunction
	// StencilEnable enables the stencil test.
	StencilEnable bool
	// StencilRead masks stencil reads.
	StencilRead uint8
	// StencilWrite masks stencil writes.
	StencilWrite uint8
	// StencilFront is the front-face stencil state.
	StencilFront StencilFaceState
	// StencilBack is the back-face stencil state.
	StencilBack StencilFaceState
	// FillSolid selects solid fill; false selects wireframe.
	FillSolid bool
	// CullMode selects triangle culling.
	CullMode gputypes.CullMode
	// FrontFace selects the winding considered front-facing.
	FrontFace gputypes.FrontFace
	// AntialiasedLine enables line antialiasing.
	AntialiasedLine bool
	// DepthBias biases depth values.
	DepthBias int32
	// SlopeScaledDepthBias scales the bias by primitive slope.
	SlopeScaledDepthBias float32
}

// BlendState configures blending for one render target.
type BlendState struct {
	// Enable turns blending on for the target.
	Enable bool
	// SrcBlend is the source color factor.
	SrcBlend gputypes.BlendFactor
	// DstBlend is the destination color factor.
	DstBlend gputypes.BlendFactor
	// BlendOp combines the color terms.
	BlendOp gputypes.BlendOperation
	// SrcBlendAlpha is the source alpha factor.
	SrcBlendAlpha gputypes.BlendFactor
	// DstBlendAlpha is the destination alpha factor.
	DstBlendAlpha gputypes.BlendFactor
	// BlendOpAlpha combines the alpha terms.
	BlendOpAlpha gputypes.BlendOperation
	// WriteMask selects which channels are written.
	WriteMask gputypes.ColorWriteMask
}

// DefaultRenderState returns an opaque render state with culling disabled.
func DefaultRenderState() RenderState {
	rs := RenderState{
		DepthEnable:    false,
		DepthWriteMask: true,
		DepthFunc:      gputypes.CompareFunctionLessEqual,
		FillSolid:      true,
		CullMode:       gputypes.CullModeNone,
		FrontFace:      gputypes.FrontFaceCCW,
	}
	for i := range rs.BlendStates {
		rs.BlendStates[i] = BlendState{
			SrcBlend:      gputypes.BlendFactorOne,
			DstBlend:      gputypes.BlendFactorZero,
			BlendOp:       gputypes.BlendOperationAdd,
			SrcBlendAlpha: gputypes.BlendFactorOne,
			DstBlendAlpha: gputypes.BlendFactorZero,
			BlendOpAlpha:  gputypes.BlendOperationAdd,
			WriteMask:     gputypes.ColorWriteMaskAll,
		}
	}
	return rs
}

// GraphicsPipelineStateDesc describes an immutable graphics pipeline.
// Shader stages reference shader resources by handle value; the bytecode is
// captured at creation time.
type GraphicsPipelineStateDesc struct {
	// Shaders per stage, indexed by ShaderType. Zero handles are unused
	// stages; the vertex stage is mandatory.
	Shaders [ShaderTypeMax]core.Handle
	// RenderState is the fixed-function state.
	RenderState RenderState
	// VertexElements describe the input layout.
	VertexElements [MaxVertexElements]VertexElement
	// NumVertexElements is the number of valid vertex elements.
	NumVertexElements int32
	// Topology is the primitive topology the pipeline rasterizes.
	Topology gputypes.PrimitiveTopology
	// NumRTs is the number of bound render targets.
	NumRTs int32
	// RTVFormats are the render target formats.
	RTVFormats [MaxBoundRTVs]Format
	// DSVFormat is the depth stencil format.
	DSVFormat Format
}

// ComputePipelineStateDesc describes an immutable compute pipeline.
type ComputePipelineStateDesc struct {
	// Shader is the compute shader handle.
	Shader core.Handle
}

// ShaderType identifies a shader stage.
type ShaderType int8

const (
	// ShaderTypeVertex is the vertex stage.
	ShaderTypeVertex ShaderType = iota
	// ShaderTypeGeometry is the geometry stage.
	ShaderTypeGeometry
	// ShaderTypeHull is the hull (tessellation control) stage.
	ShaderTypeHull
	// ShaderTypeDomain is the domain (tessellation evaluation) stage.
	ShaderTypeDomain
	// ShaderTypePixel is the pixel stage.
	ShaderTypePixel
	// ShaderTypeCompute is the compute stage.
	ShaderTypeCompute

	// ShaderTypeMax is the number of shader stages.
	ShaderTypeMax
)
