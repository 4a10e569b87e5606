// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

import "github.com/gogpu/gputypes"

// VertexUsage identifies the semantic of a vertex element.
type VertexUsage int8

const (
	// VertexUsagePosition is a position semantic.
	VertexUsagePosition VertexUsage = iota
	// VertexUsageNormal is a normal semantic.
	VertexUsageNormal
	// VertexUsageTexcoord is a texture coordinate semantic.
	VertexUsageTexcoord
	// VertexUsageColor is a color semantic.
	VertexUsageColor
	// VertexUsageTangent is a tangent semantic.
	VertexUsageTangent
	// VertexUsageBlendWeights is a blend weights semantic.
	VertexUsageBlendWeights
	// VertexUsageBlendIndices is a blend indices semantic.
	VertexUsageBlendIndices
)

// VertexElement describes one element of the vertex input layout.
type VertexElement struct {
	// StreamIdx is the vertex stream the element is fetched from.
	StreamIdx int32
	// Offset is the byte offset within the stream, or -1 to append.
	Offset int32
	// Format is the element data format.
	Format gputypes.VertexFormat
	// Usage is the element semantic.
	Usage VertexUsage
	// UsageIdx disambiguates repeated semantics.
	UsageIdx int32
}

// vertexFormatSizes maps a vertex format to its byte size.
var vertexFormatSizes = map[gputypes.VertexFormat]int32{
	gputypes.VertexFormatUint8x2:   2,
	gputypes.VertexFormatUint8x4:   4,
	gputypes.VertexFormatSint8x2:   2,
	gputypes.VertexFormatSint8x4:   4,
	gputypes.VertexFormatUnorm8x2:  2,
	gputypes.VertexFormatUnorm8x4:  4,
	gputypes.VertexFormatSnorm8x2:  2,
	gputypes.VertexFormatSnorm8x4:  4,
	gputypes.VertexFormatUint16x2:  4,
	gputypes.VertexFormatUint16x4:  8,
	gputypes.VertexFormatSint16x2:  4,
	gputypes.VertexFormatSint16x4:  8,
	gputypes.VertexFormatUnorm16x2: 4,
	gputypes.VertexFormatUnorm16x4: 8,
	gputypes.VertexFormatSnorm16x2: 4,
	gputypes.VertexFormatSnorm16x4: 8,
	gputypes.VertexFormatFloat16x2: 4,
	gputypes.VertexFormatFloat16x4: 8,
	gputypes.VertexFormatFloat32:   4,
	gputypes.VertexFormatFloat32x2: 8,
	gputypes.VertexFormatFloat32x3: 12,
	gputypes.VertexFormatFloat32x4: 16,
	gputypes.VertexFormatUint32:    4,
	gputypes.VertexFormatUint32x2:  8,
	gputypes.VertexFormatUint32x3:  12,
	gputypes.VertexFormatUint32x4:  16,
	gputypes.VertexFormatSint32:    4,
	gputypes.VertexFormatSint32x2:  8,
	gputypes.VertexFormatSint32x3:  12,
	gputypes.VertexFormatSint32x4:  16,
}

// VertexFormatSize returns the byte size of a vertex format.
func VertexFormatSize(format gputypes.VertexFormat) int32 {
	return vertexFormatSizes[format]
}

// GetStride sums the element sizes of one vertex stream.
func GetStride(elements []VertexElement, streamIdx int32) int32 {
	var stride int32
	for i := range elements {
		if elements[i].StreamIdx == streamIdx {
			stride += VertexFormatSize(elements[i].Format)
		}
	}
	return stride
}
