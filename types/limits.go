// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

// Binding capacities and frame limits. Backends must honour these.
const (
	// MaxBoundRTVs is the maximum number of simultaneously bound render
	// target views.
	MaxBoundRTVs = 8

	// MaxCBVBindings is the maximum number of constant buffer views in a
	// pipeline binding set.
	MaxCBVBindings = 8

	// MaxSRVBindings is the maximum number of shader resource views in a
	// pipeline binding set.
	MaxSRVBindings = 32

	// MaxUAVBindings is the maximum number of unordered access views in a
	// pipeline binding set.
	MaxUAVBindings = 8

	// MaxSamplerBindings is the maximum number of samplers in a pipeline
	// binding set.
	MaxSamplerBindings = 16

	// MaxVertexStreams is the maximum number of vertex streams in a draw
	// binding set.
	MaxVertexStreams = 16

	// MaxVertexElements is the maximum number of vertex input elements.
	MaxVertexElements = 16

	// MaxGpuFrames is the maximum number of CPU-submitted, not yet
	// completed frames.
	MaxGpuFrames = 3

	// UploadAlignment is the default alignment of upload allocations.
	UploadAlignment = 256

	// MaxUploadAlignment is the largest supported upload alignment.
	MaxUploadAlignment = 64 * 1024
)
