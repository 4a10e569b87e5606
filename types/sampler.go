// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

import "github.com/gogpu/gputypes"

// SamplerState is the value-only description of a sampler.
type SamplerState struct {
	// AddressU is the addressing mode along U.
	AddressU gputypes.AddressMode
	// AddressV is the addressing mode along V.
	AddressV gputypes.AddressMode
	// AddressW is the addressing mode along W.
	AddressW gputypes.AddressMode
	// MinFilter is the minification filter.
	MinFilter gputypes.FilterMode
	// MagFilter is the magnification filter.
	MagFilter gputypes.FilterMode
	// MipFilter is the filter between mip levels.
	MipFilter gputypes.FilterMode
	// Compare is the comparison function for comparison samplers.
	Compare gputypes.CompareFunction
	// MipLODBias biases the computed mip level.
	MipLODBias float32
	// MaxAnisotropy limits anisotropic filtering. Zero disables it.
	MaxAnisotropy uint32
	// BorderColor is the RGBA border color.
	BorderColor [4]float32
	// MinLOD clamps the minimum mip level.
	MinLOD float32
	// MaxLOD clamps the maximum mip level.
	MaxLOD float32
}

// DefaultSamplerState returns a linear-filtered, repeat-addressed sampler.
func DefaultSamplerState() SamplerState {
	return SamplerState{
		AddressU:  gputypes.AddressModeRepeat,
		AddressV:  gputypes.AddressModeRepeat,
		AddressW:  gputypes.AddressModeRepeat,
		MinFilter: gputypes.FilterModeLinear,
		MagFilter: gputypes.FilterModeLinear,
		MipFilter: gputypes.FilterModeLinear,
		Compare:   gputypes.CompareFunctionAlways,
		MaxLOD:    1000.0,
	}
}
