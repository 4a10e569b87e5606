// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package types

// Format describes the element format of a buffer or texture.
type Format uint32

const (
	// FormatUnknown is an undefined format.
	FormatUnknown Format = iota

	// 8-bit formats
	FormatR8Unorm
	FormatR8Snorm
	FormatR8Uint
	FormatR8Sint

	// 16-bit formats
	FormatR16Uint
	FormatR16Sint
	FormatR16Float
	FormatRG8Unorm
	FormatRG8Uint

	// 32-bit formats
	FormatR32Uint
	FormatR32Sint
	FormatR32Float
	FormatRG16Uint
	FormatRG16Float
	FormatRGBA8Unorm
	FormatRGBA8UnormSrgb
	FormatRGBA8Snorm
	FormatRGBA8Uint
	FormatBGRA8Unorm
	FormatBGRA8UnormSrgb

	// Packed formats
	FormatRGB10A2Unorm
	FormatRG11B10Float

	// 64-bit formats
	FormatRG32Uint
	FormatRG32Float
	FormatRGBA16Uint
	FormatRGBA16Float

	// 96-bit formats
	FormatRGB32Float

	// 128-bit formats
	FormatRGBA32Uint
	FormatRGBA32Float

	// Depth/stencil formats
	FormatD16Unorm
	FormatD24UnormS8Uint
	FormatD32Float
	FormatD32FloatS8X24Uint

	// Block-compressed formats
	FormatBC1Unorm
	FormatBC1UnormSrgb
	FormatBC2Unorm
	FormatBC2UnormSrgb
	FormatBC3Unorm
	FormatBC3UnormSrgb
	FormatBC4Unorm
	FormatBC4Snorm
	FormatBC5Unorm
	FormatBC5Snorm
	FormatBC6HUF16
	FormatBC6HSF16
	FormatBC7Unorm
	FormatBC7UnormSrgb

	formatMax
)

// FormatMetadata describes the block layout of a format.
type FormatMetadata struct {
	// BlockW is the block width in texels.
	BlockW int32
	// BlockH is the block height in texels.
	BlockH int32
	// BlockBits is the number of bits per block.
	BlockBits int32
	// Compressed reports whether the format is block-compressed.
	Compressed bool
	// Depth reports whether the format carries a depth aspect.
	Depth bool
	// Stencil reports whether the format carries a stencil aspect.
	Stencil bool
}

// formatMetadata is indexed by Format.
var formatMetadata = [formatMax]FormatMetadata{
	FormatUnknown: {1, 1, 0, false, false, false},

	FormatR8Unorm: {1, 1, 8, false, false, false},
	FormatR8Snorm: {1, 1, 8, false, false, false},
	FormatR8Uint:  {1, 1, 8, false, false, false},
	FormatR8Sint:  {1, 1, 8, false, false, false},

	FormatR16Uint:  {1, 1, 16, false, false, false},
	FormatR16Sint:  {1, 1, 16, false, false, false},
	FormatR16Float: {1, 1, 16, false, false, false},
	FormatRG8Unorm: {1, 1, 16, false, false, false},
	FormatRG8Uint:  {1, 1, 16, false, false, false},

	FormatR32Uint:        {1, 1, 32, false, false, false},
	FormatR32Sint:        {1, 1, 32, false, false, false},
	FormatR32Float:       {1, 1, 32, false, false, false},
	FormatRG16Uint:       {1, 1, 32, false, false, false},
	FormatRG16Float:      {1, 1, 32, false, false, false},
	FormatRGBA8Unorm:     {1, 1, 32, false, false, false},
	FormatRGBA8UnormSrgb: {1, 1, 32, false, false, false},
	FormatRGBA8Snorm:     {1, 1, 32, false, false, false},
	FormatRGBA8Uint:      {1, 1, 32, false, false, false},
	FormatBGRA8Unorm:     {1, 1, 32, false, false, false},
	FormatBGRA8UnormSrgb: {1, 1, 32, false, false, false},

	FormatRGB10A2Unorm: {1, 1, 32, false, false, false},
	FormatRG11B10Float: {1, 1, 32, false, false, false},

	FormatRG32Uint:    {1, 1, 64, false, false, false},
	FormatRG32Float:   {1, 1, 64, false, false, false},
	FormatRGBA16Uint:  {1, 1, 64, false, false, false},
	FormatRGBA16Float: {1, 1, 64, false, false, false},

	FormatRGB32Float: {1, 1, 96, false, false, false},

	FormatRGBA32Uint:  {1, 1, 128, false, false, false},
	FormatRGBA32Float: {1, 1, 128, false, false, false},

	FormatD16Unorm:          {1, 1, 16, false, true, false},
	FormatD24UnormS8Uint:    {1, 1, 32, false, true, true},
	FormatD32Float:          {1, 1, 32, false, true, false},
	FormatD32FloatS8X24Uint: {1, 1, 64, false, true, true},

	FormatBC1Unorm:     {4, 4, 64, true, false, false},
	FormatBC1UnormSrgb: {4, 4, 64, true, false, false},
	FormatBC2Unorm:     {4, 4, 128, true, false, false},
	FormatBC2UnormSrgb: {4, 4, 128, true, false, false},
	FormatBC3Unorm:     {4, 4, 128, true, false, false},
	FormatBC3UnormSrgb: {4, 4, 128, true, false, false},
	FormatBC4Unorm:     {4, 4, 64, true, false, false},
	FormatBC4Snorm:     {4, 4, 64, true, false, false},
	FormatBC5Unorm:     {4, 4, 128, true, false, false},
	FormatBC5Snorm:     {4, 4, 128, true, false, false},
	FormatBC6HUF16:     {4, 4, 128, true, false, false},
	FormatBC6HSF16:     {4, 4, 128, true, false, false},
	FormatBC7Unorm:     {4, 4, 128, true, false, false},
	FormatBC7UnormSrgb: {4, 4, 128, true, false, false},
}

// FormatInfo returns the block metadata for a format.
func FormatInfo(format Format) FormatMetadata {
	if format >= formatMax {
		return FormatMetadata{BlockW: 1, BlockH: 1}
	}
	return formatMetadata[format]
}

// Footprint is the byte layout of one texture subresource.
type Footprint struct {
	// RowPitch is the byte stride between rows of blocks.
	RowPitch int64
	// SlicePitch is the byte stride between depth slices.
	SlicePitch int64
	// TotalBytes is the total size of the subresource.
	TotalBytes int64
}

// GetTextureFootprint computes the footprint of a (width, height, depth)
// subresource of the given format. rowPitch and slicePitch override the
// tightly packed pitches when greater than zero.
//
// Returns ErrUnsupported for block-compressed formats with block-unaligned
// dimensions, and ErrInvalidArgument for non-positive dimensions.
func GetTextureFootprint(format Format, width, height, depth int32, rowPitch, slicePitch int64) (Footprint, error) {
	if width <= 0 || height <= 0 || depth <= 0 {
		return Footprint{}, ErrInvalidArgument
	}

	info := FormatInfo(format)
	if info.BlockBits == 0 {
		return Footprint{}, ErrInvalidArgument
	}
	if info.Compressed && (width%info.BlockW != 0 || height%info.BlockH != 0) {
		return Footprint{}, ErrUnsupported
	}

	blocksW := int64((width + info.BlockW - 1) / info.BlockW)
	blocksH := int64((height + info.BlockH - 1) / info.BlockH)

	tightRow := blocksW * int64(info.BlockBits) / 8
	if rowPitch <= 0 {
		rowPitch = tightRow
	} else if rowPitch < tightRow {
		return Footprint{}, ErrInvalidArgument
	}

	tightSlice := rowPitch * blocksH
	if slicePitch <= 0 {
		slicePitch = tightSlice
	} else if slicePitch < tightSlice {
		return Footprint{}, ErrInvalidArgument
	}

	return Footprint{
		RowPitch:   rowPitch,
		SlicePitch: slicePitch,
		TotalBytes: slicePitch * int64(depth),
	}, nil
}

// CopyTextureData copies rows*slices of texel data between two layouts,
// repitching row by row. The row byte count copied is the smaller of the two
// row pitches.
func CopyTextureData(dst []byte, dstFp Footprint, src []byte, srcFp Footprint, rows, slices int32) error {
	if rows <= 0 || slices <= 0 {
		return ErrInvalidArgument
	}

	rowBytes := dstFp.RowPitch
	if srcFp.RowPitch < rowBytes {
		rowBytes = srcFp.RowPitch
	}
	if rowBytes <= 0 {
		return ErrInvalidArgument
	}

	for slice := int64(0); slice < int64(slices); slice++ {
		dstSlice := slice * dstFp.SlicePitch
		srcSlice := slice * srcFp.SlicePitch
		for row := int64(0); row < int64(rows); row++ {
			dstOff := dstSlice + row*dstFp.RowPitch
			srcOff := srcSlice + row*srcFp.RowPitch
			if dstOff+rowBytes > int64(len(dst)) || srcOff+rowBytes > int64(len(src)) {
				return ErrInvalidArgument
			}
			copy(dst[dstOff:dstOff+rowBytes], src[srcOff:srcOff+rowBytes])
		}
	}
	return nil
}
