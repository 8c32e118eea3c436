// Package indexed packs and unpacks palette-indexed pixel data for BMP bit
// depths of 1, 4, and 8 bits per pixel.
//
// At these depths several pixels share a byte: indices are packed
// most-significant-bits-first, each row is padded with zero bits to a byte
// boundary and with zero bytes so its total length is a multiple of 4.
// Pack and Unpack are pure functions of their inputs; both directions
// derive the row layout from the same arithmetic so they cannot disagree
// about where a row ends.
package indexed

import (
	"errors"
	"fmt"
)

// Errors returned by the pack/unpack transforms.
var (
	// ErrColorNotFound reports a pixel color missing from the palette.
	// The palette is always built from the same buffer it indexes, so this
	// indicates an internal invariant violation rather than bad input.
	ErrColorNotFound = errors.New("bmp: color not found in palette")

	// ErrIndexRange reports a palette index that does not fit the bit
	// depth (packing) or exceeds the palette bounds (unpacking).
	ErrIndexRange = errors.New("bmp: palette index out of range")

	// ErrTruncated reports a pixel-data stream too short to produce
	// width x height pixels.
	ErrTruncated = errors.New("bmp: truncated pixel data")

	// ErrBadDepth reports a bit depth other than 1, 4, or 8.
	ErrBadDepth = errors.New("bmp: unsupported bit depth")
)

// Depth is the number of bits used to store one palette index.
type Depth int

// Supported bit depths.
const (
	Depth1 Depth = 1
	Depth4 Depth = 4
	Depth8 Depth = 8
)

// Valid reports whether d is one of the supported indexed depths.
func (d Depth) Valid() bool {
	return d == Depth1 || d == Depth4 || d == Depth8
}

// PixelsPerByte returns how many pixels share one byte at this depth.
func (d Depth) PixelsPerByte() int {
	return 8 / int(d)
}

// PaletteCap returns the maximum number of palette entries addressable
// at this depth.
func (d Depth) PaletteCap() int {
	return 1 << d
}

// layout describes the byte structure of one packed row.
type layout struct {
	bitsPerRow  int // width * bits per pixel
	bitPadding  int // zero bits completing the row's final pixel byte
	byteWidth   int // pixel bytes per row, after bit padding
	bytePadding int // zero bytes aligning the row to a 4-byte boundary
	stride      int // byteWidth + bytePadding
}

// rowLayout computes the packed layout of a width-pixel row at depth d.
// Both the packer and the unpacker use this, keeping the two directions'
// padding arithmetic identical.
func rowLayout(width int, d Depth) layout {
	bits := width * int(d)
	bitPad := (8 - bits%8) % 8
	byteWidth := (bits + bitPad) / 8
	bytePad := (4 - byteWidth%4) % 4
	return layout{
		bitsPerRow:  bits,
		bitPadding:  bitPad,
		byteWidth:   byteWidth,
		bytePadding: bytePad,
		stride:      byteWidth + bytePad,
	}
}

// Stride returns the total byte length of one packed row, including all
// padding. Always a multiple of 4.
func Stride(width int, d Depth) int {
	return rowLayout(width, d).stride
}

// MinStreamLen returns the fewest bytes a stream can hold and still
// supply width x height pixels: full strides for all rows but the last,
// whose trailing byte padding is optional.
func MinStreamLen(width, height int, d Depth) int {
	l := rowLayout(width, d)
	return l.stride*(height-1) + l.byteWidth
}

// validateDims checks the pixel-buffer geometry shared by both directions.
func validateDims(width, height int, d Depth) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %d", ErrBadDepth, d)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("bmp: invalid dimensions %dx%d", width, height)
	}
	return nil
}
