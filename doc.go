// Package bmp provides a pure Go encoder and decoder for palette-based
// (indexed color) Windows BMP images at bit depths of 1, 4, and 8 bits
// per pixel.
//
// At these depths several pixels share a byte. The codec reproduces the
// on-disk layout exactly: palette indices are packed most-significant-bits
// first within each byte, every row is padded with zero bits to a byte
// boundary, and the total row length is padded with zero bytes to a
// multiple of 4. Rows are stored bottom-up unless the file declares a
// negative height. This package registers itself with the standard
// library's image package so that image.Decode can transparently read
// BMP files.
//
// Compressed (RLE) and true-color (16/24/32 bit) BMP variants are out of
// scope and rejected with ErrUnsupported.
//
// Basic usage for decoding:
//
//	img, err := bmp.Decode(reader)
//
// Basic usage for encoding:
//
//	err := bmp.Encode(writer, img, nil)
package bmp
