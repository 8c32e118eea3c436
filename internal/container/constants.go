// Package container reads and writes the BMP file structure surrounding
// the packed pixel data: the BITMAPFILEHEADER, the BITMAPINFOHEADER, and
// the RGBQUAD color table. All multi-byte fields are little-endian.
package container

import "encoding/binary"

// Header sizes, in bytes.
const (
	FileHeaderSize = 14 // BITMAPFILEHEADER
	InfoHeaderSize = 40 // BITMAPINFOHEADER (the Windows 3.x version)
	HeadersSize    = FileHeaderSize + InfoHeaderSize

	// PaletteEntrySize is the size of one RGBQUAD color table entry.
	PaletteEntrySize = 4
)

// Signature is the magic value in the first two header bytes ("BM").
const Signature = 0x4d42

// Compression values from the info header.
const (
	BIRGB       uint32 = 0 // uncompressed
	BIRLE8      uint32 = 1
	BIRLE4      uint32 = 2
	BIBitfields uint32 = 3
)

// Limits. BMP dimensions are signed 32-bit, but we refuse images whose
// index buffer would not fit comfortably in memory.
const (
	MaxDimension = 1 << 24
	MaxImageArea = uint64(1) << 30
)

// ReadLE16 reads a little-endian uint16 from data.
func ReadLE16(data []byte) uint16 {
	return binary.LittleEndian.Uint16(data)
}

// ReadLE32 reads a little-endian uint32 from data.
func ReadLE32(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data)
}

// PutLE16 writes a little-endian uint16 to data.
func PutLE16(data []byte, v uint16) {
	binary.LittleEndian.PutUint16(data, v)
}

// PutLE32 writes a little-endian uint32 to data.
func PutLE32(data []byte, v uint32) {
	binary.LittleEndian.PutUint32(data, v)
}
