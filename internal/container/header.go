package container

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrTruncated         = errors.New("bmp: truncated data")
	ErrInvalidSignature  = errors.New("bmp: invalid signature")
	ErrInvalidHeader     = errors.New("bmp: invalid header")
	ErrUnsupported       = errors.New("bmp: unsupported format")
	ErrInvalidImage      = errors.New("bmp: invalid image dimensions")
	ErrInvalidColorTable = errors.New("bmp: invalid color table")
)

// FileHeader holds the parsed BITMAPFILEHEADER.
type FileHeader struct {
	FileSize   uint32 // declared total file size, in bytes
	DataOffset uint32 // byte offset from the start of the file to the pixel data
}

// ParseFileHeader validates and parses the 14-byte file header.
func ParseFileHeader(data []byte) (FileHeader, error) {
	if len(data) < FileHeaderSize {
		return FileHeader{}, ErrTruncated
	}
	if ReadLE16(data[0:2]) != Signature {
		return FileHeader{}, ErrInvalidSignature
	}
	h := FileHeader{
		FileSize:   ReadLE32(data[2:6]),
		DataOffset: ReadLE32(data[10:14]),
	}
	if h.DataOffset < HeadersSize {
		return FileHeader{}, fmt.Errorf("%w: data offset %d overlaps headers", ErrInvalidHeader, h.DataOffset)
	}
	return h, nil
}

// Put writes the 14-byte file header into data, which must have room.
// The two reserved fields are written as zero.
func (h FileHeader) Put(data []byte) {
	PutLE16(data[0:2], Signature)
	PutLE32(data[2:6], h.FileSize)
	PutLE16(data[6:8], 0)
	PutLE16(data[8:10], 0)
	PutLE32(data[10:14], h.DataOffset)
}

// InfoHeader holds the parsed BITMAPINFOHEADER. Width and Height are
// normalized to positive values; a negative stored height (top-down row
// order) is reported through TopDown.
type InfoHeader struct {
	HeaderSize      uint32 // declared size of the info header variant
	Width           int
	Height          int
	TopDown         bool // rows stored top-to-bottom (negative stored height)
	BitCount        int  // bits per pixel
	Compression     uint32
	SizeImage       uint32 // declared pixel-data size (may be 0 for BIRGB)
	XPixPerMeter    int32
	YPixPerMeter    int32
	ColorsUsed      uint32 // color table entries present (0 = full table)
	ColorsImportant uint32
}

// ParseInfoHeader parses the info header that follows the file header.
// Later header variants (V4, V5) only extend the 40-byte layout, so any
// declared size of at least InfoHeaderSize is accepted; the extra fields
// are skipped via the declared size.
func ParseInfoHeader(data []byte) (InfoHeader, error) {
	if len(data) < InfoHeaderSize {
		return InfoHeader{}, ErrTruncated
	}

	h := InfoHeader{
		HeaderSize:      ReadLE32(data[0:4]),
		Compression:     ReadLE32(data[16:20]),
		SizeImage:       ReadLE32(data[20:24]),
		XPixPerMeter:    int32(ReadLE32(data[24:28])),
		YPixPerMeter:    int32(ReadLE32(data[28:32])),
		ColorsUsed:      ReadLE32(data[32:36]),
		ColorsImportant: ReadLE32(data[36:40]),
	}
	if h.HeaderSize < InfoHeaderSize {
		return InfoHeader{}, fmt.Errorf("%w: info header size %d", ErrInvalidHeader, h.HeaderSize)
	}

	width := int(int32(ReadLE32(data[4:8])))
	height := int(int32(ReadLE32(data[8:12])))
	if height < 0 {
		h.TopDown = true
		height = -height
	}
	if width <= 0 || height == 0 {
		return InfoHeader{}, fmt.Errorf("%w: %dx%d", ErrInvalidImage, width, height)
	}
	if width > MaxDimension || height > MaxDimension || uint64(width)*uint64(height) > MaxImageArea {
		return InfoHeader{}, fmt.Errorf("%w: %dx%d exceeds limits", ErrInvalidImage, width, height)
	}
	h.Width = width
	h.Height = height

	if planes := ReadLE16(data[12:14]); planes != 1 {
		return InfoHeader{}, fmt.Errorf("%w: %d color planes", ErrInvalidHeader, planes)
	}
	h.BitCount = int(ReadLE16(data[14:16]))

	return h, nil
}

// Put writes the 40-byte info header into data, which must have room.
// Height is stored negative when TopDown is set.
func (h InfoHeader) Put(data []byte) {
	PutLE32(data[0:4], InfoHeaderSize)
	PutLE32(data[4:8], uint32(int32(h.Width)))
	height := int32(h.Height)
	if h.TopDown {
		height = -height
	}
	PutLE32(data[8:12], uint32(height))
	PutLE16(data[12:14], 1) // planes
	PutLE16(data[14:16], uint16(h.BitCount))
	PutLE32(data[16:20], h.Compression)
	PutLE32(data[20:24], h.SizeImage)
	PutLE32(data[24:28], uint32(h.XPixPerMeter))
	PutLE32(data[28:32], uint32(h.YPixPerMeter))
	PutLE32(data[32:36], h.ColorsUsed)
	PutLE32(data[36:40], h.ColorsImportant)
}
