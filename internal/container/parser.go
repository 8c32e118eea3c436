package container

import (
	"fmt"
	"image/color"
)

// Features describes the high-level properties of a BMP file, extracted
// from its headers.
type Features struct {
	Width      int
	Height     int
	BitCount   int  // bits per pixel (1, 4, or 8)
	TopDown    bool // rows stored top-to-bottom
	PaletteLen int  // number of color table entries
	DataOffset uint32
	FileSize   uint32 // declared file size from the file header
}

// Parser holds a fully parsed BMP file. It validates the headers and the
// color table in a single pass over the byte slice; the pixel data itself
// is exposed raw for the indexed unpacker.
type Parser struct {
	features  Features
	fileHdr   FileHeader
	infoHdr   InfoHeader
	palette   []color.NRGBA
	pixelData []byte
}

// NewParser creates a parser and immediately parses the provided BMP data.
func NewParser(data []byte) (*Parser, error) {
	p := &Parser{}
	if err := p.parse(data); err != nil {
		return nil, err
	}
	return p, nil
}

// Features returns the parsed file features.
func (p *Parser) Features() Features { return p.features }

// Palette returns the parsed color table, in file order.
func (p *Parser) Palette() []color.NRGBA { return p.palette }

// PixelData returns the raw packed pixel data, starting at the offset the
// file header declares. Its length is whatever remains of the input; the
// unpacker decides whether that is enough.
func (p *Parser) PixelData() []byte { return p.pixelData }

// InfoHeader returns the parsed info header.
func (p *Parser) InfoHeader() InfoHeader { return p.infoHdr }

// parse processes the complete BMP data buffer.
func (p *Parser) parse(data []byte) error {
	fileHdr, err := ParseFileHeader(data)
	if err != nil {
		return err
	}
	infoHdr, err := ParseInfoHeader(data[FileHeaderSize:])
	if err != nil {
		return err
	}
	p.fileHdr = fileHdr
	p.infoHdr = infoHdr

	switch infoHdr.BitCount {
	case 1, 4, 8:
	default:
		return fmt.Errorf("%w: %d bits per pixel", ErrUnsupported, infoHdr.BitCount)
	}
	if infoHdr.Compression != BIRGB {
		return fmt.Errorf("%w: compression type %d", ErrUnsupported, infoHdr.Compression)
	}

	// The color table sits between the info header and the pixel data.
	// ColorsUsed == 0 means the full table for this depth is present.
	maxEntries := 1 << infoHdr.BitCount
	entries := int(infoHdr.ColorsUsed)
	if entries == 0 {
		entries = maxEntries
	}
	if entries > maxEntries {
		return fmt.Errorf("%w: %d entries at %d bits per pixel", ErrInvalidColorTable, entries, infoHdr.BitCount)
	}

	tableOffset := uint64(FileHeaderSize) + uint64(infoHdr.HeaderSize)
	tableEnd := tableOffset + uint64(entries*PaletteEntrySize)
	if tableEnd > uint64(fileHdr.DataOffset) || tableEnd > uint64(len(data)) {
		return ErrTruncated
	}
	pal, err := ParseColorTable(data[tableOffset:], entries)
	if err != nil {
		return err
	}
	p.palette = pal

	if uint64(fileHdr.DataOffset) > uint64(len(data)) {
		return ErrTruncated
	}
	p.pixelData = data[fileHdr.DataOffset:]

	p.features = Features{
		Width:      infoHdr.Width,
		Height:     infoHdr.Height,
		BitCount:   infoHdr.BitCount,
		TopDown:    infoHdr.TopDown,
		PaletteLen: entries,
		DataOffset: fileHdr.DataOffset,
		FileSize:   fileHdr.FileSize,
	}
	return nil
}
