package container

import "image/color"

// ParseColorTable parses n RGBQUAD entries. Each entry stores blue, green,
// red, and a reserved byte; the reserved byte is ignored and all parsed
// colors are opaque.
func ParseColorTable(data []byte, n int) ([]color.NRGBA, error) {
	if n < 0 || n > 256 {
		return nil, ErrInvalidColorTable
	}
	if len(data) < n*PaletteEntrySize {
		return nil, ErrTruncated
	}
	pal := make([]color.NRGBA, n)
	for i := 0; i < n; i++ {
		off := i * PaletteEntrySize
		pal[i] = color.NRGBA{
			B: data[off],
			G: data[off+1],
			R: data[off+2],
			A: 0xff,
		}
	}
	return pal, nil
}

// PutColorTable writes the palette as RGBQUAD entries into data, which
// must have room for len(pal) entries. Alpha is not representable in the
// color table; the reserved byte is written as zero.
func PutColorTable(data []byte, pal []color.NRGBA) {
	for i, c := range pal {
		off := i * PaletteEntrySize
		data[off] = c.B
		data[off+1] = c.G
		data[off+2] = c.R
		data[off+3] = 0
	}
}
