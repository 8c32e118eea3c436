package bmp

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/deepteams/bmp/internal/container"
	"github.com/deepteams/bmp/internal/indexed"
	"github.com/deepteams/bmp/internal/pool"
)

// defaultPixPerMeter is the resolution written when the options leave it
// unset: 2835 pixels per meter, i.e. 72 DPI.
const defaultPixPerMeter = 2835

// EncoderOptions controls BMP encoding parameters.
type EncoderOptions struct {
	// BitDepth selects the bits per pixel (1, 4, or 8). Zero (the
	// default) picks the smallest depth whose palette capacity fits the
	// image's color count.
	BitDepth int

	// XPixPerMeter and YPixPerMeter set the resolution fields of the
	// info header. Zero values are written as 2835 (72 DPI).
	XPixPerMeter int
	YPixPerMeter int
}

// DefaultOptions returns encoding options with automatic bit depth
// selection and 72 DPI resolution.
func DefaultOptions() *EncoderOptions {
	return &EncoderOptions{
		BitDepth:     0,
		XPixPerMeter: defaultPixPerMeter,
		YPixPerMeter: defaultPixPerMeter,
	}
}

// validateOptions returns an error describing the first invalid parameter
// found, or nil if the configuration is valid.
func validateOptions(opts *EncoderOptions) error {
	switch opts.BitDepth {
	case 0, 1, 4, 8:
	default:
		return fmt.Errorf("bmp: invalid BitDepth %d (must be 1, 4, 8, or 0 for auto)", opts.BitDepth)
	}
	if opts.XPixPerMeter < 0 || opts.YPixPerMeter < 0 {
		return fmt.Errorf("bmp: invalid resolution %dx%d px/m (must be >= 0)",
			opts.XPixPerMeter, opts.YPixPerMeter)
	}
	return nil
}

// resolveDepth returns the bit depth to encode at. requested is the
// option value (0 = auto); colors is the number of palette entries the
// image needs, excluding the reserved fallback.
func resolveDepth(requested, colors int) (indexed.Depth, error) {
	if requested != 0 {
		d := indexed.Depth(requested)
		if colors > d.PaletteCap() {
			return 0, fmt.Errorf("bmp: %d colors do not fit %d-bit depth (max %d)",
				colors, requested, d.PaletteCap())
		}
		return d, nil
	}
	switch {
	case colors <= indexed.Depth1.PaletteCap():
		return indexed.Depth1, nil
	case colors <= indexed.Depth4.PaletteCap():
		return indexed.Depth4, nil
	case colors <= indexed.Depth8.PaletteCap():
		return indexed.Depth8, nil
	default:
		return 0, fmt.Errorf("bmp: image has %d distinct colors, more than the 256 an indexed BMP can hold", colors)
	}
}

// resolvePixPerMeter returns the effective resolution field value.
func resolvePixPerMeter(v int) int32 {
	if v == 0 {
		return defaultPixPerMeter
	}
	return int32(v)
}

// Encode writes img to w as an indexed BMP. If opts is nil,
// DefaultOptions() is used. Rows are written in the conventional
// bottom-up order.
//
// A *image.Paletted is encoded from its palette and indices directly;
// any other image is encoded by collecting its distinct colors, which
// must number at most 256 (after conversion to 8-bit NRGBA).
func Encode(w io.Writer, img image.Image, opts *EncoderOptions) error {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := validateOptions(opts); err != nil {
		return err
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("bmp: cannot encode empty image %dx%d", width, height)
	}
	if width > container.MaxDimension || height > container.MaxDimension ||
		uint64(width)*uint64(height) > container.MaxImageArea {
		return fmt.Errorf("bmp: image dimensions %dx%d exceed limits", width, height)
	}

	var (
		data  []byte
		pal   indexed.Palette
		depth indexed.Depth
		err   error
	)
	if p, ok := img.(*image.Paletted); ok {
		data, pal, depth, err = encodePaletted(p, opts)
	} else {
		data, pal, depth, err = encodeGeneric(img, opts)
	}
	if err != nil {
		return err
	}

	return writeFile(w, width, height, depth, data, pal, opts)
}

// encodePaletted packs an *image.Paletted from its existing palette and
// index data, bypassing color resolution.
func encodePaletted(p *image.Paletted, opts *EncoderOptions) ([]byte, indexed.Palette, indexed.Depth, error) {
	b := p.Bounds()
	width, height := b.Dx(), b.Dy()

	pal := make(indexed.Palette, len(p.Palette))
	for i, c := range p.Palette {
		pal[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
	}

	depth, err := resolveDepth(opts.BitDepth, len(pal))
	if err != nil {
		return nil, nil, 0, err
	}

	// Gather indices in bottom-up row order. Each index must name an
	// actual palette entry, not merely fit the bit depth: the color
	// table written out has only len(pal) entries.
	indexes := pool.Get(width * height)
	defer pool.Put(indexes)
	for y := 0; y < height; y++ {
		srcY := b.Min.Y + height - 1 - y
		off := p.PixOffset(b.Min.X, srcY)
		row := p.Pix[off : off+width]
		for x, idx := range row {
			if int(idx) >= len(pal) {
				return nil, nil, 0, fmt.Errorf("%w: index %d at (%d,%d) (palette has %d entries)",
					indexed.ErrIndexRange, idx, b.Min.X+x, srcY, len(pal))
			}
		}
		copy(indexes[y*width:(y+1)*width], row)
	}

	data, err := indexed.PackIndexes(indexes, width, height, depth)
	if err != nil {
		return nil, nil, 0, err
	}
	return data, pal, depth, nil
}

// encodeGeneric builds a palette from the image's distinct colors and
// packs through it.
func encodeGeneric(img image.Image, opts *EncoderOptions) ([]byte, indexed.Palette, indexed.Depth, error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	// Collect pixels in bottom-up row order.
	pixels := make([]color.NRGBA, width*height)
	i := 0
	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		for x := b.Min.X; x < b.Max.X; x++ {
			pixels[i] = color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			i++
		}
	}

	pal := indexed.BuildPalette(pixels)
	distinct := len(pal) - 1 // the reserved fallback does not count

	depth, err := resolveDepth(opts.BitDepth, distinct)
	if err != nil {
		return nil, nil, 0, err
	}

	data, err := indexed.Pack(pixels, width, height, depth, pal)
	if err != nil {
		return nil, nil, 0, err
	}
	return data, pal, depth, nil
}

// writeFile assembles headers and color table around the packed pixel
// data and writes the complete file to w.
func writeFile(w io.Writer, width, height int, depth indexed.Depth, data []byte, pal indexed.Palette, opts *EncoderOptions) error {
	// The color table holds the palette, truncated to the depth's
	// capacity. The reserved fallback entry is dropped first when the
	// distinct colors alone fill the table.
	entries := len(pal)
	if limit := depth.PaletteCap(); entries > limit {
		entries = limit
	}

	tableSize := entries * container.PaletteEntrySize
	dataOffset := container.HeadersSize + tableSize
	fileSize := dataOffset + len(data)

	scratch := pool.Get(dataOffset)
	defer pool.Put(scratch)

	fh := container.FileHeader{
		FileSize:   uint32(fileSize),
		DataOffset: uint32(dataOffset),
	}
	fh.Put(scratch)

	ih := container.InfoHeader{
		HeaderSize:   container.InfoHeaderSize,
		Width:        width,
		Height:       height,
		BitCount:     int(depth),
		Compression:  container.BIRGB,
		SizeImage:    uint32(len(data)),
		XPixPerMeter: resolvePixPerMeter(opts.XPixPerMeter),
		YPixPerMeter: resolvePixPerMeter(opts.YPixPerMeter),
		ColorsUsed:   uint32(entries),
	}
	ih.Put(scratch[container.FileHeaderSize:])

	container.PutColorTable(scratch[container.HeadersSize:], pal[:entries])

	if _, err := w.Write(scratch[:dataOffset]); err != nil {
		return fmt.Errorf("bmp: writing headers: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("bmp: writing pixel data: %w", err)
	}
	return nil
}
