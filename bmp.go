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

func init() {
	image.RegisterFormat("bmp", "BM", Decode, DecodeConfig)
}

// Errors returned by the codec. Decode failures caused by malformed input
// wrap more specific container/pixel-data errors; use errors.Is.
var (
	// ErrUnsupported reports a valid BMP file whose variant this codec
	// does not handle, such as a non-indexed bit depth or RLE
	// compression. It is the sentinel the container layer wraps.
	ErrUnsupported = container.ErrUnsupported
)

// Features describes a BMP file's properties.
type Features struct {
	Width      int
	Height     int
	BitDepth   int  // bits per pixel (1, 4, or 8)
	PaletteLen int  // number of color table entries
	TopDown    bool // rows stored top-to-bottom instead of the usual bottom-up
	DataOffset uint32
	FileSize   uint32 // file size declared by the header
}

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of
// the repeated doublings that io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// Decode reads an indexed BMP image from r and returns it as an
// *image.Paletted. Rows are returned in top-to-bottom order regardless of
// how the file stores them.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("bmp: reading data: %w", err)
	}
	return decodeBytes(data)
}

// DecodeConfig returns the color model and dimensions of a BMP image
// without decoding the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("bmp: reading data: %w", err)
	}

	p, err := container.NewParser(data)
	if err != nil {
		return image.Config{}, err
	}

	feat := p.Features()
	return image.Config{
		ColorModel: toColorPalette(p.Palette()),
		Width:      feat.Width,
		Height:     feat.Height,
	}, nil
}

// GetFeatures reads BMP features without decoding pixel data.
func GetFeatures(r io.Reader) (*Features, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("bmp: reading data: %w", err)
	}

	p, err := container.NewParser(data)
	if err != nil {
		return nil, err
	}

	feat := p.Features()
	return &Features{
		Width:      feat.Width,
		Height:     feat.Height,
		BitDepth:   feat.BitCount,
		PaletteLen: feat.PaletteLen,
		TopDown:    feat.TopDown,
		DataOffset: feat.DataOffset,
		FileSize:   feat.FileSize,
	}, nil
}

// decodeBytes decodes a complete BMP file from a byte slice.
func decodeBytes(data []byte) (image.Image, error) {
	p, err := container.NewParser(data)
	if err != nil {
		return nil, err
	}

	feat := p.Features()
	width, height := feat.Width, feat.Height
	depth := indexed.Depth(feat.BitCount)
	pal := p.Palette()

	// Reject short streams up front: the header alone dictates the
	// index-buffer size, and a crafted one must not force a huge
	// allocation before the truncation is noticed.
	if need := indexed.MinStreamLen(width, height, depth); len(p.PixelData()) < need {
		return nil, fmt.Errorf("bmp: unpacking pixel data: %w: stream has %d bytes, need %d",
			indexed.ErrTruncated, len(p.PixelData()), need)
	}

	indexes := pool.Get(width * height)
	defer pool.Put(indexes)
	if err := indexed.UnpackIndexes(indexes, p.PixelData(), width, height, depth); err != nil {
		return nil, fmt.Errorf("bmp: unpacking pixel data: %w", err)
	}

	img := image.NewPaletted(image.Rect(0, 0, width, height), toColorPalette(pal))
	for y := 0; y < height; y++ {
		srcRow := y
		if !feat.TopDown {
			srcRow = height - 1 - y // file rows run bottom-up
		}
		src := indexes[srcRow*width : (srcRow+1)*width]
		for _, idx := range src {
			if int(idx) >= len(pal) {
				return nil, fmt.Errorf("bmp: unpacking pixel data: %w: index %d (palette has %d entries)",
					indexed.ErrIndexRange, idx, len(pal))
			}
		}
		copy(img.Pix[y*img.Stride:y*img.Stride+width], src)
	}
	return img, nil
}

// toColorPalette converts the container's color table to a color.Palette.
func toColorPalette(pal []color.NRGBA) color.Palette {
	cp := make(color.Palette, len(pal))
	for i, c := range pal {
		cp[i] = c
	}
	return cp
}
