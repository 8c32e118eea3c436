package indexed

import (
	"fmt"
	"image/color"

	"github.com/deepteams/bmp/internal/bitio"
	"github.com/deepteams/bmp/internal/pool"
)

// Pack encodes a row-major pixel buffer of length width*height into the
// padded pixel-data block, resolving each color through pal. The returned
// byte slice is freshly allocated and owned by the caller.
func Pack(pixels []color.NRGBA, width, height int, d Depth, pal Palette) ([]byte, error) {
	if err := validateDims(width, height, d); err != nil {
		return nil, err
	}
	if len(pixels) != width*height {
		return nil, fmt.Errorf("bmp: pixel buffer has %d pixels, want %d", len(pixels), width*height)
	}

	lookup := pal.lookup()
	indexes := pool.Get(len(pixels))
	defer pool.Put(indexes)
	for i, px := range pixels {
		idx, ok := lookup[px]
		if !ok {
			return nil, fmt.Errorf("%w: %v at pixel %d", ErrColorNotFound, px, i)
		}
		if idx >= d.PaletteCap() {
			return nil, fmt.Errorf("%w: index %d does not fit %d-bit depth", ErrIndexRange, idx, d)
		}
		indexes[i] = uint8(idx)
	}

	return PackIndexes(indexes, width, height, d)
}

// PackIndexes encodes pre-resolved palette indices. Every index must fit
// in the depth's bits per pixel (1-bit: 0..1, 4-bit: 0..15, 8-bit: 0..255).
func PackIndexes(indexes []byte, width, height int, d Depth) ([]byte, error) {
	if err := validateDims(width, height, d); err != nil {
		return nil, err
	}
	if len(indexes) != width*height {
		return nil, fmt.Errorf("bmp: index buffer has %d entries, want %d", len(indexes), width*height)
	}

	lay := rowLayout(width, d)
	step := int(d)
	limit := uint32(d.PaletteCap())

	bw := bitio.NewWriter(lay.stride * height)
	for y := 0; y < height; y++ {
		row := indexes[y*width : (y+1)*width]
		for x, idx := range row {
			if uint32(idx) >= limit {
				return nil, fmt.Errorf("%w: index %d at pixel (%d,%d) does not fit %d-bit depth",
					ErrIndexRange, idx, x, y, d)
			}
			bw.WriteBits(uint32(idx), step)
		}
		// End of row: complete the final pixel byte, then align to 4.
		bw.AlignByte()
		bw.WriteZeroBytes(lay.bytePadding)
	}
	return bw.Finish(), nil
}
