package indexed

import (
	"fmt"
	"image/color"

	"github.com/deepteams/bmp/internal/bitio"
	"github.com/deepteams/bmp/internal/pool"
)

// Unpack decodes a packed pixel-data block into a row-major pixel buffer
// of length width*height, resolving each index through pal. Indices that
// exceed the palette bounds yield ErrIndexRange; a stream too short to
// fill the buffer yields ErrTruncated. Padding bytes after the final row
// are left unread.
func Unpack(data []byte, width, height int, d Depth, pal Palette) ([]color.NRGBA, error) {
	if err := validateDims(width, height, d); err != nil {
		return nil, err
	}

	indexes := pool.Get(width * height)
	defer pool.Put(indexes)
	if err := UnpackIndexes(indexes, data, width, height, d); err != nil {
		return nil, err
	}

	pixels := make([]color.NRGBA, width*height)
	for i, idx := range indexes {
		if int(idx) >= len(pal) {
			return nil, fmt.Errorf("%w: index %d at pixel %d (palette has %d entries)",
				ErrIndexRange, idx, i, len(pal))
		}
		pixels[i] = pal[idx]
	}
	return pixels, nil
}

// UnpackIndexes decodes raw palette indices into dst, which must have
// length width*height. Indices are not checked against any palette; the
// caller owns that decision.
func UnpackIndexes(dst []byte, data []byte, width, height int, d Depth) error {
	if err := validateDims(width, height, d); err != nil {
		return err
	}
	if len(dst) != width*height {
		return fmt.Errorf("bmp: index buffer has %d entries, want %d", len(dst), width*height)
	}

	lay := rowLayout(width, d)
	step := int(d)

	br := bitio.NewReader(data)
	n := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := br.ReadBits(step)
			if br.EOS() {
				return fmt.Errorf("%w: stream ended at pixel (%d,%d) of %dx%d", ErrTruncated, x, y, width, height)
			}
			dst[n] = byte(v)
			n++
		}
		// Row complete: drop the bit padding, then the byte padding.
		// Padding after the final row belongs to the caller.
		br.AlignByte()
		if y != height-1 {
			br.SkipBytes(lay.bytePadding)
		}
	}
	return nil
}
