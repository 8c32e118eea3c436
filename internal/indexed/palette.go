package indexed

import (
	"fmt"
	"image/color"
)

// Palette is an ordered color table. A pixel's packed index is its
// position in this table.
type Palette []color.NRGBA

// FallbackColor is the reserved entry appended to every built palette. It
// guarantees that any index emitted during packing resolves to a color.
var FallbackColor = color.NRGBA{A: 0xff} // opaque black

// BuildPalette returns the distinct colors of pixels in first-occurrence
// order, with FallbackColor appended unconditionally at the end. Equality
// is exact, channel-wise.
func BuildPalette(pixels []color.NRGBA) Palette {
	seen := make(map[color.NRGBA]struct{}, 16)
	pal := make(Palette, 0, 16)
	for _, px := range pixels {
		if _, ok := seen[px]; ok {
			continue
		}
		seen[px] = struct{}{}
		pal = append(pal, px)
	}
	return append(pal, FallbackColor)
}

// Index returns the position of c in the palette.
func (p Palette) Index(c color.NRGBA) (int, error) {
	for i, pc := range p {
		if pc == c {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %v", ErrColorNotFound, c)
}

// lookup builds the reverse color-to-index map used by Pack. When the
// palette contains duplicate colors, the earliest index wins.
func (p Palette) lookup() map[color.NRGBA]int {
	m := make(map[color.NRGBA]int, len(p))
	for i := len(p) - 1; i >= 0; i-- {
		m[p[i]] = i
	}
	return m
}
