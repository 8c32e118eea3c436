package indexed

import (
	"bytes"
	"errors"
	"image/color"
	"math/rand"
	"testing"
)

// testColor returns a distinct opaque color for palette slot i.
func testColor(i int) color.NRGBA {
	return color.NRGBA{R: uint8(i), G: uint8(i * 3), B: uint8(255 - i), A: 0xff}
}

func TestRowLayout(t *testing.T) {
	tests := []struct {
		width              int
		depth              Depth
		bitPadding         int
		byteWidth, stride  int
	}{
		{8, Depth1, 0, 1, 4},   // already byte-aligned, pad 1 -> 4
		{3, Depth1, 5, 1, 4},   // 3 bits -> 5 filler bits
		{32, Depth1, 0, 4, 4},  // exactly one aligned word
		{33, Depth1, 7, 5, 8},
		{1, Depth4, 4, 1, 4},
		{3, Depth4, 4, 2, 4},
		{8, Depth4, 0, 4, 4},
		{1, Depth8, 0, 1, 4},
		{4, Depth8, 0, 4, 4},   // byte width already a multiple of 4
		{10, Depth8, 0, 10, 12}, // 10 pixel bytes padded to 12
	}
	for _, tt := range tests {
		lay := rowLayout(tt.width, tt.depth)
		if lay.bitPadding != tt.bitPadding {
			t.Errorf("rowLayout(%d, %d): bitPadding = %d, want %d",
				tt.width, tt.depth, lay.bitPadding, tt.bitPadding)
		}
		if lay.byteWidth != tt.byteWidth {
			t.Errorf("rowLayout(%d, %d): byteWidth = %d, want %d",
				tt.width, tt.depth, lay.byteWidth, tt.byteWidth)
		}
		if lay.stride != tt.stride {
			t.Errorf("rowLayout(%d, %d): stride = %d, want %d",
				tt.width, tt.depth, lay.stride, tt.stride)
		}
	}
}

func TestMinStreamLen(t *testing.T) {
	tests := []struct {
		width, height int
		depth         Depth
		want          int
	}{
		{3, 2, Depth1, 5},    // one full stride + 1 pixel byte
		{3, 1, Depth4, 2},    // single row needs no byte padding
		{10, 3, Depth8, 34},  // 12 + 12 + 10
		{4, 4, Depth8, 16},   // strides with no padding at all
		{1, 1, Depth1, 1},
	}
	for _, tt := range tests {
		if got := MinStreamLen(tt.width, tt.height, tt.depth); got != tt.want {
			t.Errorf("MinStreamLen(%d, %d, %d) = %d, want %d",
				tt.width, tt.height, tt.depth, got, tt.want)
		}
	}
}

func TestStride_AlwaysMultipleOf4(t *testing.T) {
	for _, d := range []Depth{Depth1, Depth4, Depth8} {
		for width := 1; width <= 133; width++ {
			if s := Stride(width, d); s%4 != 0 {
				t.Fatalf("Stride(%d, %d) = %d, not a multiple of 4", width, d, s)
			}
		}
	}
}

func TestBuildPalette_FirstOccurrenceOrderAndFallback(t *testing.T) {
	red := color.NRGBA{R: 0xff, A: 0xff}
	blue := color.NRGBA{B: 0xff, A: 0xff}
	pixels := []color.NRGBA{red, blue, red, red, blue}

	pal := BuildPalette(pixels)
	want := Palette{red, blue, FallbackColor}
	if len(pal) != len(want) {
		t.Fatalf("palette length = %d, want %d", len(pal), len(want))
	}
	for i := range want {
		if pal[i] != want[i] {
			t.Errorf("palette[%d] = %v, want %v", i, pal[i], want[i])
		}
	}
}

func TestBuildPalette_FallbackAppendedEvenForBlackImage(t *testing.T) {
	// One black pixel: the fallback is appended regardless, so the
	// palette holds black twice.
	pal := BuildPalette([]color.NRGBA{FallbackColor})
	if len(pal) != 2 {
		t.Fatalf("palette length = %d, want 2", len(pal))
	}
	if pal[0] != FallbackColor || pal[1] != FallbackColor {
		t.Errorf("palette = %v, want [black black]", pal)
	}
}

func TestPalette_Index(t *testing.T) {
	pal := Palette{testColor(0), testColor(1), FallbackColor}

	i, err := pal.Index(testColor(1))
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if i != 1 {
		t.Errorf("Index = %d, want 1", i)
	}

	_, err = pal.Index(color.NRGBA{R: 0x77})
	if !errors.Is(err, ErrColorNotFound) {
		t.Errorf("Index of missing color: err = %v, want ErrColorNotFound", err)
	}
}

func TestPack_SingleBlackPixel(t *testing.T) {
	// 1x1 at 8 bpp: one pixel byte plus three padding bytes.
	pixels := []color.NRGBA{FallbackColor}
	pal := BuildPalette(pixels)

	data, err := Pack(pixels, 1, 1, Depth8, pal)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	want := []byte{0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(data, want) {
		t.Fatalf("packed = % #x, want % #x", data, want)
	}

	got, err := Unpack(data, 1, 1, Depth8, pal)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if len(got) != 1 || got[0] != FallbackColor {
		t.Errorf("unpacked = %v, want [black]", got)
	}
}

func TestPackIndexes_Depth1Layout(t *testing.T) {
	// 3x2 at 1 bpp: each row is 3 bits, left-shifted by 5 filler bits,
	// then 3 padding bytes.
	indexes := []byte{
		1, 0, 1,
		1, 1, 0,
	}
	data, err := PackIndexes(indexes, 3, 2, Depth1)
	if err != nil {
		t.Fatalf("PackIndexes: %v", err)
	}
	want := []byte{
		0xa0, 0x00, 0x00, 0x00, // 0b101_00000
		0xc0, 0x00, 0x00, 0x00, // 0b110_00000
	}
	if !bytes.Equal(data, want) {
		t.Fatalf("packed = % #x, want % #x", data, want)
	}
}

func TestPackIndexes_Depth4Layout(t *testing.T) {
	// 3x1 at 4 bpp: nibbles pack high-first, odd width leaves a zero
	// low nibble, then 2 padding bytes.
	data, err := PackIndexes([]byte{1, 2, 3}, 3, 1, Depth4)
	if err != nil {
		t.Fatalf("PackIndexes: %v", err)
	}
	want := []byte{0x12, 0x30, 0x00, 0x00}
	if !bytes.Equal(data, want) {
		t.Fatalf("packed = % #x, want % #x", data, want)
	}
}

func TestPackIndexes_IndexExceedsDepth(t *testing.T) {
	_, err := PackIndexes([]byte{2}, 1, 1, Depth1)
	if !errors.Is(err, ErrIndexRange) {
		t.Errorf("err = %v, want ErrIndexRange", err)
	}
	_, err = PackIndexes([]byte{16}, 1, 1, Depth4)
	if !errors.Is(err, ErrIndexRange) {
		t.Errorf("err = %v, want ErrIndexRange", err)
	}
}

func TestPack_ColorNotInPalette(t *testing.T) {
	pal := Palette{testColor(0), FallbackColor}
	pixels := []color.NRGBA{testColor(0), testColor(5)}
	_, err := Pack(pixels, 2, 1, Depth1, pal)
	if !errors.Is(err, ErrColorNotFound) {
		t.Errorf("err = %v, want ErrColorNotFound", err)
	}
}

func TestPack_BadDepth(t *testing.T) {
	_, err := PackIndexes([]byte{0}, 1, 1, Depth(2))
	if !errors.Is(err, ErrBadDepth) {
		t.Errorf("err = %v, want ErrBadDepth", err)
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, d := range []Depth{Depth1, Depth4, Depth8} {
		for _, width := range []int{1, 2, 3, 5, 7, 8, 9, 10, 16, 31, 32, 33} {
			for _, height := range []int{1, 2, 3, 5} {
				// Use a palette smaller than the depth's capacity.
				numColors := d.PaletteCap()
				if numColors > 16 {
					numColors = 16
				}
				colors := make([]color.NRGBA, numColors)
				for i := range colors {
					colors[i] = testColor(i)
				}

				pixels := make([]color.NRGBA, width*height)
				for i := range pixels {
					pixels[i] = colors[rng.Intn(numColors)]
				}
				pal := BuildPalette(pixels)

				data, err := Pack(pixels, width, height, d, pal)
				if err != nil {
					t.Fatalf("Pack(%dx%d, depth %d): %v", width, height, d, err)
				}
				if len(data) != Stride(width, d)*height {
					t.Fatalf("Pack(%dx%d, depth %d): %d bytes, want %d",
						width, height, d, len(data), Stride(width, d)*height)
				}

				got, err := Unpack(data, width, height, d, pal)
				if err != nil {
					t.Fatalf("Unpack(%dx%d, depth %d): %v", width, height, d, err)
				}
				for i := range pixels {
					if got[i] != pixels[i] {
						t.Fatalf("round trip %dx%d depth %d: pixel %d = %v, want %v",
							width, height, d, i, got[i], pixels[i])
					}
				}
			}
		}
	}
}

func TestUnpack_Truncated(t *testing.T) {
	pixels := make([]color.NRGBA, 10*3)
	for i := range pixels {
		pixels[i] = testColor(i % 4)
	}
	pal := BuildPalette(pixels)

	data, err := Pack(pixels, 10, 3, Depth8, pal)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	// Chop the stream mid-row: no partial pixel buffer, just an error.
	_, err = Unpack(data[:len(data)-8], 10, 3, Depth8, pal)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("err = %v, want ErrTruncated", err)
	}

	var dst [30]byte
	err = UnpackIndexes(dst[:], nil, 10, 3, Depth8)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("empty stream: err = %v, want ErrTruncated", err)
	}
}

func TestUnpack_IndexOutOfPaletteRange(t *testing.T) {
	pal := Palette{testColor(0), FallbackColor}
	// Index 5 with a 2-entry palette.
	data := []byte{0x05, 0x00, 0x00, 0x00}
	_, err := Unpack(data, 1, 1, Depth8, pal)
	if !errors.Is(err, ErrIndexRange) {
		t.Errorf("err = %v, want ErrIndexRange", err)
	}
}

func TestUnpack_FinalRowPaddingNotRequired(t *testing.T) {
	// The bytes after the final row's pixel data belong to the caller;
	// a stream that ends right after the last pixel byte is complete.
	pal := Palette{testColor(0), FallbackColor}
	got, err := Unpack([]byte{0x00}, 1, 1, Depth8, pal)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if got[0] != testColor(0) {
		t.Errorf("pixel = %v, want %v", got[0], testColor(0))
	}
}

func TestUnpack_SkipsInterRowPadding(t *testing.T) {
	// 2x2 at 8 bpp: padding bytes between rows must not become pixels.
	data := []byte{
		0x00, 0x01, 0xee, 0xee, // row 0 + junk padding
		0x01, 0x00, 0xee, 0xee, // row 1 + junk padding
	}
	var dst [4]byte
	if err := UnpackIndexes(dst[:], data, 2, 2, Depth8); err != nil {
		t.Fatalf("UnpackIndexes: %v", err)
	}
	want := [4]byte{0, 1, 1, 0}
	if dst != want {
		t.Errorf("indexes = %v, want %v", dst, want)
	}
}

func TestDepthAccessors(t *testing.T) {
	tests := []struct {
		d       Depth
		perByte int
		cap     int
	}{
		{Depth1, 8, 2},
		{Depth4, 2, 16},
		{Depth8, 1, 256},
	}
	for _, tt := range tests {
		if got := tt.d.PixelsPerByte(); got != tt.perByte {
			t.Errorf("Depth(%d).PixelsPerByte() = %d, want %d", tt.d, got, tt.perByte)
		}
		if got := tt.d.PaletteCap(); got != tt.cap {
			t.Errorf("Depth(%d).PaletteCap() = %d, want %d", tt.d, got, tt.cap)
		}
		if !tt.d.Valid() {
			t.Errorf("Depth(%d).Valid() = false", tt.d)
		}
	}
	for _, d := range []Depth{0, 2, 3, 16, 24, 32} {
		if d.Valid() {
			t.Errorf("Depth(%d).Valid() = true", d)
		}
	}
}
