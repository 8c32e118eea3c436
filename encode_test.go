package bmp

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/deepteams/bmp/internal/container"
	"github.com/deepteams/bmp/internal/indexed"
)

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    EncoderOptions
		wantErr string
	}{
		{"defaults", EncoderOptions{}, ""},
		{"depth 1", EncoderOptions{BitDepth: 1}, ""},
		{"depth 4", EncoderOptions{BitDepth: 4}, ""},
		{"depth 8", EncoderOptions{BitDepth: 8}, ""},
		{"depth 24", EncoderOptions{BitDepth: 24}, "invalid BitDepth"},
		{"depth 2", EncoderOptions{BitDepth: 2}, "invalid BitDepth"},
		{"negative dpi", EncoderOptions{XPixPerMeter: -1}, "invalid resolution"},
	}
	img := makePaletted(2, 2, []color.Color{black, white})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Encode(&bytes.Buffer{}, img, &tt.opts)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Encode: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEncode_AutoDepthSelection(t *testing.T) {
	tests := []struct {
		colors int
		want   int
	}{
		{1, 1},
		{2, 1},
		{3, 4},
		{16, 4},
		{17, 8},
		{200, 8},
	}
	for _, tt := range tests {
		colors := make([]color.Color, tt.colors)
		for i := range colors {
			colors[i] = color.NRGBA{R: uint8(i), G: uint8(i * 2), A: 0xff}
		}
		img := makePaletted(tt.colors, 2, colors)

		var buf bytes.Buffer
		if err := Encode(&buf, img, nil); err != nil {
			t.Fatalf("%d colors: Encode: %v", tt.colors, err)
		}
		feat, err := GetFeatures(&buf)
		if err != nil {
			t.Fatalf("%d colors: GetFeatures: %v", tt.colors, err)
		}
		if feat.BitDepth != tt.want {
			t.Errorf("%d colors: BitDepth = %d, want %d", tt.colors, feat.BitDepth, tt.want)
		}
	}
}

func TestEncode_ExplicitDepthTooSmall(t *testing.T) {
	img := makePaletted(4, 1, []color.Color{black, white, red})
	err := Encode(&bytes.Buffer{}, img, &EncoderOptions{BitDepth: 1})
	if err == nil || !strings.Contains(err.Error(), "do not fit") {
		t.Errorf("err = %v, want depth-capacity error", err)
	}
}

func TestEncode_PalettedIndexPastPalette(t *testing.T) {
	// An *image.Paletted can carry index bytes beyond its palette.
	// Encoding one must fail rather than produce a file whose color
	// table the index does not reach.
	img := image.NewPaletted(image.Rect(0, 0, 2, 1), []color.Color{black, white, red})
	img.Pix[1] = 9

	err := Encode(&bytes.Buffer{}, img, nil)
	if !errors.Is(err, indexed.ErrIndexRange) {
		t.Errorf("err = %v, want ErrIndexRange", err)
	}
}

func TestEncode_TooManyColors(t *testing.T) {
	// A 32x16 gradient with 512 distinct colors cannot be indexed.
	img := image.NewNRGBA(image.Rect(0, 0, 32, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 0xff})
		}
	}
	err := Encode(&bytes.Buffer{}, img, nil)
	if err == nil || !strings.Contains(err.Error(), "distinct colors") {
		t.Errorf("err = %v, want too-many-colors error", err)
	}
}

func TestEncode_GenericImage(t *testing.T) {
	// Non-paletted input goes through palette building; the round trip
	// must still be exact for opaque colors.
	img := image.NewNRGBA(image.Rect(0, 0, 5, 4))
	colors := []color.NRGBA{red, green, blue, white}
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			img.SetNRGBA(x, y, colors[(x+y)%len(colors)])
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sameColors(t, got, img)
}

func TestEncode_SubimageWithNonZeroMin(t *testing.T) {
	base := makePaletted(8, 8, []color.Color{black, white, red, blue})
	sub := base.SubImage(image.Rect(2, 3, 7, 6)).(*image.Paletted)

	var buf bytes.Buffer
	if err := Encode(&buf, sub, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	sameColors(t, got, sub)
}

func TestEncode_HeaderFields(t *testing.T) {
	// Width 10 at 8 bpp: 10 pixel bytes padded to a 12-byte stride.
	img := makePaletted(10, 3, func() []color.Color {
		cs := make([]color.Color, 20)
		for i := range cs {
			cs[i] = color.NRGBA{B: uint8(i * 9), A: 0xff}
		}
		return cs
	}())

	var buf bytes.Buffer
	if err := Encode(&buf, img, &EncoderOptions{XPixPerMeter: 3780, YPixPerMeter: 3780}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := buf.Bytes()
	info := data[container.FileHeaderSize:]

	if got := container.ReadLE16(info[14:16]); got != 8 {
		t.Errorf("bit count = %d, want 8", got)
	}
	if got := container.ReadLE32(info[16:20]); got != container.BIRGB {
		t.Errorf("compression = %d, want BIRGB", got)
	}
	if got := container.ReadLE32(info[20:24]); got != 12*3 {
		t.Errorf("image size = %d, want 36", got)
	}
	if got := int32(container.ReadLE32(info[24:28])); got != 3780 {
		t.Errorf("x resolution = %d, want 3780", got)
	}
	if got := container.ReadLE32(info[32:36]); got != 20 {
		t.Errorf("colors used = %d, want 20", got)
	}

	// Declared file size matches the actual length.
	if got := container.ReadLE32(data[2:6]); int(got) != len(data) {
		t.Errorf("file size = %d, want %d", got, len(data))
	}
}

func TestEncode_DefaultResolution(t *testing.T) {
	img := makePaletted(2, 2, []color.Color{black, white})
	var buf bytes.Buffer
	if err := Encode(&buf, img, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	info := buf.Bytes()[container.FileHeaderSize:]
	if got := int32(container.ReadLE32(info[24:28])); got != defaultPixPerMeter {
		t.Errorf("x resolution = %d, want %d", got, defaultPixPerMeter)
	}
}

func TestEncode_EmptyImage(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 0, 0), []color.Color{black})
	if err := Encode(&bytes.Buffer{}, img, nil); err == nil {
		t.Error("Encode of empty image succeeded, want error")
	}
}
