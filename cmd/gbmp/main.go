// Command gbmp encodes and decodes indexed-color BMP images from the command line.
//
// Usage:
//
//	gbmp enc [options] <input>        PNG/JPEG/GIF → BMP (use "-" for stdin)
//	gbmp dec [options] <input.bmp>    BMP → PNG/JPEG/GIF (use "-" for stdin, -o - for stdout)
//	gbmp info <input.bmp>             Display BMP metadata
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/makeworld-the-better-one/dither/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"

	"github.com/deepteams/bmp"
)

var log = logrus.New()

func main() {
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "enc":
		err = runEnc(os.Args[2:])
	case "dec":
		err = runDec(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "gbmp: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "gbmp: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  gbmp enc [options] <input>        Encode PNG/JPEG/GIF to indexed BMP
  gbmp dec [options] <input.bmp>    Decode BMP to PNG, JPEG, or GIF
  gbmp info <input.bmp>             Display BMP metadata

Use "-" as input to read from stdin, "-o -" to write to stdout.

Run "gbmp <command> -h" for command-specific options.
`)
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned (caller should not close).
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// --- enc ---

// vga16 is the classic 16-color display palette used as the
// quantization target for 4-bit output.
var vga16 = []color.Color{
	color.NRGBA{0x00, 0x00, 0x00, 0xff}, // black
	color.NRGBA{0x80, 0x00, 0x00, 0xff}, // maroon
	color.NRGBA{0x00, 0x80, 0x00, 0xff}, // green
	color.NRGBA{0x80, 0x80, 0x00, 0xff}, // olive
	color.NRGBA{0x00, 0x00, 0x80, 0xff}, // navy
	color.NRGBA{0x80, 0x00, 0x80, 0xff}, // purple
	color.NRGBA{0x00, 0x80, 0x80, 0xff}, // teal
	color.NRGBA{0xc0, 0xc0, 0xc0, 0xff}, // silver
	color.NRGBA{0x80, 0x80, 0x80, 0xff}, // gray
	color.NRGBA{0xff, 0x00, 0x00, 0xff}, // red
	color.NRGBA{0x00, 0xff, 0x00, 0xff}, // lime
	color.NRGBA{0xff, 0xff, 0x00, 0xff}, // yellow
	color.NRGBA{0x00, 0x00, 0xff, 0xff}, // blue
	color.NRGBA{0xff, 0x00, 0xff, 0xff}, // fuchsia
	color.NRGBA{0x00, 0xff, 0xff, 0xff}, // aqua
	color.NRGBA{0xff, 0xff, 0xff, 0xff}, // white
}

func runEnc(args []string) error {
	fs := flag.NewFlagSet("enc", flag.ContinueOnError)
	depth := fs.Int("d", 0, "bit depth: 1, 4, or 8 (0=auto)")
	scale := fs.Float64("scale", 1, "scale factor applied before encoding")
	dpi := fs.Int("dpi", 0, "output resolution in dots per inch (0=default 72)")
	output := fs.String("o", "", `output path (default: <input>.bmp, "-" for stdout)`)
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("enc: missing input file\nUsage: gbmp enc [options] <input>")
	}
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	inputPath := fs.Arg(0)

	switch *depth {
	case 0, 1, 4, 8:
	default:
		return fmt.Errorf("enc: invalid bit depth %d (use 1, 4, or 8)", *depth)
	}
	if *scale <= 0 {
		return fmt.Errorf("enc: scale must be positive, got %v", *scale)
	}

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	img, format, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("enc: decoding input: %w", err)
	}
	log.WithFields(logrus.Fields{
		"format": format,
		"bounds": img.Bounds(),
	}).Debug("decoded input")

	if *scale != 1 {
		img = scaleImage(img, *scale)
		log.WithField("bounds", img.Bounds()).Debug("scaled input")
	}

	img, d := prepareForDepth(img, *depth)
	log.WithField("depth", d).Debug("resolved bit depth")

	opts := &bmp.EncoderOptions{BitDepth: d}
	if *dpi > 0 {
		// BMP resolution is stored in pixels per meter; 1 inch = 0.0254 m.
		ppm := int(float64(*dpi) / 0.0254)
		opts.XPixPerMeter = ppm
		opts.YPixPerMeter = ppm
	}

	if *output == "-" {
		return bmp.Encode(os.Stdout, img, opts)
	}

	outputPath := *output
	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "output.bmp"
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + ".bmp"
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}

	if err := bmp.Encode(out, img, opts); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("enc: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}

	fi, _ := os.Stat(outputPath)
	fmt.Fprintf(os.Stderr, "Encoded %s → %s (%d bytes)\n", inputPath, outputPath, fi.Size())
	return nil
}

// scaleImage resamples img by the given factor using Catmull-Rom interpolation.
func scaleImage(img image.Image, factor float64) image.Image {
	b := img.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)
	return scaled
}

// prepareForDepth returns an image whose colors fit the requested bit
// depth, dithering down to a target palette when they do not, along with
// the depth to encode at. requested is 0 for automatic selection.
func prepareForDepth(img image.Image, requested int) (image.Image, int) {
	limit := 256
	if requested != 0 {
		limit = 1 << requested
	}
	distinct := countDistinctColors(img, limit+1)

	d := requested
	if d == 0 {
		switch {
		case distinct <= 2:
			d = 1
		case distinct <= 16:
			d = 4
		default:
			d = 8
		}
	}

	if distinct <= 1<<d {
		return img, d
	}

	var target []color.Color
	switch d {
	case 1:
		target = []color.Color{color.Black, color.White}
	case 4:
		target = vga16
	default:
		target = palette.Plan9
	}

	log.WithFields(logrus.Fields{
		"depth":   d,
		"palette": len(target),
	}).Debug("dithering to target palette")

	ditherer := dither.NewDitherer(target)
	ditherer.Matrix = dither.FloydSteinberg
	ditherer.Serpentine = true
	return ditherer.DitherPaletted(img), d
}

// countDistinctColors counts unique colors in img, stopping early once
// limit is reached.
func countDistinctColors(img image.Image, limit int) int {
	seen := make(map[color.NRGBA]struct{})
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				if len(seen) >= limit {
					return len(seen)
				}
			}
		}
	}
	return len(seen)
}

// --- dec ---

func runDec(args []string) error {
	fs := flag.NewFlagSet("dec", flag.ContinueOnError)
	output := fs.String("o", "", `output path (default: <input>.png, "-" for stdout)`)
	fmtFlag := fs.String("fmt", "", "output format: png, jpeg, gif (auto-detect from extension if omitted)")
	verbose := fs.Bool("v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("dec: missing input file\nUsage: gbmp dec [options] <input.bmp>")
	}
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	inputPath := fs.Arg(0)

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}

	data, err := io.ReadAll(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("dec: reading input: %w", err)
	}

	img, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}
	log.WithField("bounds", img.Bounds()).Debug("decoded BMP")

	outFmt := detectOutputFormat(*fmtFlag, *output)

	if *output == "-" {
		return encodeImage(os.Stdout, img, outFmt)
	}

	outputPath := *output
	if outputPath == "" {
		ext := "." + outFmt
		if outFmt == "jpeg" {
			ext = ".jpg"
		}
		if inputPath == "-" {
			outputPath = "output" + ext
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + ext
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}

	if err := encodeImage(out, img, outFmt); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("dec: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}

	fmt.Fprintf(os.Stderr, "Decoded %s → %s\n", inputPath, outputPath)
	return nil
}

// detectOutputFormat returns "png", "jpeg", or "gif" based on flag/extension.
func detectOutputFormat(fmtFlag, outputPath string) string {
	if fmtFlag != "" {
		return strings.ToLower(fmtFlag)
	}
	if outputPath != "" && outputPath != "-" {
		switch strings.ToLower(filepath.Ext(outputPath)) {
		case ".jpg", ".jpeg":
			return "jpeg"
		case ".gif":
			return "gif"
		}
	}
	return "png"
}

// encodeImage writes img in the specified format to w.
func encodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case "jpeg", "jpg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case "gif":
		return gif.Encode(w, img, nil)
	default:
		return png.Encode(w, img)
	}
}

// --- info ---

func runInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("info: missing input file\nUsage: gbmp info <input.bmp>")
	}
	inputPath := args[0]

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	feat, err := bmp.GetFeatures(in)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	name := inputPath
	if inputPath == "-" {
		name = "<stdin>"
	}

	order := "bottom-up"
	if feat.TopDown {
		order = "top-down"
	}

	fmt.Printf("File:        %s\n", name)
	fmt.Printf("Dimensions:  %d x %d\n", feat.Width, feat.Height)
	fmt.Printf("Bit depth:   %d\n", feat.BitDepth)
	fmt.Printf("Palette:     %d colors\n", feat.PaletteLen)
	fmt.Printf("Row order:   %s\n", order)
	fmt.Printf("Data offset: %d\n", feat.DataOffset)
	fmt.Printf("File size:   %d bytes (declared)\n", feat.FileSize)

	if inputPath != "-" {
		fi, err := os.Stat(inputPath)
		if err == nil {
			fmt.Printf("On disk:     %d bytes\n", fi.Size())
		}
	}

	return nil
}
