// Package imageio writes rendered framebuffers to image files.
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/renderer"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Gamma is the exponent applied to clamped radiance before quantization
const Gamma = 0.6

// ErrUnsupportedFormat is returned for unknown output extensions
var ErrUnsupportedFormat = errors.New("imageio: unsupported image format")

// encoder writes an RGBA image to w
type encoder func(w io.Writer, img image.Image) error

var encoders = map[string]encoder{
	".png": png.Encode,
	".bmp": bmp.Encode,
	".tif": func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	},
	".ppm": nil, // written straight from the framebuffer
}

func init() {
	encoders[".tiff"] = encoders[".tif"]
}

// ToByte maps one linear channel to an 8-bit value: clamp to [0, 1],
// raise to Gamma, scale to 255 and round
func ToByte(c float64) uint8 {
	if math.IsNaN(c) {
		return 0
	}
	c = math.Max(0, math.Min(1, c))
	return uint8(math.Round(255 * math.Pow(c, Gamma)))
}

func toRGB(c core.Vec3) (uint8, uint8, uint8) {
	return ToByte(c.X), ToByte(c.Y), ToByte(c.Z)
}

// ToRGBA converts a framebuffer to an opaque 8-bit image
func ToRGBA(fb *renderer.Framebuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			r, g, b := toRGB(fb.At(x, y))
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// Format returns the normalized extension of filename if it can be written
func Format(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := encoders[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return ext, nil
}

// Encode writes fb to w in the given format (".ppm", ".png", ".bmp", ".tif")
func Encode(w io.Writer, fb *renderer.Framebuffer, format string) error {
	enc, ok := encoders[format]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if enc == nil {
		return WritePPM(w, fb)
	}
	return enc(w, ToRGBA(fb))
}

// WriteFile writes fb to filename, choosing the encoder by extension.
// Parent directories are created as needed.
func WriteFile(filename string, fb *renderer.Framebuffer) (err error) {
	format, err := Format(filename)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("closing %s: %w", filename, closeErr)
		}
	}()

	out := bufio.NewWriter(file)
	if err := Encode(out, fb, format); err != nil {
		return fmt.Errorf("encoding %s: %w", filename, err)
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}
