package imageio

import (
	"fmt"
	"io"

	"github.com/z466chen/SimplePathTracer/pkg/renderer"
)

// WritePPM writes fb as a binary PPM (P6): a text header followed by one
// RGB byte triple per pixel in row-major order
func WritePPM(w io.Writer, fb *renderer.Framebuffer) error {
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", fb.Width, fb.Height); err != nil {
		return err
	}

	row := make([]byte, 3*fb.Width)
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			row[3*x], row[3*x+1], row[3*x+2] = toRGB(fb.At(x, y))
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
