package renderer

import "github.com/z466chen/SimplePathTracer/pkg/core"

// Framebuffer holds linear radiance per pixel in row-major order.
//
// Each cell is written by exactly one task, so writes need no locking; the
// buffer must not be read until every writer has finished.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// Index returns the flat index of a pixel
func (fb *Framebuffer) Index(row, col int) int {
	return row*fb.Width + col
}

// At returns the radiance at column x, row y
func (fb *Framebuffer) At(x, y int) core.Vec3 {
	return fb.Pixels[fb.Index(y, x)]
}

// Set stores the radiance at a flat index
func (fb *Framebuffer) Set(index int, c core.Vec3) {
	fb.Pixels[index] = c
}

// AverageLuminance returns the mean luminance of the stored radiance
func (fb *Framebuffer) AverageLuminance() float64 {
	if len(fb.Pixels) == 0 {
		return 0
	}

	total := 0.0
	for _, pixel := range fb.Pixels {
		total += pixel.Luminance()
	}
	return total / float64(len(fb.Pixels))
}
