package renderer

import (
	"math"

	"github.com/z466chen/SimplePathTracer/pkg/core"
)

// Camera is a pinhole camera at Eye looking down +Z with +Y up.
// Pixel columns grow towards -X, so image left is world +X.
type Camera struct {
	Eye    core.Vec3
	Width  int
	Height int
	scale  float64 // tan(fov/2)
	aspect float64
}

// NewCamera creates a camera with a vertical field of view in degrees
func NewCamera(eye core.Vec3, width, height int, fovDegrees float64) *Camera {
	return &Camera{
		Eye:    eye,
		Width:  width,
		Height: height,
		scale:  math.Tan(fovDegrees * 0.5 * math.Pi / 180),
		aspect: float64(width) / float64(height),
	}
}

// Ray returns the primary ray through the center of pixel (i, j),
// column i and row j, with row 0 at the top
func (c *Camera) Ray(i, j int) core.Ray {
	x := (2*(float64(i)+0.5)/float64(c.Width) - 1) * c.aspect * c.scale
	y := (1 - 2*(float64(j)+0.5)/float64(c.Height)) * c.scale

	direction := core.NewVec3(-x, y, 1).Normalize()
	return core.NewRay(c.Eye, direction)
}
