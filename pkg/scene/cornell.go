package scene

import (
	"math"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/geometry"
	"github.com/z466chen/SimplePathTracer/pkg/material"
)

// Cornell box dimensions (standard 555x555x555 units)
const cornellSize = 555.0

// CornellLightEmission is the radiance of the ceiling light, a warm white
var CornellLightEmission = core.NewVec3(23.9174, 19.2832, 15.5404)

// NewCornellScene creates the Cornell box: red and green side walls, white
// floor, ceiling and back wall, a short white box, a tall gold microfacet
// box and a rectangular ceiling light. It is framed for the default camera
// at (278, 273, -800) with a 40° field of view.
func NewCornellScene() (*Scene, error) {
	white := material.NewLambertian(cornellWhite)
	gold := material.NewMicrofacet(core.NewVec3(0.1914, 0.125, 0), core.NewVec3(1.00, 0.71, 0.29), 0.1, 0.8)

	b := newCornellRoom("cornell")
	b.surface(
		geometry.NewBox(core.NewVec3(185, 82.5, 169), core.NewVec3(82.5, 82.5, 82.5), core.NewVec3(0, degrees(-18), 0), white),
		geometry.NewBox(core.NewVec3(368, 165, 351), core.NewVec3(82.5, 165, 82.5), core.NewVec3(0, degrees(15), 0), gold),
	)

	return b.build()
}

var cornellWhite = core.NewVec3(0.725, 0.71, 0.68)

// newCornellRoom starts a scene with the empty box: five walls and the
// ceiling light
func newCornellRoom(name string) *builder {
	white := material.NewLambertian(cornellWhite)
	red := material.NewLambertian(core.NewVec3(0.63, 0.065, 0.05))
	green := material.NewLambertian(core.NewVec3(0.14, 0.45, 0.091))
	light := material.NewEmissive(CornellLightEmission)

	b := newBuilder(name)

	// Walls. The camera looks down +Z and image left is world +X.
	b.surface(
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(cornellSize, 0, 0), core.NewVec3(0, 0, cornellSize), white),           // floor
		geometry.NewQuad(core.NewVec3(0, cornellSize, 0), core.NewVec3(cornellSize, 0, 0), core.NewVec3(0, 0, cornellSize), white), // ceiling
		geometry.NewQuad(core.NewVec3(0, 0, cornellSize), core.NewVec3(cornellSize, 0, 0), core.NewVec3(0, cornellSize, 0), white), // back wall
		geometry.NewQuad(core.NewVec3(cornellSize, 0, 0), core.NewVec3(0, 0, cornellSize), core.NewVec3(0, cornellSize, 0), red),   // left wall
		geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, cornellSize), core.NewVec3(0, cornellSize, 0), green),           // right wall
	)

	// Light sits just under the ceiling; U × V points down into the box
	b.light(geometry.NewQuad(core.NewVec3(213, 548.7, 227), core.NewVec3(130, 0, 0), core.NewVec3(0, 0, 105), light))
	return b
}

func degrees(d float64) float64 {
	return d * math.Pi / 180
}
