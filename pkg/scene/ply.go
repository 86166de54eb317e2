package scene

import (
	"math"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/geometry"
	"github.com/z466chen/SimplePathTracer/pkg/loaders"
	"github.com/z466chen/SimplePathTracer/pkg/material"
)

// plyFitSize is the largest extent a loaded mesh is scaled to
const plyFitSize = 330.0

// NewPLYScene places the mesh from a PLY file on the floor of the empty
// Cornell box, scaled uniformly to fit and centered horizontally
func NewPLYScene(filename string) (*Scene, error) {
	b := newCornellRoom("ply")

	data, err := loaders.LoadPLY(filename)
	if err != nil {
		b.err = err
		return b.build()
	}

	plastic := material.NewMicrofacet(cornellWhite, core.NewVec3(0.04, 0.04, 0.04), 0.3, 0)
	b.mesh(geometry.NewTriangleMesh(fitToRoom(data.Vertices), data.Faces, plastic, nil))
	return b.build()
}

// fitToRoom scales and translates vertices so their bounds rest on the
// floor at the middle of the box
func fitToRoom(vertices []core.Vec3) []core.Vec3 {
	bounds := core.NewAABBFromPoints(vertices...)
	size := bounds.Size()
	extent := math.Max(size.X, math.Max(size.Y, size.Z))

	scale := 1.0
	if extent > 0 {
		scale = plyFitSize / extent
	}

	center := bounds.Center()
	anchor := core.NewVec3(center.X, bounds.Min.Y, center.Z)
	target := core.NewVec3(cornellSize/2, 0, cornellSize/2)

	fitted := make([]core.Vec3, len(vertices))
	for i, v := range vertices {
		fitted[i] = v.Subtract(anchor).Multiply(scale).Add(target)
	}
	return fitted
}
