package geometry

import (
	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/material"
)

// Box represents a rectangular box made up of 6 quads with optional rotation
type Box struct {
	Center   core.Vec3         // Center point of the box
	Size     core.Vec3         // Half-extents along each axis
	Rotation core.Vec3         // Rotation angles in radians (X, Y, Z)
	Material material.Material // Material for all faces
	faces    [6]*Quad
	faceArea areaDistribution
	bbox     core.AABB
}

// NewBox creates a new box with the given center, half-extents, rotation, and material.
// Rotation is in radians around X, Y, Z axes (applied in that order) about the center.
func NewBox(center, size, rotation core.Vec3, mat material.Material) *Box {
	box := &Box{
		Center:   center,
		Size:     size,
		Rotation: rotation,
		Material: mat,
	}
	box.generateFaces()
	return box
}

// NewAxisAlignedBox creates a new axis-aligned box (no rotation)
func NewAxisAlignedBox(center, size core.Vec3, mat material.Material) *Box {
	return NewBox(center, size, core.Vec3{}, mat)
}

// generateFaces creates the 6 outward-facing quads
func (b *Box) generateFaces() {
	var corners [8]core.Vec3
	for i := range corners {
		unit := core.NewVec3(float64(i&1)*2-1, float64(i>>1&1)*2-1, float64(i>>2&1)*2-1)
		corners[i] = unit.MultiplyVec(b.Size).Rotate(b.Rotation).Add(b.Center)
	}

	// Corner index bits: 1 = +X, 2 = +Y, 4 = +Z. Each face lists its corner
	// and the two neighbours whose edges give an outward U × V.
	faces := [6][3]int{
		{4, 5, 6}, // +Z
		{1, 0, 3}, // -Z
		{5, 1, 7}, // +X
		{0, 4, 2}, // -X
		{2, 6, 3}, // +Y
		{0, 1, 4}, // -Y
	}
	shapes := make([]Shape, len(faces))
	for i, f := range faces {
		corner := corners[f[0]]
		b.faces[i] = NewQuad(corner, corners[f[1]].Subtract(corner), corners[f[2]].Subtract(corner), b.Material)
		shapes[i] = b.faces[i]
	}

	b.faceArea = newAreaDistribution(shapes)
	b.bbox = core.NewAABBFromPoints(corners[:]...)
}

// Hit tests if a ray intersects with any face of the box
func (b *Box) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	var closest Intersection
	found := false

	for _, face := range b.faces {
		if hit, ok := face.Hit(ray, tMin, tMax); ok {
			closest = hit
			tMax = hit.Distance
			found = true
		}
	}

	return closest, found
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() core.AABB {
	return b.bbox
}

// Area returns the summed area of all six faces
func (b *Box) Area() float64 {
	return b.faceArea.total
}

// Sample picks a face by area and a uniform point on it
func (b *Box) Sample(sampler core.Sampler) Intersection {
	return b.faceArea.sample(sampler)
}

// Faces returns the six quads making up the box
func (b *Box) Faces() [6]*Quad {
	return b.faces
}
