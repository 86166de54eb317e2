package geometry

import (
	"math"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/material"
)

// Quad represents a parallelogram defined by a corner and two edge vectors
type Quad struct {
	Corner   core.Vec3         // One corner of the quad
	U        core.Vec3         // First edge vector
	V        core.Vec3         // Second edge vector
	Normal   core.Vec3         // Normal vector (U × V, normalized)
	Material material.Material // Material of the quad
	d        float64           // Plane equation constant: normal · p = d
	w        core.Vec3         // Cached n / (n · n) for planar coordinates
	area     float64
	bbox     core.AABB
}

// NewQuad creates a new quad from a corner point and two edge vectors.
// The front face is the side U × V points to.
func NewQuad(corner, u, v core.Vec3, mat material.Material) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()

	return &Quad{
		Corner:   corner,
		U:        u,
		V:        v,
		Normal:   normal,
		Material: mat,
		d:        normal.Dot(corner),
		w:        cross.Multiply(1.0 / cross.Dot(cross)),
		area:     cross.Length(),
		// Flat quads get a little thickness so the slab test stays robust
		bbox: core.NewAABBFromPoints(corner, corner.Add(u), corner.Add(v), corner.Add(u).Add(v)).Expand(1e-4),
	}
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	denominator := ray.Direction.Dot(q.Normal)

	// Parallel to the plane
	if math.Abs(denominator) < 1e-8 {
		return Intersection{}, false
	}

	t := (q.d - ray.Origin.Dot(q.Normal)) / denominator
	if t < tMin || t > tMax {
		return Intersection{}, false
	}

	hitPoint := ray.At(t)
	planar := hitPoint.Subtract(q.Corner)
	alpha := q.w.Dot(planar.Cross(q.V))
	beta := q.w.Dot(q.U.Cross(planar))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return Intersection{}, false
	}

	hit := newIntersection(hitPoint, t, q.Material)
	hit.SetFaceNormal(ray, q.Normal)
	return hit, true
}

// BoundingBox returns the axis-aligned bounding box for the quad
func (q *Quad) BoundingBox() core.AABB {
	return q.bbox
}

// Area returns |U × V|
func (q *Quad) Area() float64 {
	return q.area
}

// Sample returns a uniformly distributed point on the quad
func (q *Quad) Sample(sampler core.Sampler) Intersection {
	uv := sampler.Get2D()
	point := q.Corner.Add(q.U.Multiply(uv.X)).Add(q.V.Multiply(uv.Y))

	sample := newIntersection(point, 0, q.Material)
	sample.Normal = q.Normal
	sample.FrontFace = true
	return sample
}
