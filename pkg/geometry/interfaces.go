package geometry

import (
	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/material"
)

// Intersection is the result of a ray query against a surface.
// The zero value (Hit == false) is the no-hit sentinel.
type Intersection struct {
	Hit       bool
	Point     core.Vec3         // Point of intersection
	Normal    core.Vec3         // Surface normal, facing the incoming ray for hits
	Distance  float64           // Ray parameter t; a true distance for unit-length directions
	Material  material.Material // Material at the hit point
	Emission  core.Vec3         // Emitted radiance, zero if the surface is not a light
	FrontFace bool              // Whether the ray hit the front face
}

// SetFaceNormal sets the normal vector and determines front/back face
func (in *Intersection) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	in.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if in.FrontFace {
		in.Normal = outwardNormal
	} else {
		in.Normal = outwardNormal.Negate()
	}
}

// IsEmissive reports whether the intersected surface emits light
func (in Intersection) IsEmissive() bool {
	return in.Hit && !in.Emission.IsZero()
}

// newIntersection fills the fields shared by every shape
func newIntersection(point core.Vec3, t float64, mat material.Material) Intersection {
	in := Intersection{
		Hit:      true,
		Point:    point,
		Distance: t,
		Material: mat,
	}
	if mat != nil {
		in.Emission = mat.Emission()
	}
	return in
}

// Shape is a renderable surface.
//
// Shapes are immutable after construction and safe for concurrent queries.
type Shape interface {
	// Hit returns the nearest intersection with t in [tMin, tMax]
	Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool)

	BoundingBox() core.AABB

	// Area returns the total surface area
	Area() float64

	// Sample returns a point chosen uniformly by area. The normal is the
	// geometric (outward) normal at that point.
	Sample(sampler core.Sampler) Intersection
}
