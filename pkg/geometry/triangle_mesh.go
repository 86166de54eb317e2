package geometry

import (
	"errors"
	"fmt"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/material"
)

// ErrInvalidMesh is returned for malformed vertex/face data
var ErrInvalidMesh = errors.New("geometry: invalid triangle mesh")

// TriangleMesh is a collection of triangles behind an internal BVH
type TriangleMesh struct {
	triangles []Shape
	bvh       *BVH
	areas     areaDistribution
}

// TriangleMeshOptions contains optional parameters for triangle mesh creation
type TriangleMeshOptions struct {
	Rotation *core.Vec3 // Optional rotation to apply to vertices
	Center   *core.Vec3 // Optional center point for rotation
}

// NewTriangleMesh creates a new triangle mesh from vertices and face indices.
// Each group of 3 indices in faces forms a triangle; options may be nil.
func NewTriangleMesh(vertices []core.Vec3, faces []int, mat material.Material, options *TriangleMeshOptions) (*TriangleMesh, error) {
	if len(faces) == 0 || len(faces)%3 != 0 {
		return nil, fmt.Errorf("%w: %d face indices is not a positive multiple of 3", ErrInvalidMesh, len(faces))
	}

	workingVertices := vertices
	if options != nil && options.Rotation != nil {
		workingVertices = make([]core.Vec3, len(vertices))
		for i, vertex := range vertices {
			if options.Center != nil {
				vertex = vertex.Subtract(*options.Center).Rotate(*options.Rotation).Add(*options.Center)
			} else {
				vertex = vertex.Rotate(*options.Rotation)
			}
			workingVertices[i] = vertex
		}
	}

	triangles := make([]Shape, 0, len(faces)/3)
	for i := 0; i < len(faces); i += 3 {
		for _, index := range faces[i : i+3] {
			if index < 0 || index >= len(workingVertices) {
				return nil, fmt.Errorf("%w: face index %d out of range [0, %d)", ErrInvalidMesh, index, len(workingVertices))
			}
		}
		triangles = append(triangles, NewTriangle(workingVertices[faces[i]], workingVertices[faces[i+1]], workingVertices[faces[i+2]], mat))
	}

	return &TriangleMesh{
		triangles: triangles,
		bvh:       NewBVH(triangles),
		areas:     newAreaDistribution(triangles),
	}, nil
}

// Hit tests the ray against the mesh BVH
func (tm *TriangleMesh) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	return tm.bvh.Hit(ray, tMin, tMax)
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bvh.BoundingBox()
}

// Area returns the summed area of all triangles
func (tm *TriangleMesh) Area() float64 {
	return tm.areas.total
}

// Sample picks a triangle by area and a uniform point on it
func (tm *TriangleMesh) Sample(sampler core.Sampler) Intersection {
	return tm.areas.sample(sampler)
}

// TriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) TriangleCount() int {
	return len(tm.triangles)
}
