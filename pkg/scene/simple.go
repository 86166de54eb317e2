package scene

import (
	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/geometry"
	"github.com/z466chen/SimplePathTracer/pkg/material"
)

// NewEmptyScene creates a scene with nothing in it. Every pixel renders black.
func NewEmptyScene() (*Scene, error) {
	return newBuilder("empty").build()
}

// NewEmissivePlaneScene creates a single unit-radiance plane at z=0 that
// fills the default camera's view, so every camera ray hits a light directly.
func NewEmissivePlaneScene() (*Scene, error) {
	const extent = 1e5
	b := newBuilder("emissive-plane")
	b.light(geometry.NewQuad(
		core.NewVec3(-extent/2, -extent/2, 0),
		core.NewVec3(extent, 0, 0),
		core.NewVec3(0, extent, 0),
		material.NewEmissive(core.NewVec3(1, 1, 1)),
	))
	return b.build()
}

// NewSpheresScene creates an open scene with a floor, a back wall, two
// spheres, a triangle-mesh pyramid and a spherical light, laid out in the
// same coordinates as the Cornell box.
func NewSpheresScene() (*Scene, error) {
	floorMat := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	wallMat := material.NewLambertian(core.NewVec3(0.4, 0.5, 0.7))
	red := material.NewLambertian(core.NewVec3(0.7, 0.15, 0.1))
	copper := material.NewMicrofacet(core.NewVec3(0.95, 0.64, 0.54), core.NewVec3(0.04, 0.04, 0.04), 0.35, 0.9)
	plastic := material.NewMicrofacet(core.NewVec3(0.2, 0.6, 0.3), core.NewVec3(0.04, 0.04, 0.04), 0.5, 0)
	light := material.NewEmissive(core.NewVec3(30, 28, 24))

	b := newBuilder("spheres")

	b.surface(
		geometry.NewQuad(core.NewVec3(-1000, 0, -1000), core.NewVec3(0, 0, 3000), core.NewVec3(3000, 0, 0), floorMat),
		geometry.NewQuad(core.NewVec3(-1000, 0, 700), core.NewVec3(3000, 0, 0), core.NewVec3(0, 1500, 0), wallMat),
		geometry.NewSphere(core.NewVec3(400, 90, 300), 90, red),
		geometry.NewSphere(core.NewVec3(160, 120, 380), 120, copper),
	)

	// Square pyramid: four sides over a base at y=0
	apex := core.NewVec3(290, 180, 120)
	vertices := []core.Vec3{
		core.NewVec3(220, 0, 50),
		core.NewVec3(360, 0, 50),
		core.NewVec3(360, 0, 190),
		core.NewVec3(220, 0, 190),
		apex,
	}
	faces := []int{0, 4, 1, 1, 4, 2, 2, 4, 3, 3, 4, 0}
	rotation := core.NewVec3(0, degrees(25), 0)
	b.mesh(geometry.NewTriangleMesh(vertices, faces, plastic, &geometry.TriangleMeshOptions{Rotation: &rotation, Center: &apex}))

	b.light(geometry.NewSphere(core.NewVec3(278, 500, 250), 40, light))

	return b.build()
}
