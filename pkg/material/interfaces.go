package material

import (
	"github.com/z466chen/SimplePathTracer/pkg/core"
)

// Material describes how a surface scatters and emits light.
//
// All directions point away from the surface: wo toward the viewer, wi toward
// the next path vertex. The normal is the shading normal at the hit point,
// facing the side the ray arrived from.
type Material interface {
	// Sample draws an incoming direction wi for the outgoing direction wo
	Sample(wo, normal core.Vec3, sampler core.Sampler) core.Vec3

	// Eval returns the BRDF value f(wi, wo)
	Eval(wi, wo, normal core.Vec3) core.Vec3

	// PDF returns the solid-angle density with which Sample produces wi
	PDF(wi, wo, normal core.Vec3) float64

	// Emission returns the emitted radiance; zero for non-emitters
	Emission() core.Vec3
}

// IsEmissive reports whether a material emits light
func IsEmissive(m Material) bool {
	return m != nil && !m.Emission().IsZero()
}

// reflect mirrors v about the normal n
func reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
