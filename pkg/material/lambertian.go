package material

import (
	"math"

	"github.com/z466chen/SimplePathTracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Diffuse reflectance
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Sample generates a cosine-weighted direction in the hemisphere around the normal
func (l *Lambertian) Sample(wo, normal core.Vec3, sampler core.Sampler) core.Vec3 {
	return core.SampleCosineHemisphere(normal, sampler.Get2D())
}

// Eval returns the constant lambertian BRDF albedo/π above the surface
func (l *Lambertian) Eval(wi, wo, normal core.Vec3) core.Vec3 {
	if wi.Dot(normal) <= 0 || wo.Dot(normal) <= 0 {
		return core.Vec3{}
	}
	return l.Albedo.Multiply(1.0 / math.Pi)
}

// PDF is cos(θ)/π for cosine-weighted hemisphere sampling
func (l *Lambertian) PDF(wi, wo, normal core.Vec3) float64 {
	cosTheta := wi.Dot(normal)
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

// Emission is always zero for a plain diffuse surface
func (l *Lambertian) Emission() core.Vec3 {
	return core.Vec3{}
}
