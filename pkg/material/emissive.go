package material

import (
	"github.com/z466chen/SimplePathTracer/pkg/core"
)

// Emissive represents a light-emitting material.
// Lights don't reflect; paths that reach one after the first bounce end there.
type Emissive struct {
	Radiance core.Vec3 // Emitted light color/intensity
}

// NewEmissive creates a new emissive material
func NewEmissive(emission core.Vec3) *Emissive {
	return &Emissive{Radiance: emission}
}

// Sample returns the normal; the zero PDF keeps it from being followed
func (e *Emissive) Sample(wo, normal core.Vec3, sampler core.Sampler) core.Vec3 {
	return normal
}

// Eval is zero: emitters only emit
func (e *Emissive) Eval(wi, wo, normal core.Vec3) core.Vec3 {
	return core.Vec3{}
}

// PDF is zero: emitters never scatter
func (e *Emissive) PDF(wi, wo, normal core.Vec3) float64 {
	return 0
}

// Emission returns the emitted radiance
func (e *Emissive) Emission() core.Vec3 {
	return e.Radiance
}
