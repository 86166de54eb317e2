package integrator

import (
	"math"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/geometry"
)

// PathTracer implements unidirectional path tracing with explicit light
// sampling at every vertex and Russian roulette termination.
type PathTracer struct {
	scene  SceneQuery
	config Config
}

// NewPathTracer creates a path tracer over a built scene
func NewPathTracer(scene SceneQuery, config Config) (*PathTracer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PathTracer{scene: scene, config: config}, nil
}

// Config returns the termination settings
func (pt *PathTracer) Config() Config {
	return pt.config
}

// RayColor estimates radiance for a camera ray
func (pt *PathTracer) RayColor(ray core.Ray, sampler core.Sampler) core.Vec3 {
	return pt.EstimateRadiance(ray, 0, sampler)
}

// EstimateRadiance returns a one-sample estimate of the radiance arriving
// along ray, for a path that has already bounced depth times.
//
// Emitters only count when seen directly from the camera. At later bounces
// their contribution was already gathered by the previous vertex's light
// sample, so counting them again would double it.
func (pt *PathTracer) EstimateRadiance(ray core.Ray, depth int, sampler core.Sampler) core.Vec3 {
	hit := pt.scene.NearestHit(ray)
	if !hit.Hit {
		return core.Vec3{}
	}

	if hit.IsEmissive() {
		if depth == 0 {
			return hit.Emission
		}
		return core.Vec3{}
	}
	if hit.Material == nil {
		return core.Vec3{}
	}

	wo := ray.Direction.Normalize().Negate()
	direct := pt.DirectLighting(hit, wo, sampler)

	// Russian roulette: continue with probability RR and divide by it
	if sampler.Get1D() > pt.config.RussianRoulette {
		return direct
	}
	if pt.config.MaxDepth > 0 && depth+1 >= pt.config.MaxDepth {
		return direct
	}

	wi := hit.Material.Sample(wo, hit.Normal, sampler).Normalize()
	pdf := hit.Material.PDF(wi, wo, hit.Normal)
	cosine := wi.Dot(hit.Normal)
	if pdf <= 0 || cosine <= 0 {
		return direct
	}

	brdf := hit.Material.Eval(wi, wo, hit.Normal)
	if brdf.IsZero() {
		return direct
	}

	incoming := pt.EstimateRadiance(core.NewRay(hit.Point, wi), depth+1, sampler)
	indirect := incoming.MultiplyVec(brdf).Multiply(cosine / (pt.config.RussianRoulette * pdf))
	return direct.Add(indirect)
}

// DirectLighting estimates light arriving at hit straight from an emitter,
// using one area sample on the union of lights and one shadow ray.
func (pt *PathTracer) DirectLighting(hit geometry.Intersection, wo core.Vec3, sampler core.Sampler) core.Vec3 {
	light, pdf := pt.scene.SampleEmissive(sampler)
	if pdf <= 0 || !light.Hit {
		return core.Vec3{}
	}

	toLight := light.Point.Subtract(hit.Point)
	distance := toLight.Length()
	if distance <= 0 {
		return core.Vec3{}
	}
	ws := toLight.Multiply(1.0 / distance)

	cosSurface := math.Max(0, ws.Dot(hit.Normal))
	cosLight := math.Max(0, ws.Negate().Dot(light.Normal))
	if cosSurface == 0 || cosLight == 0 {
		return core.Vec3{}
	}

	// Visible when the shadow ray reaches at least as far as the light
	shadow := pt.scene.NearestHit(core.NewRay(hit.Point, ws))
	if shadow.Hit && shadow.Distance < distance-pt.config.ShadowEpsilon {
		return core.Vec3{}
	}

	brdf := hit.Material.Eval(ws, wo, hit.Normal)
	return light.Emission.MultiplyVec(brdf).Multiply(cosLight * cosSurface / (distance * distance * pdf))
}
