package scene

import (
	"fmt"
	"math"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/geometry"
	"github.com/z466chen/SimplePathTracer/pkg/log"
)

// RayEpsilon is the minimum hit distance accepted by NearestHit.
// It keeps rays leaving a surface from re-hitting that surface.
const RayEpsilon = 1e-4

var logger = log.New("scene")

// Scene holds every renderable surface, the emissive subset, and the
// acceleration structure built over them.
//
// A scene is populated with AddSurface/AddLight, then frozen by
// BuildAccelerationStructure. After that it is read-only and its query
// methods may be called from any number of goroutines without locking.
type Scene struct {
	Name     string
	surfaces []geometry.Shape
	lights   []geometry.Shape
	bvh      *geometry.BVH
}

// New creates an empty, unbuilt scene
func New(name string) *Scene {
	return &Scene{Name: name}
}

// AddSurface adds a renderable surface
func (s *Scene) AddSurface(shape geometry.Shape) error {
	if err := s.checkMutable(shape); err != nil {
		return err
	}
	s.surfaces = append(s.surfaces, shape)
	return nil
}

// AddLight adds an emissive surface. It is rendered like any other surface
// and also becomes a candidate for SampleEmissive.
func (s *Scene) AddLight(shape geometry.Shape) error {
	if err := s.checkMutable(shape); err != nil {
		return err
	}
	s.surfaces = append(s.surfaces, shape)
	s.lights = append(s.lights, shape)
	return nil
}

func (s *Scene) checkMutable(shape geometry.Shape) error {
	if shape == nil {
		return ErrNilShape
	}
	if s.bvh != nil {
		return ErrSceneFrozen
	}
	return nil
}

// BuildAccelerationStructure builds the BVH. It must be called exactly once,
// before rendering starts.
func (s *Scene) BuildAccelerationStructure() error {
	if s.bvh != nil {
		return ErrAlreadyBuilt
	}

	s.bvh = geometry.NewBVH(s.surfaces)

	stats := s.bvh.Stats()
	logger.Debugf("%s: built BVH over %d surfaces (%d lights): %d nodes, %d leaves, depth %d",
		s.Name, len(s.surfaces), len(s.lights), stats.TotalNodes, stats.LeafNodes, stats.MaxDepth)
	return nil
}

// Built reports whether BuildAccelerationStructure has run
func (s *Scene) Built() bool {
	return s.bvh != nil
}

// NearestHit returns the closest intersection along the ray, or the no-hit
// sentinel if the ray escapes or the scene has not been built.
func (s *Scene) NearestHit(ray core.Ray) geometry.Intersection {
	if s.bvh == nil {
		return geometry.Intersection{}
	}
	hit, ok := s.bvh.Hit(ray, RayEpsilon, math.Inf(1))
	if !ok {
		return geometry.Intersection{}
	}
	return hit
}

// SampleEmissive picks a point on the union of emissive surfaces with
// probability proportional to area. The returned density is with respect to
// area, 1/total. With no emissive area it returns the no-hit sentinel and 0.
func (s *Scene) SampleEmissive(sampler core.Sampler) (geometry.Intersection, float64) {
	total := s.EmissiveArea()
	if total <= 0 {
		return geometry.Intersection{}, 0
	}

	u := sampler.Get1D() * total
	chosen := s.lights[len(s.lights)-1]
	sum := 0.0
	for _, light := range s.lights {
		sum += light.Area()
		if sum > u {
			chosen = light
			break
		}
	}

	return chosen.Sample(sampler), 1.0 / total
}

// EmissiveArea returns the summed area of all lights
func (s *Scene) EmissiveArea() float64 {
	total := 0.0
	for _, light := range s.lights {
		total += light.Area()
	}
	return total
}

// SurfaceCount returns the number of top-level surfaces
func (s *Scene) SurfaceCount() int {
	return len(s.surfaces)
}

// LightCount returns the number of emissive surfaces
func (s *Scene) LightCount() int {
	return len(s.lights)
}

// PrimitiveCount counts primitives, expanding triangle meshes
func (s *Scene) PrimitiveCount() int {
	count := 0
	for _, shape := range s.surfaces {
		switch obj := shape.(type) {
		case *geometry.TriangleMesh:
			count += obj.TriangleCount()
		case *geometry.Box:
			count += len(obj.Faces())
		default:
			count++
		}
	}
	return count
}

// String describes the scene for log output
func (s *Scene) String() string {
	return fmt.Sprintf("%s (%d surfaces, %d primitives, %d lights)", s.Name, s.SurfaceCount(), s.PrimitiveCount(), s.LightCount())
}
