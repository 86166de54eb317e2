package integrator

import (
	"errors"
	"fmt"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/geometry"
)

// ErrInvalidConfig is returned by Config.Validate
var ErrInvalidConfig = errors.New("integrator: invalid configuration")

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along a camera ray.
	// The sampler belongs to the calling worker and is not shared.
	RayColor(ray core.Ray, sampler core.Sampler) core.Vec3
}

// SceneQuery is the read-only view of a scene that integrators need.
// Implementations must be safe for concurrent use.
type SceneQuery interface {
	// NearestHit returns the closest intersection or the no-hit sentinel
	NearestHit(ray core.Ray) geometry.Intersection

	// SampleEmissive returns a point on a light and its area-measure density;
	// the density is 0 when there is nothing to sample
	SampleEmissive(sampler core.Sampler) (geometry.Intersection, float64)
}

// Config controls path termination
type Config struct {
	RussianRoulette float64 // Survival probability per bounce, in (0, 1]
	MaxDepth        int     // Hard bounce ceiling; 0 disables it
	ShadowEpsilon   float64 // Tolerance when comparing shadow hits to the light distance
}

// DefaultConfig returns the standard termination settings
func DefaultConfig() Config {
	return Config{
		RussianRoulette: 0.8,
		MaxDepth:        100,
		ShadowEpsilon:   1e-3,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.RussianRoulette <= 0 || c.RussianRoulette > 1 {
		return fmt.Errorf("%w: russian roulette probability %v outside (0, 1]", ErrInvalidConfig, c.RussianRoulette)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: negative max depth %d", ErrInvalidConfig, c.MaxDepth)
	}
	if c.RussianRoulette == 1 && c.MaxDepth == 0 {
		return fmt.Errorf("%w: paths never terminate with survival probability 1 and no max depth", ErrInvalidConfig)
	}
	if c.ShadowEpsilon < 0 {
		return fmt.Errorf("%w: negative shadow epsilon %v", ErrInvalidConfig, c.ShadowEpsilon)
	}
	return nil
}
