package renderer

import (
	"fmt"
	"time"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/integrator"
)

// Config contains everything needed to render one frame
type Config struct {
	Width           int       // Image width
	Height          int       // Image height
	FOV             float64   // Vertical field of view in degrees
	Eye             core.Vec3 // Camera position
	SamplesPerPixel int       // Radiance samples averaged per pixel

	Tracing integrator.Config // Path termination settings

	NumWorkers   int   // Worker goroutines (0 = use CPU count)
	NumProducers int   // Goroutines generating primary rays, one row band each
	BufferSize   int   // Task ring capacity
	WindowSize   int   // Maximum tasks in flight
	Seed         int64 // Base seed for worker samplers

	ProgressInterval time.Duration       // How often progress is reported (0 disables it)
	OnProgress       func(done, total int) // Optional progress callback
}

// DefaultConfig returns the standard Cornell box setup
func DefaultConfig() Config {
	pool := DefaultPoolConfig()
	return Config{
		Width:            784,
		Height:           784,
		FOV:              40,
		Eye:              core.NewVec3(278, 273, -800),
		SamplesPerPixel:  64,
		Tracing:          integrator.DefaultConfig(),
		NumWorkers:       pool.NumWorkers,
		NumProducers:     8,
		BufferSize:       pool.BufferSize,
		WindowSize:       pool.WindowSize,
		Seed:             pool.Seed,
		ProgressInterval: time.Second,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.FOV <= 0 || c.FOV >= 180:
		return fmt.Errorf("%w: field of view %v outside (0, 180)", ErrInvalidConfig, c.FOV)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel %d", ErrInvalidConfig, c.SamplesPerPixel)
	case c.NumWorkers < 0:
		return fmt.Errorf("%w: worker count %d", ErrInvalidConfig, c.NumWorkers)
	case c.NumProducers <= 0:
		return fmt.Errorf("%w: producer count %d", ErrInvalidConfig, c.NumProducers)
	case c.WindowSize <= 0 || c.WindowSize >= c.BufferSize:
		return fmt.Errorf("%w: window %d must be in (0, buffer %d)", ErrInvalidConfig, c.WindowSize, c.BufferSize)
	case c.ProgressInterval < 0:
		return fmt.Errorf("%w: negative progress interval", ErrInvalidConfig)
	}

	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// PoolConfig returns the worker pool settings
func (c Config) PoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers: c.NumWorkers,
		BufferSize: c.BufferSize,
		WindowSize: c.WindowSize,
		Seed:       c.Seed,
	}
}
