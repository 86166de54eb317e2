package renderer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/integrator"
	"github.com/z466chen/SimplePathTracer/pkg/scene"
)

// directionIntegrator returns the ray direction so every pixel is identifiable
type directionIntegrator struct {
	calls atomic.Int64
}

func (d *directionIntegrator) RayColor(ray core.Ray, sampler core.Sampler) core.Vec3 {
	d.calls.Add(1)
	return ray.Direction
}

// blockingIntegrator never finishes a sample until release is closed
type blockingIntegrator struct {
	release chan struct{}
}

func (b *blockingIntegrator) RayColor(core.Ray, core.Sampler) core.Vec3 {
	<-b.release
	return core.Vec3{}
}

// panickingIntegrator panics on one specific column
type panickingIntegrator struct {
	camera *Camera
	column int
}

func (p *panickingIntegrator) RayColor(ray core.Ray, sampler core.Sampler) core.Vec3 {
	if ray.Direction == p.camera.Ray(p.column, 0).Direction {
		panic("bad pixel")
	}
	return core.NewVec3(1, 1, 1)
}

func testRenderConfig(width, height, spp int) Config {
	config := DefaultConfig()
	config.Width = width
	config.Height = height
	config.SamplesPerPixel = spp
	config.NumWorkers = 4
	config.NumProducers = 3
	config.BufferSize = 16
	config.WindowSize = 8
	config.ProgressInterval = 0
	return config
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"default", func(*Config) {}, true},
		{"zero width", func(c *Config) { c.Width = 0 }, false},
		{"negative height", func(c *Config) { c.Height = -1 }, false},
		{"zero fov", func(c *Config) { c.FOV = 0 }, false},
		{"straight angle fov", func(c *Config) { c.FOV = 180 }, false},
		{"zero samples", func(c *Config) { c.SamplesPerPixel = 0 }, false},
		{"negative workers", func(c *Config) { c.NumWorkers = -1 }, false},
		{"zero producers", func(c *Config) { c.NumProducers = 0 }, false},
		{"window equals buffer", func(c *Config) { c.WindowSize = c.BufferSize }, false},
		{"negative progress interval", func(c *Config) { c.ProgressInterval = -time.Second }, false},
		{"bad roulette", func(c *Config) { c.Tracing.RussianRoulette = 1.5 }, false},
		{"auto worker count", func(c *Config) { c.NumWorkers = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)
			err := config.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid config, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestRowBands(t *testing.T) {
	tests := []struct {
		name     string
		height   int
		n        int
		expected [][2]int
	}{
		{"even split", 6, 3, [][2]int{{0, 2}, {2, 4}, {4, 6}}},
		{"remainder to last band", 7, 3, [][2]int{{0, 2}, {2, 4}, {4, 7}}},
		{"more producers than rows", 2, 8, [][2]int{{0, 1}, {1, 2}}},
		{"single band", 5, 1, [][2]int{{0, 5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowBands(tt.height, tt.n)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}

func TestNewRaytracer_Rejects(t *testing.T) {
	if _, err := NewRaytracer(nil, testRenderConfig(4, 4, 1), nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nil integrator, got %v", err)
	}
	if _, err := NewRaytracer(&directionIntegrator{}, testRenderConfig(0, 4, 1), nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for empty image, got %v", err)
	}
}

func TestRaytracer_EveryPixelRenderedOnce(t *testing.T) {
	const width, height, spp = 13, 7, 3
	integ := &directionIntegrator{}
	rt, err := NewRaytracer(integ, testRenderConfig(width, height, spp), nil)
	if err != nil {
		t.Fatal(err)
	}

	fb, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if calls := integ.calls.Load(); calls != width*height*spp {
		t.Errorf("Expected %d integrator calls, got %d", width*height*spp, calls)
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			expected := rt.Camera().Ray(col, row).Direction
			if got := fb.At(col, row); got.Subtract(expected).Length() > 1e-12 {
				t.Fatalf("Pixel (%d, %d): expected %v, got %v", col, row, expected, got)
			}
		}
	}

	if !stats.Complete() || stats.CompletedPixels != width*height {
		t.Errorf("Expected complete render, got %+v", stats)
	}
	if stats.TotalSamples != width*height*spp {
		t.Errorf("Expected %d samples, got %d", width*height*spp, stats.TotalSamples)
	}
	if stats.Producers != 3 || stats.Workers != 4 {
		t.Errorf("Unexpected producer/worker counts %+v", stats)
	}
}

func TestRaytracer_EmissivePlaneIsUniform(t *testing.T) {
	s, err := scene.NewEmissivePlaneScene()
	if err != nil {
		t.Fatal(err)
	}
	rt, err := NewPathTracingRaytracer(s, testRenderConfig(16, 16, 1), nil)
	if err != nil {
		t.Fatal(err)
	}

	fb, _, err := rt.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	white := core.NewVec3(1, 1, 1)
	for i, pixel := range fb.Pixels {
		if pixel != white {
			t.Fatalf("Pixel %d: expected %v, got %v", i, white, pixel)
		}
	}
}

func TestRaytracer_EmptySceneIsBlack(t *testing.T) {
	s, err := scene.NewEmptyScene()
	if err != nil {
		t.Fatal(err)
	}
	rt, err := NewPathTracingRaytracer(s, testRenderConfig(8, 8, 2), nil)
	if err != nil {
		t.Fatal(err)
	}

	fb, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i, pixel := range fb.Pixels {
		if !pixel.IsZero() {
			t.Fatalf("Pixel %d: expected black, got %v", i, pixel)
		}
	}
	if stats.AverageLuminance != 0 {
		t.Errorf("Expected zero luminance, got %f", stats.AverageLuminance)
	}
}

func TestRaytracer_CornellBoxProducesFiniteLight(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Cornell render in short mode")
	}

	s, err := scene.NewCornellScene()
	if err != nil {
		t.Fatal(err)
	}
	config := testRenderConfig(24, 24, 4)
	config.Tracing = integrator.DefaultConfig()
	rt, err := NewPathTracingRaytracer(s, config, nil)
	if err != nil {
		t.Fatal(err)
	}

	fb, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i, pixel := range fb.Pixels {
		if !pixel.IsFinite() || pixel.X < 0 || pixel.Y < 0 || pixel.Z < 0 {
			t.Fatalf("Pixel %d has invalid radiance %v", i, pixel)
		}
	}
	if stats.AverageLuminance <= 0 {
		t.Error("Expected a lit Cornell box")
	}
}

func TestRaytracer_CancelReturnsInterrupted(t *testing.T) {
	integ := &blockingIntegrator{release: make(chan struct{})}
	rt, err := NewRaytracer(integ, testRenderConfig(32, 32, 1), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
		close(integ.release)
	}()

	fb, stats, err := rt.Render(ctx)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Expected ErrInterrupted, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected wrapped context.Canceled, got %v", err)
	}
	if fb == nil {
		t.Fatal("Expected a partial framebuffer")
	}
	if stats.Complete() {
		t.Error("Expected an incomplete render")
	}
}

func TestRaytracer_PanickingPixelLeftBlack(t *testing.T) {
	config := testRenderConfig(5, 1, 1)
	rt, err := NewRaytracer(&directionIntegrator{}, config, nil)
	if err != nil {
		t.Fatal(err)
	}
	rt.integrator = &panickingIntegrator{camera: rt.Camera(), column: 2}

	fb, stats, err := rt.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TasksPanicked != 1 || stats.CompletedPixels != 4 {
		t.Errorf("Expected 1 panicked and 4 completed pixels, got %+v", stats)
	}
	if !fb.At(2, 0).IsZero() {
		t.Errorf("Expected panicked pixel to stay black, got %v", fb.At(2, 0))
	}
	if fb.At(0, 0) != core.NewVec3(1, 1, 1) {
		t.Errorf("Expected other pixels to render, got %v", fb.At(0, 0))
	}
}

func TestRaytracer_ProgressCallback(t *testing.T) {
	integ := &blockingIntegrator{release: make(chan struct{})}
	config := testRenderConfig(4, 4, 1)
	config.ProgressInterval = 5 * time.Millisecond

	var reports atomic.Int32
	config.OnProgress = func(done, total int) {
		if total != 16 || done < 0 || done > total {
			t.Errorf("Unexpected progress %d/%d", done, total)
		}
		if reports.Add(1) == 2 {
			close(integ.release)
		}
	}

	rt, err := NewRaytracer(integ, config, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := rt.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
	if reports.Load() < 2 {
		t.Errorf("Expected at least 2 progress reports, got %d", reports.Load())
	}
}
