package renderer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/integrator"
	"github.com/z466chen/SimplePathTracer/pkg/log"
)

var logger = log.New("renderer")

// Raytracer renders frames by turning every pixel into one pool task.
// Producers walk row bands of the image and submit tasks; workers trace the
// pixel's samples with their own sampler and write the average straight into
// the framebuffer.
type Raytracer struct {
	integrator integrator.Integrator
	config     Config
	camera     *Camera
	logger     log.Logger
}

// NewRaytracer creates a raytracer for an integrator. A nil logger uses the
// package logger.
func NewRaytracer(integ integrator.Integrator, config Config, logger log.Logger) (*Raytracer, error) {
	if integ == nil {
		return nil, fmt.Errorf("%w: nil integrator", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = defaultLogger()
	}

	return &Raytracer{
		integrator: integ,
		config:     config,
		camera:     NewCamera(config.Eye, config.Width, config.Height, config.FOV),
		logger:     logger,
	}, nil
}

// NewPathTracingRaytracer creates a raytracer backed by a path tracer over scene
func NewPathTracingRaytracer(scene integrator.SceneQuery, config Config, logger log.Logger) (*Raytracer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	tracer, err := integrator.NewPathTracer(scene, config.Tracing)
	if err != nil {
		return nil, err
	}
	return NewRaytracer(tracer, config, logger)
}

func defaultLogger() log.Logger {
	return logger
}

// Config returns the render configuration
func (rt *Raytracer) Config() Config {
	return rt.config
}

// Camera returns the camera used for primary rays
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// Render traces one frame. It returns once every pixel has been written, or
// with ErrInterrupted (and a partial framebuffer) when ctx is cancelled.
func (rt *Raytracer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	start := time.Now()
	width, height := rt.config.Width, rt.config.Height
	framebuffer := NewFramebuffer(width, height)
	progress := newProgressTracker(width * height)

	pool, err := NewWorkerPool(rt.config.PoolConfig())
	if err != nil {
		return nil, RenderStats{}, err
	}

	rt.logger.Infof("rendering %dx%d at %d spp with %d workers", width, height, rt.config.SamplesPerPixel, pool.NumWorkers())

	stopProgress := make(chan struct{})
	var reporter sync.WaitGroup
	reporter.Add(1)
	go func() {
		defer reporter.Done()
		progress.report(rt.logger, rt.config.ProgressInterval, rt.config.OnProgress, stopProgress)
	}()

	bands := rowBands(height, rt.config.NumProducers)
	var producers sync.WaitGroup
	for _, band := range bands {
		producers.Add(1)
		go func(rowStart, rowEnd int) {
			defer producers.Done()
			rt.produce(ctx, pool, framebuffer, progress, rowStart, rowEnd)
		}(band[0], band[1])
	}

	var renderErr error
	select {
	case <-progress.done:
	case <-ctx.Done():
		renderErr = fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}

	// Shutdown releases any producer still blocked on a full window
	poolStats := pool.Shutdown()
	producers.Wait()
	close(stopProgress)
	reporter.Wait()

	finished := progress.count()
	stats := RenderStats{
		Width:            width,
		Height:           height,
		TotalPixels:      width * height,
		CompletedPixels:  finished - int(poolStats.Panicked),
		SamplesPerPixel:  rt.config.SamplesPerPixel,
		Workers:          pool.NumWorkers(),
		Producers:        len(bands),
		TasksDropped:     poolStats.Dropped,
		TasksPanicked:    poolStats.Panicked,
		AverageLuminance: framebuffer.AverageLuminance(),
		Elapsed:          time.Since(start),
	}
	stats.TotalSamples = int64(stats.CompletedPixels) * int64(stats.SamplesPerPixel)

	if renderErr != nil {
		rt.logger.Warningf("render interrupted after %d/%d pixels", stats.CompletedPixels, stats.TotalPixels)
		return framebuffer, stats, renderErr
	}
	if poolStats.Panicked > 0 {
		rt.logger.Errorf("%d pixel tasks panicked and were left black", poolStats.Panicked)
	}

	rt.logger.Infof("render finished in %v (%.0f samples/s)", stats.Elapsed.Round(time.Millisecond), stats.SamplesPerSecond())
	return framebuffer, stats, nil
}

// produce submits one task per pixel in rows [rowStart, rowEnd)
func (rt *Raytracer) produce(ctx context.Context, pool *WorkerPool, framebuffer *Framebuffer, progress *progressTracker, rowStart, rowEnd int) {
	for row := rowStart; row < rowEnd; row++ {
		for col := 0; col < rt.config.Width; col++ {
			if ctx.Err() != nil {
				return
			}

			task := rt.newPixelTask(framebuffer, progress, col, row)
			if err := pool.Submit(task); err != nil {
				return
			}
		}
	}
}

// pixelTask is the immutable payload of one pixel's task. Producers build
// it by value, so it does not alias any loop variable.
type pixelTask struct {
	index       int
	ray         core.Ray
	samples     int
	integrator  integrator.Integrator
	framebuffer *Framebuffer
	progress    *progressTracker
}

// run averages the pixel's samples and stores the result
func (p pixelTask) run(w *Worker) {
	defer p.progress.pixelDone()

	var sum core.Vec3
	for s := 0; s < p.samples; s++ {
		sum = sum.Add(p.integrator.RayColor(p.ray, w.Sampler))
	}
	p.framebuffer.Set(p.index, sum.Multiply(1.0/float64(p.samples)))
}

func (rt *Raytracer) newPixelTask(framebuffer *Framebuffer, progress *progressTracker, col, row int) Task {
	return pixelTask{
		index:       framebuffer.Index(row, col),
		ray:         rt.camera.Ray(col, row),
		samples:     rt.config.SamplesPerPixel,
		integrator:  rt.integrator,
		framebuffer: framebuffer,
		progress:    progress,
	}.run
}

// rowBands splits height rows into at most n contiguous bands. The last band
// takes the remainder.
func rowBands(height, n int) [][2]int {
	if n > height {
		n = height
	}
	if n <= 0 {
		return nil
	}

	size := height / n
	bands := make([][2]int, 0, n)
	for i := 0; i < n; i++ {
		start := i * size
		end := start + size
		if i == n-1 {
			end = height
		}
		bands = append(bands, [2]int{start, end})
	}
	return bands
}
