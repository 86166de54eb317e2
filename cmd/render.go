package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"github.com/z466chen/SimplePathTracer/pkg/core"
	"github.com/z466chen/SimplePathTracer/pkg/imageio"
	"github.com/z466chen/SimplePathTracer/pkg/renderer"
	"github.com/z466chen/SimplePathTracer/pkg/scene"
)

// RenderFlags returns the flags accepted by the render command, with
// defaults taken from renderer.DefaultConfig.
func RenderFlags() []cli.Flag {
	defaults := renderer.DefaultConfig()
	return []cli.Flag{
		cli.StringFlag{
			Name:  "scene, s",
			Value: scene.DefaultScene,
			Usage: "built-in scene to render (see the scenes command)",
		},
		cli.StringFlag{
			Name:  "ply",
			Usage: "render a PLY mesh inside the empty Cornell box instead of a built-in scene",
		},
		cli.IntFlag{
			Name:  "width",
			Value: defaults.Width,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: defaults.Height,
			Usage: "frame height",
		},
		cli.Float64Flag{
			Name:  "fov",
			Value: defaults.FOV,
			Usage: "vertical field of view in degrees",
		},
		cli.StringFlag{
			Name:  "eye",
			Value: formatVec3(defaults.Eye),
			Usage: "camera position as x,y,z",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: defaults.SamplesPerPixel,
			Usage: "samples per pixel",
		},
		cli.Float64Flag{
			Name:  "rr",
			Value: defaults.Tracing.RussianRoulette,
			Usage: "russian roulette survival probability",
		},
		cli.IntFlag{
			Name:  "max-depth",
			Value: defaults.Tracing.MaxDepth,
			Usage: "hard bounce limit (0 = russian roulette only)",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: defaults.NumWorkers,
			Usage: "worker goroutines (0 = one per CPU)",
		},
		cli.IntFlag{
			Name:  "producers",
			Value: defaults.NumProducers,
			Usage: "goroutines generating pixel tasks",
		},
		cli.IntFlag{
			Name:  "buffer",
			Value: defaults.BufferSize,
			Usage: "task channel capacity",
		},
		cli.IntFlag{
			Name:  "window",
			Value: defaults.WindowSize,
			Usage: "maximum tasks in flight",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: defaults.Seed,
			Usage: "base seed for the worker samplers",
		},
		cli.DurationFlag{
			Name:  "progress",
			Value: defaults.ProgressInterval,
			Usage: "progress report interval (0 disables it)",
		},
		cli.StringFlag{
			Name:  "out, o",
			Value: "frame.ppm",
			Usage: "output image (.ppm, .png, .bmp, .tif)",
		},
	}
}

// RenderFrame renders a still frame and writes it to disk.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	config, err := renderConfig(ctx)
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if _, err := imageio.Format(out); err != nil {
		return err
	}

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	rt, err := renderer.NewPathTracingRaytracer(sc, config, nil)
	if err != nil {
		return err
	}

	// Ctrl-C stops the render; whatever finished is still written
	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Noticef("rendering %s at %dx%d, %d spp", sc.Name, config.Width, config.Height, config.SamplesPerPixel)
	fb, stats, renderErr := rt.Render(renderCtx)
	if renderErr != nil && !errors.Is(renderErr, renderer.ErrInterrupted) {
		return renderErr
	}

	if err := imageio.WriteFile(out, fb); err != nil {
		return err
	}
	logger.Noticef("wrote %s", out)

	displayFrameStats(sc.Name, stats)
	return renderErr
}

func loadScene(ctx *cli.Context) (*scene.Scene, error) {
	if path := ctx.String("ply"); path != "" {
		return scene.NewPLYScene(path)
	}
	return scene.Build(ctx.String("scene"))
}

// renderConfig maps command flags onto a validated renderer config
func renderConfig(ctx *cli.Context) (renderer.Config, error) {
	config := renderer.DefaultConfig()

	eye, err := parseVec3(ctx.String("eye"))
	if err != nil {
		return config, err
	}

	config.Width = ctx.Int("width")
	config.Height = ctx.Int("height")
	config.FOV = ctx.Float64("fov")
	config.Eye = eye
	config.SamplesPerPixel = ctx.Int("spp")
	config.Tracing.RussianRoulette = ctx.Float64("rr")
	config.Tracing.MaxDepth = ctx.Int("max-depth")
	config.NumWorkers = ctx.Int("workers")
	config.NumProducers = ctx.Int("producers")
	config.BufferSize = ctx.Int("buffer")
	config.WindowSize = ctx.Int("window")
	config.Seed = ctx.Int64("seed")
	config.ProgressInterval = ctx.Duration("progress")

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// parseVec3 parses "x,y,z"
func parseVec3(s string) (core.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("invalid vector %q: expected x,y,z", s)
	}

	var xyz [3]float64
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid vector %q: %w", s, err)
		}
		xyz[i] = value
	}
	return core.NewVec3(xyz[0], xyz[1], xyz[2]), nil
}

func formatVec3(v core.Vec3) string {
	return strconv.FormatFloat(v.X, 'g', -1, 64) + "," +
		strconv.FormatFloat(v.Y, 'g', -1, 64) + "," +
		strconv.FormatFloat(v.Z, 'g', -1, 64)
}

func displayFrameStats(sceneName string, stats renderer.RenderStats) {
	var buf bytes.Buffer
	writeStatsTable(&buf, sceneName, stats)
	logger.Noticef("frame statistics\n%s", buf.String())
}

func writeStatsTable(buf *bytes.Buffer, sceneName string, stats renderer.RenderStats) {
	table := tablewriter.NewWriter(buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Resolution", "Pixels", "SPP", "Workers", "Producers", "Dropped", "Panicked", "Render time"})
	table.Append([]string{
		sceneName,
		fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		fmt.Sprintf("%d/%d", stats.CompletedPixels, stats.TotalPixels),
		fmt.Sprintf("%d", stats.SamplesPerPixel),
		fmt.Sprintf("%d", stats.Workers),
		fmt.Sprintf("%d", stats.Producers),
		fmt.Sprintf("%d", stats.TasksDropped),
		fmt.Sprintf("%d", stats.TasksPanicked),
		stats.Elapsed.Round(time.Millisecond).String(),
	})
	table.SetFooter([]string{"", "", "", "", "", "", "", "SAMPLES/S", fmt.Sprintf("%.0f", stats.SamplesPerSecond())})
	table.Render()
}
