package main

import (
	"os"

	"github.com/urfave/cli"
	"github.com/z466chen/SimplePathTracer/cmd"
	"github.com/z466chen/SimplePathTracer/pkg/log"
)

var logger = log.New("pathtracer")

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "pathtracer"
	app.Usage = "render scenes with a Monte Carlo path tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a single frame",
			Description: `
Trace every pixel of the selected scene with unidirectional path tracing and
write the averaged radiance to an image. The output format is picked from the
file extension. Interrupting a render writes the pixels finished so far.`,
			Flags:  cmd.RenderFlags(),
			Action: cmd.RenderFrame,
		},
		{
			Name:   "scenes",
			Usage:  "list built-in scenes",
			Action: cmd.ListScenes,
		},
	}
	return app
}

// run executes the app and logs any error it returns. urfave/cli only
// prints errors that carry an exit code.
func run(args []string) error {
	err := newApp().Run(args)
	if err != nil {
		logger.Errorf("%v", err)
	}
	return err
}

func main() {
	if err := run(os.Args); err != nil {
		os.Exit(1)
	}
}
