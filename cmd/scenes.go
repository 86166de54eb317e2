package cmd

import (
	"bytes"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"github.com/z466chen/SimplePathTracer/pkg/scene"
)

// ListScenes prints the built-in scenes.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	writeSceneTable(&buf, scene.List())
	_, err := ctx.App.Writer.Write(buf.Bytes())
	return err
}

func writeSceneTable(buf *bytes.Buffer, scenes []scene.Info) {
	table := tablewriter.NewWriter(buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Name", "Description"})
	for _, info := range scenes {
		id := info.ID
		if id == scene.DefaultScene {
			id += " (default)"
		}
		table.Append([]string{id, info.DisplayName, info.Description})
	}
	table.Render()
}
