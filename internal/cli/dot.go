package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netgrid/pkg/graph"
	"github.com/matzehuels/netgrid/pkg/pipeline"
	"github.com/matzehuels/netgrid/pkg/render/nodelink"
)

// dotCommand creates the dot command, which exports a frame's connectivity
// as a node-link diagram.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		output string
		frame  string
		svg    bool
		opts   nodelink.Options
	)

	cmd := &cobra.Command{
		Use:   "dot [layout.json]",
		Short: "Export a frame's connectivity as Graphviz DOT",
		Long: `Export a frame's connectivity as Graphviz DOT.

The input is a layout.json written by 'layout'. Child cells become boxes, the
frame's own ports become ellipses and every routed net becomes an edge. With
--svg the graph is drawn with the embedded Graphviz engine.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDOT(cmd.Context(), args[0], frame, output, svg, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.dot or .svg)")
	cmd.Flags().StringVar(&frame, "frame", "", "cell path of the frame to export (default: top)")
	cmd.Flags().BoolVar(&svg, "svg", false, "render with Graphviz instead of writing DOT")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "add cell kinds and port names")
	_ = cmd.RegisterFlagCompletionFunc("frame", completeFrames)

	return cmd
}

func (c *CLI) runDOT(ctx context.Context, input, frame, output string, svg bool, opts nodelink.Options) error {
	l, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	f, err := pipeline.SelectFrame(l, frame)
	if err != nil {
		return err
	}

	dot := nodelink.ToDOT(*f, opts)
	data := []byte(dot)
	ext := ".dot"
	if svg {
		if data, err = nodelink.RenderSVG(ctx, dot); err != nil {
			return fmt.Errorf("render %s: %w", f.Cell, err)
		}
		ext = ".svg"
	}

	if output == "" {
		base := strings.TrimSuffix(strings.TrimSuffix(input, filepath.Ext(input)), ".layout")
		output = base + "." + strings.ReplaceAll(f.Cell, "/", "_") + ext
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	c.Logger.Debug("exported frame", "cell", f.Cell, "routes", len(f.Routes))

	printSuccess("Exported %s", f.Cell)
	printFile(output)
	return nil
}
