package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netgrid/pkg/observability"
	"github.com/matzehuels/netgrid/pkg/pipeline"
)

// layoutFlags holds the flags of the layout command.
type layoutFlags struct {
	output  string
	formats string
	config  configFlags
	cache   cacheOptions
	opts    pipeline.Options
}

// layoutCommand creates the layout command for placing and routing netlists.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [netlist.json]",
		Short: "Place and route a hierarchical netlist",
		Long: `Place and route a hierarchical netlist.

Every cell with children becomes a frame: its children are placed with a
force-directed pass, snapped to a matrix, sized, and wired with A* routing.
Frames that cannot be routed are retried with other net orders and then
re-sized with wider spacing before the run fails.

Output formats (-f, comma separated): json (default), svg, png, pdf, text, dot.
JSON holds every frame; the other formats draw one frame (--frame, default top).

Layouts are cached locally, or in Redis with --redis.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config.resolve(cmd)
			if err != nil {
				return err
			}
			f.opts.Config = cfg
			f.opts.NetlistPath = args[0]
			f.opts.Formats = parseFormats(f.formats)
			return c.runLayout(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file, or base name for several formats (default: <input>.<format>)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", pipeline.FormatJSON, "output formats: json, svg, png, pdf, text, dot")
	cmd.Flags().StringVar(&f.opts.Frame, "frame", "", "cell path of the frame to draw (default: top)")
	cmd.Flags().BoolVar(&f.opts.Grid, "grid", false, "draw the tile grid (svg, png, pdf)")
	cmd.Flags().BoolVar(&f.opts.Detailed, "detailed", false, "label DOT edges with port names")
	cmd.Flags().BoolVar(&f.opts.Refresh, "refresh", false, "ignore cached layouts")
	f.config.register(cmd)
	f.cache.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// runLayout runs the pipeline and writes one file per format.
func (c *CLI) runLayout(ctx context.Context, f layoutFlags) error {
	runner, err := c.newRunner(ctx, f.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Laying out "+filepath.Base(f.opts.NetlistPath)+"...")
	observability.SetLayoutHooks(&spinnerHooks{spinner: spinner})
	defer observability.SetLayoutHooks(observability.NoopLayoutHooks{})
	spinner.Start()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, f.opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if result != nil {
			printFailedFrames(result.Layout)
		}
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Laid out %d frames", result.Stats.FrameCount))

	paths, err := writeArtifacts(result.Artifacts, f.opts.Formats, f.opts.NetlistPath, f.output)
	if err != nil {
		return err
	}

	printSuccess("Layout complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats, result.CacheInfo.LayoutHit)
	if n := escalatedFrames(result.Layout); n > 0 {
		printWarning("%d of %d frames needed wider spacing", n, len(result.Layout.Frames))
	}
	if jsonPath, ok := artifactPath(paths, pipeline.FormatJSON, f.opts.Formats); ok {
		printNewline()
		printNextStep("Browse", appName+" view "+jsonPath)
	}
	return nil
}

// spinnerHooks shows the frame currently being laid out.
type spinnerHooks struct {
	observability.NoopLayoutHooks
	spinner *Spinner
}

func (h *spinnerHooks) OnFrameStart(_ context.Context, cell string, children int) {
	h.spinner.SetMessage(fmt.Sprintf("Routing %s (%d cells)...", cell, children))
}

func (h *spinnerHooks) OnEscalation(_ context.Context, cell string, level int, _ error) {
	h.spinner.SetMessage(fmt.Sprintf("Widening %s (escalation %d)...", cell, level))
}

// extensions maps formats to output file suffixes.
var extensions = map[string]string{
	pipeline.FormatJSON: ".layout.json",
	pipeline.FormatSVG:  ".svg",
	pipeline.FormatPNG:  ".png",
	pipeline.FormatPDF:  ".pdf",
	pipeline.FormatText: ".txt",
	pipeline.FormatDOT:  ".dot",
}

// outputPaths picks a file per format. A single format honors output as
// given; with several, output is a base name.
func outputPaths(formats []string, input, output string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}
	for _, f := range formats {
		paths[f] = base + extensions[f]
	}
	return paths
}

func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) ([]string, error) {
	paths := outputPaths(formats, input, output)
	written := make([]string, 0, len(paths))
	for _, format := range formats {
		p := paths[format]
		if err := os.WriteFile(p, artifacts[format], 0o644); err != nil {
			return written, fmt.Errorf("write output %s: %w", p, err)
		}
		written = append(written, p)
	}
	sort.Strings(written)
	return written, nil
}

func artifactPath(paths []string, format string, formats []string) (string, bool) {
	if len(formats) == 1 && formats[0] == format && len(paths) == 1 {
		return paths[0], true
	}
	for _, p := range paths {
		if strings.HasSuffix(p, extensions[format]) {
			return p, true
		}
	}
	return "", false
}
