package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/netgrid/pkg/errors"
	"github.com/matzehuels/netgrid/pkg/graph"
	"github.com/matzehuels/netgrid/pkg/observability"
	"github.com/matzehuels/netgrid/pkg/render"
	"github.com/matzehuels/netgrid/pkg/render/nodelink"
	"github.com/matzehuels/netgrid/pkg/render/schematic"
	"github.com/matzehuels/netgrid/pkg/render/text"
)

// Render generates output artifacts in the requested formats. JSON holds the
// whole layout; every other format draws the frame selected by opts.Frame.
func Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderFormats(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if format == FormatJSON {
			data, err := graph.MarshalLayout(l)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", format, err)
			}
			artifacts[format] = data
			continue
		}

		f, err := SelectFrame(l, opts.Frame)
		if err != nil {
			return nil, err
		}
		data, err := renderFrame(ctx, *f, l.Scale, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFrame(ctx context.Context, f graph.Frame, scale float64, format string, opts Options) ([]byte, error) {
	var svgOpts []schematic.SVGOption
	if opts.Grid {
		svgOpts = append(svgOpts, schematic.WithGrid())
	}

	switch format {
	case FormatSVG:
		return schematic.RenderSVG(f, scale, svgOpts...), nil
	case FormatPNG:
		return render.ToPNG(ctx, schematic.RenderSVG(f, scale, svgOpts...), DefaultPNGScale)
	case FormatPDF:
		return render.ToPDF(ctx, schematic.RenderSVG(f, scale, svgOpts...))
	case FormatText:
		return []byte(text.Render(f, text.Options{})), nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(f, nodelink.Options{Detailed: opts.Detailed})), nil
	}
	return nil, ValidateFormat(format)
}

// SelectFrame returns the frame with the given cell path; an empty path
// selects the first (top) frame.
func SelectFrame(l graph.Layout, cell string) (*graph.Frame, error) {
	if len(l.Frames) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "layout has no frames")
	}
	if cell == "" {
		return &l.Frames[0], nil
	}
	if f := l.Frame(cell); f != nil {
		return f, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "no frame for cell %q", cell)
}
