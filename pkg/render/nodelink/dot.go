package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/netgrid/pkg/graph"
	"github.com/matzehuels/netgrid/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds cell kinds to node labels and port names to edges.
	Detailed bool
}

// ToDOT converts a frame's connectivity to Graphviz DOT. Child blocks become
// boxes, the frame's own ports become ellipses and every route becomes an
// edge from its driver to its target.
func ToDOT(f graph.Frame, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, p := range f.Pins {
		if p.Boundary {
			name := strings.TrimPrefix(p.Port, f.Cell+".")
			fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse, style=filled, fillcolor=lightgrey];\n", portNode(name), name)
		}
	}
	for _, b := range f.Blocks {
		label := b.Name
		if opts.Detailed {
			label += "\n" + b.Kind
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", b.Name, label)
	}

	buf.WriteString("\n")
	for _, r := range f.Routes {
		from, fromPort := endpoint(f, r.From)
		to, toPort := endpoint(f, r.To)
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -> %q [taillabel=%q, headlabel=%q];\n", from, to, fromPort, toPort)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", from, to)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func portNode(name string) string { return "port:" + name }

// endpoint maps a port path to its node id and port name.
func endpoint(f graph.Frame, port string) (node, name string) {
	if name, ok := strings.CutPrefix(port, f.Cell+"."); ok {
		return portNode(name), name
	}
	for _, b := range f.Blocks {
		if name, ok := strings.CutPrefix(port, f.Cell+"/"+b.Name+"."); ok {
			return b.Name, name
		}
	}
	return port, port
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// Requires librsvg.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
