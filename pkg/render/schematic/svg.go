// Package schematic draws a laid-out frame as an SVG schematic: the frame
// outline, child blocks, port pins and routed wires on the tile grid.
//
// One grid unit becomes scale drawing units. Boundary pins sit one unit
// outside the grid, so the drawing adds a one-unit margin on every side.
//
//	svg := schematic.RenderSVG(l.Frames[0], l.Scale, schematic.WithGrid())
package schematic

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/netgrid/pkg/graph"
)

// Colours per cell kind; kinds without an entry use the default fill.
var kindFill = map[string]string{
	"instance":         "#dbeafe",
	"register":         "#fde68a",
	"memory":           "#e9d5ff",
	"assign":           "#dcfce7",
	"alu":              "#bbf7d0",
	"process":          "#fee2e2",
	"parallel_process": "#fecaca",
}

const (
	defaultFill = "#f3f4f6"
	wireColor   = "#1f2937"
	pinColor    = "#b91c1c"
	gridColor   = "#e5e7eb"
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	grid   bool
	labels bool
}

// WithGrid draws the tile grid under the schematic.
func WithGrid() SVGOption { return func(r *svgRenderer) { r.grid = true } }

// WithoutLabels omits block and pin names.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// RenderSVG renders one frame.
func RenderSVG(f graph.Frame, scale float64, opts ...SVGOption) []byte {
	r := svgRenderer{labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	if scale <= 0 {
		scale = 1
	}
	c := canvas{scale: scale}

	w, h := float64(f.Width+2)*scale, float64(f.Height+2)*scale
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(f.Cell))

	if r.grid {
		renderGrid(&buf, c, f.Width, f.Height)
	}
	fmt.Fprintf(&buf, `  <rect class="frame" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="%s" stroke-width="%.1f"/>`+"\n",
		c.x(0), c.y(0), float64(f.Width)*scale, float64(f.Height)*scale, wireColor, scale/8)

	for _, b := range f.Blocks {
		renderBlock(&buf, c, b, r.labels)
	}
	renderWires(&buf, c, f)
	for _, p := range f.Pins {
		renderPin(&buf, c, p)
	}
	for _, wire := range f.Wires {
		if wire.Junction {
			fmt.Fprintf(&buf, `  <circle class="junction" cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n",
				c.cx(wire.X), c.cy(wire.Y), scale/5, wireColor)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// canvas maps grid coordinates to drawing coordinates.
type canvas struct{ scale float64 }

func (c canvas) x(gx int) float64  { return float64(gx+1) * c.scale }
func (c canvas) y(gy int) float64  { return float64(gy+1) * c.scale }
func (c canvas) cx(gx int) float64 { return c.x(gx) + c.scale/2 }
func (c canvas) cy(gy int) float64 { return c.y(gy) + c.scale/2 }

func renderGrid(buf *bytes.Buffer, c canvas, w, h int) {
	buf.WriteString(`  <g class="grid" stroke="` + gridColor + `" stroke-width="1">` + "\n")
	for x := 0; x <= w; x++ {
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", c.x(x), c.y(0), c.x(x), c.y(h))
	}
	for y := 0; y <= h; y++ {
		fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", c.x(0), c.y(y), c.x(w), c.y(y))
	}
	buf.WriteString("  </g>\n")
}

func renderBlock(buf *bytes.Buffer, c canvas, b graph.Block, label bool) {
	fill, ok := kindFill[b.Kind]
	if !ok {
		fill = defaultFill
	}
	fmt.Fprintf(buf, `  <rect class="block %s" id="block-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="%s" stroke="%s"/>`+"\n",
		html.EscapeString(b.Kind), html.EscapeString(b.Name),
		c.x(b.X), c.y(b.Y), float64(b.W)*c.scale, float64(b.H)*c.scale, c.scale/6, fill, wireColor)
	if label {
		fmt.Fprintf(buf, `  <text class="block-text" x="%.1f" y="%.1f" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			c.x(b.X)+float64(b.W)*c.scale/2, c.y(b.Y)+float64(b.H)*c.scale/2, c.scale*0.6, html.EscapeString(b.Name))
	}
}

func renderPin(buf *bytes.Buffer, c canvas, p graph.Pin) {
	size := c.scale / 3
	fmt.Fprintf(buf, `  <rect class="pin" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s</title></rect>`+"\n",
		c.cx(p.X)-size/2, c.cy(p.Y)-size/2, size, size, pinColor, html.EscapeString(p.Port))
}

// renderWires draws every route as a polyline from its source pin through
// the tile centres of its path to its target pin.
func renderWires(buf *bytes.Buffer, c canvas, f graph.Frame) {
	pins := make(map[string]graph.Pin, len(f.Pins))
	for _, p := range f.Pins {
		pins[p.Port] = p
	}
	for _, r := range f.Routes {
		var pts bytes.Buffer
		add := func(x, y float64) { fmt.Fprintf(&pts, "%.1f,%.1f ", x, y) }
		if p, ok := pins[r.From]; ok {
			add(c.cx(p.X), c.cy(p.Y))
		}
		for _, pt := range r.Path {
			add(c.cx(pt.X), c.cy(pt.Y))
		}
		if p, ok := pins[r.To]; ok {
			add(c.cx(p.X), c.cy(p.Y))
		}
		fmt.Fprintf(buf, `  <polyline class="wire net-%d" points="%s" fill="none" stroke="%s" stroke-width="%.1f"/>`+"\n",
			r.Net, bytes.TrimSpace(pts.Bytes()), wireColor, c.scale/8)
	}
}
