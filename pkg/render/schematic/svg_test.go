package schematic

import (
	"strings"
	"testing"

	"github.com/matzehuels/netgrid/pkg/graph"
)

func pairFrame() graph.Frame {
	return graph.Frame{
		Cell:   "top",
		Kind:   "top",
		Width:  7,
		Height: 4,
		Blocks: []graph.Block{
			{Name: "a", Kind: "assign", X: 1, Y: 1, W: 2, H: 2},
			{Name: "b", Kind: "mystery", X: 4, Y: 1, W: 2, H: 2},
		},
		Pins: []graph.Pin{
			{Port: "top/a.o", Side: "right", X: 2, Y: 2},
			{Port: "top/b.i", Side: "left", X: 4, Y: 2},
		},
		Routes: []graph.Route{
			{Net: 0, From: "top/a.o", To: "top/b.i", Path: []graph.Point{{X: 3, Y: 2}}},
		},
		Wires: []graph.Wire{{X: 3, Y: 2, Dirs: "LR", Nets: 1}},
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(pairFrame(), 10))

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	if !strings.Contains(svg, `viewBox="0 0 90.0 60.0"`) {
		t.Errorf("viewBox should cover the grid plus a one-unit margin:\n%s", svg)
	}
	if n := strings.Count(svg, `class="block `); n != 2 {
		t.Errorf("blocks = %d, want 2", n)
	}
	if n := strings.Count(svg, `class="pin"`); n != 2 {
		t.Errorf("pins = %d, want 2", n)
	}
	// Pin (2,2) → tile (3,2) → pin (4,2), centred at +1.5 units.
	if !strings.Contains(svg, `points="35.0,35.0 45.0,35.0 55.0,35.0"`) {
		t.Errorf("wire polyline missing or misplaced:\n%s", svg)
	}
	if !strings.Contains(svg, defaultFill) {
		t.Error("unknown kinds should use the default fill")
	}
	if strings.Contains(svg, `class="grid"`) {
		t.Error("grid drawn without WithGrid")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	svg := string(RenderSVG(pairFrame(), 10, WithGrid(), WithoutLabels()))

	if !strings.Contains(svg, `class="grid"`) {
		t.Error("WithGrid did not draw the grid")
	}
	// 8 vertical and 5 horizontal lines for a 7x4 grid.
	if n := strings.Count(svg, "<line "); n != 13 {
		t.Errorf("grid lines = %d, want 13", n)
	}
	if strings.Contains(svg, `class="block-text"`) {
		t.Error("WithoutLabels still drew labels")
	}
}

func TestRenderSVGJunctionAndEscaping(t *testing.T) {
	f := pairFrame()
	f.Cell = "top<1>"
	f.Wires[0].Junction = true

	svg := string(RenderSVG(f, 0))
	if strings.Contains(svg, "top<1>") {
		t.Error("cell name not escaped")
	}
	if !strings.Contains(svg, `class="junction"`) {
		t.Error("junction dot missing")
	}
}
