package size

import (
	"testing"

	"github.com/matzehuels/netgrid/pkg/config"
	"github.com/matzehuels/netgrid/pkg/netlist"
)

// cellWith returns a detached cell with the given number of ports on each
// side (left, up, right, down).
func cellWith(kind netlist.Kind, l, u, r, d int) *netlist.Cell {
	c := &netlist.Cell{Kind: kind}
	next := netlist.PortID(0)
	for i, n := range []int{l, u, r, d} {
		for range n {
			c.OuterSides[i] = append(c.OuterSides[i], next)
			c.Ports = append(c.Ports, next)
			next++
		}
	}
	return c
}

func TestBase(t *testing.T) {
	c := cellWith(netlist.KindInstance, 3, 1, 2, 0)
	w, h := Base(c, 2)
	if w != 2 || h != 6 {
		t.Errorf("Base = %dx%d, want 2x6", w, h)
	}
}

func TestFloor(t *testing.T) {
	tests := []struct {
		name         string
		cell         *netlist.Cell
		pitch        int
		wantW, wantH int
	}{
		{"register two ports", cellWith(netlist.KindRegister, 1, 0, 1, 0), 1, 2, 2},
		{"register three ports", cellWith(netlist.KindRegister, 2, 0, 1, 0), 1, 3, 3},
		{"memory square", cellWith(netlist.KindMemory, 3, 1, 0, 0), 2, 6, 6},
		{"memory floor", cellWith(netlist.KindMemory, 0, 0, 0, 0), 2, 2, 2},
		{"alu horizontal", cellWith(netlist.KindALU, 2, 0, 1, 0), 2, 2, 5},
		{"assign both axes", cellWith(netlist.KindAssign, 1, 1, 0, 0), 1, 5, 5},
		{"generic single port", cellWith(netlist.KindInstance, 1, 0, 0, 0), 2, 2, 2},
		{"generic shared axis", cellWith(netlist.KindInstance, 1, 0, 1, 0), 2, 2, 4},
		{"generic no ports", cellWith(netlist.KindProcess, 0, 0, 0, 0), 3, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Base(tt.cell, tt.pitch)
			w, h = Floor(tt.cell, w, h, tt.pitch)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestSquare(t *testing.T) {
	tests := []struct {
		w, h, area   int
		wantW, wantH int
	}{
		{2, 2, 12, 4, 3},
		{2, 6, 12, 2, 6},
		{1, 1, 1, 1, 1},
		{3, 1, 9, 3, 3},
	}
	for _, tt := range tests {
		w, h := square(tt.w, tt.h, tt.area)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("square(%d, %d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.area, w, h, tt.wantW, tt.wantH)
		}
	}
}

// child describes a pre-sized child for normalization tests.
type child struct {
	name       string
	kind       netlist.Kind
	statements int
	w, h       int
}

func normalize(t *testing.T, children ...child) map[string]netlist.Rect {
	t.Helper()
	b := netlist.NewBuilder()
	top, _ := b.AddCell("top", netlist.KindTop, netlist.NoCell, 0)
	var ids []netlist.CellID
	for _, c := range children {
		id, err := b.AddCell(c.name, c.kind, top, c.statements)
		if err != nil {
			t.Fatalf("AddCell: %v", err)
		}
		ids = append(ids, id)
	}
	nl, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, c := range children {
		nl.Cell(ids[i]).Block.W, nl.Cell(ids[i]).Block.H = c.w, c.h
	}
	Normalize(nl, ids)
	out := make(map[string]netlist.Rect)
	for i, c := range children {
		out[c.name] = nl.Cell(ids[i]).Block
	}
	return out
}

func TestNormalizeGroup(t *testing.T) {
	got := normalize(t,
		child{"a", netlist.KindInstance, 2, 2, 2},
		child{"b", netlist.KindInstance, 2, 2, 6},
		child{"p", netlist.KindProcess, 2, 2, 2},
		child{"q", netlist.KindParallelProcess, 2, 1, 1},
	)
	if r := got["a"]; r.W != 4 || r.H != 3 {
		t.Errorf("a = %dx%d, want 4x3", r.W, r.H)
	}
	if r := got["b"]; r.W != 2 || r.H != 6 {
		t.Errorf("b = %dx%d, want 2x6", r.W, r.H)
	}
	if r := got["p"]; r.W != 2 || r.H != 6 {
		t.Errorf("process p = %dx%d, want 2x6 (vertical growth)", r.W, r.H)
	}
	if r := got["q"]; r.W*r.H < 12 || abs(r.W-r.H) > 1 {
		t.Errorf("parallel q = %dx%d, want square-ish covering 12", r.W, r.H)
	}
}

func TestNormalizeAreaMonotonic(t *testing.T) {
	got := normalize(t,
		child{"small", netlist.KindInstance, 1, 3, 4},
		child{"big", netlist.KindInstance, 5, 2, 2},
	)
	small, big := got["small"], got["big"]
	if big.W*big.H < small.W*small.H {
		t.Errorf("complex cell area %d smaller than simple cell area %d", big.W*big.H, small.W*small.H)
	}
}

func TestNormalizeTwoTerminalConverge(t *testing.T) {
	got := normalize(t,
		child{"x", netlist.KindALU, 1, 2, 5},
		child{"y", netlist.KindAssign, 1, 5, 2},
	)
	for _, name := range []string{"x", "y"} {
		if r := got[name]; r.W != 5 || r.H != 5 {
			t.Errorf("%s = %dx%d, want 5x5", name, r.W, r.H)
		}
	}
}

func TestRegisterExcludedFromNormalization(t *testing.T) {
	got := normalize(t,
		child{"r", netlist.KindRegister, 1, 2, 2},
		child{"m", netlist.KindMemory, 1, 3, 3},
		child{"i", netlist.KindInstance, 1, 6, 6},
	)
	if r := got["r"]; r.W != 2 || r.H != 2 {
		t.Errorf("register = %dx%d, want 2x2", r.W, r.H)
	}
	if r := got["m"]; r.W != 3 || r.H != 3 {
		t.Errorf("memory = %dx%d, want 3x3", r.W, r.H)
	}
}

func TestApply(t *testing.T) {
	b := netlist.NewBuilder()
	top, _ := b.AddCell("top", netlist.KindTop, netlist.NoCell, 0)
	r, _ := b.AddCell("r", netlist.KindRegister, top, 1)
	d, _ := b.AddPort(r, "d", netlist.Input, netlist.EdgeNone)
	q, _ := b.AddPort(r, "q", netlist.Output, netlist.EdgeNone)
	nl, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	cell := nl.Cell(r)
	cell.OuterSides[netlist.Left.Index()] = []netlist.PortID{d, q}

	cfg := config.Default()
	cfg.PortPitch = 1
	Apply(nl, top, cfg)
	if cell.Block.W < 2 || cell.Block.H < 2 {
		t.Errorf("register = %dx%d, want at least 2x2", cell.Block.W, cell.Block.H)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
