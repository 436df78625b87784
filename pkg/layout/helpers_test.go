package layout_test

import (
	"testing"

	"github.com/matzehuels/netgrid/pkg/netlist"
	"github.com/matzehuels/netgrid/pkg/route"
)

// design is a small netlist builder that fails the test on any error.
type design struct {
	t *testing.T
	b *netlist.Builder
}

func newDesign(t *testing.T) (*design, netlist.CellID) {
	t.Helper()
	d := &design{t: t, b: netlist.NewBuilder()}
	top, err := d.b.AddCell("top", netlist.KindTop, netlist.NoCell, 0)
	if err != nil {
		t.Fatalf("AddCell(top): %v", err)
	}
	return d, top
}

func (d *design) cell(parent netlist.CellID, name string, kind netlist.Kind, statements int) netlist.CellID {
	d.t.Helper()
	id, err := d.b.AddCell(name, kind, parent, statements)
	if err != nil {
		d.t.Fatalf("AddCell(%s): %v", name, err)
	}
	return id
}

func (d *design) port(c netlist.CellID, name string, dir netlist.Direction) netlist.PortID {
	d.t.Helper()
	id, err := d.b.AddPort(c, name, dir, netlist.EdgeNone)
	if err != nil {
		d.t.Fatalf("AddPort(%s): %v", name, err)
	}
	return id
}

func (d *design) connect(a, b netlist.PortID) {
	d.t.Helper()
	if err := d.b.Connect(a, b); err != nil {
		d.t.Fatalf("Connect: %v", err)
	}
}

func (d *design) build() *netlist.Netlist {
	d.t.Helper()
	nl, err := d.b.Build()
	if err != nil {
		d.t.Fatalf("Build: %v", err)
	}
	return nl
}

// pairDesign is A.o -> B.i.
func pairDesign(t *testing.T) *netlist.Netlist {
	d, top := newDesign(t)
	a := d.cell(top, "a", netlist.KindInstance, 1)
	b := d.cell(top, "b", netlist.KindInstance, 1)
	d.connect(d.port(a, "o", netlist.Output), d.port(b, "i", netlist.Input))
	return d.build()
}

// cycleDesign is A -> B -> C -> A.
func cycleDesign(t *testing.T) *netlist.Netlist {
	d, top := newDesign(t)
	var ins, outs []netlist.PortID
	for _, name := range []string{"a", "b", "c"} {
		c := d.cell(top, name, netlist.KindInstance, 1)
		ins = append(ins, d.port(c, "i", netlist.Input))
		outs = append(outs, d.port(c, "o", netlist.Output))
	}
	for i := range outs {
		d.connect(outs[i], ins[(i+1)%len(ins)])
	}
	return d.build()
}

// mixedDesign exercises every cell kind, a fan-out net and boundary ports.
func mixedDesign(t *testing.T) *netlist.Netlist {
	d, top := newDesign(t)
	x := d.port(top, "x", netlist.Input)
	y := d.port(top, "y", netlist.Output)

	alu := d.cell(top, "alu", netlist.KindALU, 1)
	aluA := d.port(alu, "a", netlist.Input)
	aluB := d.port(alu, "b", netlist.Input)
	aluZ := d.port(alu, "z", netlist.Output)

	r := d.cell(top, "r", netlist.KindRegister, 1)
	rD := d.port(r, "d", netlist.Input)
	rQ := d.port(r, "q", netlist.Output)

	m := d.cell(top, "m", netlist.KindMemory, 2)
	mAddr := d.port(m, "addr", netlist.Input)
	mData := d.port(m, "data", netlist.Output)

	p := d.cell(top, "p", netlist.KindProcess, 3)
	pI := d.port(p, "i", netlist.Input)
	pO := d.port(p, "o", netlist.Output)

	d.connect(x, aluA)
	d.connect(aluZ, rD)
	d.connect(rQ, aluB)
	d.connect(rQ, mAddr)
	d.connect(mData, pI)
	d.connect(pO, y)
	return d.build()
}

// hierDesign nests instances two levels deep with several sibling
// subtrees.
func hierDesign(t *testing.T, subs int) *netlist.Netlist {
	d, top := newDesign(t)
	in := d.port(top, "in", netlist.Input)
	prev := in
	for i := range subs {
		s := d.cell(top, "s"+string(rune('0'+i)), netlist.KindInstance, 4)
		si := d.port(s, "i", netlist.Input)
		so := d.port(s, "o", netlist.Output)
		d.connect(prev, si)
		prev = so

		a := d.cell(s, "a", netlist.KindAssign, 1)
		b := d.cell(s, "b", netlist.KindRegister, 1)
		aIn := d.port(a, "in", netlist.Input)
		aOut := d.port(a, "out", netlist.Output)
		bD := d.port(b, "d", netlist.Input)
		bQ := d.port(b, "q", netlist.Output)
		d.connect(si, aIn)
		d.connect(aOut, bD)
		d.connect(bQ, so)
	}
	d.connect(prev, d.port(top, "out", netlist.Output))
	return d.build()
}

// checkFrame verifies the geometric invariants of one laid-out frame.
func checkFrame(t *testing.T, nl *netlist.Netlist, id netlist.CellID) {
	t.Helper()
	c := nl.Cell(id)
	f := &c.Frame

	for i, a := range c.Children {
		ra := nl.Cell(a).Block
		if !ra.Within(f.Width, f.Height) {
			t.Errorf("%s: %+v outside %dx%d", nl.Path(a), ra, f.Width, f.Height)
		}
		for _, b := range c.Children[i+1:] {
			if ra.Overlaps(nl.Cell(b).Block) {
				t.Errorf("%s overlaps %s", nl.Path(a), nl.Path(b))
			}
		}
	}

	for _, p := range nl.FramePorts(id) {
		if nl.PinIn(id, p).Side == netlist.SideNone {
			t.Errorf("%s has no side", nl.PortPath(p))
		}
	}

	for _, r := range f.Routes {
		if len(r.Path) == 0 {
			t.Errorf("%s -> %s: empty path", nl.PortPath(r.From), nl.PortPath(r.To))
			continue
		}
		if r.Path[0] != route.Access(nl, id, r.From) || r.Path[len(r.Path)-1] != route.Access(nl, id, r.To) {
			t.Errorf("%s -> %s: path does not join the access tiles", nl.PortPath(r.From), nl.PortPath(r.To))
		}
		for i, pt := range r.Path {
			if !f.InBounds(pt) {
				t.Errorf("%s -> %s: %v out of bounds", nl.PortPath(r.From), nl.PortPath(r.To), pt)
				continue
			}
			if f.Tile(pt).Occupied() {
				t.Errorf("%s -> %s: %v on a cell", nl.PortPath(r.From), nl.PortPath(r.To), pt)
			}
			if i > 0 && !pt.Adjacent(r.Path[i-1]) {
				t.Errorf("%s -> %s: gap between %v and %v", nl.PortPath(r.From), nl.PortPath(r.To), r.Path[i-1], pt)
			}
		}
	}

	for y := range f.Tiles {
		for x := range f.Tiles[y] {
			tile := &f.Tiles[y][x]
			if tile.Occupied() && len(tile.Segments) > 0 {
				t.Errorf("occupied tile (%d,%d) carries wires", x, y)
			}
		}
	}
}

// checkCompressed verifies that no two adjacent rows or columns are both
// empty after compression.
func checkCompressed(t *testing.T, nl *netlist.Netlist, id netlist.CellID) {
	t.Helper()
	f := &nl.Cell(id).Frame
	emptyCol := func(x int) bool {
		for y := 0; y < f.Height; y++ {
			if tile := &f.Tiles[y][x]; tile.Occupied() || len(tile.Segments) > 0 {
				return false
			}
		}
		return true
	}
	emptyRow := func(y int) bool {
		for x := 0; x < f.Width; x++ {
			if tile := &f.Tiles[y][x]; tile.Occupied() || len(tile.Segments) > 0 {
				return false
			}
		}
		return true
	}
	for x := 0; x+1 < f.Width; x++ {
		if emptyCol(x) && emptyCol(x+1) {
			t.Errorf("%s: columns %d and %d are both empty", nl.Path(id), x, x+1)
		}
	}
	for y := 0; y+1 < f.Height; y++ {
		if emptyRow(y) && emptyRow(y+1) {
			t.Errorf("%s: rows %d and %d are both empty", nl.Path(id), y, y+1)
		}
	}
}

// sideOf reports the side of port in its parent's frame.
func sideOf(nl *netlist.Netlist, p netlist.PortID) netlist.Side {
	return nl.Port(p).Outer.Side
}
