// Package tune turns a sized matrix into integer frame geometry.
//
// # Geometry
//
// Each matrix row is as tall as its tallest child plus the cell border on
// both sides; columns likewise. Rows and columns are separated from each
// other and from the frame edge by the border. Children start centered in
// their slot and their ports are spread evenly along the assigned sides.
//
// # Alignment
//
// Children then slide within the slack of their slot, first vertically and
// then horizontally, to line up connected pins. A pair of pins on the same
// side of their cells, or of the same direction, wants to sit
// cfg.AlignOffset apart; every other pair wants exact alignment. Children
// with more pins on the tuned axis are fixed first.
//
// Boundary pins finally snap to the coordinate of their first target and
// search outward for a free offset.
package tune

import (
	"sort"

	"github.com/matzehuels/netgrid/pkg/config"
	"github.com/matzehuels/netgrid/pkg/netlist"
)

// Result describes the tuned frame.
type Result struct {
	Width, Height int
	// Moved counts children that left their centered position.
	Moved int
}

type tuner struct {
	nl    *netlist.Netlist
	frame netlist.CellID
	cfg   config.Config
	f     *netlist.Frame
	slots map[netlist.CellID]netlist.Point
	rowY  []int
	colX  []int
}

// Apply computes the frame's row and column extents, places every child
// block and pin, and places the frame's boundary pins. Sizing must have run.
func Apply(nl *netlist.Netlist, frame netlist.CellID, cfg config.Config) Result {
	c := nl.Cell(frame)
	t := &tuner{nl: nl, frame: frame, cfg: cfg, f: &c.Frame, slots: c.Frame.Slots()}
	t.layoutSlots()

	for _, ch := range c.Children {
		t.spreadPins(ch)
	}
	start := make(map[netlist.CellID]netlist.Point, len(c.Children))
	for _, ch := range c.Children {
		b := nl.Cell(ch).Block
		start[ch] = netlist.Point{X: b.X, Y: b.Y}
	}
	t.align(true)
	t.align(false)
	moved := 0
	for _, ch := range c.Children {
		b := nl.Cell(ch).Block
		if (netlist.Point{X: b.X, Y: b.Y}) != start[ch] {
			moved++
		}
	}

	t.placeBoundary()
	return Result{Width: t.f.Width, Height: t.f.Height, Moved: moved}
}

// layoutSlots sizes rows and columns, sizes the frame and centers every
// child in its slot.
func (t *tuner) layoutSlots() {
	f, cb, border := t.f, t.cfg.CellBorder, t.cfg.Border
	f.Heights = make([]int, f.Rows())
	f.Widths = make([]int, f.Cols())
	for r, row := range f.Matrix {
		for col, id := range row {
			if id == netlist.NoCell {
				continue
			}
			b := t.nl.Cell(id).Block
			f.Heights[r] = max(f.Heights[r], b.H+2*cb)
			f.Widths[col] = max(f.Widths[col], b.W+2*cb)
		}
	}
	t.rowY = offsets(f.Heights, border)
	t.colX = offsets(f.Widths, border)
	f.Height = border*(len(f.Heights)+1) + sum(f.Heights)
	f.Width = border*(len(f.Widths)+1) + sum(f.Widths)

	c := t.nl.Cell(t.frame)
	l, u, r, d := sideCounts(c.InnerSides)
	f.Height = max(f.Height, l, r, 1)
	f.Width = max(f.Width, u, d, 1)

	for id, s := range t.slots {
		b := &t.nl.Cell(id).Block
		b.X = t.colX[s.X] + (f.Widths[s.X]-b.W)/2
		b.Y = t.rowY[s.Y] + (f.Heights[s.Y]-b.H)/2
	}
}

func offsets(sizes []int, border int) []int {
	out := make([]int, len(sizes))
	at := border
	for i, s := range sizes {
		out[i] = at
		at += s + border
	}
	return out
}

func sum(vs []int) int {
	n := 0
	for _, v := range vs {
		n += v
	}
	return n
}

func sideCounts(lists [4][]netlist.PortID) (l, u, r, d int) {
	return len(lists[0]), len(lists[1]), len(lists[2]), len(lists[3])
}

// spreadPins distributes the ports of a child evenly along each side and
// places them on the block outline.
func (t *tuner) spreadPins(id netlist.CellID) {
	c := t.nl.Cell(id)
	for i, ports := range c.OuterSides {
		side := netlist.Sides[i]
		length := c.Block.W
		if side.Horizontal() {
			length = c.Block.H
		}
		step := 0
		if len(ports) > 0 {
			step = length / len(ports)
		}
		for k, p := range ports {
			pin := &t.nl.Port(p).Outer
			pin.Offset = k*step + step/2
			pin.PlaceOn(c.Block)
		}
	}
}

func (t *tuner) replacePins(id netlist.CellID) {
	c := t.nl.Cell(id)
	for _, p := range c.Ports {
		pin := &t.nl.Port(p).Outer
		pin.PlaceOn(c.Block)
	}
}

// pair is a connection between two child pins facing along the tuned axis.
type pair struct {
	a, b    netlist.PortID
	aligned bool // true when the pins want exact alignment
}

// pairs collects, per child, the connections its pins make on the given
// axis. vertical selects left/right pins, whose y coordinate is tuned.
func (t *tuner) pairs(vertical bool) map[netlist.CellID][]pair {
	out := make(map[netlist.CellID][]pair)
	for _, ch := range t.nl.Cell(t.frame).Children {
		for _, p := range t.nl.Cell(ch).Ports {
			pp := t.nl.Port(p)
			if pp.Outer.Side.Horizontal() != vertical {
				continue
			}
			for _, q := range t.nl.TargetsIn(t.frame, p) {
				qp := t.nl.Port(q)
				if qp.Cell == t.frame || qp.Cell == ch || qp.Outer.Side.Horizontal() != vertical {
					continue
				}
				offset := pp.Outer.Side == qp.Outer.Side || pp.Dir == qp.Dir
				out[ch] = append(out[ch], pair{a: p, b: q, aligned: !offset})
			}
		}
	}
	return out
}

// align slides every child along one axis to minimize misaligned pairs.
func (t *tuner) align(vertical bool) {
	pairs := t.pairs(vertical)
	children := append([]netlist.CellID(nil), t.nl.Cell(t.frame).Children...)
	load := func(id netlist.CellID) int {
		c := t.nl.Cell(id)
		if vertical {
			return len(c.OuterSides[netlist.Left.Index()]) + len(c.OuterSides[netlist.Right.Index()])
		}
		return len(c.OuterSides[netlist.Up.Index()]) + len(c.OuterSides[netlist.Down.Index()])
	}
	sort.SliceStable(children, func(i, j int) bool { return load(children[i]) > load(children[j]) })

	for _, id := range children {
		if len(pairs[id]) == 0 {
			continue
		}
		c := t.nl.Cell(id)
		s := t.slots[id]
		var lo, hi, orig int
		if vertical {
			lo = t.rowY[s.Y] + t.cfg.CellBorder
			hi = t.rowY[s.Y] + t.f.Heights[s.Y] - c.Block.H - t.cfg.CellBorder
			orig = c.Block.Y
		} else {
			lo = t.colX[s.X] + t.cfg.CellBorder
			hi = t.colX[s.X] + t.f.Widths[s.X] - c.Block.W - t.cfg.CellBorder
			orig = c.Block.X
		}

		best, bestMis, bestDist := orig, -1, 0
		for v := lo; v <= hi; v++ {
			t.move(id, v, vertical)
			mis, dist := t.cost(pairs[id], vertical)
			if bestMis < 0 || better(mis, dist, v, bestMis, bestDist, best, orig) {
				best, bestMis, bestDist = v, mis, dist
			}
		}
		t.move(id, best, vertical)
	}
}

func better(mis, dist, v, bestMis, bestDist, best, orig int) bool {
	if mis != bestMis {
		return mis < bestMis
	}
	if dist != bestDist {
		return dist < bestDist
	}
	dv, db := abs(v-orig), abs(best-orig)
	if dv != db {
		return dv < db
	}
	return v < best
}

func (t *tuner) move(id netlist.CellID, v int, vertical bool) {
	b := &t.nl.Cell(id).Block
	if vertical {
		b.Y = v
	} else {
		b.X = v
	}
	t.replacePins(id)
}

// cost returns the number of misaligned pairs and their summed distance
// along the tuned axis.
func (t *tuner) cost(ps []pair, vertical bool) (mis, dist int) {
	for _, p := range ps {
		a, b := t.nl.Port(p.a).Outer, t.nl.Port(p.b).Outer
		d := a.X - b.X
		if vertical {
			d = a.Y - b.Y
		}
		want := 0
		if !p.aligned {
			want = t.cfg.AlignOffset
		}
		if abs(d) != want {
			mis++
		}
		dist += abs(abs(d) - want)
	}
	return mis, dist
}

// placeBoundary places the frame's own pins one unit outside the grid,
// next to their first child target where there is one.
func (t *tuner) placeBoundary() {
	c := t.nl.Cell(t.frame)
	for i, ports := range c.InnerSides {
		side := netlist.Sides[i]
		length := t.f.Width
		if side.Horizontal() {
			length = t.f.Height
		}
		used := make(map[int]bool, len(ports))
		for k, p := range ports {
			want := (k + 1) * length / (len(ports) + 1)
			for _, q := range t.nl.TargetsIn(t.frame, p) {
				qp := t.nl.Port(q)
				if qp.Cell == t.frame {
					continue
				}
				want = qp.Outer.X
				if side.Horizontal() {
					want = qp.Outer.Y
				}
				break
			}
			want = max(0, min(want, length-1))
			o := nearestFree(want, length, used)
			used[o] = true
			pin := &t.nl.Port(p).Inner
			pin.Offset = o
			pin.PlaceOutside(t.f.Width, t.f.Height)
		}
	}
}

// nearestFree returns the free offset closest to want, trying want, want+1,
// want-1, want+2 and so on. length must exceed the number of used offsets.
func nearestFree(want, length int, used map[int]bool) int {
	for d := 0; d < 2*length; d++ {
		o := want + (d+1)/2
		if d%2 == 0 {
			o = want - d/2
		}
		if o >= 0 && o < length && !used[o] {
			return o
		}
	}
	return want
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
