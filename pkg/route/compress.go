package route

import "github.com/matzehuels/netgrid/pkg/netlist"

// Compress removes every column and row of a routed frame that holds no
// cell and no wire running across it, unless the removal would let two
// cells, or a cell and the frame edge, touch. Blocks, pins, boundary pins
// and paths are shifted accordingly. It returns the number of columns and
// rows removed.
func Compress(nl *netlist.Netlist, frame netlist.CellID) (cols, rows int) {
	c := nl.Cell(frame)
	f := &c.Frame
	for changed := true; changed; {
		changed = false
		for x := 0; x < f.Width && f.Width > 1; {
			if !removableCol(nl, c, x) {
				x++
				continue
			}
			removeCol(nl, c, x)
			cols++
			changed = true
		}
		for y := 0; y < f.Height && f.Height > 1; {
			if !removableRow(nl, c, y) {
				y++
				continue
			}
			removeRow(nl, c, y)
			rows++
			changed = true
		}
	}
	Hints(f)
	return cols, rows
}

func removableCol(nl *netlist.Netlist, c *netlist.Cell, x int) bool {
	f := &c.Frame
	for y := 0; y < f.Height; y++ {
		t := &f.Tiles[y][x]
		if t.Occupied() || t.Mask()&netlist.DirVertical != 0 {
			return false
		}
		var left, right netlist.CellID = netlist.NoCell, netlist.NoCell
		if x > 0 {
			left = f.Tiles[y][x-1].Cell
		}
		if x+1 < f.Width {
			right = f.Tiles[y][x+1].Cell
		}
		if touches(left, right, x == 0, x+1 == f.Width) {
			return false
		}
	}
	for _, side := range []netlist.Side{netlist.Up, netlist.Down} {
		for _, p := range c.InnerSides[side.Index()] {
			if nl.Port(p).Inner.Offset == x {
				return false
			}
		}
	}
	for _, r := range f.Routes {
		if within(r.Path, func(p netlist.Point) bool { return p.X == x }) {
			return false
		}
	}
	return true
}

func removableRow(nl *netlist.Netlist, c *netlist.Cell, y int) bool {
	f := &c.Frame
	for x := 0; x < f.Width; x++ {
		t := &f.Tiles[y][x]
		if t.Occupied() || t.Mask()&netlist.DirHorizontal != 0 {
			return false
		}
		var above, below netlist.CellID = netlist.NoCell, netlist.NoCell
		if y > 0 {
			above = f.Tiles[y-1][x].Cell
		}
		if y+1 < f.Height {
			below = f.Tiles[y+1][x].Cell
		}
		if touches(above, below, y == 0, y+1 == f.Height) {
			return false
		}
	}
	for _, side := range []netlist.Side{netlist.Left, netlist.Right} {
		for _, p := range c.InnerSides[side.Index()] {
			if nl.Port(p).Inner.Offset == y {
				return false
			}
		}
	}
	for _, r := range f.Routes {
		if within(r.Path, func(p netlist.Point) bool { return p.Y == y }) {
			return false
		}
	}
	return true
}

// touches reports whether removing the line between a and b would bring
// two distinct cells, or a cell and the frame edge, into contact.
func touches(a, b netlist.CellID, firstLine, lastLine bool) bool {
	switch {
	case a != netlist.NoCell && b != netlist.NoCell:
		return a != b
	case firstLine:
		return b != netlist.NoCell
	case lastLine:
		return a != netlist.NoCell
	}
	return false
}

func within(path []netlist.Point, on func(netlist.Point) bool) bool {
	for _, p := range path {
		if !on(p) {
			return false
		}
	}
	return true
}

func removeCol(nl *netlist.Netlist, c *netlist.Cell, x int) {
	f := &c.Frame
	for y := range f.Tiles {
		f.Tiles[y] = append(f.Tiles[y][:x], f.Tiles[y][x+1:]...)
	}
	f.Width--
	for _, ch := range c.Children {
		b := &nl.Cell(ch).Block
		if b.X > x {
			b.X--
		}
	}
	for _, side := range []netlist.Side{netlist.Up, netlist.Down} {
		for _, p := range c.InnerSides[side.Index()] {
			if pin := &nl.Port(p).Inner; pin.Offset > x {
				pin.Offset--
			}
		}
	}
	for i := range f.Routes {
		f.Routes[i].Path = shiftPath(f.Routes[i].Path, func(p netlist.Point) (netlist.Point, bool) {
			switch {
			case p.X == x:
				return p, false
			case p.X > x:
				p.X--
			}
			return p, true
		})
	}
	replace(nl, c)
}

func removeRow(nl *netlist.Netlist, c *netlist.Cell, y int) {
	f := &c.Frame
	f.Tiles = append(f.Tiles[:y], f.Tiles[y+1:]...)
	f.Height--
	for _, ch := range c.Children {
		b := &nl.Cell(ch).Block
		if b.Y > y {
			b.Y--
		}
	}
	for _, side := range []netlist.Side{netlist.Left, netlist.Right} {
		for _, p := range c.InnerSides[side.Index()] {
			if pin := &nl.Port(p).Inner; pin.Offset > y {
				pin.Offset--
			}
		}
	}
	for i := range f.Routes {
		f.Routes[i].Path = shiftPath(f.Routes[i].Path, func(p netlist.Point) (netlist.Point, bool) {
			switch {
			case p.Y == y:
				return p, false
			case p.Y > y:
				p.Y--
			}
			return p, true
		})
	}
	replace(nl, c)
}

func shiftPath(path []netlist.Point, fn func(netlist.Point) (netlist.Point, bool)) []netlist.Point {
	out := path[:0]
	for _, p := range path {
		if q, keep := fn(p); keep {
			out = append(out, q)
		}
	}
	return out
}

// replace recomputes every pin coordinate of the frame after a shift.
func replace(nl *netlist.Netlist, c *netlist.Cell) {
	for _, ch := range c.Children {
		cc := nl.Cell(ch)
		for _, p := range cc.Ports {
			nl.Port(p).Outer.PlaceOn(cc.Block)
		}
	}
	for _, p := range c.Ports {
		nl.Port(p).Inner.PlaceOutside(c.Frame.Width, c.Frame.Height)
	}
}
