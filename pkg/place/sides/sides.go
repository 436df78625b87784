// Package sides assigns every port of a frame to one side of its cell.
//
// [AssignChildren] handles the children's ports relative to their siblings'
// matrix positions; [AssignBoundary] handles the frame's own ports relative
// to the children. Both fully recompute the side lists they own.
//
// A port with a target faces it: the axis with the larger offset wins and
// ties go to the horizontal sides. A port targeting the enclosing cell is
// measured against the matrix center with the direction reversed, since the
// frame's boundary lies beyond the child rather than toward the center.
// Ports without a usable offset go to the least-populated side their
// direction allows. Assign and ALU cells never mix inputs and outputs on
// one side.
package sides

import (
	"math"
	"sort"

	"github.com/matzehuels/netgrid/pkg/netlist"
)

type pos struct{ x, y float64 }

type assigner struct {
	nl     *netlist.Netlist
	frame  netlist.CellID
	slots  map[netlist.CellID]netlist.Point
	center pos
}

func newAssigner(nl *netlist.Netlist, frame netlist.CellID) *assigner {
	f := &nl.Cell(frame).Frame
	return &assigner{
		nl:     nl,
		frame:  frame,
		slots:  f.Slots(),
		center: pos{float64(f.Cols()-1) / 2, float64(f.Rows()-1) / 2},
	}
}

// at returns the matrix position of the cell owning port, or the matrix
// center for the frame's own ports.
func (a *assigner) at(port netlist.PortID) pos {
	c := a.nl.Port(port).Cell
	if c == a.frame {
		return a.center
	}
	s := a.slots[c]
	return pos{float64(s.X), float64(s.Y)}
}

// AssignChildren assigns a side to every port of every child of frame and
// rebuilds each child's OuterSides. The matrix must be built.
func AssignChildren(nl *netlist.Netlist, frame netlist.CellID) {
	a := newAssigner(nl, frame)
	children := nl.Cell(frame).Children

	pinned := make(map[netlist.CellID]*[2]netlist.Side, len(children))
	for _, ch := range children {
		c := nl.Cell(ch)
		c.OuterSides = [4][]netlist.PortID{}
		for _, p := range c.Ports {
			nl.Port(p).Outer.Side = netlist.SideNone
		}
		pinned[ch] = &[2]netlist.Side{}
	}

	// Drivers first so that two-terminal cells pin their output side from
	// the nets they drive.
	for _, drivers := range []bool{true, false} {
		for _, ch := range children {
			c := nl.Cell(ch)
			for _, p := range c.Ports {
				port := nl.Port(p)
				if port.Dir.Drives() != drivers {
					continue
				}
				side := a.childSide(c, port, pinned[ch])
				port.Outer.Side = side
				c.OuterSides[side.Index()] = append(c.OuterSides[side.Index()], p)
			}
		}
	}
	for _, ch := range children {
		c := nl.Cell(ch)
		for i := range c.OuterSides {
			a.sortSide(netlist.Sides[i], c.OuterSides[i])
		}
	}
}

func class(d netlist.Direction) int {
	if d == netlist.Input {
		return 0
	}
	return 1
}

func (a *assigner) childSide(c *netlist.Cell, port *netlist.Port, pin *[2]netlist.Side) netlist.Side {
	two := c.Kind.IsTwoTerminal()
	k := class(port.Dir)
	if two {
		if pin[k] != netlist.SideNone {
			return pin[k]
		}
	}

	side := netlist.SideNone
	for _, t := range a.nl.TargetsIn(a.frame, port.ID) {
		if a.nl.Port(t).Cell == c.ID {
			// a loopback around the block says nothing about direction
			continue
		}
		from, to := a.at(port.ID), a.at(t)
		dx, dy := to.x-from.x, to.y-from.y
		if a.nl.Port(t).Cell == a.frame {
			dx, dy = -dx, -dy
		}
		side = facing(dx, dy)
		break
	}
	if side == netlist.SideNone {
		side = leastUsed(c.OuterSides, port.Dir)
	}
	if two {
		pin[k], pin[1-k] = side, side.Opposite()
	}
	return side
}

// facing returns the side pointing along the dominant axis of (dx, dy), or
// SideNone for a zero offset.
func facing(dx, dy float64) netlist.Side {
	switch {
	case dx == 0 && dy == 0:
		return netlist.SideNone
	case math.Abs(dx) >= math.Abs(dy):
		if dx > 0 {
			return netlist.Right
		}
		return netlist.Left
	case dy > 0:
		return netlist.Down
	}
	return netlist.Up
}

// leastUsed picks the side with the fewest ports among those allowed for d.
// Inputs favor left and up, outputs right and down; the first candidate wins
// ties.
func leastUsed(lists [4][]netlist.PortID, d netlist.Direction) netlist.Side {
	var candidates []netlist.Side
	switch d {
	case netlist.Input:
		candidates = []netlist.Side{netlist.Left, netlist.Up}
	case netlist.Output:
		candidates = []netlist.Side{netlist.Right, netlist.Down}
	default:
		candidates = netlist.Sides[:]
	}
	best := candidates[0]
	for _, s := range candidates[1:] {
		if len(lists[s.Index()]) < len(lists[best.Index()]) {
			best = s
		}
	}
	return best
}

// AssignBoundary assigns a side to every port of frame itself and rebuilds
// its InnerSides. Children must have been assigned first.
func AssignBoundary(nl *netlist.Netlist, frame netlist.CellID) {
	a := newAssigner(nl, frame)
	c := nl.Cell(frame)
	c.InnerSides = [4][]netlist.PortID{}

	for _, p := range c.Ports {
		port := nl.Port(p)
		side := netlist.SideNone
		for _, t := range nl.TargetsIn(frame, p) {
			tp := nl.Port(t)
			if tp.Cell == frame {
				continue
			}
			to := a.at(t)
			side = facing(to.x-a.center.x, to.y-a.center.y)
			if side == netlist.SideNone {
				side = tp.Outer.Side
			}
			break
		}
		if side == netlist.SideNone {
			side = leastUsed(c.InnerSides, port.Dir)
		}
		port.Inner.Side = side
		c.InnerSides[side.Index()] = append(c.InnerSides[side.Index()], p)
	}
	for i := range c.InnerSides {
		a.sortSide(netlist.Sides[i], c.InnerSides[i])
	}
}

// sortSide orders the ports of one side by their first target's position
// along that side so that wires leave without crossing.
func (a *assigner) sortSide(side netlist.Side, ports []netlist.PortID) {
	key := func(p netlist.PortID) float64 {
		at := a.at(p)
		if targets := a.nl.TargetsIn(a.frame, p); len(targets) > 0 {
			at = a.at(targets[0])
		}
		if side.Horizontal() {
			return at.y
		}
		return at.x
	}
	sort.SliceStable(ports, func(i, j int) bool { return key(ports[i]) < key(ports[j]) })
}
