// Package size computes the block extents of the children of a frame.
//
// Sizing starts from the ports on each side ([Base]), applies a per-kind
// floor ([Floor]) and finally normalizes cells of comparable complexity so
// that similar blocks come out similar ([Normalize]). Registers and memories
// keep their own shape and are left out of normalization.
package size

import (
	"sort"

	"github.com/matzehuels/netgrid/pkg/config"
	"github.com/matzehuels/netgrid/pkg/netlist"
)

// Minimum extent of an assign or ALU block on an axis carrying ports.
const twoTerminalMin = 5

// Apply sizes every child of frame. Side assignment must have run.
func Apply(nl *netlist.Netlist, frame netlist.CellID, cfg config.Config) {
	children := nl.Cell(frame).Children
	for _, ch := range children {
		c := nl.Cell(ch)
		w, h := Base(c, cfg.PortPitch)
		c.Block.W, c.Block.H = Floor(c, w, h, cfg.PortPitch)
	}
	Normalize(nl, children)
}

func counts(c *netlist.Cell) (l, u, r, d int) {
	return len(c.OuterSides[netlist.Left.Index()]),
		len(c.OuterSides[netlist.Up.Index()]),
		len(c.OuterSides[netlist.Right.Index()]),
		len(c.OuterSides[netlist.Down.Index()])
}

// Base returns the extents implied by the ports alone: the busier of the
// left and right sides sets the height, the busier of up and down the width.
func Base(c *netlist.Cell, pitch int) (w, h int) {
	l, u, r, d := counts(c)
	return max(u, d) * pitch, max(l, r) * pitch
}

// Floor applies the per-kind minimum extents.
func Floor(c *netlist.Cell, w, h, pitch int) (int, int) {
	l, u, r, d := counts(c)
	switch c.Kind {
	case netlist.KindRegister:
		m := 2
		if len(c.Ports) > 2 {
			m = 3
		}
		return max(w, m), max(h, m)
	case netlist.KindMemory:
		s := max(w, h, pitch)
		return s, s
	case netlist.KindAssign, netlist.KindALU:
		if l+r > 0 {
			h = max(h, twoTerminalMin)
		}
		if u+d > 0 {
			w = max(w, twoTerminalMin)
		}
		return max(w, pitch), max(h, pitch)
	}
	w, h = max(w, pitch), max(h, pitch)
	if l+r > 1 {
		h = max(h, 2*pitch)
	}
	if u+d > 1 {
		w = max(w, 2*pitch)
	}
	return w, h
}

// Normalize groups the normalizable cells by recursive statement count and
// grows each group toward its largest member. A group never gets a smaller
// target area than a less complex group processed before it.
func Normalize(nl *netlist.Netlist, cells []netlist.CellID) {
	groups := make(map[int][]*netlist.Cell)
	var keys []int
	for _, id := range cells {
		c := nl.Cell(id)
		if !c.Kind.Normalized() {
			continue
		}
		n := nl.StatementCount(id)
		if _, ok := groups[n]; !ok {
			keys = append(keys, n)
		}
		groups[n] = append(groups[n], c)
	}
	sort.Ints(keys)

	area := 0
	for _, k := range keys {
		group := groups[k]
		maxW, maxH := 0, 0
		for _, c := range group {
			maxW, maxH = max(maxW, c.Block.W), max(maxH, c.Block.H)
		}
		area = max(area, maxW*maxH)
		for _, c := range group {
			switch c.Kind {
			case netlist.KindAssign, netlist.KindALU:
				c.Block.W, c.Block.H = maxW, maxH
			case netlist.KindProcess:
				c.Block.H = max(c.Block.H, ceilDiv(area, c.Block.W))
			default:
				c.Block.W, c.Block.H = square(c.Block.W, c.Block.H, area)
			}
		}
	}
}

// square grows the shorter side of a w×h block until it covers area.
func square(w, h, area int) (int, int) {
	for w*h < area {
		if w <= h {
			w++
		} else {
			h++
		}
	}
	return w, h
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
