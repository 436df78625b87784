// Package route connects the pins of a placed frame with orthogonal wires.
//
// # Overview
//
// [Route] walks a worklist of (source, target) port pairs, driving ports
// first, and runs an A* search for each pair over the frame's tile grid.
// Wires may share tiles with their own net and may cross a single foreign
// straight wire at right angles; they never enter tiles covered by a cell or
// hosting the pin of an unrelated net.
//
// When a pair fails, it moves to the front of the worklist and the whole
// frame is routed again from scratch. A failure of the first pair, or more
// than maxRetries failures of one pair, ends the attempt with an
// errors.ErrCodeUnroutable error naming both ports; the caller is expected
// to widen the spacing and try again.
//
// # Access Tiles
//
// A wire starts and ends on the access tile of each pin: the tile just
// outside a child's block, or the first interior tile next to a boundary
// pin. The search never visits the pin itself; [Route] adds a stub toward
// the pin on each end tile when it commits the path.
//
// [Compress] removes empty rows and columns after routing.
package route

import (
	"github.com/matzehuels/netgrid/pkg/errors"
	"github.com/matzehuels/netgrid/pkg/netlist"
)

// Result summarizes a routing run.
type Result struct {
	Routes   int
	Retries  int
	Attempts int
}

// Pair is one (source, target) connection to route.
type Pair struct {
	From, To netlist.PortID
}

// Access returns the access tile of port inside frame.
func Access(nl *netlist.Netlist, frame netlist.CellID, port netlist.PortID) netlist.Point {
	pin := nl.PinIn(frame, port)
	dx, dy := pin.Side.Delta()
	if nl.IsBoundary(frame, port) {
		return pin.Point().Add(-dx, -dy)
	}
	return pin.Point().Add(dx, dy)
}

// stub returns the wire direction from the access tile toward the pin.
func stub(nl *netlist.Netlist, frame netlist.CellID, port netlist.PortID) netlist.Dir {
	side := nl.PinIn(frame, port).Side
	if nl.IsBoundary(frame, port) {
		return side.Dir()
	}
	return side.Opposite().Dir()
}

// drivesIn reports whether port injects a signal into frame: an input of
// the frame itself or an output of one of its children.
func drivesIn(nl *netlist.Netlist, frame netlist.CellID, port netlist.PortID) bool {
	p := nl.Port(port)
	if p.Cell == frame {
		return p.Dir == netlist.Input || p.Dir == netlist.InOut
	}
	return p.Dir.Drives()
}

// Worklist returns every connection of frame once, pairs with a driving
// source first, each group in port order.
func Worklist(nl *netlist.Netlist, frame netlist.CellID) []Pair {
	seen := make(map[Pair]bool)
	var drivers, rest []Pair
	for _, p := range nl.FramePorts(frame) {
		for _, t := range nl.TargetsIn(frame, p) {
			key := Pair{min(p, t), max(p, t)}
			if seen[key] {
				continue
			}
			seen[key] = true
			src, dst := p, t
			if !drivesIn(nl, frame, src) && drivesIn(nl, frame, dst) {
				src, dst = dst, src
			}
			if drivesIn(nl, frame, src) {
				drivers = append(drivers, Pair{src, dst})
			} else {
				rest = append(rest, Pair{src, dst})
			}
		}
	}
	return append(drivers, rest...)
}

// Route routes every connection of frame onto a fresh tile grid. Placement
// must be complete. On failure the frame's tiles hold the partial attempt.
func Route(nl *netlist.Netlist, frame netlist.CellID, maxRetries int) (Result, error) {
	f := &nl.Cell(frame).Frame
	order := Worklist(nl, frame)
	retries := make(map[Pair]int)
	var res Result

	for {
		res.Attempts++
		prepare(nl, frame)
		failed := -1
		for i, pr := range order {
			net := nl.NetIn(frame, pr.From)
			path, ok := search(f, net, Access(nl, frame, pr.From), Access(nl, frame, pr.To), func(q netlist.PortID) bool {
				return nl.NetIn(frame, q) == net
			})
			if !ok {
				failed = i
				break
			}
			commit(nl, frame, pr, net, path)
		}
		if failed < 0 {
			Hints(f)
			res.Routes = len(f.Routes)
			return res, nil
		}

		pr := order[failed]
		if failed == 0 {
			return res, unroutable(nl, frame, pr, "first net of the worklist")
		}
		retries[pr]++
		res.Retries++
		if retries[pr] > maxRetries {
			return res, unroutable(nl, frame, pr, "retry limit reached")
		}
		order = append([]Pair{pr}, append(order[:failed:failed], order[failed+1:]...)...)
	}
}

func unroutable(nl *netlist.Netlist, frame netlist.CellID, pr Pair, why string) error {
	return errors.New(errors.ErrCodeUnroutable, "cell %s: cannot route %s -> %s (%s)",
		nl.Path(frame), nl.PortPath(pr.From), nl.PortPath(pr.To), why)
}

// prepare resets the tile grid, marks child blocks and registers every
// in-bounds access tile.
func prepare(nl *netlist.Netlist, frame netlist.CellID) {
	c := nl.Cell(frame)
	f := &c.Frame
	f.ResetTiles()
	for _, ch := range c.Children {
		b := nl.Cell(ch).Block
		for y := max(b.Y, 0); y < min(b.Bottom(), f.Height); y++ {
			for x := max(b.X, 0); x < min(b.Right(), f.Width); x++ {
				f.Tiles[y][x].Cell = ch
			}
		}
	}
	for _, p := range nl.FramePorts(frame) {
		a := Access(nl, frame, p)
		if f.InBounds(a) {
			t := f.Tile(a)
			t.Ports = append(t.Ports, p)
		}
	}
}

// commit records path as a route and adds its segments to the tiles.
func commit(nl *netlist.Netlist, frame netlist.CellID, pr Pair, net netlist.NetID, path []netlist.Point) {
	f := &nl.Cell(frame).Frame
	last := len(path) - 1
	for i, p := range path {
		var d netlist.Dir
		if i > 0 {
			d |= netlist.DirBetween(p, path[i-1])
		}
		if i < last {
			d |= netlist.DirBetween(p, path[i+1])
		}
		if i == 0 {
			d |= stub(nl, frame, pr.From)
		}
		if i == last {
			d |= stub(nl, frame, pr.To)
		}
		t := f.Tile(p)
		t.Segments = append(t.Segments, netlist.Segment{Net: net, From: pr.From, To: pr.To, Dirs: d})
	}
	f.Routes = append(f.Routes, netlist.Route{Net: net, From: pr.From, To: pr.To, Path: path})
}

// Hints sets the rendering markers of every routed tile: a junction where
// one net leaves through three or more sides, a bend where a net turns and
// a crossing where two or more nets meet.
func Hints(f *netlist.Frame) {
	for y := range f.Tiles {
		for x := range f.Tiles[y] {
			t := &f.Tiles[y][x]
			t.Bend, t.Crossing, t.Junction = false, false, false
			masks := make(map[netlist.NetID]netlist.Dir)
			for _, s := range t.Segments {
				masks[s.Net] |= s.Dirs
			}
			for _, m := range masks {
				if m.Count() >= 3 {
					t.Junction = true
				}
				if m.IsBend() {
					t.Bend = true
				}
			}
			t.Crossing = len(masks) >= 2
		}
	}
}
