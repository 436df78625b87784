package route

import (
	"container/heap"

	"github.com/matzehuels/netgrid/pkg/netlist"
)

// Search costs. Reusing a tile of the own net is cheaper than a fresh step
// so that multi-terminal nets share trunks.
const (
	costStep     = 2
	costReuse    = 1
	costBend     = 2
	costCrossing = 3
)

var moves = [4]netlist.Dir{netlist.DirLeft, netlist.DirUp, netlist.DirRight, netlist.DirDown}

func step(p netlist.Point, d netlist.Dir) netlist.Point {
	switch d {
	case netlist.DirLeft:
		return p.Add(-1, 0)
	case netlist.DirRight:
		return p.Add(1, 0)
	case netlist.DirUp:
		return p.Add(0, -1)
	}
	return p.Add(0, 1)
}

func axis(d netlist.Dir) netlist.Dir {
	if d&netlist.DirHorizontal != 0 {
		return netlist.DirHorizontal
	}
	return netlist.DirVertical
}

// state is a search node: a tile and the direction of the move that
// entered it (0 at the start).
type state struct {
	p  netlist.Point
	in netlist.Dir
}

type item struct {
	s       state
	f, h    int
	seq     int
	heapIdx int
}

type queue []*item

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].h != q[j].h {
		return q[i].h < q[j].h
	}
	return q[i].seq < q[j].seq
}
func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].heapIdx = i
	q[j].heapIdx = j
}
func (q *queue) Push(x any) {
	it := x.(*item)
	it.heapIdx = len(*q)
	*q = append(*q, it)
}
func (q *queue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}

// hosts reports whether every port with its access point on t belongs to
// the net being routed.
func hosts(t *netlist.Tile, same func(netlist.PortID) bool) bool {
	for _, p := range t.Ports {
		if !same(p) {
			return false
		}
	}
	return true
}

// endpoint reports whether p can terminate a wire of net.
func endpoint(f *netlist.Frame, p netlist.Point, net netlist.NetID, same func(netlist.PortID) bool) bool {
	if !f.InBounds(p) {
		return false
	}
	t := f.Tile(p)
	return !t.Occupied() && t.ForeignMask(net) == 0 && hosts(t, same)
}

// search finds the cheapest path of net from start to goal. same reports
// whether a port belongs to net.
func search(f *netlist.Frame, net netlist.NetID, start, goal netlist.Point, same func(netlist.PortID) bool) ([]netlist.Point, bool) {
	if !endpoint(f, start, net, same) || !endpoint(f, goal, net, same) {
		return nil, false
	}
	if start == goal {
		return []netlist.Point{start}, true
	}

	g := map[state]int{}
	parent := map[state]state{}
	closed := map[state]bool{}
	q := &queue{}
	seq := 0
	push := func(s state, cost int) {
		h := s.p.Manhattan(goal)
		heap.Push(q, &item{s: s, f: cost + h, h: h, seq: seq})
		seq++
	}

	s0 := state{p: start}
	g[s0] = 0
	push(s0, 0)
	for q.Len() > 0 {
		cur := heap.Pop(q).(*item).s
		if closed[cur] {
			continue
		}
		closed[cur] = true
		if cur.p == goal {
			return unwind(parent, cur, s0), true
		}

		// A tile carrying a foreign wire is crossed straight through.
		crossing := cur.p != start && f.Tile(cur.p).ForeignMask(net) != 0
		for _, d := range moves {
			if cur.in != 0 && d == cur.in.Opposite() {
				continue
			}
			if crossing && d != cur.in {
				continue
			}
			n := step(cur.p, d)
			cost, ok := enter(f, net, n, d, goal, same)
			if !ok {
				continue
			}
			if cur.in != 0 && d != cur.in {
				cost += costBend
			}
			next := state{p: n, in: d}
			total := g[cur] + cost
			if old, seen := g[next]; seen && old <= total {
				continue
			}
			g[next] = total
			parent[next] = cur
			push(next, total)
		}
	}
	return nil, false
}

// enter returns the cost of stepping onto n in direction d, or false when
// the tile is blocked for net.
func enter(f *netlist.Frame, net netlist.NetID, n netlist.Point, d netlist.Dir, goal netlist.Point, same func(netlist.PortID) bool) (int, bool) {
	if !f.InBounds(n) {
		return 0, false
	}
	t := f.Tile(n)
	if t.Occupied() || !hosts(t, same) {
		return 0, false
	}
	own := t.NetMask(net)
	foreign := t.ForeignMask(net)
	if foreign == 0 {
		if own != 0 {
			return costReuse, true
		}
		return costStep, true
	}
	// Only a lone straight foreign wire may be crossed, at right angles,
	// and never on the goal tile.
	if n == goal || t.ForeignNets(net) != 1 {
		return 0, false
	}
	if foreign != netlist.DirHorizontal && foreign != netlist.DirVertical {
		return 0, false
	}
	if axis(d) == foreign || own&^axis(d) != 0 {
		return 0, false
	}
	return costStep + costCrossing, true
}

func unwind(parent map[state]state, s, start state) []netlist.Point {
	var path []netlist.Point
	for {
		path = append(path, s.p)
		if s == start {
			break
		}
		s = parent[s]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
