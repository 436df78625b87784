package netlist

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownCell is returned when a handle or path does not name a cell.
	ErrUnknownCell = errors.New("unknown cell")

	// ErrUnknownPort is returned when a handle or path does not name a port.
	ErrUnknownPort = errors.New("unknown port")

	// ErrDuplicateName is returned when two siblings, or two ports of one
	// cell, share a name.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrMultipleTops is returned when more than one cell has no parent.
	ErrMultipleTops = errors.New("more than one top cell")

	// ErrNoTop is returned by [Builder.Build] when no cell lacks a parent.
	ErrNoTop = errors.New("no top cell")

	// ErrTopKind is returned when a cell of kind top has a parent, or a
	// parentless cell has another kind.
	ErrTopKind = errors.New("only the root cell may be of kind top")

	// ErrSelfTarget is returned when a port is connected to itself.
	ErrSelfTarget = errors.New("port targets itself")

	// ErrCrossScope is returned when two connected ports do not share a
	// frame: they must be siblings, a child and its parent, or two ports of
	// the same cell.
	ErrCrossScope = errors.New("connection crosses hierarchy levels")

	// ErrDanglingTarget is returned when a connection references a port
	// that does not exist.
	ErrDanglingTarget = errors.New("dangling target")
)

// CellID is a handle to a cell in a [Netlist].
type CellID int

// PortID is a handle to a port in a [Netlist].
type PortID int

// NetID is a handle to a net in a [Netlist].
type NetID int

const (
	NoCell CellID = -1
	NoPort PortID = -1
	NoNet  NetID  = -1
)

// Cell is a placed circuit block.
type Cell struct {
	ID       CellID
	Name     string
	Kind     Kind
	Parent   CellID
	Children []CellID
	Ports    []PortID

	// Statements is the size of the cell's own body, used by the
	// recursive complexity metric ([Netlist.StatementCount]).
	Statements int

	// Force-placement coordinates (continuous, frame-relative guidance).
	FX, FY float64

	// Block is the cell's rectangle in its parent's frame.
	Block Rect

	// OuterSides lists the ports on each side of Block, by [Side.Index].
	OuterSides [4][]PortID
	// InnerSides lists the boundary ports on each side of Frame.
	InnerSides [4][]PortID

	Frame Frame
}

// HasFrame reports whether the cell owns a sub-netlist to lay out.
func (c *Cell) HasFrame() bool { return len(c.Children) > 0 }

// Port is a directional connection point on a cell.
type Port struct {
	ID      PortID
	Name    string
	Cell    CellID
	Dir     Direction
	Edge    EdgeKind
	Targets []PortID
	// Hosts[i] is the frame the connection to Targets[i] was declared in.
	// A cell's two ports may be joined in the parent's frame (a loopback
	// around the block) or in the cell's own frame (a feed-through).
	Hosts []CellID

	// OuterNet is the net in the parent's frame; InnerNet the net in the
	// owning cell's own frame.
	OuterNet NetID
	InnerNet NetID

	Outer Pin
	Inner Pin
}

// Net is a set of ports connected within one frame.
type Net struct {
	ID    NetID
	Scope CellID
	Ports []PortID
}

// Netlist is the immutable-topology arena produced by [Builder.Build].
type Netlist struct {
	cells []*Cell
	ports []*Port
	nets  []*Net
	top   CellID
}

// Top returns the root cell handle.
func (nl *Netlist) Top() CellID { return nl.top }

// Cell returns the cell for id. It panics on an invalid handle.
func (nl *Netlist) Cell(id CellID) *Cell { return nl.cells[id] }

// Port returns the port for id. It panics on an invalid handle.
func (nl *Netlist) Port(id PortID) *Port { return nl.ports[id] }

// Net returns the net for id. It panics on an invalid handle.
func (nl *Netlist) Net(id NetID) *Net { return nl.nets[id] }

// NumCells returns the number of cells.
func (nl *Netlist) NumCells() int { return len(nl.cells) }

// NumPorts returns the number of ports.
func (nl *Netlist) NumPorts() int { return len(nl.ports) }

// NumNets returns the number of nets.
func (nl *Netlist) NumNets() int { return len(nl.nets) }

// Cells returns all cells in creation order.
func (nl *Netlist) Cells() []*Cell { return nl.cells }

// Ports returns all ports in creation order.
func (nl *Netlist) Ports() []*Port { return nl.ports }

// Nets returns all nets.
func (nl *Netlist) Nets() []*Net { return nl.nets }

// Path returns the slash-separated hierarchical name of a cell.
func (nl *Netlist) Path(id CellID) string {
	var parts []string
	for c := id; c != NoCell; c = nl.cells[c].Parent {
		parts = append(parts, nl.cells[c].Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// PortPath returns "cellpath.port".
func (nl *Netlist) PortPath(id PortID) string {
	p := nl.ports[id]
	return nl.Path(p.Cell) + "." + p.Name
}

// CellByPath resolves a hierarchical cell path.
func (nl *Netlist) CellByPath(path string) (CellID, error) {
	parts := strings.Split(path, "/")
	cur := nl.top
	if parts[0] != nl.cells[cur].Name {
		return NoCell, ErrUnknownCell
	}
	for _, name := range parts[1:] {
		next := NoCell
		for _, ch := range nl.cells[cur].Children {
			if nl.cells[ch].Name == name {
				next = ch
				break
			}
		}
		if next == NoCell {
			return NoCell, ErrUnknownCell
		}
		cur = next
	}
	return cur, nil
}

// PortByPath resolves "cellpath.port".
func (nl *Netlist) PortByPath(path string) (PortID, error) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return NoPort, ErrUnknownPort
	}
	cell, err := nl.CellByPath(path[:i])
	if err != nil {
		return NoPort, err
	}
	for _, p := range nl.cells[cell].Ports {
		if nl.ports[p].Name == path[i+1:] {
			return p, nil
		}
	}
	return NoPort, ErrUnknownPort
}

// IsBoundary reports whether port is one of frame's own ports.
func (nl *Netlist) IsBoundary(frame CellID, port PortID) bool {
	return nl.ports[port].Cell == frame
}

// PinIn returns the pin of port as seen from frame: the inner pin for the
// frame's own ports, the outer pin for its children's ports.
func (nl *Netlist) PinIn(frame CellID, port PortID) *Pin {
	p := nl.ports[port]
	if p.Cell == frame {
		return &p.Inner
	}
	return &p.Outer
}

// NetIn returns the net port belongs to inside frame, or NoNet.
func (nl *Netlist) NetIn(frame CellID, port PortID) NetID {
	p := nl.ports[port]
	if p.Cell == frame {
		return p.InnerNet
	}
	return p.OuterNet
}

// TargetsIn returns the targets of port whose connection frame hosts.
func (nl *Netlist) TargetsIn(frame CellID, port PortID) []PortID {
	var out []PortID
	p := nl.ports[port]
	for i, t := range p.Targets {
		if p.Hosts[i] == frame {
			out = append(out, t)
		}
	}
	return out
}

// Visible reports whether port appears in frame, as one of its boundary
// ports or as a port of one of its children.
func (nl *Netlist) Visible(frame CellID, port PortID) bool {
	owner := nl.ports[port].Cell
	return owner == frame || nl.cells[owner].Parent == frame
}

// FramePorts lists every port visible in frame: its own boundary ports
// followed by the ports of each child in child order.
func (nl *Netlist) FramePorts(frame CellID) []PortID {
	c := nl.cells[frame]
	out := append([]PortID(nil), c.Ports...)
	for _, ch := range c.Children {
		out = append(out, nl.cells[ch].Ports...)
	}
	return out
}

// StatementCount returns the recursive complexity of a cell: its own
// statements plus those of every descendant.
func (nl *Netlist) StatementCount(id CellID) int {
	c := nl.cells[id]
	n := c.Statements
	for _, ch := range c.Children {
		n += nl.StatementCount(ch)
	}
	return n
}

// Adjacency returns, for the children of frame, the number of nets each
// pair of children shares. The result is indexed by child position.
func (nl *Netlist) Adjacency(frame CellID) [][]int {
	children := nl.cells[frame].Children
	index := make(map[CellID]int, len(children))
	for i, ch := range children {
		index[ch] = i
	}
	adj := make([][]int, len(children))
	for i := range adj {
		adj[i] = make([]int, len(children))
	}
	for _, net := range nl.nets {
		if net.Scope != frame {
			continue
		}
		var members []int
		seen := make(map[int]bool)
		for _, p := range net.Ports {
			if i, ok := index[nl.ports[p].Cell]; ok && !seen[i] {
				seen[i] = true
				members = append(members, i)
			}
		}
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				adj[members[a]][members[b]]++
				adj[members[b]][members[a]]++
			}
		}
	}
	return adj
}

// Scope returns the frame a connection between a and b is hosted in when
// none is given, or NoCell when they share none. Two ports of one cell are
// joined around the block in the parent's frame; only the top cell, which
// has no parent, joins them in its own frame.
func (nl *Netlist) Scope(a, b PortID) CellID {
	ca := nl.cells[nl.ports[a].Cell]
	cb := nl.cells[nl.ports[b].Cell]
	switch {
	case ca.ID == cb.ID && ca.Parent != NoCell:
		return ca.Parent
	case ca.ID == cb.ID:
		return ca.ID
	case ca.Parent != NoCell && ca.Parent == cb.Parent:
		return ca.Parent
	case cb.Parent == ca.ID:
		return ca.ID
	case ca.Parent == cb.ID:
		return cb.ID
	}
	return NoCell
}
