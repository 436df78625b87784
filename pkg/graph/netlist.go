package graph

import (
	"github.com/matzehuels/netgrid/pkg/errors"
	"github.com/matzehuels/netgrid/pkg/netlist"
)

// =============================================================================
// Netlist - Nested Input Format
// =============================================================================

// Netlist is the serialized form of a hierarchical netlist.
type Netlist struct {
	Top Cell `json:"top"`
}

// Cell is a cell with its ports, children and the connections it hosts.
type Cell struct {
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	Statements  int          `json:"statements,omitempty"`
	Ports       []Port       `json:"ports,omitempty"`
	Cells       []Cell       `json:"cells,omitempty"`
	Connections []Connection `json:"connections,omitempty"`
}

// Port is a named port with a direction and optional clock edge.
type Port struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
	Edge string `json:"edge,omitempty"`
}

// Connection joins two ports visible in the hosting cell. Each end is
// either "port" for the cell's own port or "child.port".
type Connection struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CellCount returns the number of cells in the hierarchy.
func (n Netlist) CellCount() int { return n.Top.count() }

func (c Cell) count() int {
	n := 1
	for _, ch := range c.Cells {
		n += ch.count()
	}
	return n
}

// =============================================================================
// Conversion
// =============================================================================

type converter struct {
	b        *netlist.Builder
	ports    map[netlist.CellID]map[string]netlist.PortID
	children map[netlist.CellID]map[string]netlist.CellID
}

// ToNetlist builds the arena form of n. Unknown kinds, directions or
// connection endpoints are INVALID_NETLIST errors.
func ToNetlist(n Netlist) (*netlist.Netlist, error) {
	cv := &converter{
		b:        netlist.NewBuilder(),
		ports:    make(map[netlist.CellID]map[string]netlist.PortID),
		children: make(map[netlist.CellID]map[string]netlist.CellID),
	}
	if _, err := cv.add(n.Top, netlist.NoCell, n.Top.Name); err != nil {
		return nil, err
	}
	return cv.b.Build()
}

func (cv *converter) add(c Cell, parent netlist.CellID, path string) (netlist.CellID, error) {
	kind, err := netlist.ParseKind(c.Kind)
	if err != nil {
		return netlist.NoCell, errors.Wrap(errors.ErrCodeInvalidNetlist, err, "cell %s", path)
	}
	id, err := cv.b.AddCell(c.Name, kind, parent, c.Statements)
	if err != nil {
		return netlist.NoCell, err
	}

	cv.ports[id] = make(map[string]netlist.PortID, len(c.Ports))
	for _, p := range c.Ports {
		dir, err := netlist.ParseDirection(p.Dir)
		if err != nil {
			return netlist.NoCell, errors.Wrap(errors.ErrCodeInvalidNetlist, err, "port %s.%s", path, p.Name)
		}
		edge, err := netlist.ParseEdge(p.Edge)
		if err != nil {
			return netlist.NoCell, errors.Wrap(errors.ErrCodeInvalidNetlist, err, "port %s.%s", path, p.Name)
		}
		pid, err := cv.b.AddPort(id, p.Name, dir, edge)
		if err != nil {
			return netlist.NoCell, err
		}
		cv.ports[id][p.Name] = pid
	}

	cv.children[id] = make(map[string]netlist.CellID, len(c.Cells))
	for _, ch := range c.Cells {
		chID, err := cv.add(ch, id, path+"/"+ch.Name)
		if err != nil {
			return netlist.NoCell, err
		}
		cv.children[id][ch.Name] = chID
	}

	for _, conn := range c.Connections {
		a, err := cv.resolve(id, path, conn.From)
		if err != nil {
			return netlist.NoCell, err
		}
		b, err := cv.resolve(id, path, conn.To)
		if err != nil {
			return netlist.NoCell, err
		}
		if err := cv.b.ConnectIn(id, a, b); err != nil {
			return netlist.NoCell, err
		}
	}
	return id, nil
}

// resolve looks ref up as an own port first, then as "child.port" at every
// dot, since names may themselves contain dots.
func (cv *converter) resolve(scope netlist.CellID, path, ref string) (netlist.PortID, error) {
	if pid, ok := cv.ports[scope][ref]; ok {
		return pid, nil
	}
	for i := range len(ref) {
		if ref[i] != '.' {
			continue
		}
		child, ok := cv.children[scope][ref[:i]]
		if !ok {
			continue
		}
		if pid, ok := cv.ports[child][ref[i+1:]]; ok {
			return pid, nil
		}
	}
	return netlist.NoPort, errors.Wrap(errors.ErrCodeInvalidNetlist, netlist.ErrUnknownPort,
		"cell %s: connection endpoint %q", path, ref)
}

// FromNetlist converts an arena netlist back to the nested form. Every
// connection is listed once, in the cell that hosts it.
func FromNetlist(nl *netlist.Netlist) Netlist {
	hosted := make(map[netlist.CellID][]Connection)
	for _, p := range nl.Ports() {
		for i, t := range p.Targets {
			if t < p.ID {
				continue
			}
			scope := p.Hosts[i]
			hosted[scope] = append(hosted[scope], Connection{
				From: ref(nl, scope, p.ID),
				To:   ref(nl, scope, t),
			})
		}
	}
	return Netlist{Top: fromCell(nl, nl.Top(), hosted)}
}

func fromCell(nl *netlist.Netlist, id netlist.CellID, hosted map[netlist.CellID][]Connection) Cell {
	c := nl.Cell(id)
	out := Cell{
		Name:        c.Name,
		Kind:        c.Kind.String(),
		Statements:  c.Statements,
		Connections: hosted[id],
	}
	for _, pid := range c.Ports {
		p := nl.Port(pid)
		out.Ports = append(out.Ports, Port{Name: p.Name, Dir: p.Dir.String(), Edge: p.Edge.String()})
	}
	for _, ch := range c.Children {
		out.Cells = append(out.Cells, fromCell(nl, ch, hosted))
	}
	return out
}

func ref(nl *netlist.Netlist, scope netlist.CellID, port netlist.PortID) string {
	p := nl.Port(port)
	if p.Cell == scope {
		return p.Name
	}
	return nl.Cell(p.Cell).Name + "." + p.Name
}
