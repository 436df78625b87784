package netlist

import (
	"fmt"
	"slices"

	"github.com/matzehuels/netgrid/pkg/errors"
)

// Builder assembles a [Netlist]. Handles returned by the builder stay valid
// in the built netlist. A Builder is single use: after a successful Build it
// must not be modified.
type Builder struct {
	nl   *Netlist
	conn map[[3]int]bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		nl:   &Netlist{top: NoCell},
		conn: make(map[[3]int]bool),
	}
}

func invalid(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeInvalidNetlist, err, format, args...)
}

// AddCell adds a cell under parent (NoCell for the top cell) and returns its
// handle. statements feeds the complexity metric used by size normalization.
func (b *Builder) AddCell(name string, kind Kind, parent CellID, statements int) (CellID, error) {
	if err := errors.ValidateName(name); err != nil {
		return NoCell, err
	}
	if parent == NoCell {
		if kind != KindTop {
			return NoCell, invalid(ErrTopKind, "cell %s has no parent", name)
		}
		if b.nl.top != NoCell {
			return NoCell, invalid(ErrMultipleTops, "cell %s", name)
		}
	} else {
		if !b.validCell(parent) {
			return NoCell, invalid(ErrUnknownCell, "parent of %s", name)
		}
		if kind == KindTop {
			return NoCell, invalid(ErrTopKind, "cell %s has a parent", name)
		}
		for _, sib := range b.nl.cells[parent].Children {
			if b.nl.cells[sib].Name == name {
				return NoCell, invalid(ErrDuplicateName, "cell %s in %s", name, b.nl.Path(parent))
			}
		}
	}
	if statements < 0 {
		return NoCell, errors.New(errors.ErrCodeInvalidNetlist, "cell %s: negative statement count %d", name, statements)
	}

	id := CellID(len(b.nl.cells))
	b.nl.cells = append(b.nl.cells, &Cell{
		ID:         id,
		Name:       name,
		Kind:       kind,
		Parent:     parent,
		Statements: statements,
	})
	if parent == NoCell {
		b.nl.top = id
	} else {
		b.nl.cells[parent].Children = append(b.nl.cells[parent].Children, id)
	}
	return id, nil
}

// AddPort adds a port to cell and returns its handle.
func (b *Builder) AddPort(cell CellID, name string, dir Direction, edge EdgeKind) (PortID, error) {
	if !b.validCell(cell) {
		return NoPort, invalid(ErrUnknownCell, "owner of port %s", name)
	}
	if err := errors.ValidateName(name); err != nil {
		return NoPort, err
	}
	for _, p := range b.nl.cells[cell].Ports {
		if b.nl.ports[p].Name == name {
			return NoPort, invalid(ErrDuplicateName, "port %s on %s", name, b.nl.Path(cell))
		}
	}
	if dir < Input || dir > InOut {
		return NoPort, errors.New(errors.ErrCodeInvalidNetlist, "port %s: invalid direction %d", name, int(dir))
	}
	if edge < EdgeNone || edge > Negedge {
		return NoPort, errors.New(errors.ErrCodeInvalidNetlist, "port %s: invalid edge %d", name, int(edge))
	}

	id := PortID(len(b.nl.ports))
	b.nl.ports = append(b.nl.ports, &Port{
		ID:       id,
		Name:     name,
		Cell:     cell,
		Dir:      dir,
		Edge:     edge,
		OuterNet: NoNet,
		InnerNet: NoNet,
	})
	b.nl.cells[cell].Ports = append(b.nl.cells[cell].Ports, id)
	return id, nil
}

// Connect records a bidirectional connection between two ports in the
// frame [Netlist.Scope] picks for them. Repeated connections are ignored.
func (b *Builder) Connect(a, c PortID) error {
	if !b.validPort(a) || !b.validPort(c) {
		return invalid(ErrDanglingTarget, "connection %d-%d", a, c)
	}
	return b.ConnectIn(b.nl.Scope(a, c), a, c)
}

// ConnectIn records a connection between two ports declared in host. Both
// ports must be visible in host. A host without children has no frame to
// route in; [Builder.Build] rejects connections left on such a cell.
func (b *Builder) ConnectIn(host CellID, a, c PortID) error {
	if !b.validPort(a) || !b.validPort(c) {
		return invalid(ErrDanglingTarget, "connection %d-%d", a, c)
	}
	if a == c {
		return invalid(ErrSelfTarget, "port %s", b.nl.PortPath(a))
	}
	if !b.validCell(host) || !b.nl.Visible(host, a) || !b.nl.Visible(host, c) {
		return invalid(ErrCrossScope, "%s - %s", b.nl.PortPath(a), b.nl.PortPath(c))
	}
	key := [3]int{int(host), int(min(a, c)), int(max(a, c))}
	if b.conn[key] {
		return nil
	}
	b.conn[key] = true
	pa, pc := b.nl.ports[a], b.nl.ports[c]
	pa.Targets, pa.Hosts = append(pa.Targets, c), append(pa.Hosts, host)
	pc.Targets, pc.Hosts = append(pc.Targets, a), append(pc.Hosts, host)
	return nil
}

// Build validates the netlist and computes its nets.
func (b *Builder) Build() (*Netlist, error) {
	if b.nl.top == NoCell {
		return nil, invalid(ErrNoTop, "netlist has %d cells", len(b.nl.cells))
	}
	if err := b.nl.Validate(); err != nil {
		return nil, err
	}
	b.nl.buildNets()
	return b.nl, nil
}

func (b *Builder) validCell(id CellID) bool { return id >= 0 && int(id) < len(b.nl.cells) }
func (b *Builder) validPort(id PortID) bool { return id >= 0 && int(id) < len(b.nl.ports) }

// Validate checks the structural invariants of the netlist: a single top,
// consistent parent/child links, owned ports and reciprocal targets.
func (nl *Netlist) Validate() error {
	tops := 0
	for _, c := range nl.cells {
		if c.Parent == NoCell {
			tops++
			continue
		}
		if int(c.Parent) >= len(nl.cells) || !slices.Contains(nl.cells[c.Parent].Children, c.ID) {
			return invalid(ErrUnknownCell, "parent of %s", c.Name)
		}
	}
	switch {
	case tops == 0:
		return invalid(ErrNoTop, "netlist has %d cells", len(nl.cells))
	case tops > 1:
		return invalid(ErrMultipleTops, "found %d", tops)
	}

	for _, p := range nl.ports {
		if p.Cell < 0 || int(p.Cell) >= len(nl.cells) || !slices.Contains(nl.cells[p.Cell].Ports, p.ID) {
			return invalid(ErrUnknownCell, "owner of port %s", p.Name)
		}
		if len(p.Hosts) != len(p.Targets) {
			return invalid(ErrDanglingTarget, "%s has %d targets but %d hosts", nl.PortPath(p.ID), len(p.Targets), len(p.Hosts))
		}
		for i, t := range p.Targets {
			if t < 0 || int(t) >= len(nl.ports) {
				return invalid(ErrDanglingTarget, "target of %s", nl.PortPath(p.ID))
			}
			host := p.Hosts[i]
			if !nl.reciprocal(t, p.ID, host) {
				return invalid(ErrDanglingTarget, "%s -> %s is not reciprocal", nl.PortPath(p.ID), nl.PortPath(t))
			}
			if host < 0 || int(host) >= len(nl.cells) || !nl.Visible(host, p.ID) || !nl.Visible(host, t) {
				return invalid(ErrCrossScope, "%s - %s", nl.PortPath(p.ID), nl.PortPath(t))
			}
			if !nl.cells[host].HasFrame() {
				return invalid(ErrCrossScope, "%s - %s is hosted by %s, which has no children to route between",
					nl.PortPath(p.ID), nl.PortPath(t), nl.Path(host))
			}
		}
	}
	return nil
}

func (nl *Netlist) reciprocal(port, target PortID, host CellID) bool {
	p := nl.ports[port]
	for i, t := range p.Targets {
		if t == target && i < len(p.Hosts) && p.Hosts[i] == host {
			return true
		}
	}
	return false
}

// buildNets groups connected ports per frame with a union-find keyed by
// (frame, port).
func (nl *Netlist) buildNets() {
	type key struct {
		frame CellID
		port  PortID
	}
	parent := make(map[key]key)
	var find func(k key) key
	find = func(k key) key {
		p, ok := parent[k]
		if !ok || p == k {
			return k
		}
		root := find(p)
		parent[k] = root
		return root
	}
	var order []key
	touch := func(k key) {
		if _, ok := parent[k]; !ok {
			parent[k] = k
			order = append(order, k)
		}
	}

	for _, p := range nl.ports {
		for i, t := range p.Targets {
			s := p.Hosts[i]
			ka, kb := key{s, p.ID}, key{s, t}
			touch(ka)
			touch(kb)
			ra, rb := find(ka), find(kb)
			if ra != rb {
				if rb.port < ra.port {
					ra, rb = rb, ra
				}
				parent[rb] = ra
			}
		}
	}

	ids := make(map[key]NetID)
	for _, k := range order {
		root := find(k)
		id, ok := ids[root]
		if !ok {
			id = NetID(len(nl.nets))
			ids[root] = id
			nl.nets = append(nl.nets, &Net{ID: id, Scope: k.frame})
		}
		net := nl.nets[id]
		net.Ports = append(net.Ports, k.port)
		if nl.ports[k.port].Cell == k.frame {
			nl.ports[k.port].InnerNet = id
		} else {
			nl.ports[k.port].OuterNet = id
		}
	}
	for _, net := range nl.nets {
		slices.Sort(net.Ports)
	}
}

// String summarizes the netlist for logs.
func (nl *Netlist) String() string {
	return fmt.Sprintf("netlist(top=%s cells=%d ports=%d nets=%d)",
		nl.cells[nl.top].Name, len(nl.cells), len(nl.ports), len(nl.nets))
}
