// Package netlist provides the hierarchical circuit model laid out by netgrid.
//
// # Overview
//
// A [Netlist] is an arena of cells, ports and nets addressed by integer
// handles ([CellID], [PortID], [NetID]) rather than pointers. Exactly one cell,
// the top, has no parent; every other cell is owned by its parent and owns its
// ports. Ports connect to each other through bidirectional target lists, and
// [Builder.Build] groups connected ports into first-class [Net] values.
//
// # Frames and Scopes
//
// Every cell with children owns a frame: the grid in which its children are
// placed and routed. A port of an instance therefore appears in two frames.
// In its parent's frame it is a pin on the child's outline ([Port.Outer]);
// in its own cell's frame it is a boundary pin one unit outside the grid
// ([Port.Inner]). Nets are scoped to one frame, so a port may belong to an
// outer net and an inner net at the same time. [Netlist.PinIn],
// [Netlist.NetIn] and [Netlist.TargetsIn] resolve the view that a given frame
// sees.
//
// # Building
//
//	b := netlist.NewBuilder()
//	top, _ := b.AddCell("top", netlist.KindTop, netlist.NoCell, 0)
//	a, _ := b.AddCell("a", netlist.KindInstance, top, 1)
//	c, _ := b.AddCell("c", netlist.KindInstance, top, 1)
//	o, _ := b.AddPort(a, "o", netlist.Output, netlist.EdgeNone)
//	i, _ := b.AddPort(c, "i", netlist.Input, netlist.EdgeNone)
//	_ = b.Connect(o, i)
//	nl, err := b.Build()
//
// Malformed input (unknown handles, connections between unrelated frames,
// duplicate names, missing or multiple tops) is rejected by the builder
// before any layout work begins; every such error carries
// [errors.ErrCodeInvalidNetlist].
//
// # Mutability
//
// Topology is immutable once built. Layout stages only mutate geometry:
// force coordinates, blocks, pins, side lists and frames. Sibling subtrees
// touch disjoint geometry, which lets the layout engine process them
// concurrently.
//
// [errors.ErrCodeInvalidNetlist]: github.com/matzehuels/netgrid/pkg/errors
package netlist
