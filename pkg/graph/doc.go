// Package graph provides the serialization types for netlists and layouts.
//
// This package defines netgrid's wire format, used for input files, API
// requests and responses, and the layout cache.
//
// # Architecture
//
// The package sits at the boundary between the engine's arena model and
// JSON:
//
//   - [Netlist], [Cell], [Port], [Connection]: nested netlist input
//   - [Layout], [Frame]: laid-out frames with blocks, pins, routes and wires
//   - pkg/netlist.Netlist: internal arena representation
//   - pkg/layout.Result: engine output
//
// Use [ToNetlist]/[FromNetlist] and [FromResult] to convert between them.
//
// # Netlist Format
//
// Cells nest. Connections are declared in the cell that hosts them and name
// either one of the cell's own ports ("x") or a port of a direct child
// ("alu.a"):
//
//	{
//	  "top": {
//	    "name": "top", "kind": "top",
//	    "ports": [{"name": "x", "dir": "input"}],
//	    "cells": [
//	      {"name": "alu", "kind": "alu", "statements": 1,
//	       "ports": [{"name": "a", "dir": "input"}, {"name": "z", "dir": "output"}]}
//	    ],
//	    "connections": [{"from": "x", "to": "alu.a"}]
//	  }
//	}
//
// Common operations:
//
//	nl, _ := graph.ReadNetlistFile("design.json")  // File → arena
//	data, _ := graph.MarshalNetlist(nl)            // arena → []byte
//	layout := graph.FromResult(res, cfg.Scale)     // engine → wire
//	data, _ = graph.MarshalLayout(layout)
//
// # Layout Format
//
// A [Layout] lists one [Frame] per laid-out cell in hierarchy pre-order.
// Coordinates are grid units inside the frame; boundary pins sit one unit
// outside the grid. Scale converts grid units into drawing units.
package graph
