// Package pkg provides the core libraries for netgrid hierarchical place and route.
//
// # Overview
//
// Netgrid lays out hierarchical netlists on a discrete tile grid. Every cell
// with children is a frame: its children are placed, sized and wired, and the
// same is done for each child, from the top cell down. The pkg directory is
// organized into four areas:
//
//  1. Domain model: [netlist] and [config]
//  2. Layout engine: [place], [route] and [layout]
//  3. Serialization and output: [graph] and [render]
//  4. Orchestration: [pipeline] and [cache]
//
// # Architecture
//
// The data flow for one frame:
//
//	netlist.json
//	     ↓
//	[graph] (decode and build the netlist arena)
//	     ↓
//	[place/force] → [place/grid] → [place/sides]
//	     ↓
//	[place/size] → [place/tune]
//	     ↓
//	[route] (A* per net, retry, compress)
//	     ↓
//	[layout] (escalation, recursion over children)
//	     ↓
//	[render] (SVG, PNG, PDF, text, DOT)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/netgrid/pkg/config"
//	    "github.com/matzehuels/netgrid/pkg/graph"
//	    "github.com/matzehuels/netgrid/pkg/layout"
//	)
//
//	nl, _ := graph.ReadNetlistFile("counter.json")
//	engine, _ := layout.New(config.Default(), nil)
//	res, err := engine.Layout(context.Background(), nl)
//	if err != nil {
//	    // res still holds the reports of every frame
//	}
//	l := graph.FromResult(res, config.DefaultScale)
//
// # Main Packages
//
// ## Domain
//
// [netlist] - Arena of cells, ports and nets with typed indices, plus the
// frame geometry (tiles, pins, blocks) the engine writes.
//
// [config] - Engine knobs with defaults, validation, TOML/YAML loading and
// spacing escalation.
//
// [errors] - Structured errors with codes shared by the CLI and HTTP API.
//
// ## Layout Engine
//
// [place] - Force-directed placement, grid decomposition, side assignment,
// sizing and tuning, one subpackage per step.
//
// [route] - A* maze routing with net ordering, retries and frame compression.
//
// [layout] - Per-frame state machine with escalation, run recursively and
// concurrently over the hierarchy.
//
// ## Output
//
// [graph] - JSON netlist input and layout output.
//
// [render] - Schematic SVG, terminal text and Graphviz node-link renderers.
//
// ## Orchestration
//
// [pipeline] - Load → layout → render with caching, used by the CLI and the
// HTTP server.
//
// [cache] - Content-addressed caches on disk and in Redis.
//
// [observability] - Hooks for layout, pipeline, cache and HTTP events.
//
// [netlist]: github.com/matzehuels/netgrid/pkg/netlist
// [config]: github.com/matzehuels/netgrid/pkg/config
// [errors]: github.com/matzehuels/netgrid/pkg/errors
// [place]: github.com/matzehuels/netgrid/pkg/place
// [place/force]: github.com/matzehuels/netgrid/pkg/place/force
// [place/grid]: github.com/matzehuels/netgrid/pkg/place/grid
// [place/sides]: github.com/matzehuels/netgrid/pkg/place/sides
// [place/size]: github.com/matzehuels/netgrid/pkg/place/size
// [place/tune]: github.com/matzehuels/netgrid/pkg/place/tune
// [route]: github.com/matzehuels/netgrid/pkg/route
// [layout]: github.com/matzehuels/netgrid/pkg/layout
// [graph]: github.com/matzehuels/netgrid/pkg/graph
// [render]: github.com/matzehuels/netgrid/pkg/render
// [pipeline]: github.com/matzehuels/netgrid/pkg/pipeline
// [cache]: github.com/matzehuels/netgrid/pkg/cache
// [observability]: github.com/matzehuels/netgrid/pkg/observability
package pkg
