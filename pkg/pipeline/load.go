package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/netgrid/pkg/graph"
	"github.com/matzehuels/netgrid/pkg/netlist"
	"github.com/matzehuels/netgrid/pkg/observability"
)

// Load reads and builds the netlist named by opts.
func Load(ctx context.Context, opts Options) (*netlist.Netlist, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	source := opts.NetlistPath
	if source == "" {
		source = "inline"
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	var nl *netlist.Netlist
	var err error
	if opts.Netlist != nil {
		nl, err = graph.ToNetlist(*opts.Netlist)
	} else {
		nl, err = graph.ReadNetlistFile(opts.NetlistPath)
	}

	cells := 0
	if nl != nil {
		cells = nl.NumCells()
	}
	hooks.OnLoadComplete(ctx, source, cells, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("loaded netlist", "source", source, "cells", cells, "ports", nl.NumPorts(), "nets", nl.NumNets())
	return nl, nil
}
