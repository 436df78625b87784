package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/netgrid/pkg/graph"
	"github.com/matzehuels/netgrid/pkg/layout"
	"github.com/matzehuels/netgrid/pkg/netlist"
	"github.com/matzehuels/netgrid/pkg/observability"
)

// GenerateLayout lays out nl and exports the result. On failure the export
// of the frames reached so far is returned along with the error.
func GenerateLayout(ctx context.Context, nl *netlist.Netlist, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}
	engine, err := layout.New(opts.Config, opts.Logger)
	if err != nil {
		return graph.Layout{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, nl.NumCells())
	start := time.Now()

	res, err := engine.Layout(ctx, nl)
	hooks.OnLayoutComplete(ctx, time.Since(start), err)

	return graph.FromResult(res, opts.Config.Scale), err
}
