package layout

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/netgrid/pkg/config"
	"github.com/matzehuels/netgrid/pkg/errors"
	"github.com/matzehuels/netgrid/pkg/netlist"
	"github.com/matzehuels/netgrid/pkg/observability"
	"github.com/matzehuels/netgrid/pkg/place/force"
	"github.com/matzehuels/netgrid/pkg/place/grid"
	"github.com/matzehuels/netgrid/pkg/place/sides"
	"github.com/matzehuels/netgrid/pkg/place/size"
	"github.com/matzehuels/netgrid/pkg/place/tune"
	"github.com/matzehuels/netgrid/pkg/route"
)

// Engine lays out netlists with a fixed configuration. An Engine holds no
// per-run state and may be shared.
type Engine struct {
	cfg    config.Config
	logger *log.Logger
}

// New returns an engine for cfg. A nil logger discards output.
func New(cfg config.Config, logger *log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Result holds the laid-out netlist and the report of every frame.
type Result struct {
	Netlist *netlist.Netlist
	reports []*Report
}

// Report returns the report of a frame, or nil for cells without one.
func (r *Result) Report(id netlist.CellID) *Report { return r.reports[id] }

// Frames returns the cells that were laid out, in hierarchy pre-order.
func (r *Result) Frames() []netlist.CellID {
	var out []netlist.CellID
	var walk func(netlist.CellID)
	walk = func(id netlist.CellID) {
		if r.reports[id] != nil {
			out = append(out, id)
		}
		for _, ch := range r.Netlist.Cell(id).Children {
			walk(ch)
		}
	}
	walk(r.Netlist.Top())
	return out
}

// Escalations returns the total number of escalations over all frames.
func (r *Result) Escalations() int {
	n := 0
	for _, rep := range r.reports {
		if rep != nil {
			n += rep.Escalations
		}
	}
	return n
}

// Retries returns the total number of routing retries over all frames.
func (r *Result) Retries() int {
	n := 0
	for _, rep := range r.reports {
		if rep != nil {
			n += rep.Retries
		}
	}
	return n
}

// Layout lays out the top cell and every descendant owning children. The
// result is returned even on failure so that the reports of finished frames
// remain available.
func (e *Engine) Layout(ctx context.Context, nl *netlist.Netlist) (*Result, error) {
	res := &Result{Netlist: nl, reports: make([]*Report, nl.NumCells())}
	err := e.layoutTree(ctx, nl, nl.Top(), res)
	return res, err
}

func (e *Engine) layoutTree(ctx context.Context, nl *netlist.Netlist, id netlist.CellID, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rep, err := e.LayoutFrame(ctx, nl, id)
	res.reports[id] = rep
	if err != nil {
		return err
	}

	var kids []netlist.CellID
	for _, ch := range nl.Cell(id).Children {
		if nl.Cell(ch).HasFrame() {
			kids = append(kids, ch)
		}
	}
	if e.cfg.Parallelism <= 1 || len(kids) < 2 {
		for _, ch := range kids {
			if err := e.layoutTree(ctx, nl, ch, res); err != nil {
				return err
			}
		}
		return nil
	}

	// Each subtree writes only its own frames; reports land in distinct
	// slots of res.reports.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Parallelism)
	for _, ch := range kids {
		g.Go(func() error { return e.layoutTree(gctx, nl, ch, res) })
	}
	return g.Wait()
}

// LayoutFrame places and routes the children of one cell. Only the cell's
// frame, its boundary pins and its children's blocks and pins are written.
func (e *Engine) LayoutFrame(ctx context.Context, nl *netlist.Netlist, id netlist.CellID) (*Report, error) {
	start := time.Now()
	path := nl.Path(id)
	rep := &Report{Cell: id, Path: path}
	hooks := observability.Layout()
	hooks.OnFrameStart(ctx, path, len(nl.Cell(id).Children))

	err := e.layoutFrame(ctx, nl, id, rep)
	if err != nil {
		rep.Err = err
		rep.enter(Failed)
		e.logger.Error("frame failed", "cell", path, "escalations", rep.Escalations, "error", err)
	}
	hooks.OnFrameComplete(ctx, path, rep.Escalations, rep.Retries, time.Since(start), err)
	return rep, err
}

func (e *Engine) layoutFrame(ctx context.Context, nl *netlist.Netlist, id netlist.CellID, rep *Report) error {
	cfg := e.cfg
	rep.enter(Placing)

	force.Place(nl, id, cfg)
	if _, err := grid.Build(nl, id, cfg); err != nil {
		return err
	}
	rep.Rows, rep.Cols = grid.Compress(nl, id)
	sides.AssignChildren(nl, id)
	sides.AssignBoundary(nl, id)

	for level := 0; ; level++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		size.Apply(nl, id, cfg)
		tuned := tune.Apply(nl, id, cfg)
		rep.enter(Sized)
		rep.Spacing = Spacing{Border: cfg.Border, CellBorder: cfg.CellBorder, PortPitch: cfg.PortPitch}

		rep.enter(Routing)
		rr, err := route.Route(nl, id, cfg.MaxRetries)
		rep.Retries += rr.Retries
		rep.Attempts += rr.Attempts
		if err == nil {
			dx, dy := route.Compress(nl, id)
			rep.Routes = rr.Routes
			rep.enter(Routed)
			e.logger.Debug("frame routed",
				"cell", rep.Path,
				"rows", rep.Rows,
				"cols", rep.Cols,
				"routes", rr.Routes,
				"escalation", level,
				"retries", rep.Retries,
				"width", tuned.Width-dx,
				"height", tuned.Height-dy)
			return nil
		}

		if level >= cfg.MaxEscalations {
			return errors.Wrap(errors.ErrCodeEscalationExhausted, err,
				"cell %s: unroutable after %d escalations", rep.Path, level)
		}
		rep.enter(FailedRetry)
		rep.Escalations++
		observability.Layout().OnEscalation(ctx, rep.Path, rep.Escalations, err)
		e.logger.Debug("escalating spacing", "cell", rep.Path, "escalation", rep.Escalations, "cause", err)
		cfg = cfg.Escalate()
	}
}
