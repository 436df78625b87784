package layout_test

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/matzehuels/netgrid/pkg/config"
	"github.com/matzehuels/netgrid/pkg/errors"
	"github.com/matzehuels/netgrid/pkg/layout"
	"github.com/matzehuels/netgrid/pkg/netlist"
	"github.com/matzehuels/netgrid/pkg/observability"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func run(t *testing.T, nl *netlist.Netlist, cfg config.Config) *layout.Result {
	t.Helper()
	e, err := layout.New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := e.Layout(context.Background(), nl)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	return res
}

func TestScenarioConnectedPair(t *testing.T) {
	nl := pairDesign(t)
	res := run(t, nl, config.Default())
	top := nl.Top()
	rep := res.Report(top)

	if !rep.OK() {
		t.Fatalf("state = %v, want routed", rep.State())
	}
	if n := rep.Rows * rep.Cols; n != 2 {
		t.Errorf("grid = %dx%d, want 1x2 or 2x1", rep.Rows, rep.Cols)
	}
	if rep.Retries != 0 || rep.Escalations != 0 {
		t.Errorf("retries = %d escalations = %d, want 0 and 0", rep.Retries, rep.Escalations)
	}

	o, _ := nl.PortByPath("top/a.o")
	i, _ := nl.PortByPath("top/b.i")
	if sideOf(nl, o) != sideOf(nl, i).Opposite() {
		t.Errorf("a.o on %v and b.i on %v do not face each other", sideOf(nl, o), sideOf(nl, i))
	}

	f := nl.Cell(top).Frame
	if len(f.Routes) != 1 {
		t.Fatalf("len(Routes) = %d, want 1", len(f.Routes))
	}
	if n := len(f.Routes[0].Path); n != 1 {
		t.Errorf("route length = %d tiles, want a single-tile connector", n)
	}
	checkFrame(t, nl, top)
	checkCompressed(t, nl, top)
}

func TestScenarioCycle(t *testing.T) {
	nl := cycleDesign(t)
	res := run(t, nl, config.Default())
	top := nl.Top()

	if rep := res.Report(top); rep.Routes != 3 {
		t.Errorf("Routes = %d, want 3", rep.Routes)
	}
	f := nl.Cell(top).Frame
	seen := map[[2]netlist.PortID]bool{}
	for _, r := range f.Routes {
		key := [2]netlist.PortID{r.From, r.To}
		if seen[key] {
			t.Errorf("duplicate route %s -> %s", nl.PortPath(r.From), nl.PortPath(r.To))
		}
		seen[key] = true
		if !nl.Port(r.From).Dir.Drives() {
			t.Errorf("route starts at non-driver %s", nl.PortPath(r.From))
		}
	}
	checkFrame(t, nl, top)
	checkCompressed(t, nl, top)
}

func TestScenarioRegisterFloor(t *testing.T) {
	d, top := newDesign(t)
	x := d.cell(top, "x", netlist.KindInstance, 1)
	r := d.cell(top, "r", netlist.KindRegister, 1)
	d.connect(d.port(x, "o", netlist.Output), d.port(r, "d", netlist.Input))
	d.connect(d.port(r, "q", netlist.Output), d.port(x, "i", netlist.Input))
	nl := d.build()

	cfg := config.Default()
	cfg.PortPitch = 1
	run(t, nl, cfg)

	dp, _ := nl.PortByPath("top/r.d")
	qp, _ := nl.PortByPath("top/r.q")
	if sideOf(nl, dp) != sideOf(nl, qp) {
		t.Fatalf("d on %v, q on %v, want the same side", sideOf(nl, dp), sideOf(nl, qp))
	}
	// Two ports on one side at pitch 1 would give a 1x2 block.
	if b := nl.Cell(r).Block; b.W != 2 || b.H != 2 {
		t.Errorf("register = %dx%d, want 2x2", b.W, b.H)
	}
	checkFrame(t, nl, top)
}

func TestScenarioEscalation(t *testing.T) {
	nl := pairDesign(t)
	cfg := config.Default()
	cfg.Border, cfg.CellBorder = 0, 0

	res := run(t, nl, cfg)
	rep := res.Report(nl.Top())
	if rep.Escalations < 1 {
		t.Errorf("Escalations = %d, want at least 1", rep.Escalations)
	}
	if rep.Spacing.Border < 1 || rep.Spacing.PortPitch <= cfg.PortPitch {
		t.Errorf("final spacing = %+v, want grown spacing", rep.Spacing)
	}
	want := []layout.State{layout.Placing, layout.Sized, layout.Routing, layout.FailedRetry, layout.Sized}
	if len(rep.States) < len(want) || !cmp.Equal(rep.States[:len(want)], want) {
		t.Errorf("history = %s", rep.History())
	}
	if !rep.OK() {
		t.Errorf("state = %v, want routed", rep.State())
	}
	checkFrame(t, nl, nl.Top())
}

func TestEscalationExhausted(t *testing.T) {
	nl := pairDesign(t)
	cfg := config.Default()
	cfg.Border, cfg.CellBorder = 0, 0
	cfg.MaxEscalations = 0

	e, err := layout.New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := e.Layout(context.Background(), nl)
	if !errors.Is(err, errors.ErrCodeEscalationExhausted) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeEscalationExhausted)
	}
	if !errors.IsFatal(err) || !errors.Has(err, errors.ErrCodeUnroutable) {
		t.Errorf("error %v should be fatal and carry the unroutable net", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "top/a.o") || !strings.Contains(msg, "top/b.i") {
		t.Errorf("error %q should name the endpoint ports", msg)
	}
	rep := res.Report(nl.Top())
	if rep.State() != layout.Failed || rep.Err == nil {
		t.Errorf("report = %v / %v, want failed with error", rep.State(), rep.Err)
	}
}

func TestSingleChildWithoutPorts(t *testing.T) {
	d, top := newDesign(t)
	d.cell(top, "only", netlist.KindInstance, 1)
	nl := d.build()

	rep := run(t, nl, config.Default()).Report(top)
	if rep.Rows != 1 || rep.Cols != 1 {
		t.Errorf("grid = %dx%d, want 1x1", rep.Rows, rep.Cols)
	}
	if rep.Routes != 0 || len(nl.Cell(top).Frame.Routes) != 0 {
		t.Errorf("Routes = %d, want 0", rep.Routes)
	}
	checkFrame(t, nl, top)
}

func TestMixedDesign(t *testing.T) {
	nl := mixedDesign(t)
	cfg := config.Default()
	cfg.MaxEscalations = 8
	res := run(t, nl, cfg)
	top := nl.Top()

	if rep := res.Report(top); rep.Routes != 6 {
		t.Errorf("Routes = %d, want 6", rep.Routes)
	}
	checkFrame(t, nl, top)

	alu, _ := nl.CellByPath("top/alu")
	var inSides, outSides []netlist.Side
	for _, p := range nl.Cell(alu).Ports {
		if nl.Port(p).Dir == netlist.Input {
			inSides = append(inSides, sideOf(nl, p))
		} else {
			outSides = append(outSides, sideOf(nl, p))
		}
	}
	for _, in := range inSides {
		for _, out := range outSides {
			if in == out {
				t.Errorf("alu input and output share side %v", in)
			}
		}
	}

}

func TestHierarchy(t *testing.T) {
	nl := hierDesign(t, 3)
	res := run(t, nl, config.Default())

	frames := res.Frames()
	if len(frames) != 4 {
		t.Fatalf("len(Frames()) = %d, want 4", len(frames))
	}
	if frames[0] != nl.Top() {
		t.Errorf("Frames()[0] = %d, want top", frames[0])
	}
	for _, id := range frames {
		rep := res.Report(id)
		if !rep.OK() {
			t.Errorf("%s: state %v", rep.Path, rep.State())
		}
		if rep.Path != nl.Path(id) {
			t.Errorf("report path = %q, want %q", rep.Path, nl.Path(id))
		}
		checkFrame(t, nl, id)
	}
	if res.Report(mustCell(t, nl, "top/s0/a")) != nil {
		t.Error("leaf cells should have no report")
	}
}

func mustCell(t *testing.T, nl *netlist.Netlist, path string) netlist.CellID {
	t.Helper()
	id, err := nl.CellByPath(path)
	if err != nil {
		t.Fatalf("CellByPath(%s): %v", path, err)
	}
	return id
}

// snapshot captures every coordinate a layout produces.
type snapshot struct {
	Blocks map[string]netlist.Rect
	Pins   map[string][2]netlist.Pin
	Routes map[string][][]netlist.Point
	Sizes  map[string][2]int
}

func capture(nl *netlist.Netlist) snapshot {
	s := snapshot{
		Blocks: map[string]netlist.Rect{},
		Pins:   map[string][2]netlist.Pin{},
		Routes: map[string][][]netlist.Point{},
		Sizes:  map[string][2]int{},
	}
	for _, c := range nl.Cells() {
		path := nl.Path(c.ID)
		s.Blocks[path] = c.Block
		s.Sizes[path] = [2]int{c.Frame.Width, c.Frame.Height}
		for _, r := range c.Frame.Routes {
			s.Routes[path] = append(s.Routes[path], r.Path)
		}
	}
	for _, p := range nl.Ports() {
		s.Pins[nl.PortPath(p.ID)] = [2]netlist.Pin{p.Outer, p.Inner}
	}
	return s
}

func TestDeterminism(t *testing.T) {
	designs := map[string]func(*testing.T) *netlist.Netlist{
		"pair":  pairDesign,
		"cycle": cycleDesign,
		"mixed": mixedDesign,
		"hier":  func(t *testing.T) *netlist.Netlist { return hierDesign(t, 3) },
	}
	cfg := config.Default()
	cfg.MaxEscalations = 8
	for name, build := range designs {
		t.Run(name, func(t *testing.T) {
			a, b := build(t), build(t)
			run(t, a, cfg)
			run(t, b, cfg)
			if diff := cmp.Diff(capture(a), capture(b)); diff != "" {
				t.Errorf("layouts differ (-first +second):\n%s", diff)
			}
		})
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	seq := hierDesign(t, 6)
	par := hierDesign(t, 6)

	cfg := config.Default()
	run(t, seq, cfg)
	cfg.Parallelism = 4
	run(t, par, cfg)

	if diff := cmp.Diff(capture(seq), capture(par)); diff != "" {
		t.Errorf("parallel layout differs (-sequential +parallel):\n%s", diff)
	}
}

func TestLayoutCanceled(t *testing.T) {
	e, err := layout.New(config.Default(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Layout(ctx, pairDesign(t)); !stderrors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.PortPitch = 0
	if _, err := layout.New(cfg, nil); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

type countingHooks struct {
	observability.NoopLayoutHooks
	mu          sync.Mutex
	started     int
	completed   int
	escalations int
}

func (h *countingHooks) OnFrameStart(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started++
}

func (h *countingHooks) OnFrameComplete(context.Context, string, int, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed++
}

func (h *countingHooks) OnEscalation(context.Context, string, int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.escalations++
}

func TestLayoutHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetLayoutHooks(hooks)
	defer observability.Reset()

	cfg := config.Default()
	cfg.Border, cfg.CellBorder = 0, 0
	res := run(t, pairDesign(t), cfg)

	if hooks.started != 1 || hooks.completed != 1 {
		t.Errorf("started = %d completed = %d, want 1 and 1", hooks.started, hooks.completed)
	}
	if hooks.escalations != res.Escalations() {
		t.Errorf("escalation events = %d, want %d", hooks.escalations, res.Escalations())
	}
}

func routesOf(nl *netlist.Netlist, frame netlist.CellID) []string {
	var out []string
	for _, r := range nl.Cell(frame).Frame.Routes {
		out = append(out, nl.PortPath(r.From)+" -> "+nl.PortPath(r.To))
	}
	return out
}

func TestRegisterFeedbackIsRouted(t *testing.T) {
	d, top := newDesign(t)
	a := d.cell(top, "a", netlist.KindRegister, 1)
	aD := d.port(a, "d", netlist.Input)
	aQ := d.port(a, "q", netlist.Output)
	aEn := d.port(a, "en", netlist.Input)
	b := d.cell(top, "b", netlist.KindInstance, 1)
	d.connect(aQ, aD)
	d.connect(d.port(b, "o", netlist.Output), aEn)
	nl := d.build()

	res := run(t, nl, config.Default())
	if rep := res.Report(top); rep.Routes != 2 {
		t.Errorf("Routes = %d, want 2", rep.Routes)
	}
	want := []string{"top/a.q -> top/a.d", "top/b.o -> top/a.en"}
	got := routesOf(nl, top)
	for _, w := range want {
		found := false
		for _, g := range got {
			found = found || g == w
		}
		if !found {
			t.Errorf("routes %v do not include %s", got, w)
		}
	}
	if res.Report(a) != nil {
		t.Error("a leaf register must not get a frame of its own")
	}
	checkFrame(t, nl, top)
}

func TestInstanceLoopbackIsRoutedInParent(t *testing.T) {
	d, top := newDesign(t)
	inst := d.cell(top, "inst", netlist.KindInstance, 2)
	i := d.port(inst, "i", netlist.Input)
	o := d.port(inst, "o", netlist.Output)
	inner := d.cell(inst, "g", netlist.KindAssign, 1)
	d.connect(i, d.port(inner, "in", netlist.Input))
	d.connect(d.port(inner, "out", netlist.Output), o)
	d.connect(o, i)
	nl := d.build()

	run(t, nl, config.Default())
	if diff := cmp.Diff([]string{"top/inst.o -> top/inst.i"}, routesOf(nl, top)); diff != "" {
		t.Errorf("top routes (-want +got):\n%s", diff)
	}
	for _, r := range routesOf(nl, inst) {
		if r == "top/inst.o -> top/inst.i" || r == "top/inst.i -> top/inst.o" {
			t.Errorf("loopback declared in top was routed inside inst: %s", r)
		}
	}
	if got := len(nl.Cell(inst).Frame.Routes); got != 2 {
		t.Errorf("inst routes = %d, want 2", got)
	}
	checkFrame(t, nl, top)
	checkFrame(t, nl, inst)
}
