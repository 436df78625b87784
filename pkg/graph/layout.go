package graph

import (
	"github.com/matzehuels/netgrid/pkg/layout"
	"github.com/matzehuels/netgrid/pkg/netlist"
)

// =============================================================================
// Layout - Engine Output
// =============================================================================

// Layout is the serialized result of a layout run.
type Layout struct {
	// Scale is the number of drawing units per grid unit.
	Scale  float64 `json:"scale"`
	Frames []Frame `json:"frames"`
}

// Frame is one laid-out cell.
type Frame struct {
	Cell string `json:"cell"`
	Kind string `json:"kind"`

	// Grid size in tiles, and the matrix the children were decomposed into.
	Width  int `json:"width"`
	Height int `json:"height"`
	Rows   int `json:"rows"`
	Cols   int `json:"cols"`

	Blocks []Block `json:"blocks,omitempty"`
	Pins   []Pin   `json:"pins,omitempty"`
	Routes []Route `json:"routes,omitempty"`
	Wires  []Wire  `json:"wires,omitempty"`

	Report Report `json:"report"`
}

// Block is a child cell's rectangle.
type Block struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
}

// Pin is a port position inside a frame. Boundary pins belong to the
// frame's own cell and lie one unit outside the grid.
type Pin struct {
	Port     string `json:"port"`
	Dir      string `json:"dir"`
	Side     string `json:"side"`
	Offset   int    `json:"offset"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Boundary bool   `json:"boundary,omitempty"`
}

// Point is a tile coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Route is one routed pair, from the driver's access tile to the target's.
type Route struct {
	Net  int     `json:"net"`
	From string  `json:"from"`
	To   string  `json:"to"`
	Path []Point `json:"path"`
}

// Wire summarizes a tile carrying wire: the union of its directions
// ("LR", "UD", "LU", ...) and its render hints.
type Wire struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Dirs     string `json:"dirs"`
	Nets     int    `json:"nets"`
	Bend     bool   `json:"bend,omitempty"`
	Crossing bool   `json:"crossing,omitempty"`
	Junction bool   `json:"junction,omitempty"`
}

// Report is a frame's outcome.
type Report struct {
	State       string         `json:"state"`
	History     string         `json:"history"`
	Escalations int            `json:"escalations"`
	Retries     int            `json:"retries"`
	Spacing     layout.Spacing `json:"spacing"`
	Error       string         `json:"error,omitempty"`
}

// Frame returns the frame of the given cell path, or nil.
func (l *Layout) Frame(cell string) *Frame {
	for i := range l.Frames {
		if l.Frames[i].Cell == cell {
			return &l.Frames[i]
		}
	}
	return nil
}

// OK reports whether every frame was routed.
func (l *Layout) OK() bool {
	for _, f := range l.Frames {
		if f.Report.State != layout.Routed.String() {
			return false
		}
	}
	return true
}

// =============================================================================
// Conversion
// =============================================================================

// FromResult exports every frame of res in hierarchy pre-order.
func FromResult(res *layout.Result, scale float64) Layout {
	out := Layout{Scale: scale}
	for _, id := range res.Frames() {
		out.Frames = append(out.Frames, fromFrame(res.Netlist, id, res.Report(id)))
	}
	return out
}

func fromFrame(nl *netlist.Netlist, id netlist.CellID, rep *layout.Report) Frame {
	c := nl.Cell(id)
	f := &c.Frame
	out := Frame{
		Cell:   nl.Path(id),
		Kind:   c.Kind.String(),
		Width:  f.Width,
		Height: f.Height,
		Rows:   f.Rows(),
		Cols:   f.Cols(),
		Report: Report{
			State:       rep.State().String(),
			History:     rep.History(),
			Escalations: rep.Escalations,
			Retries:     rep.Retries,
			Spacing:     rep.Spacing,
		},
	}
	if rep.Err != nil {
		out.Report.Error = rep.Err.Error()
	}

	for _, ch := range c.Children {
		cc := nl.Cell(ch)
		b := cc.Block
		out.Blocks = append(out.Blocks, Block{Name: cc.Name, Kind: cc.Kind.String(), X: b.X, Y: b.Y, W: b.W, H: b.H})
	}
	for _, pid := range nl.FramePorts(id) {
		pin := nl.PinIn(id, pid)
		out.Pins = append(out.Pins, Pin{
			Port:     nl.PortPath(pid),
			Dir:      nl.Port(pid).Dir.String(),
			Side:     pin.Side.String(),
			Offset:   pin.Offset,
			X:        pin.X,
			Y:        pin.Y,
			Boundary: nl.IsBoundary(id, pid),
		})
	}
	for _, r := range f.Routes {
		path := make([]Point, len(r.Path))
		for i, p := range r.Path {
			path[i] = Point{X: p.X, Y: p.Y}
		}
		out.Routes = append(out.Routes, Route{
			Net:  int(r.Net),
			From: nl.PortPath(r.From),
			To:   nl.PortPath(r.To),
			Path: path,
		})
	}
	for y, row := range f.Tiles {
		for x := range row {
			t := &row[x]
			if len(t.Segments) == 0 {
				continue
			}
			out.Wires = append(out.Wires, Wire{
				X:        x,
				Y:        y,
				Dirs:     t.Mask().String(),
				Nets:     t.ForeignNets(netlist.NoNet),
				Bend:     t.Bend,
				Crossing: t.Crossing,
				Junction: t.Junction,
			})
		}
	}
	return out
}
