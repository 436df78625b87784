package layout

import (
	"strings"

	"github.com/matzehuels/netgrid/pkg/netlist"
)

// State is a step of a frame's layout.
type State int

const (
	Placing State = iota
	Sized
	Routing
	Routed
	FailedRetry
	Failed
)

func (s State) String() string {
	switch s {
	case Placing:
		return "placing"
	case Sized:
		return "sized"
	case Routing:
		return "routing"
	case Routed:
		return "routed"
	case FailedRetry:
		return "failed-retry"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool { return s == Routed || s == Failed }

// Spacing records the spacing a frame was finally laid out with.
type Spacing struct {
	Border     int `json:"border"`
	CellBorder int `json:"cell_border"`
	PortPitch  int `json:"port_pitch"`
}

// Report is the outcome of one frame.
type Report struct {
	Cell netlist.CellID
	Path string

	// States lists every state the frame passed through, in order.
	States []State

	Escalations int
	Retries     int
	Attempts    int

	Rows, Cols int
	Routes     int
	Spacing    Spacing

	Err error
}

// State returns the last state reached.
func (r *Report) State() State {
	if len(r.States) == 0 {
		return Placing
	}
	return r.States[len(r.States)-1]
}

// OK reports whether the frame was routed.
func (r *Report) OK() bool { return r.State() == Routed }

func (r *Report) enter(s State) { r.States = append(r.States, s) }

// History renders the state sequence, e.g. "placing → sized → routing → routed".
func (r *Report) History() string {
	parts := make([]string, len(r.States))
	for i, s := range r.States {
		parts[i] = s.String()
	}
	return strings.Join(parts, " → ")
}
