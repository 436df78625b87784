package netlist

import (
	"fmt"
	"strings"
)

// Kind classifies a cell. Kinds drive sizing overrides, normalization groups
// and the two-terminal side rule.
type Kind int

const (
	// KindTop is the root of the hierarchy.
	KindTop Kind = iota
	// KindInstance is a module instance with its own sub-netlist.
	KindInstance
	// KindRegister is a clocked storage element.
	KindRegister
	// KindMemory is a memory array.
	KindMemory
	// KindAssign is a continuous assignment (two-terminal combinational block).
	KindAssign
	// KindALU is an arithmetic/logic operator (two-terminal combinational block).
	KindALU
	// KindProcess is a sequential process body.
	KindProcess
	// KindParallelProcess is a process whose statements execute in parallel.
	KindParallelProcess
)

var kindNames = [...]string{
	KindTop:             "top",
	KindInstance:        "instance",
	KindRegister:        "register",
	KindMemory:          "memory",
	KindAssign:          "assign",
	KindALU:             "alu",
	KindProcess:         "process",
	KindParallelProcess: "parallel_process",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a kind name as produced by [Kind.String].
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown cell kind %q", s)
}

// IsTwoTerminal reports whether inputs and outputs must sit on opposite sides.
func (k Kind) IsTwoTerminal() bool { return k == KindAssign || k == KindALU }

// IsProcess reports whether the cell is a process body.
func (k Kind) IsProcess() bool { return k == KindProcess || k == KindParallelProcess }

// Normalized reports whether the cell takes part in cross-kind size
// normalization. Registers and memories keep their own geometry.
func (k Kind) Normalized() bool { return k != KindRegister && k != KindMemory }

// Direction is the declared direction of a port.
type Direction int

const (
	Input Direction = iota
	Output
	InOut
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case InOut:
		return "inout"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection converts "input", "output" or "inout".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "input", "in":
		return Input, nil
	case "output", "out":
		return Output, nil
	case "inout":
		return InOut, nil
	}
	return 0, fmt.Errorf("unknown port direction %q", s)
}

// Drives reports whether the port can act as the source of a route.
func (d Direction) Drives() bool { return d == Output || d == InOut }

// EdgeKind qualifies clock-type ports.
type EdgeKind int

const (
	EdgeNone EdgeKind = iota
	Posedge
	Negedge
)

func (e EdgeKind) String() string {
	switch e {
	case Posedge:
		return "posedge"
	case Negedge:
		return "negedge"
	}
	return ""
}

// ParseEdge converts "posedge", "negedge" or "" (no qualifier).
func ParseEdge(s string) (EdgeKind, error) {
	switch strings.ToLower(s) {
	case "":
		return EdgeNone, nil
	case "posedge":
		return Posedge, nil
	case "negedge":
		return Negedge, nil
	}
	return 0, fmt.Errorf("unknown edge qualifier %q", s)
}
