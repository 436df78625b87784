// Package grid decomposes force-placed children into a sparse matrix.
//
// # Decomposition
//
// [Build] slices the bounding box of the force coordinates into equal bands
// and grows the band counts, columns first and then alternating, until every
// child falls into a distinct matrix slot. [Compress] then merges adjacent
// rows and columns whose occupants never collide.
//
// The result keeps the relative order of children along both axes: a child
// left of another in force space never ends up in a column right of it.
package grid

import (
	"math"

	"github.com/matzehuels/netgrid/pkg/config"
	"github.com/matzehuels/netgrid/pkg/errors"
	"github.com/matzehuels/netgrid/pkg/netlist"
	"github.com/matzehuels/netgrid/pkg/place/force"
)

// Result describes a decomposition.
type Result struct {
	Rows, Cols int
	// Attempts counts the matrix sizes tested before separation succeeded.
	Attempts int
}

// Build decomposes the children of frame into Frame.Matrix. It fails with
// errors.ErrCodeGridNonConvergence when separation needs more than
// cfg.MaxGridGrowth rows and columns.
func Build(nl *netlist.Netlist, frame netlist.CellID, cfg config.Config) (Result, error) {
	cell := nl.Cell(frame)
	children := cell.Children
	switch len(children) {
	case 0:
		cell.Frame.Matrix = nil
		return Result{}, nil
	case 1:
		cell.Frame.Matrix = [][]netlist.CellID{{children[0]}}
		return Result{Rows: 1, Cols: 1, Attempts: 1}, nil
	}

	minX, minY, maxX, maxY := force.Bounds(nl, frame)
	rows, cols := 1, 1
	res := Result{}
	for {
		res.Attempts++
		if m, ok := slice(nl, children, rows, cols, minX, minY, maxX, maxY); ok {
			cell.Frame.Matrix = m
			res.Rows, res.Cols = rows, cols
			return res, nil
		}
		switch {
		case cols <= rows && cols < cfg.MaxGridGrowth:
			cols++
		case rows < cfg.MaxGridGrowth:
			rows++
		case cols < cfg.MaxGridGrowth:
			cols++
		default:
			return res, errors.New(errors.ErrCodeGridNonConvergence,
				"cell %s: %d children not separable within %dx%d grid",
				nl.Path(frame), len(children), rows, cols)
		}
	}
}

// slice assigns each child to a band pair. It reports false as soon as two
// children share a slot.
func slice(nl *netlist.Netlist, children []netlist.CellID, rows, cols int, minX, minY, maxX, maxY float64) ([][]netlist.CellID, bool) {
	m := make([][]netlist.CellID, rows)
	for r := range m {
		m[r] = make([]netlist.CellID, cols)
		for c := range m[r] {
			m[r][c] = netlist.NoCell
		}
	}
	for _, ch := range children {
		c := nl.Cell(ch)
		row, col := band(c.FY, minY, maxY, rows), band(c.FX, minX, maxX, cols)
		if m[row][col] != netlist.NoCell {
			return nil, false
		}
		m[row][col] = ch
	}
	return m, true
}

// band returns the index of the equal-width band of [lo, hi] holding v.
func band(v, lo, hi float64, k int) int {
	span := hi - lo
	if span <= 0 {
		return 0
	}
	b := int(math.Floor((v - lo) / span * float64(k)))
	return max(0, min(b, k-1))
}

// Compress merges adjacent rows, then adjacent columns, whenever no slot
// would receive two children, until nothing changes. It returns the new
// matrix dimensions.
func Compress(nl *netlist.Netlist, frame netlist.CellID) (rows, cols int) {
	f := &nl.Cell(frame).Frame
	for changed := true; changed; {
		changed = false
		for r := 0; r+1 < f.Rows(); {
			if mergeRows(f, r) {
				changed = true
				continue
			}
			r++
		}
		for c := 0; c+1 < f.Cols(); {
			if mergeCols(f, c) {
				changed = true
				continue
			}
			c++
		}
	}
	return f.Rows(), f.Cols()
}

func mergeRows(f *netlist.Frame, r int) bool {
	a, b := f.Matrix[r], f.Matrix[r+1]
	for c := range a {
		if a[c] != netlist.NoCell && b[c] != netlist.NoCell {
			return false
		}
	}
	for c := range a {
		if a[c] == netlist.NoCell {
			a[c] = b[c]
		}
	}
	f.Matrix = append(f.Matrix[:r+1], f.Matrix[r+2:]...)
	return true
}

func mergeCols(f *netlist.Frame, c int) bool {
	for _, row := range f.Matrix {
		if row[c] != netlist.NoCell && row[c+1] != netlist.NoCell {
			return false
		}
	}
	for r, row := range f.Matrix {
		if row[c] == netlist.NoCell {
			row[c] = row[c+1]
		}
		f.Matrix[r] = append(row[:c+1], row[c+2:]...)
	}
	return true
}
