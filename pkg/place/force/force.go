// Package force computes a force-directed arrangement of the children of a
// frame.
//
// Children repel each other and adjacent children (sharing nets) attract.
// The result only guides the grid decomposition: it fixes which children
// end up left of, right of, above or below each other, not their final
// coordinates.
package force

import (
	"math"

	"github.com/matzehuels/netgrid/pkg/config"
	"github.com/matzehuels/netgrid/pkg/netlist"
)

// Result summarizes a placement run.
type Result struct {
	Children int
	Epochs   int
	Angle    float64 // rotation applied after convergence, in radians
}

type vec struct{ x, y float64 }

// Place writes force-directed coordinates (Cell.FX, Cell.FY) for every child
// of frame. The outcome depends only on the netlist and cfg.
func Place(nl *netlist.Netlist, frame netlist.CellID, cfg config.Config) Result {
	children := nl.Cell(frame).Children
	n := len(children)
	res := Result{Children: n}
	switch n {
	case 0:
		return res
	case 1:
		c := nl.Cell(children[0])
		c.FX, c.FY = 0, 0
		return res
	}

	pos := seed(n)
	adj := nl.Adjacency(frame)
	k := math.Sqrt(1 / float64(n))

	disp := make([]vec, n)
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		temp := math.Exp(-cfg.Decay * float64(epoch))
		for i := range pos {
			var f vec
			for j := range pos {
				if i == j {
					continue
				}
				ux, uy, d := direction(pos[i], pos[j], i, j, cfg.Epsilon)
				rep := k / d
				f.x += ux * rep
				f.y += uy * rep
				if w := adj[i][j]; w > 0 {
					att := k * d * d * float64(w)
					f.x -= ux * att
					f.y -= uy * att
				}
			}
			disp[i] = vec{clamp(f.x*temp, -1, 1), clamp(f.y*temp, -1, 1)}
		}
		for i := range pos {
			pos[i].x += disp[i].x
			pos[i].y += disp[i].y
		}
		res.Epochs++
	}

	recenter(pos)
	res.Angle = flattest(pos, cfg.RotationStep)
	rotate(pos, res.Angle)

	for i, ch := range children {
		c := nl.Cell(ch)
		c.FX, c.FY = pos[i].x, pos[i].y
	}
	return res
}

// seed lays children out on a grid inside the unit square, skewed along the
// diagonal so that no two children share a row or column.
func seed(n int) []vec {
	side := int(math.Ceil(math.Sqrt(float64(n))))
	skew := 1 / (4 * float64(n) * float64(side))
	pos := make([]vec, n)
	for i := range pos {
		pos[i] = vec{
			x: (float64(i%side)+0.5)/float64(side) + float64(i)*skew,
			y: (float64(i/side)+0.5)/float64(side) + float64(i)*skew,
		}
	}
	return pos
}

// direction returns the unit vector from b to a and their distance, never
// less than eps. Coincident points are pushed apart along x by index.
func direction(a, b vec, i, j int, eps float64) (ux, uy, d float64) {
	dx, dy := a.x-b.x, a.y-b.y
	d = math.Hypot(dx, dy)
	if d < eps {
		if i < j {
			return -1, 0, eps
		}
		return 1, 0, eps
	}
	return dx / d, dy / d, d
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Bounds returns the bounding box of the children's force coordinates.
func Bounds(nl *netlist.Netlist, frame netlist.CellID) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, ch := range nl.Cell(frame).Children {
		c := nl.Cell(ch)
		minX, maxX = math.Min(minX, c.FX), math.Max(maxX, c.FX)
		minY, maxY = math.Min(minY, c.FY), math.Max(maxY, c.FY)
	}
	return
}

func recenter(pos []vec) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pos {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	for i := range pos {
		pos[i].x -= cx
		pos[i].y -= cy
	}
}

// flattest scans rotation angles in [0, 2π) and returns the first one that
// minimizes the vertical extent of pos.
func flattest(pos []vec, step float64) float64 {
	best, bestExtent := 0.0, math.Inf(1)
	for a := 0.0; a < 2*math.Pi; a += step {
		sin, cos := math.Sincos(a)
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, p := range pos {
			y := p.x*sin + p.y*cos
			lo, hi = math.Min(lo, y), math.Max(hi, y)
		}
		if extent := hi - lo; extent < bestExtent-1e-12 {
			best, bestExtent = a, extent
		}
	}
	return best
}

func rotate(pos []vec, a float64) {
	sin, cos := math.Sincos(a)
	for i, p := range pos {
		pos[i] = vec{p.x*cos - p.y*sin, p.x*sin + p.y*cos}
	}
}
