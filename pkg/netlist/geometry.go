package netlist

import "fmt"

// Side is the edge of a cell a port is attached to. Grid y grows downward.
type Side int

const (
	SideNone Side = iota
	Left
	Up
	Right
	Down
)

// Sides lists the four assignable sides in index order (see [Side.Index]).
var Sides = [4]Side{Left, Up, Right, Down}

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	}
	return "none"
}

// ParseSide converts a side name as produced by [Side.String].
func ParseSide(s string) (Side, error) {
	for _, side := range Sides {
		if side.String() == s {
			return side, nil
		}
	}
	if s == "none" || s == "" {
		return SideNone, nil
	}
	return SideNone, fmt.Errorf("unknown side %q", s)
}

// Index returns 0..3 for an assigned side. It panics for SideNone.
func (s Side) Index() int {
	if s == SideNone {
		panic("netlist: index of unassigned side")
	}
	return int(s) - 1
}

// Opposite returns the side facing s.
func (s Side) Opposite() Side {
	switch s {
	case Left:
		return Right
	case Right:
		return Left
	case Up:
		return Down
	case Down:
		return Up
	}
	return SideNone
}

// Horizontal reports whether a pin on this side faces along the x axis.
// Left and right pins are spread vertically.
func (s Side) Horizontal() bool { return s == Left || s == Right }

// Delta returns the outward unit vector of the side.
func (s Side) Delta() (dx, dy int) {
	switch s {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	}
	return 0, 0
}

// Dir returns the wire direction bit pointing from a tile toward this side.
func (s Side) Dir() Dir {
	switch s {
	case Left:
		return DirLeft
	case Up:
		return DirUp
	case Right:
		return DirRight
	case Down:
		return DirDown
	}
	return 0
}

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy int) Point { return Point{p.X + dx, p.Y + dy} }

// Manhattan returns the L1 distance between p and q.
func (p Point) Manhattan(q Point) int { return abs(p.X-q.X) + abs(p.Y-q.Y) }

// Adjacent reports whether p and q are grid neighbours.
func (p Point) Adjacent(q Point) bool { return p.Manhattan(q) == 1 }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Rect is an integer rectangle on the grid. A cell occupies the tiles
// [X, X+W) × [Y, Y+H).
type Rect struct {
	X, Y, W, H int
}

// Right returns the first column past the rectangle.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the first row past the rectangle.
func (r Rect) Bottom() int { return r.Y + r.H }

// Contains reports whether the tile (x, y) is covered by r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Overlaps reports whether r and o share at least one tile.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Within reports whether r lies fully inside a w×h grid.
func (r Rect) Within(w, h int) bool {
	return r.X >= 0 && r.Y >= 0 && r.Right() <= w && r.Bottom() <= h
}

// Pin is the placement of a port on one side of a rectangle.
//
// For a child's port (outer pin) X/Y is the boundary tile of the child's
// block the port is drawn on; for a frame's own port (inner pin) X/Y lies
// one unit outside the frame's grid. Offset is the distance from the start
// of the side (top for left/right, left for up/down).
type Pin struct {
	Side   Side
	Offset int
	X, Y   int
}

// Point returns the pin coordinate.
func (p Pin) Point() Point { return Point{p.X, p.Y} }

// PlaceOn recomputes X/Y for a pin on the outline of block.
func (p *Pin) PlaceOn(block Rect) {
	switch p.Side {
	case Left:
		p.X, p.Y = block.X, block.Y+p.Offset
	case Right:
		p.X, p.Y = block.Right()-1, block.Y+p.Offset
	case Up:
		p.X, p.Y = block.X+p.Offset, block.Y
	case Down:
		p.X, p.Y = block.X+p.Offset, block.Bottom()-1
	}
}

// PlaceOutside recomputes X/Y for a boundary pin of a w×h frame. The pin
// sits one unit outside the grid on its side.
func (p *Pin) PlaceOutside(w, h int) {
	switch p.Side {
	case Left:
		p.X, p.Y = -1, p.Offset
	case Right:
		p.X, p.Y = w, p.Offset
	case Up:
		p.X, p.Y = p.Offset, -1
	case Down:
		p.X, p.Y = p.Offset, h
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
