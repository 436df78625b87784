package netlist

import "strings"

// Dir is a bitmask of the sides of a tile a wire segment leaves through.
type Dir uint8

const (
	DirLeft Dir = 1 << iota
	DirUp
	DirRight
	DirDown
)

const (
	// DirHorizontal is a straight wire along the x axis.
	DirHorizontal = DirLeft | DirRight
	// DirVertical is a straight wire along the y axis.
	DirVertical = DirUp | DirDown
)

// DirBetween returns the direction bit pointing from a to its neighbour b.
func DirBetween(a, b Point) Dir {
	switch {
	case b.X < a.X:
		return DirLeft
	case b.X > a.X:
		return DirRight
	case b.Y < a.Y:
		return DirUp
	case b.Y > a.Y:
		return DirDown
	}
	return 0
}

// Opposite mirrors every bit of d.
func (d Dir) Opposite() Dir {
	var o Dir
	if d&DirLeft != 0 {
		o |= DirRight
	}
	if d&DirRight != 0 {
		o |= DirLeft
	}
	if d&DirUp != 0 {
		o |= DirDown
	}
	if d&DirDown != 0 {
		o |= DirUp
	}
	return o
}

// Count returns the number of set direction bits.
func (d Dir) Count() int {
	n := 0
	for b := DirLeft; b <= DirDown; b <<= 1 {
		if d&b != 0 {
			n++
		}
	}
	return n
}

// IsBend reports whether d joins exactly one horizontal and one vertical side.
func (d Dir) IsBend() bool {
	return d.Count() == 2 && d&DirHorizontal != 0 && d&DirVertical != 0
}

func (d Dir) String() string {
	if d == 0 {
		return "-"
	}
	var b strings.Builder
	for i, name := range []string{"L", "U", "R", "D"} {
		if d&(1<<i) != 0 {
			b.WriteString(name)
		}
	}
	return b.String()
}

// Segment is the part of one routed pair passing through a tile.
type Segment struct {
	Net      NetID
	From, To PortID
	Dirs     Dir
}

// Tile is one routing-grid unit. An occupied tile (Cell != NoCell) never
// carries segments.
type Tile struct {
	Cell     CellID
	Segments []Segment
	// Ports whose access point is this tile.
	Ports []PortID

	// Rendering hints filled in after routing.
	Bend     bool
	Crossing bool
	Junction bool
}

// Occupied reports whether a cell covers the tile.
func (t *Tile) Occupied() bool { return t.Cell != NoCell }

// Mask returns the union of all segment directions on the tile.
func (t *Tile) Mask() Dir {
	var m Dir
	for _, s := range t.Segments {
		m |= s.Dirs
	}
	return m
}

// NetMask returns the union of directions of segments belonging to net.
func (t *Tile) NetMask(net NetID) Dir {
	var m Dir
	for _, s := range t.Segments {
		if s.Net == net {
			m |= s.Dirs
		}
	}
	return m
}

// ForeignMask returns the union of directions of segments of other nets.
func (t *Tile) ForeignMask(net NetID) Dir {
	var m Dir
	for _, s := range t.Segments {
		if s.Net != net {
			m |= s.Dirs
		}
	}
	return m
}

// ForeignNets counts distinct nets other than net on the tile.
func (t *Tile) ForeignNets(net NetID) int {
	seen := make(map[NetID]bool, len(t.Segments))
	for _, s := range t.Segments {
		if s.Net != net {
			seen[s.Net] = true
		}
	}
	return len(seen)
}

// Route is one routed (source, target) pair of a net. Path runs from the
// source's access tile to the target's access tile.
type Route struct {
	Net      NetID
	From, To PortID
	Path     []Point
}

// Frame is the grid a cell lays its children out in.
type Frame struct {
	// Matrix holds child handles by [row][column]; NoCell marks empty slots.
	Matrix  [][]CellID
	Heights []int // per matrix row
	Widths  []int // per matrix column

	// Width and Height are the interior grid size in tiles.
	Width, Height int

	// Tiles is indexed [y][x].
	Tiles  [][]Tile
	Routes []Route
}

// Rows returns the number of matrix rows.
func (f *Frame) Rows() int { return len(f.Matrix) }

// Cols returns the number of matrix columns.
func (f *Frame) Cols() int {
	if len(f.Matrix) == 0 {
		return 0
	}
	return len(f.Matrix[0])
}

// InBounds reports whether p lies on the interior grid.
func (f *Frame) InBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < f.Width && p.Y < f.Height
}

// Tile returns the tile at p. p must be in bounds.
func (f *Frame) Tile(p Point) *Tile { return &f.Tiles[p.Y][p.X] }

// ResetTiles allocates an empty Width×Height tile grid.
func (f *Frame) ResetTiles() {
	f.Tiles = make([][]Tile, f.Height)
	for y := range f.Tiles {
		row := make([]Tile, f.Width)
		for x := range row {
			row[x].Cell = NoCell
		}
		f.Tiles[y] = row
	}
	f.Routes = nil
}

// Slots maps every child in the matrix to its (column, row) position.
func (f *Frame) Slots() map[CellID]Point {
	out := make(map[CellID]Point)
	for r, row := range f.Matrix {
		for c, id := range row {
			if id != NoCell {
				out[id] = Point{X: c, Y: r}
			}
		}
	}
	return out
}
