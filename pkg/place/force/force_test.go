package force

import (
	"math"
	"testing"

	"github.com/matzehuels/netgrid/pkg/config"
	"github.com/matzehuels/netgrid/pkg/netlist"
)

// chain builds a top cell with n children connected a0.o -> a1.i -> ...
func chain(t *testing.T, n int) *netlist.Netlist {
	t.Helper()
	b := netlist.NewBuilder()
	top, _ := b.AddCell("top", netlist.KindTop, netlist.NoCell, 0)
	var prev netlist.PortID = netlist.NoPort
	for i := range n {
		c, err := b.AddCell(string(rune('a'+i)), netlist.KindInstance, top, 1)
		if err != nil {
			t.Fatalf("AddCell: %v", err)
		}
		in, _ := b.AddPort(c, "i", netlist.Input, netlist.EdgeNone)
		out, _ := b.AddPort(c, "o", netlist.Output, netlist.EdgeNone)
		if prev != netlist.NoPort {
			if err := b.Connect(prev, in); err != nil {
				t.Fatalf("Connect: %v", err)
			}
		}
		prev = out
	}
	nl, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return nl
}

func coords(nl *netlist.Netlist) [][2]float64 {
	var out [][2]float64
	for _, ch := range nl.Cell(nl.Top()).Children {
		c := nl.Cell(ch)
		out = append(out, [2]float64{c.FX, c.FY})
	}
	return out
}

func TestPlaceSingleChildAtOrigin(t *testing.T) {
	nl := chain(t, 1)
	res := Place(nl, nl.Top(), config.Default())
	c := nl.Cell(nl.Cell(nl.Top()).Children[0])
	if c.FX != 0 || c.FY != 0 {
		t.Errorf("position = (%v, %v), want origin", c.FX, c.FY)
	}
	if res.Epochs != 0 {
		t.Errorf("Epochs = %d, want 0", res.Epochs)
	}
}

func TestPlaceNoChildren(t *testing.T) {
	nl := chain(t, 0)
	if res := Place(nl, nl.Top(), config.Default()); res.Children != 0 {
		t.Errorf("Children = %d, want 0", res.Children)
	}
}

func TestPlaceDeterministic(t *testing.T) {
	cfg := config.Default()
	a, b := chain(t, 5), chain(t, 5)
	Place(a, a.Top(), cfg)
	Place(b, b.Top(), cfg)
	ca, cb := coords(a), coords(b)
	for i := range ca {
		if ca[i] != cb[i] {
			t.Errorf("child %d: %v != %v", i, ca[i], cb[i])
		}
	}
}

func TestPlaceSeparatesChildren(t *testing.T) {
	nl := chain(t, 6)
	res := Place(nl, nl.Top(), config.Default())
	if res.Epochs != config.DefaultEpochs {
		t.Errorf("Epochs = %d, want %d", res.Epochs, config.DefaultEpochs)
	}
	cs := coords(nl)
	for i := range cs {
		for j := i + 1; j < len(cs); j++ {
			d := math.Hypot(cs[i][0]-cs[j][0], cs[i][1]-cs[j][1])
			if d < 1e-9 {
				t.Errorf("children %d and %d coincide at %v", i, j, cs[i])
			}
		}
		if math.IsNaN(cs[i][0]) || math.IsNaN(cs[i][1]) {
			t.Errorf("child %d has NaN coordinates", i)
		}
	}
}

func TestFlattestPrefersHorizontal(t *testing.T) {
	// A vertical segment is flattest after a quarter turn.
	pos := []vec{{0, -1}, {0, 1}}
	a := flattest(pos, 0.01)
	rotate(pos, a)
	if extent := math.Abs(pos[0].y - pos[1].y); extent > 0.02 {
		t.Errorf("vertical extent after rotation = %v, want ~0", extent)
	}
}

func TestSeedDistinct(t *testing.T) {
	pos := seed(9)
	seen := map[vec]bool{}
	for _, p := range pos {
		if seen[p] {
			t.Errorf("duplicate seed %v", p)
		}
		seen[p] = true
		if p.x <= 0 || p.x >= 1.5 || p.y <= 0 || p.y >= 1.5 {
			t.Errorf("seed %v outside the unit square neighbourhood", p)
		}
	}
}
