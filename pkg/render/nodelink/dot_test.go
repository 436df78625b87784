package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/netgrid/pkg/graph"
)

func frame() graph.Frame {
	return graph.Frame{
		Cell: "top",
		Blocks: []graph.Block{
			{Name: "alu", Kind: "alu"},
			{Name: "u.reg", Kind: "register"},
		},
		Pins: []graph.Pin{
			{Port: "top.x", Boundary: true},
			{Port: "top/alu.a"},
			{Port: "top/alu.z"},
			{Port: "top/u.reg.d"},
		},
		Routes: []graph.Route{
			{From: "top.x", To: "top/alu.a"},
			{From: "top/alu.z", To: "top/u.reg.d"},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(frame(), Options{})

	for _, want := range []string{
		`"port:x" [label="x", shape=ellipse`,
		`"alu" [label="alu"];`,
		`"u.reg" [label="u.reg"];`,
		`"port:x" -> "alu";`,
		`"alu" -> "u.reg";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "taillabel") {
		t.Error("plain DOT should not label edges")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(frame(), Options{Detailed: true})

	if !strings.Contains(dot, `"alu" [label="alu\nalu"];`) {
		t.Errorf("detailed label missing kind:\n%s", dot)
	}
	if !strings.Contains(dot, `"alu" -> "u.reg" [taillabel="z", headlabel="d"];`) {
		t.Errorf("detailed edge missing port names:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20">`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() changed an svg without viewBox: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(frame(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") || !strings.Contains(string(svg), "u.reg") {
		t.Errorf("RenderSVG output is not the frame diagram:\n%s", svg)
	}
}
