// Package text renders a laid-out frame as a box-drawing tile map for
// terminals.
//
// Each tile becomes one character: block tiles show the block name (then
// '#'), wire tiles a box-drawing glyph joining their directions, and pins
// 'o'. The map includes the one-tile margin that holds boundary pins.
package text

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/netgrid/pkg/graph"
)

// Options configures text rendering.
type Options struct {
	// Color styles blocks, wires and pins with lipgloss.
	Color bool
}

var (
	blockStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	wireStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pinStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

type class uint8

const (
	empty class = iota
	block
	wire
	pin
)

// Render draws f.
func Render(f graph.Frame, opts Options) string {
	w, h := f.Width+2, f.Height+2
	glyphs := make([][]rune, h)
	classes := make([][]class, h)
	for y := range glyphs {
		glyphs[y] = []rune(strings.Repeat(" ", w))
		classes[y] = make([]class, w)
	}
	set := func(x, y int, r rune, c class) {
		x, y = x+1, y+1
		if x >= 0 && y >= 0 && x < w && y < h {
			glyphs[y][x] = r
			classes[y][x] = c
		}
	}

	for _, b := range f.Blocks {
		name := []rune(b.Name)
		for y := b.Y; y < b.Y+b.H; y++ {
			for x := b.X; x < b.X+b.W; x++ {
				r := '#'
				if i := x - b.X; y == b.Y && i < len(name) {
					r = name[i]
				}
				set(x, y, r, block)
			}
		}
	}
	for _, wr := range f.Wires {
		set(wr.X, wr.Y, Glyph(wr.Dirs, wr.Junction || wr.Crossing), wire)
	}
	for _, p := range f.Pins {
		set(p.X, p.Y, 'o', pin)
	}

	var sb strings.Builder
	for y := range glyphs {
		line := renderLine(glyphs[y], classes[y], opts.Color)
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func renderLine(glyphs []rune, classes []class, color bool) string {
	if !color {
		return string(glyphs)
	}
	var sb strings.Builder
	for i, r := range glyphs {
		s := string(r)
		switch classes[i] {
		case block:
			s = blockStyle.Render(s)
		case wire:
			s = wireStyle.Render(s)
		case pin:
			s = pinStyle.Render(s)
		}
		sb.WriteString(s)
	}
	return sb.String()
}

// Glyph returns the box-drawing character for a direction set such as
// "LR" or "UD". cross forces the four-way glyph.
func Glyph(dirs string, cross bool) rune {
	if cross {
		return '┼'
	}
	var l, u, r, d bool
	for _, c := range dirs {
		switch c {
		case 'L':
			l = true
		case 'U':
			u = true
		case 'R':
			r = true
		case 'D':
			d = true
		}
	}
	switch {
	case l && u && r && d:
		return '┼'
	case l && r && d:
		return '┬'
	case l && r && u:
		return '┴'
	case u && d && r:
		return '├'
	case u && d && l:
		return '┤'
	case r && d:
		return '┌'
	case l && d:
		return '┐'
	case r && u:
		return '└'
	case l && u:
		return '┘'
	case u || d:
		if !l && !r {
			return '│'
		}
	}
	return '─'
}
