// Package nodelink renders a frame's connectivity as a node-link diagram.
//
// # Overview
//
// The schematic shows where things ended up; this package shows what is
// connected to what. Child cells appear as boxes, the frame's own ports as
// ellipses, and each routed pair as an arrow from driver to target. It is
// the quickest way to check a netlist before looking at a layout.
//
// # Usage
//
//	dot := nodelink.ToDOT(frame, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PNG conversion requires librsvg (rsvg-convert).
package nodelink
