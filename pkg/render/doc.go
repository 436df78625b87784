// Package render turns laid-out frames into pictures.
//
// # Overview
//
// Every renderer works on the serialized [graph.Layout], so a cached layout
// can be drawn without rerunning the engine:
//
//   - [schematic]: SVG of a frame's grid with blocks, pins and wires
//   - [text]: ASCII tile map for terminals and debugging
//   - [nodelink]: Graphviz diagram of a frame's connectivity
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := schematic.RenderSVG(frame, layout.Scale)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [graph.Layout]: github.com/matzehuels/netgrid/pkg/graph.Layout
// [schematic]: github.com/matzehuels/netgrid/pkg/render/schematic
// [text]: github.com/matzehuels/netgrid/pkg/render/text
// [nodelink]: github.com/matzehuels/netgrid/pkg/render/nodelink
package render
