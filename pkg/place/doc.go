// Package place groups the placement stages run for every frame before
// routing.
//
// The stages run in order and each one reads the geometry left by the
// previous stage:
//
//   - [force]: continuous force-directed coordinates for the children
//   - [grid]: decomposition of those coordinates into a sparse matrix
//   - [sides]: side assignment for child ports and boundary ports
//   - [size]: per-kind block sizes and cross-kind normalization
//   - [tune]: integer frame geometry, pin positions and alignment
//
// Sizing and tuning are re-run with wider spacing whenever routing fails;
// force placement, grid decomposition and side assignment run once.
//
// [force]: github.com/matzehuels/netgrid/pkg/place/force
// [grid]: github.com/matzehuels/netgrid/pkg/place/grid
// [sides]: github.com/matzehuels/netgrid/pkg/place/sides
// [size]: github.com/matzehuels/netgrid/pkg/place/size
// [tune]: github.com/matzehuels/netgrid/pkg/place/tune
package place
