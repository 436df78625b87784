// Package layout runs the placement and routing pipeline over a whole
// netlist hierarchy.
//
// # Overview
//
// Every cell with children owns a frame: a grid its children are placed in
// and wired across. [Engine.LayoutFrame] lays out one frame:
//
//  1. Force-directed placement of the children
//  2. Grid decomposition and matrix compression
//  3. Side assignment for child and boundary ports
//  4. Sizing and fine placement tuning
//  5. Routing, with per-net retries
//  6. Post-route compression
//
// When routing fails, steps 4 and 5 run again with the spacing grown by
// [config.Config.Escalate], up to MaxEscalations times. Exhausting the
// escalations, or failing to decompose the grid, fails the frame.
//
// # Hierarchy
//
// [Engine.Layout] walks the hierarchy top-down: a frame is finished before
// any of its children's frames start. Sibling subtrees are independent and,
// with Parallelism above one, are laid out concurrently. The outcome does
// not depend on the parallelism.
//
// # Reports
//
// Each frame's outcome is recorded in a [Report]: the states it went
// through, the number of escalations and retries, and the error if it
// failed. A failed frame aborts the layout of the whole netlist.
package layout
