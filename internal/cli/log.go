// Package cli implements the netgrid command-line interface.
//
// The CLI is built on cobra and logs through charmbracelet/log. Every command
// that lays out a netlist goes through [pipeline.Runner], so the CLI and the
// HTTP server share validation and caching.
//
// # Commands
//
//   - layout: place and route a netlist and write artifacts
//   - dot: export a frame's connectivity as Graphviz DOT or SVG
//   - view: browse the frames of a layout in the terminal
//   - serve: run the HTTP layout API
//   - cache: manage the layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
//
// [pipeline.Runner]: github.com/matzehuels/netgrid/pkg/pipeline.Runner
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Loaded 12 cells (4ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
