// Package pipeline provides the load → layout → render pipeline for netgrid.
//
// The CLI and the HTTP API both run netlists through this package, so they
// share defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read and validate a netlist (file or inline JSON)
//  2. Layout: place and route every frame with [layout.Engine]
//  3. Render: produce output in the requested formats (JSON, SVG, PNG,
//     PDF, text, DOT)
//
// Layouts are deterministic, so stage 2 and 3 results are cached by content
// hash; see [Runner].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    NetlistPath: "design.json",
//	    Formats:     []string{"svg", "json"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// [layout.Engine]: github.com/matzehuels/netgrid/pkg/layout.Engine
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netgrid/pkg/cache"
	"github.com/matzehuels/netgrid/pkg/config"
	"github.com/matzehuels/netgrid/pkg/errors"
	"github.com/matzehuels/netgrid/pkg/graph"
	"github.com/matzehuels/netgrid/pkg/netlist"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatText = "text"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatText: true,
	FormatDOT:  true,
}

// DefaultPNGScale is the rasterization factor for PNG output.
const DefaultPNGScale = 2.0

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options: exactly one source.
	Netlist     *graph.Netlist `json:"netlist,omitempty"`
	NetlistPath string         `json:"-"`

	// Layout options. A zero Config is replaced by config.Default().
	Config  config.Config `json:"config"`
	Refresh bool          `json:"refresh,omitempty"` // Ignore cached layouts

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Frame    string   `json:"frame,omitempty"` // Cell path to draw; empty = top
	Grid     bool     `json:"grid,omitempty"`  // Draw the tile grid in SVG output
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string

	Netlist     *netlist.Netlist
	NetlistHash string

	Layout    graph.Layout
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CellCount   int
	PortCount   int
	NetCount    int
	FrameCount  int
	Escalations int
	Retries     int
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: json, svg, png, pdf, text, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that exactly one netlist source is set.
func (o *Options) ValidateForLoad() error {
	switch {
	case o.Netlist == nil && o.NetlistPath == "":
		return errors.New(errors.ErrCodeInvalidInput, "netlist or netlist path is required")
	case o.Netlist != nil && o.NetlistPath != "":
		return errors.New(errors.ErrCodeInvalidInput, "netlist and netlist path are mutually exclusive")
	}
	o.setLogger()
	return nil
}

// ValidateForLayout applies the default configuration and validates it.
func (o *Options) ValidateForLayout() error {
	if o.Config == (config.Config{}) {
		o.Config = config.Default()
	}
	o.setLogger()
	return o.Config.Validate()
}

// ValidateForRender applies render defaults and validates the formats and
// the frame path.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	o.setLogger()
	if o.Frame != "" {
		if err := errors.ValidatePath(o.Frame); err != nil {
			return err
		}
	}
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Config: o.Config.Fingerprint()}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	frame := o.Frame
	if format == FormatJSON {
		frame = ""
	}
	opts := cache.ArtifactKeyOpts{Format: format, Frame: frame}
	switch {
	case o.Grid && (format == FormatSVG || format == FormatPNG || format == FormatPDF):
		opts.Format += "+grid"
	case o.Detailed && format == FormatDOT:
		opts.Format += "+detailed"
	}
	return opts
}

// String summarizes the options for logs.
func (o *Options) String() string {
	src := o.NetlistPath
	if src == "" {
		src = "inline"
	}
	return fmt.Sprintf("netlist=%s formats=%v frame=%q", src, o.Formats, o.Frame)
}
