// Package config holds the numeric knobs that steer the placement-and-routing
// pipeline.
//
// Every empirically chosen constant of the engine lives here rather than in
// the algorithms: spacing (border, cell border, port pitch), the escalation
// policy (growth factor, maximum escalations, maximum per-net retries), the
// force-directed placement schedule and the renderer scale. [Default] returns
// the values the engine was tuned with; [Load] reads overrides from a TOML or
// YAML file.
//
//	cfg := config.Default()
//	cfg.PortPitch = 3
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/netgrid/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultBorder         = 2
	DefaultCellBorder     = 1
	DefaultPortPitch      = 2
	DefaultGrowthFactor   = 1.5
	DefaultMaxEscalations = 5
	DefaultMaxRetries     = 10
	DefaultScale          = 10.0

	DefaultEpochs        = 100
	DefaultDecay         = 1.0
	DefaultEpsilon       = 1e-6
	DefaultRotationStep  = 0.01
	DefaultMaxGridGrowth = 64
	DefaultAlignOffset   = 2
	DefaultParallelism   = 1
)

// Config contains all tunable parameters of the layout engine.
// The zero value is not usable; start from [Default].
type Config struct {
	// Spacing
	Border     int `json:"border" toml:"border" yaml:"border"`                // Between matrix rows/columns and around the frame
	CellBorder int `json:"cell_border" toml:"cell_border" yaml:"cell_border"` // Padding inside each matrix slot
	PortPitch  int `json:"port_pitch" toml:"port_pitch" yaml:"port_pitch"`    // Grid units per port along a side

	// Escalation
	GrowthFactor   float64 `json:"growth_factor" toml:"growth_factor" yaml:"growth_factor"`
	MaxEscalations int     `json:"max_escalations" toml:"max_escalations" yaml:"max_escalations"`
	MaxRetries     int     `json:"max_retries" toml:"max_retries" yaml:"max_retries"`

	// Rendering
	Scale float64 `json:"scale" toml:"scale" yaml:"scale"` // Visual units per grid unit

	// Force-directed placement
	Epochs       int     `json:"epochs" toml:"epochs" yaml:"epochs"`
	Decay        float64 `json:"decay" toml:"decay" yaml:"decay"`
	Epsilon      float64 `json:"epsilon" toml:"epsilon" yaml:"epsilon"`
	RotationStep float64 `json:"rotation_step" toml:"rotation_step" yaml:"rotation_step"`

	// Grid decomposition and tuning
	MaxGridGrowth int `json:"max_grid_growth" toml:"max_grid_growth" yaml:"max_grid_growth"`
	AlignOffset   int `json:"align_offset" toml:"align_offset" yaml:"align_offset"`

	// Parallelism bounds how many sibling subtrees are laid out at once.
	Parallelism int `json:"parallelism" toml:"parallelism" yaml:"parallelism"`
}

// Default returns the configuration the engine was tuned with.
func Default() Config {
	return Config{
		Border:         DefaultBorder,
		CellBorder:     DefaultCellBorder,
		PortPitch:      DefaultPortPitch,
		GrowthFactor:   DefaultGrowthFactor,
		MaxEscalations: DefaultMaxEscalations,
		MaxRetries:     DefaultMaxRetries,
		Scale:          DefaultScale,
		Epochs:         DefaultEpochs,
		Decay:          DefaultDecay,
		Epsilon:        DefaultEpsilon,
		RotationStep:   DefaultRotationStep,
		MaxGridGrowth:  DefaultMaxGridGrowth,
		AlignOffset:    DefaultAlignOffset,
		Parallelism:    DefaultParallelism,
	}
}

// Validate checks that every knob is within its usable range.
func (c Config) Validate() error {
	switch {
	case c.Border < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "border must be >= 0, got %d", c.Border)
	case c.CellBorder < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "cell_border must be >= 0, got %d", c.CellBorder)
	case c.PortPitch < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "port_pitch must be >= 1, got %d", c.PortPitch)
	case c.GrowthFactor < 1 || math.IsNaN(c.GrowthFactor):
		return errors.New(errors.ErrCodeInvalidConfig, "growth_factor must be >= 1, got %v", c.GrowthFactor)
	case c.MaxEscalations < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "max_escalations must be >= 0, got %d", c.MaxEscalations)
	case c.MaxRetries < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "max_retries must be >= 0, got %d", c.MaxRetries)
	case c.Scale <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "scale must be > 0, got %v", c.Scale)
	case c.Epochs < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "epochs must be >= 0, got %d", c.Epochs)
	case c.Decay < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "decay must be >= 0, got %v", c.Decay)
	case c.Epsilon <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "epsilon must be > 0, got %v", c.Epsilon)
	case c.RotationStep <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "rotation_step must be > 0, got %v", c.RotationStep)
	case c.MaxGridGrowth < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "max_grid_growth must be >= 1, got %d", c.MaxGridGrowth)
	case c.AlignOffset < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "align_offset must be >= 0, got %d", c.AlignOffset)
	case c.Parallelism < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "parallelism must be >= 1, got %d", c.Parallelism)
	}
	return nil
}

// Escalate returns a copy of c with the spacing parameters multiplied by the
// growth factor. Each parameter grows by at least one unit so that a zero
// border still opens up routing room.
func (c Config) Escalate() Config {
	c.Border = grow(c.Border, c.GrowthFactor)
	c.CellBorder = grow(c.CellBorder, c.GrowthFactor)
	c.PortPitch = grow(c.PortPitch, c.GrowthFactor)
	return c
}

func grow(v int, factor float64) int {
	return max(v+1, int(math.Ceil(float64(v)*factor)))
}

// Fingerprint returns a stable JSON encoding of the knobs that influence the
// resulting layout. Parallelism is excluded because it never changes the
// output.
func (c Config) Fingerprint() []byte {
	c.Parallelism = 0
	data, _ := json.Marshal(c)
	return data
}

// =============================================================================
// Loading
// =============================================================================

// Load reads a configuration file and overlays it on [Default]. The format is
// chosen by extension: .toml, .yaml/.yml or .json. Unset keys keep their
// default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// Parse decodes configuration data in the named format on top of [Default]
// and validates the result.
func Parse(data []byte, format string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(format) {
	case "toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode toml")
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode yaml")
		}
	case "json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode json")
		}
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q (must be one of: toml, yaml, json)", format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
