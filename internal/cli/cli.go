// Package cli implements the netgrid command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/netgrid/pkg/buildinfo"
	"github.com/matzehuels/netgrid/pkg/cache"
	"github.com/matzehuels/netgrid/pkg/config"
	"github.com/matzehuels/netgrid/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "netgrid"

	// redisPrefix namespaces netgrid keys in a shared Redis instance.
	redisPrefix = "netgrid:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Netgrid places and routes hierarchical netlists",
		Long:         `Netgrid lays out hierarchical netlists on a tile grid: cells are placed, sized and wired with A* routing, recursively from the top cell down.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// versionCommand prints build information.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheOptions selects the cache backend for a command.
type cacheOptions struct {
	noCache  bool
	redisURL string
}

func (o *cacheOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&o.redisURL, "redis", os.Getenv("NETGRID_REDIS_URL"), "cache in Redis instead of on disk (redis:// URL)")
}

// newRunner creates a pipeline runner for CLI use. Keys are scoped by the
// build version so that engines of different releases sharing one Redis
// never read each other's layouts.
func (c *CLI) newRunner(ctx context.Context, opts cacheOptions) (*pipeline.Runner, error) {
	backend, err := c.newCache(ctx, opts)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	return pipeline.NewRunner(backend, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, opts cacheOptions) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, opts.redisURL, redisPrefix)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache", "url", opts.redisURL)
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/netgrid/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// configFlags are the engine knobs exposed on the command line. Flags that
// were set override values read from --config.
type configFlags struct {
	path string
	cfg  config.Config
}

func (f *configFlags) register(cmd *cobra.Command) {
	f.cfg = config.Default()
	fs := cmd.Flags()
	fs.StringVar(&f.path, "config", "", "engine configuration file (.toml, .yaml or .json)")
	fs.IntVar(&f.cfg.Border, "border", f.cfg.Border, "spacing between matrix rows/columns")
	fs.IntVar(&f.cfg.CellBorder, "cell-border", f.cfg.CellBorder, "padding inside each matrix slot")
	fs.IntVar(&f.cfg.PortPitch, "port-pitch", f.cfg.PortPitch, "grid units per port along a side")
	fs.IntVar(&f.cfg.MaxEscalations, "max-escalations", f.cfg.MaxEscalations, "spacing escalations before a frame fails")
	fs.IntVar(&f.cfg.MaxRetries, "max-retries", f.cfg.MaxRetries, "reordered routing attempts per escalation")
	fs.Float64Var(&f.cfg.Scale, "scale", f.cfg.Scale, "drawing units per grid unit")
	fs.IntVar(&f.cfg.Parallelism, "parallelism", f.cfg.Parallelism, "sibling cells laid out concurrently")
}

// resolve loads the config file, if any, and reapplies explicitly set flags.
func (f *configFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	if f.path == "" {
		return f.cfg, f.cfg.Validate()
	}
	cfg, err := config.Load(f.path)
	if err != nil {
		return config.Config{}, err
	}
	fs := cmd.Flags()
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("border", func() { cfg.Border = f.cfg.Border })
	set("cell-border", func() { cfg.CellBorder = f.cfg.CellBorder })
	set("port-pitch", func() { cfg.PortPitch = f.cfg.PortPitch })
	set("max-escalations", func() { cfg.MaxEscalations = f.cfg.MaxEscalations })
	set("max-retries", func() { cfg.MaxRetries = f.cfg.MaxRetries })
	set("scale", func() { cfg.Scale = f.cfg.Scale })
	set("parallelism", func() { cfg.Parallelism = f.cfg.Parallelism })
	return cfg, cfg.Validate()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
