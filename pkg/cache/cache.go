// Package cache stores serialized layouts and rendered artifacts.
//
// Layout is deterministic, so a layout is fully identified by the netlist it
// was computed from and the configuration knobs that influence it. The
// [Keyer] derives keys from those two hashes; a [Cache] backend stores the
// bytes.
//
// # Backends
//
//   - [FileCache]: one JSON entry file per key under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (API server, multiple CLIs)
//   - [NullCache]: caching disabled
//
// # Keys
//
// Keys are namespaced by what they hold:
//
//	layout:<sha256(netlist hash, config fingerprint)>
//	artifact:<sha256(layout hash, format, frame)>
//
// A [ScopedKeyer] prefixes every key, which keeps tenants of a shared Redis
// apart.
package cache

import (
	"context"
	"time"
)

// TTLs for the different entry types.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// with ok == false and a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(netlistHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the inputs besides the netlist that change a layout.
type LayoutKeyOpts struct {
	// Config is the engine configuration fingerprint.
	Config []byte `json:"config"`
}

// ArtifactKeyOpts holds the inputs besides the layout that change a
// rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Frame  string `json:"frame,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns the key of a layout.
func (DefaultKeyer) LayoutKey(netlistHash string, opts LayoutKeyOpts) string {
	return digest("layout", netlistHash, opts)
}

// ArtifactKey returns the key of a rendered artifact.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return digest("artifact", layoutHash, opts)
}
