// Package cache provides byte-level caching for rendered export artifacts.
//
// Rendering an outline to SVG or PNG goes through Graphviz and is the
// slowest step of an export. Artifacts are immutable for a given document
// fingerprint and render options, so they cache indefinitely; the key
// scheme in [Keyer] encodes both.
package cache

import (
	"context"
	"time"
)

// Cache stores rendered artifacts as opaque byte blobs.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ExportKeyOpts are the render options that affect artifact bytes.
// Any field change must produce a different key.
type ExportKeyOpts struct {
	Format       string `json:"format"`
	ExpandedOnly bool   `json:"expanded_only"`
	Detailed     bool   `json:"detailed"`
}

// Keyer generates cache keys for export artifacts.
type Keyer interface {
	// ExportKey generates a key for a rendered artifact of the document
	// identified by fingerprint.
	ExportKey(fingerprint string, opts ExportKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ExportKey returns "export:<hash>" where the hash covers the fingerprint
// and every option that affects output bytes.
func (k *DefaultKeyer) ExportKey(fingerprint string, opts ExportKeyOpts) string {
	return hashKey("export", fingerprint, opts)
}
