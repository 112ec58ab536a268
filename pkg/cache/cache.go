// Package cache provides key/value storage for resolved model containers.
//
// The pipeline stores encoded containers under keys derived from the input
// path and resolution options. Three backends implement [Cache]:
//
//   - [FileCache]: JSON entries with expiry under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for teams loading the same models
//   - [NullCache]: caching disabled
//
// Entries are advisory. A hit is only used after the pipeline re-verifies the
// digests of every source file recorded in the container.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values.
const (
	// TTLDoc is how long a resolved container stays cached. Staleness is
	// caught by digest verification, so this only bounds disk usage.
	TTLDoc = 7 * 24 * time.Hour

	// TTLArtifact is how long rendered diagrams stay cached. Artifact keys
	// embed the document hash, so entries never go stale.
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache stores opaque byte values by key.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DocKeyOpts are the resolution options that change a resolved document.
type DocKeyOpts struct {
	InferPorts bool   `json:"infer_ports"`
	Version    uint32 `json:"version"`
}

// ArtifactKeyOpts are the render options that change a rendered diagram.
type ArtifactKeyOpts struct {
	System   string `json:"system"`
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// Keyer derives cache keys.
type Keyer interface {
	// DocKey returns the key for the document resolved from root. input
	// identifies the entry point (absolute file or archive path).
	DocKey(input, root string, opts DocKeyOpts) string
	// ArtifactKey returns the key for a diagram rendered from the encoded
	// document with hash docHash.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "doc:<hash>" and "artifact:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocKey implements Keyer.
func (DefaultKeyer) DocKey(input, root string, opts DocKeyOpts) string {
	return hashKey("doc", input, root, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}
