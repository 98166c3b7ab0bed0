// Package query defines the analytical event store contract and the
// executors the gateway ships with.
package query

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Executor runs a canonical query text against the event store.
//
// Execute returns every result row or an error; there are no partial
// results. Implementations must be safe for concurrent use.
type Executor interface {
	Execute(ctx context.Context, query string) ([]Row, error)
}

// Fingerprint returns a short stable hash of a canonical query text for
// logs and metrics. Result reuse keys on the full text; the fingerprint
// only keeps raw SQL out of log lines.
func Fingerprint(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:6])
}
