// Package store provides path-addressed document persistence.  Documents
// are JSON values stored under hierarchical paths such as
// events/{eventId} or registrations/{userId}/{eventId}.  The Store
// interface mirrors the small read/write/update/remove surface the
// application core needs; implementations include the default MySQL
// store and an in-memory store for tests.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound is returned by Get when no document exists at the path.
// Absence is a normal outcome for several entities (event bans in
// particular), so callers are expected to branch on it with errors.Is.
var ErrNotFound = errors.New("store: document not found")

// ErrUnavailable wraps any underlying driver or I/O failure.  The core
// never lets a raw driver error escape: every operation that touches the
// backend returns an error matching ErrUnavailable instead.
var ErrUnavailable = errors.New("store: unavailable")

// Store is the keyed document store consumed by the ledger, ban registry
// and attendance tracker.  Paths use forward slashes and never start or
// end with one.
type Store interface {
	// Get unmarshals the document at path into out.  Returns ErrNotFound
	// when the document does not exist.
	Get(ctx context.Context, path string, out any) error

	// Set marshals value and writes it at path, overwriting any existing
	// document.
	Set(ctx context.Context, path string, value any) error

	// Update merges the given fields into the document at path.  When no
	// document exists, one is created containing only the fields.  Nested
	// values replace wholesale; there is no deep merge.
	Update(ctx context.Context, path string, fields map[string]any) error

	// Remove deletes the document at path.  Removing an absent document
	// is not an error.
	Remove(ctx context.Context, path string) error

	// GenerateID returns a fresh child key for the given parent path.
	GenerateID(parent string) string

	// Scan returns every document stored under prefix, keyed by the path
	// relative to the prefix (e.g. Scan("registrations") yields keys of
	// the form "{userId}/{eventId}").  An empty map means no documents.
	Scan(ctx context.Context, prefix string) (map[string]json.RawMessage, error)

	// Close releases the underlying connection.
	Close() error
}
