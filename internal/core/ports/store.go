package ports

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound reports that a path has no value. Absent paths are a valid
// empty state for most readers, not a failure.
var ErrNotFound = errors.New("path not found")

// TreeStore is the narrow key-path interface onto the hierarchical data
// store. Paths are slash-separated, e.g. "roles", "users/u1",
// "coreTasks/1712/u1/ROLE_USHER/before/t1".
type TreeStore interface {
	// Read returns the raw value at path, or ErrNotFound.
	Read(ctx context.Context, path string) (json.RawMessage, error)

	// Write fully replaces the value at path.
	Write(ctx context.Context, path string, value any) error

	// Patch merges fields into the value at path. Field keys may themselves
	// be slash paths ("logins/lastLogin") and are set individually.
	Patch(ctx context.Context, path string, fields map[string]any) error

	// Query scans a top-level collection ordered by a field. When equals is
	// non-nil only entries whose field matches are returned.
	Query(ctx context.Context, collection, orderBy string, equals *string) (map[string]json.RawMessage, error)
}
