// Package store adapts the hierarchical key-path interface onto Postgres.
// Each top-level record is one row (collection, key, jsonb value); deeper
// path segments descend into the document with jsonb operators.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

type PGTreeStore struct {
	db *sql.DB
}

var _ ports.TreeStore = (*PGTreeStore)(nil)

func NewPGTreeStore(db *sql.DB) *PGTreeStore {
	return &PGTreeStore{db: db}
}

// EnsureSchema creates the node table when missing.
func (s *PGTreeStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tree_nodes (
			collection TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      JSONB NOT NULL,
			PRIMARY KEY (collection, key)
		)`)
	return err
}

func splitPath(path string) ([]string, error) {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return nil, fmt.Errorf("empty path %q", path)
	}
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("empty segment in path %q", path)
		}
	}
	return segs, nil
}

func (s *PGTreeStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	switch len(segs) {
	case 1:
		return s.readCollection(ctx, segs[0])
	case 2:
		var value []byte
		err := s.db.QueryRowContext(ctx,
			"SELECT value FROM tree_nodes WHERE collection = $1 AND key = $2",
			segs[0], segs[1],
		).Scan(&value)
		if err == sql.ErrNoRows {
			return nil, ports.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return value, nil
	default:
		var value []byte
		err := s.db.QueryRowContext(ctx,
			"SELECT value #> $3 FROM tree_nodes WHERE collection = $1 AND key = $2",
			segs[0], segs[1], pq.Array(segs[2:]),
		).Scan(&value)
		if err == sql.ErrNoRows {
			return nil, ports.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, ports.ErrNotFound
		}
		return value, nil
	}
}

func (s *PGTreeStore) readCollection(ctx context.Context, collection string) (json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, value FROM tree_nodes WHERE collection = $1", collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		entries[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ports.ErrNotFound
	}
	return json.Marshal(entries)
}

func (s *PGTreeStore) Write(ctx context.Context, path string, value any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}

	switch len(segs) {
	case 1:
		return s.replaceCollection(ctx, segs[0], encoded)
	case 2:
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO tree_nodes (collection, key, value) VALUES ($1, $2, $3)
			ON CONFLICT (collection, key) DO UPDATE SET value = EXCLUDED.value`,
			segs[0], segs[1], encoded)
		return err
	default:
		res, err := s.db.ExecContext(ctx,
			"UPDATE tree_nodes SET value = jsonb_set(value, $3, $4::jsonb, true) WHERE collection = $1 AND key = $2",
			segs[0], segs[1], pq.Array(segs[2:]), encoded)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ports.ErrNotFound
		}
		return nil
	}
}

func (s *PGTreeStore) replaceCollection(ctx context.Context, collection string, encoded []byte) error {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &entries); err != nil {
		return fmt.Errorf("collection write requires an object: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tree_nodes WHERE collection = $1", collection); err != nil {
		return err
	}
	for key, value := range entries {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO tree_nodes (collection, key, value) VALUES ($1, $2, $3)",
			collection, key, []byte(value)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Patch merges fields into a record. Field keys may be slash paths; each is
// set individually inside one transaction, creating intermediate objects on
// the way down.
func (s *PGTreeStore) Patch(ctx context.Context, path string, fields map[string]any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) < 2 {
		return fmt.Errorf("patch needs a record path, got %q", path)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tree_nodes (collection, key, value) VALUES ($1, $2, '{}'::jsonb)
		ON CONFLICT (collection, key) DO NOTHING`,
		segs[0], segs[1]); err != nil {
		return err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, field := range keys {
		sub, err := splitPath(field)
		if err != nil {
			return err
		}
		full := append(append([]string{}, segs[2:]...), sub...)

		// jsonb_set only creates the leaf key, so missing parents are
		// materialized first.
		for i := 1; i < len(full); i++ {
			if _, err := tx.ExecContext(ctx, `
				UPDATE tree_nodes SET value = jsonb_set(value, $3, '{}'::jsonb, true)
				WHERE collection = $1 AND key = $2 AND value #> $3 IS NULL`,
				segs[0], segs[1], pq.Array(full[:i])); err != nil {
				return err
			}
		}

		encoded, err := json.Marshal(fields[field])
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE tree_nodes SET value = jsonb_set(value, $3, $4::jsonb, true) WHERE collection = $1 AND key = $2",
			segs[0], segs[1], pq.Array(full), encoded); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Query scans one collection ordered by a field. jsonb ordering keeps
// numeric fields numeric.
func (s *PGTreeStore) Query(ctx context.Context, collection, orderBy string, equals *string) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value FROM tree_nodes
		WHERE collection = $1 AND ($3::text IS NULL OR value->>$2 = $3)
		ORDER BY value->$2`,
		collection, orderBy, equals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}
