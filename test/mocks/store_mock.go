// Package mocks provides mock implementations of port interfaces for testing.
// Services depend on the port interfaces only, so swapping the Postgres-backed
// adapters for these in-memory versions exercises the same code paths without
// any infrastructure.
package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

// MockTreeStore implements ports.TreeStore on an in-memory document map.
// It mirrors the Postgres adapter's path semantics: the first segment is a
// collection, the second a document key, deeper segments descend into the
// document's JSON structure.
type MockTreeStore struct {
	mu sync.RWMutex

	// collection -> key -> decoded document
	data map[string]map[string]any

	// Call tracking for verification
	ReadCalls  []string
	WriteCalls []string
	PatchCalls []string
	QueryCalls []string

	// Error injection for testing error scenarios
	ReadError  error
	WriteError error
	PatchError error
	QueryError error

	// ReadErrors fails reads for specific paths only.
	ReadErrors map[string]error
}

var _ ports.TreeStore = (*MockTreeStore)(nil)

func NewMockTreeStore() *MockTreeStore {
	return &MockTreeStore{
		data:       make(map[string]map[string]any),
		ReadErrors: make(map[string]error),
	}
}

// Seed writes a value at path for test setup, bypassing call tracking and
// error injection. Unlike Write it materializes missing parents, so fixtures
// can seed deep paths directly. It panics on malformed input so fixture bugs
// surface immediately.
func (m *MockTreeStore) Seed(path string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("mock seed %q: %v", path, err))
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		panic(fmt.Sprintf("mock seed %q: %v", path, err))
	}

	segs := splitPath(path)
	switch {
	case len(segs) == 0:
		panic("mock seed: empty path")

	case len(segs) == 1:
		obj, ok := decoded.(map[string]any)
		if !ok {
			panic(fmt.Sprintf("mock seed %q: collection value must be an object", path))
		}
		docs := make(map[string]any, len(obj))
		for k, v := range obj {
			docs[k] = v
		}
		m.data[segs[0]] = docs

	default:
		if m.data[segs[0]] == nil {
			m.data[segs[0]] = make(map[string]any)
		}
		if len(segs) == 2 {
			m.data[segs[0]][segs[1]] = decoded
			return
		}
		doc, ok := m.data[segs[0]][segs[1]].(map[string]any)
		if !ok {
			doc = make(map[string]any)
			m.data[segs[0]][segs[1]] = doc
		}
		setNested(doc, segs[2:], decoded)
	}
}

func (m *MockTreeStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	m.mu.Lock()
	m.ReadCalls = append(m.ReadCalls, path)
	m.mu.Unlock()

	if m.ReadError != nil {
		return nil, m.ReadError
	}
	if err, ok := m.ReadErrors[path]; ok {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, ports.ErrNotFound
	}

	docs, ok := m.data[segs[0]]
	if !ok || len(docs) == 0 {
		return nil, ports.ErrNotFound
	}
	if len(segs) == 1 {
		return json.Marshal(docs)
	}

	doc, ok := docs[segs[1]]
	if !ok {
		return nil, ports.ErrNotFound
	}

	value := doc
	for _, seg := range segs[2:] {
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, ports.ErrNotFound
		}
		value, ok = obj[seg]
		if !ok {
			return nil, ports.ErrNotFound
		}
	}
	return json.Marshal(value)
}

func (m *MockTreeStore) Write(ctx context.Context, path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.WriteCalls = append(m.WriteCalls, path)

	if m.WriteError != nil {
		return m.WriteError
	}
	return m.write(path, value)
}

func (m *MockTreeStore) write(path string, value any) error {
	// Round-trip through JSON so seeded structs and raw messages land in the
	// same decoded shape the store would hold.
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}

	segs := splitPath(path)
	switch {
	case len(segs) == 0:
		return fmt.Errorf("empty path")

	case len(segs) == 1:
		obj, ok := decoded.(map[string]any)
		if !ok {
			return fmt.Errorf("collection write requires an object")
		}
		docs := make(map[string]any, len(obj))
		for k, v := range obj {
			docs[k] = v
		}
		m.data[segs[0]] = docs
		return nil

	case len(segs) == 2:
		if m.data[segs[0]] == nil {
			m.data[segs[0]] = make(map[string]any)
		}
		m.data[segs[0]][segs[1]] = decoded
		return nil

	default:
		docs := m.data[segs[0]]
		if docs == nil {
			return ports.ErrNotFound
		}
		doc, ok := docs[segs[1]].(map[string]any)
		if !ok {
			return ports.ErrNotFound
		}
		setNested(doc, segs[2:], decoded)
		return nil
	}
}

func (m *MockTreeStore) Patch(ctx context.Context, path string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PatchCalls = append(m.PatchCalls, path)

	if m.PatchError != nil {
		return m.PatchError
	}

	segs := splitPath(path)
	if len(segs) < 2 {
		return fmt.Errorf("patch requires a document path")
	}

	if m.data[segs[0]] == nil {
		m.data[segs[0]] = make(map[string]any)
	}
	doc, ok := m.data[segs[0]][segs[1]].(map[string]any)
	if !ok {
		doc = make(map[string]any)
		m.data[segs[0]][segs[1]] = doc
	}

	target := doc
	for _, seg := range segs[2:] {
		next, ok := target[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			target[seg] = next
		}
		target = next
	}

	for field, value := range fields {
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return err
		}
		setNested(target, splitPath(field), decoded)
	}
	return nil
}

func (m *MockTreeStore) Query(ctx context.Context, collection, orderBy string, equals *string) (map[string]json.RawMessage, error) {
	m.mu.Lock()
	m.QueryCalls = append(m.QueryCalls, collection+"?"+orderBy)
	m.mu.Unlock()

	if m.QueryError != nil {
		return nil, m.QueryError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]json.RawMessage)
	for key, doc := range m.data[collection] {
		if equals != nil {
			obj, ok := doc.(map[string]any)
			if !ok {
				continue
			}
			field, ok := obj[orderBy].(string)
			if !ok || field != *equals {
				continue
			}
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		out[key] = raw
	}
	return out, nil
}

// Reset clears all stored data and call tracking.
func (m *MockTreeStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]map[string]any)
	m.ReadCalls = nil
	m.WriteCalls = nil
	m.PatchCalls = nil
	m.QueryCalls = nil
	m.ReadError = nil
	m.WriteError = nil
	m.PatchError = nil
	m.QueryError = nil
	m.ReadErrors = make(map[string]error)
}

func setNested(obj map[string]any, segs []string, value any) {
	for i, seg := range segs {
		if i == len(segs)-1 {
			obj[seg] = value
			return
		}
		next, ok := obj[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			obj[seg] = next
		}
		obj = next
	}
}

func splitPath(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
