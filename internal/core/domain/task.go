package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TaskInstance is a per-user, per-role, per-phase copy of a task template.
// Order is copied from the template at creation time and never changes;
// only Status and CompletedAt mutate, and only when the assigned user
// completes the task. CompletedAt is Unix milliseconds, 0 while incomplete.
type TaskInstance struct {
	Order       int   `json:"order"`
	Status      bool  `json:"status"`
	CompletedAt int64 `json:"completedAt"`
}

// PhaseTasks maps task id -> instance while remembering insertion order,
// so the generated checklist serializes in template order rather than in
// Go's randomized map order.
type PhaseTasks struct {
	ids   []string
	items map[string]TaskInstance
}

func NewPhaseTasks() *PhaseTasks {
	return &PhaseTasks{items: make(map[string]TaskInstance)}
}

// Set inserts or replaces an instance. A replaced id keeps its position.
func (p *PhaseTasks) Set(id string, t TaskInstance) {
	if p.items == nil {
		p.items = make(map[string]TaskInstance)
	}
	if _, ok := p.items[id]; !ok {
		p.ids = append(p.ids, id)
	}
	p.items[id] = t
}

func (p *PhaseTasks) Get(id string) (TaskInstance, bool) {
	t, ok := p.items[id]
	return t, ok
}

func (p *PhaseTasks) Len() int {
	if p == nil {
		return 0
	}
	return len(p.ids)
}

// IDs returns task ids in insertion order.
func (p *PhaseTasks) IDs() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.ids))
	copy(out, p.ids)
	return out
}

// MarshalJSON writes keys in insertion order.
func (p *PhaseTasks) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range p.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(p.items[id])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object token by token so document key order
// survives the round trip.
func (p *PhaseTasks) UnmarshalJSON(data []byte) error {
	p.ids = nil
	p.items = make(map[string]TaskInstance)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("phase tasks: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("phase tasks: expected key, got %v", tok)
		}
		var inst TaskInstance
		if err := dec.Decode(&inst); err != nil {
			return err
		}
		p.Set(id, inst)
	}
	_, err = dec.Token() // closing brace
	return err
}

// RoleTasks is one user's checklist for one role, keyed by phase. A phase
// key is present only when the role's template set had entries for it.
type RoleTasks map[Phase]*PhaseTasks

// TaskTree is the full per-event structure: user id -> role id -> phase ->
// task id -> instance. It is created once, together with the event record,
// and instances are never added or removed afterwards.
type TaskTree map[string]map[string]RoleTasks
