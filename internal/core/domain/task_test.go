package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

// TestPhaseTasks_OrderPreserved verifies that the checklist serializes in
// insertion order, not Go's randomized map order.
func TestPhaseTasks_OrderPreserved(t *testing.T) {
	p := NewPhaseTasks()
	p.Set("t2", TaskInstance{Order: 1})
	p.Set("t1", TaskInstance{Order: 2})
	p.Set("t5", TaskInstance{Order: 3})

	want := []string{"t2", "t1", "t5"}
	if got := p.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected ids %v, got %v", want, got)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded := NewPhaseTasks()
	if err := json.Unmarshal(raw, decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := decoded.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("round trip reordered keys: expected %v, got %v", want, got)
	}

	inst, ok := decoded.Get("t1")
	if !ok {
		t.Fatal("expected t1 to survive the round trip")
	}
	if inst.Order != 2 {
		t.Errorf("expected order 2, got %d", inst.Order)
	}
}

// TestPhaseTasks_SetReplaceKeepsPosition verifies that overwriting an id
// does not move it to the back.
func TestPhaseTasks_SetReplaceKeepsPosition(t *testing.T) {
	p := NewPhaseTasks()
	p.Set("a", TaskInstance{Order: 1})
	p.Set("b", TaskInstance{Order: 2})
	p.Set("a", TaskInstance{Order: 1, Status: true, CompletedAt: 1700000000000})

	if got := p.IDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("replace moved key: got %v", got)
	}
	inst, _ := p.Get("a")
	if !inst.Status {
		t.Error("expected replaced instance to be completed")
	}
	if p.Len() != 2 {
		t.Errorf("expected len 2, got %d", p.Len())
	}
}

func TestPhaseTasks_NilSafety(t *testing.T) {
	var p *PhaseTasks
	if p.Len() != 0 {
		t.Error("nil PhaseTasks should have length 0")
	}
	if ids := p.IDs(); ids != nil {
		t.Errorf("nil PhaseTasks should yield no ids, got %v", ids)
	}
}

func TestPhaseTasks_UnmarshalRejectsNonObject(t *testing.T) {
	p := NewPhaseTasks()
	if err := json.Unmarshal([]byte(`["t1"]`), p); err == nil {
		t.Error("expected error decoding an array into PhaseTasks")
	}
}
