package mocks

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

// MockScheduleJournal implements ports.ScheduleJournal in memory.
type MockScheduleJournal struct {
	mu sync.RWMutex

	markers map[string]ports.PendingSchedule

	MarkPendingCalls  []string
	ClearPendingCalls []string
	PendingCalls      int

	MarkPendingError  error
	ClearPendingError error
	PendingError      error
}

var _ ports.ScheduleJournal = (*MockScheduleJournal)(nil)

func NewMockScheduleJournal() *MockScheduleJournal {
	return &MockScheduleJournal{markers: make(map[string]ports.PendingSchedule)}
}

// SeedMarker installs a pending marker as if a crashed scheduler left it
// behind at the given time.
func (m *MockScheduleJournal) SeedMarker(eventID string, payload ports.SchedulePayload, createdAt time.Time) {
	raw, _ := json.Marshal(payload)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers[eventID] = ports.PendingSchedule{
		EventID:   eventID,
		Payload:   raw,
		CreatedAt: createdAt,
	}
}

// Marker reports whether a pending marker for eventID still exists.
func (m *MockScheduleJournal) Marker(eventID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.markers[eventID]
	return ok
}

func (m *MockScheduleJournal) MarkPending(ctx context.Context, eventID string, payload ports.SchedulePayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MarkPendingCalls = append(m.MarkPendingCalls, eventID)

	if m.MarkPendingError != nil {
		return m.MarkPendingError
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	m.markers[eventID] = ports.PendingSchedule{
		EventID:   eventID,
		Payload:   raw,
		CreatedAt: time.Now(),
	}
	return nil
}

func (m *MockScheduleJournal) ClearPending(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ClearPendingCalls = append(m.ClearPendingCalls, eventID)

	if m.ClearPendingError != nil {
		return m.ClearPendingError
	}
	delete(m.markers, eventID)
	return nil
}

func (m *MockScheduleJournal) Pending(ctx context.Context, cutoff time.Time, limit int) ([]ports.PendingSchedule, error) {
	m.mu.Lock()
	m.PendingCalls++
	m.mu.Unlock()

	if m.PendingError != nil {
		return nil, m.PendingError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ports.PendingSchedule, 0, len(m.markers))
	for _, marker := range m.markers {
		if marker.CreatedAt.After(cutoff) {
			continue
		}
		out = append(out, marker)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
