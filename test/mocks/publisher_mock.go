package mocks

import (
	"context"
	"sync"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

// MockSchedulePublisher implements ports.SchedulePublisher and records
// every published event.
type MockSchedulePublisher struct {
	mu sync.Mutex

	Published []ports.ScheduleCreatedEvent

	PublishError error
}

var _ ports.SchedulePublisher = (*MockSchedulePublisher)(nil)

func NewMockSchedulePublisher() *MockSchedulePublisher {
	return &MockSchedulePublisher{}
}

func (m *MockSchedulePublisher) PublishScheduleCreated(ctx context.Context, evt ports.ScheduleCreatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PublishError != nil {
		return m.PublishError
	}
	m.Published = append(m.Published, evt)
	return nil
}
