package ports

import (
	"context"
	"encoding/json"
	"time"
)

// PendingSchedule is a persisted marker for an event whose record and task
// tree writes have not both been confirmed yet. The payload carries both
// documents so the reconciler can re-drive the writes without re-deriving
// anything.
type PendingSchedule struct {
	EventID   string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// SchedulePayload is the content of a pending marker.
type SchedulePayload struct {
	Event    json.RawMessage `json:"event"`
	TaskTree json.RawMessage `json:"taskTree"`
}

// ScheduleJournal persists pending-schedule markers. MarkPending must be
// durable before the event writes start; ClearPending runs only after both
// writes succeed.
type ScheduleJournal interface {
	MarkPending(ctx context.Context, eventID string, payload SchedulePayload) error
	ClearPending(ctx context.Context, eventID string) error

	// Pending lists markers created before cutoff, oldest first.
	Pending(ctx context.Context, cutoff time.Time, limit int) ([]PendingSchedule, error)
}
