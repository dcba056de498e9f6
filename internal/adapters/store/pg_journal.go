package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

// PendingChannel is the Postgres NOTIFY channel the reconciler listens on.
const PendingChannel = "pending_schedules"

// PGScheduleJournal persists pending-schedule markers and pings the
// reconciler through NOTIFY so repairs start without waiting for a sweep.
type PGScheduleJournal struct {
	db *sql.DB
}

var _ ports.ScheduleJournal = (*PGScheduleJournal)(nil)

func NewPGScheduleJournal(db *sql.DB) *PGScheduleJournal {
	return &PGScheduleJournal{db: db}
}

func (j *PGScheduleJournal) EnsureSchema(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS pending_schedules (
			event_id   TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

func (j *PGScheduleJournal) MarkPending(ctx context.Context, eventID string, payload ports.SchedulePayload) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO pending_schedules (event_id, payload, created_at) VALUES ($1, $2, NOW())
		ON CONFLICT (event_id) DO UPDATE SET payload = EXCLUDED.payload, created_at = NOW()`,
		eventID, encoded); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", PendingChannel, eventID); err != nil {
		return err
	}
	return tx.Commit()
}

func (j *PGScheduleJournal) ClearPending(ctx context.Context, eventID string) error {
	_, err := j.db.ExecContext(ctx, "DELETE FROM pending_schedules WHERE event_id = $1", eventID)
	return err
}

func (j *PGScheduleJournal) Pending(ctx context.Context, cutoff time.Time, limit int) ([]ports.PendingSchedule, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT event_id, payload, created_at FROM pending_schedules
		WHERE created_at <= $1
		ORDER BY created_at
		LIMIT $2`,
		cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.PendingSchedule
	for rows.Next() {
		var p ports.PendingSchedule
		var payload []byte
		if err := rows.Scan(&p.EventID, &payload, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Payload = payload
		out = append(out, p)
	}
	return out, rows.Err()
}
