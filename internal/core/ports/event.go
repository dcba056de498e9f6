package ports

import (
	"context"
)

// ScheduleCreatedEvent announces a newly scheduled service to downstream
// consumers (notifications, analytics).
type ScheduleCreatedEvent struct {
	EventID    string `json:"event_id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Volunteers int    `json:"volunteers"`
}

type SchedulePublisher interface {
	PublishScheduleCreated(ctx context.Context, evt ScheduleCreatedEvent) error
}
