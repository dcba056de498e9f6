package config

import (
	"os"
	"time"
)

// ReconcilerConfig holds configuration for the pending-schedule reconciler.
// This is a minimal config that only includes what the worker needs.
type ReconcilerConfig struct {
	DatabaseURL       string
	RabbitMQURL       string
	ScheduleQueueName string
	PendingAge        time.Duration
}

func LoadReconcilerConfig() *ReconcilerConfig {
	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		panic("DB_CONNECTION_STRING environment variable is required")
	}

	rabbitURL := os.Getenv("RABBITMQ_URL")
	if rabbitURL == "" {
		panic("RABBITMQ_URL environment variable is required")
	}

	queueName := getEnv("SCHEDULE_QUEUE_NAME", "schedules")

	pendingAge := 30 * time.Second
	if raw := os.Getenv("PENDING_AGE"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			pendingAge = parsed
		}
	}

	return &ReconcilerConfig{
		DatabaseURL:       dbURL,
		RabbitMQURL:       rabbitURL,
		ScheduleQueueName: queueName,
		PendingAge:        pendingAge,
	}
}
