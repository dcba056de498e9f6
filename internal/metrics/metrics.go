// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SchedulesCreated counts events scheduled through the API.
	SchedulesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_schedules_created_total",
		Help: "Number of events scheduled, task tree included.",
	})

	// SchedulesReconciled counts pending markers re-driven by the reconciler.
	SchedulesReconciled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_schedules_reconciled_total",
		Help: "Number of interrupted schedules repaired by the reconciler.",
	})

	// TasksCompleted counts task instances marked done by volunteers.
	TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_tasks_completed_total",
		Help: "Number of task instances completed.",
	})

	// RoleResolutions counts access-filter lookups by outcome source:
	// cache, uid, email or guest.
	RoleResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_role_resolutions_total",
		Help: "Role resolutions by lookup source.",
	}, []string{"source"})
)
