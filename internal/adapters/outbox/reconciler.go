// Package outbox repairs interrupted schedule dual writes. Scheduling an
// event persists a pending marker before the event record and task tree are
// written; a marker that survives means at least one of the two writes was
// never confirmed, and the reconciler re-drives both from the marker's
// payload.
package outbox

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/store"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/config"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/metrics"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute

	// Repair timeouts
	repairTimeout       = 30 * time.Second
	sweepTimeout        = 60 * time.Second
	periodicSweepPeriod = 90 * time.Second

	// Health check configuration
	healthCheckStaleThreshold = 5 * time.Minute

	// Sweep batch limit
	maxPendingPerSweep = 100
)

// Reconciler listens for pending-schedule notifications and finishes the
// Event + Core Task Tree writes a crashed scheduler left behind.
type Reconciler struct {
	tree      ports.TreeStore
	journal   ports.ScheduleJournal
	publisher ports.SchedulePublisher
	listener  *pq.Listener
	dbURL     string
	dbCB      *gobreaker.CircuitBreaker

	// markers younger than this are likely still mid-flight in the API
	// process and are left alone
	pendingAge time.Duration

	lastProcessed time.Time
	isHealthy     bool
}

func NewReconciler(tree ports.TreeStore, journal ports.ScheduleJournal, publisher ports.SchedulePublisher, dbURL string, pendingAge time.Duration) *Reconciler {
	return &Reconciler{
		tree:          tree,
		journal:       journal,
		publisher:     publisher,
		dbURL:         dbURL,
		dbCB:          config.NewCircuitBreaker("Reconciler-PostgreSQL"),
		pendingAge:    pendingAge,
		lastProcessed: time.Now(),
		isHealthy:     true,
	}
}

// IsHealthy reports whether the worker process is alive (liveness probe).
func (r *Reconciler) IsHealthy() bool {
	return r.isHealthy
}

// IsReady reports whether the worker can process markers (readiness probe).
func (r *Reconciler) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	if time.Since(r.lastProcessed) > healthCheckStaleThreshold {
		return false
	}
	return r.isHealthy
}

// Start blocks until the context is cancelled. A NOTIFY wakes the worker
// immediately; the periodic sweep is the safety net for missed signals.
func (r *Reconciler) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("reconciler: listener error: %v", err)
		}
	}

	r.listener = pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer r.listener.Close()

	if err := r.listener.Listen(store.PendingChannel); err != nil {
		return err
	}

	log.Printf("reconciler: listening on '%s' for notifications...", store.PendingChannel)

	// Repair any backlog left from before this process started.
	if err := r.sweep(ctx); err != nil {
		log.Printf("reconciler: error processing startup backlog: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("reconciler: shutting down...")
			return ctx.Err()

		case notification := <-r.listener.Notify:
			if notification == nil {
				log.Println("reconciler: received nil notification (reconnecting...)")
				r.isHealthy = false
				continue
			}

			log.Printf("reconciler: received notification for event ID: %s", notification.Extra)

			// The marker may belong to a write that is still in flight;
			// wait out the grace period before touching it.
			if err := r.sweepAfter(ctx, r.pendingAge); err != nil {
				log.Printf("reconciler: error processing event %s: %v", notification.Extra, err)
			} else {
				r.lastProcessed = time.Now()
				r.isHealthy = true
			}

		case <-time.After(periodicSweepPeriod):
			go r.listener.Ping()

			if err := r.sweep(ctx); err != nil {
				log.Printf("reconciler: error in periodic sweep: %v", err)
			} else {
				r.lastProcessed = time.Now()
			}
		}
	}
}

func (r *Reconciler) sweep(ctx context.Context) error {
	return r.sweepAfter(ctx, 0)
}

// sweepAfter waits for the grace period, then repairs every marker older
// than pendingAge.
func (r *Reconciler) sweepAfter(ctx context.Context, wait time.Duration) error {
	if wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	pending, err := r.listPending(ctx)
	if err != nil {
		return err
	}

	for _, marker := range pending {
		if err := r.repair(ctx, marker); err != nil {
			log.Printf("reconciler: failed to repair schedule %s: %v", marker.EventID, err)
			continue
		}
		log.Printf("reconciler: repaired schedule %s", marker.EventID)
	}
	return nil
}

func (r *Reconciler) listPending(ctx context.Context) ([]ports.PendingSchedule, error) {
	cutoff := time.Now().Add(-r.pendingAge)
	result, err := r.dbCB.Execute(func() (interface{}, error) {
		return r.journal.Pending(ctx, cutoff, maxPendingPerSweep)
	})
	if err != nil {
		return nil, err
	}
	pending, _ := result.([]ports.PendingSchedule)
	return pending, nil
}

// repair re-issues both writes from the marker payload. Both are full
// replaces with the exact documents the scheduler built, so re-running a
// half-applied schedule is idempotent.
func (r *Reconciler) repair(ctx context.Context, marker ports.PendingSchedule) error {
	ctx, cancel := context.WithTimeout(ctx, repairTimeout)
	defer cancel()

	var payload ports.SchedulePayload
	if err := json.Unmarshal(marker.Payload, &payload); err != nil {
		log.Printf("reconciler: invalid payload for schedule %s, dropping marker: %v", marker.EventID, err)
		// Drop the marker to avoid infinite retries on bad data.
		return r.clearPending(ctx, marker.EventID)
	}

	if err := r.tree.Write(ctx, "services/"+marker.EventID, payload.Event); err != nil {
		return err
	}
	if err := r.tree.Write(ctx, "coreTasks/"+marker.EventID, payload.TaskTree); err != nil {
		return err
	}

	if r.publisher != nil {
		var event struct {
			Title       string          `json:"title"`
			Date        string          `json:"date"`
			Time        string          `json:"time"`
			Assignments map[string]bool `json:"assignments"`
		}
		if err := json.Unmarshal(payload.Event, &event); err == nil {
			evt := ports.ScheduleCreatedEvent{
				EventID:    marker.EventID,
				Title:      event.Title,
				Date:       event.Date,
				Time:       event.Time,
				Volunteers: len(event.Assignments),
			}
			if err := r.publisher.PublishScheduleCreated(ctx, evt); err != nil {
				log.Printf("reconciler: failed to publish schedule %s: %v", marker.EventID, err)
			}
		}
	}

	if err := r.clearPending(ctx, marker.EventID); err != nil {
		return err
	}
	metrics.SchedulesReconciled.Inc()
	return nil
}

func (r *Reconciler) clearPending(ctx context.Context, eventID string) error {
	_, err := r.dbCB.Execute(func() (interface{}, error) {
		return nil, r.journal.ClearPending(ctx, eventID)
	})
	return err
}
