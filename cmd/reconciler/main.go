package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/handler"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/messaging"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/outbox"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/store"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/config"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

func main() {
	log.Println("Starting schedule reconciler service...")

	cfg := config.LoadReconcilerConfig()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Printf("reconciler: ERROR - failed to open database: %v", err)
	} else {
		defer db.Close()
		log.Println("reconciler: database connection initialized - circuit breaker will validate on first operation")
	}

	var publisher ports.SchedulePublisher
	message_broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.ScheduleQueueName)
	if err != nil {
		log.Printf("reconciler: WARNING - failed to create schedule publisher: %v", err)
	} else {
		defer message_broker.Close()
		publisher = message_broker
		log.Println("reconciler: connected to RabbitMQ")
	}

	treeStore := store.NewPGTreeStore(db)
	journal := store.NewPGScheduleJournal(db)
	worker := outbox.NewReconciler(treeStore, journal, publisher, cfg.DatabaseURL, cfg.PendingAge)

	healthHandler := handler.NewHealthHandler("schedule-reconciler",
		map[string]handler.Check{
			"worker": func(ctx context.Context) error {
				if !worker.IsHealthy() {
					return errors.New("worker is not processing")
				}
				return nil
			},
		},
		map[string]handler.Check{
			"worker": func(ctx context.Context) error {
				if !worker.IsReady() {
					return errors.New("worker is stale or its breaker is open")
				}
				return nil
			},
			"journal": func(ctx context.Context) error {
				_, err := journal.Pending(ctx, time.Now(), 1)
				return err
			},
		})

	// Start health check HTTP server
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", healthHandler.Health)
	healthMux.HandleFunc("/health/ready", healthHandler.Ready)
	healthMux.HandleFunc("/health/live", healthHandler.Live)

	healthServer := &http.Server{
		Addr:    ":8090",
		Handler: healthMux,
	}

	go func() {
		log.Println("reconciler: starting health check server on :8090")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("reconciler: health server error: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Channel to capture fatal errors from the worker
	errChan := make(chan error, 1)

	go func() {
		log.Println("reconciler: starting pending-schedule worker...")
		if err := worker.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("reconciler: worker error: %v", err)
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal or fatal error
	select {
	case sig := <-sigChan:
		log.Printf("reconciler: received signal %v, initiating shutdown...", sig)
		cancel()

	case err := <-errChan:
		log.Printf("reconciler: fatal error, shutting down: %v", err)
		cancel()
	}

	// Shutdown health server gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("reconciler: error shutting down health server: %v", err)
	}

	log.Println("reconciler: shutdown complete")
}
