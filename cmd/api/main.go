package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/cache"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/handler"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/messaging"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/middleware"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/store"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/config"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/services"
)

const sessionTTL = 24 * time.Hour

func main() {

	cfg := config.Load()
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	treeStore := store.NewPGTreeStore(db)
	if err := treeStore.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to prepare tree store schema: %v", err)
	}

	journal := store.NewPGScheduleJournal(db)
	if err := journal.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to prepare journal schema: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	log.Println("Authenticated with Redis successfully")

	roleCache := cache.NewRedisRoleCache(redisClient)
	blacklist := cache.NewRedisTokenBlacklist(redisClient)

	// The publisher is optional: scheduling works without a broker, downstream
	// consumers just won't hear about new events.
	var publisher ports.SchedulePublisher
	if cfg.RabbitMQURL != "" {
		broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.ScheduleQueueName)
		if err != nil {
			log.Printf("WARNING - failed to connect to RabbitMQ, continuing without publisher: %v", err)
		} else {
			defer broker.Close()
			publisher = broker
			log.Println("Connected to RabbitMQ")
		}
	}

	authService := services.NewAuthService(treeStore, blacklist, cfg.JWTPrivateKey, cfg.JWTPublicKey)
	accessService := services.NewAccessService(treeStore, roleCache, sessionTTL)
	schedulingService := services.NewSchedulingService(treeStore, journal, publisher)
	progressService := services.NewProgressService(treeStore)
	taskService := services.NewTaskService(treeStore)
	catalogService := services.NewCatalogService(treeStore)
	directoryService := services.NewDirectoryService(treeStore, roleCache)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTPublicKey, accessService, blacklist)

	authHandler := handler.NewAuthHandler(authService)
	eventHandler := handler.NewEventHandler(schedulingService, progressService)
	taskHandler := handler.NewTaskHandler(taskService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	userHandler := handler.NewUserHandler(directoryService)

	healthHandler := handler.NewHealthHandler("scheduling-api", nil, map[string]handler.Check{
		"database": func(ctx context.Context) error { return db.PingContext(ctx) },
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		// An empty catalog is a valid state; only a failing store is DOWN.
		"tree_store": func(ctx context.Context) error {
			if _, err := treeStore.Read(ctx, "roles"); err != nil && !errors.Is(err, ports.ErrNotFound) {
				return err
			}
			return nil
		},
		"journal": func(ctx context.Context) error {
			_, err := journal.Pending(ctx, time.Now(), 1)
			return err
		},
	})

	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible)
	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/health/ready", healthHandler.Ready)
	mux.HandleFunc("/health/live", healthHandler.Live)

	mux.Handle("/metrics", promhttp.Handler())

	// Session endpoints
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("POST /logout", authHandler.Logout)

	// Navigation and catalog
	mux.Handle("GET /menu",
		authMiddleware.Require(ports.ActionViewMenu, catalogHandler.Menu))
	mux.Handle("GET /dashboard/stats",
		authMiddleware.Require(ports.ActionViewDashboard, catalogHandler.DashboardStats))
	mux.Handle("GET /roles",
		authMiddleware.Require(ports.ActionViewCatalog, catalogHandler.Roles))

	// Events
	mux.Handle("GET /events",
		authMiddleware.Require(ports.ActionListEvents, eventHandler.List))
	mux.Handle("POST /events",
		authMiddleware.Require(ports.ActionScheduleEvent, eventHandler.Schedule))
	mux.Handle("GET /events/{id}/progress",
		authMiddleware.Require(ports.ActionViewProgress, eventHandler.Progress))

	// A volunteer's own checklist
	mux.Handle("GET /events/{id}/tasks",
		authMiddleware.Require(ports.ActionViewOwnTasks, taskHandler.MyTasks))
	mux.Handle("POST /events/{id}/tasks/complete",
		authMiddleware.Require(ports.ActionCompleteTask, taskHandler.Complete))

	// User directory
	mux.Handle("GET /users",
		authMiddleware.Require(ports.ActionListUsers, userHandler.List))
	mux.Handle("POST /users",
		authMiddleware.Require(ports.ActionCreateUser, userHandler.Create))
	mux.Handle("PUT /users/{id}/status",
		authMiddleware.Require(ports.ActionSetUserStatus, userHandler.SetStatus))

	cors := middleware.CORSMiddleware([]string{"*"})

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, cors(mux)); err != nil {
		log.Fatalf("Could not start server: %s\n", err)
	}
}
