package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sort"
	"time"
)

const checkTimeout = 5 * time.Second

// Check probes one backing dependency. A nil error means the dependency can
// serve.
type Check func(ctx context.Context) error

// HealthHandler serves the probe endpoints for one component. Liveness
// checks gate /health and /health/live; readiness checks additionally gate
// /health/ready. Both binaries share this handler, they differ only in the
// checks they register.
type HealthHandler struct {
	component string
	startTime time.Time
	version   string
	liveness  map[string]Check
	readiness map[string]Check
}

func NewHealthHandler(component string, liveness, readiness map[string]Check) *HealthHandler {
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "unknown"
	}
	return &HealthHandler{
		component: component,
		startTime: time.Now(),
		version:   version,
		liveness:  liveness,
		readiness: readiness,
	}
}

// HealthResponse follows Kubernetes/OpenShift health check conventions.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Component string                 `json:"component"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Version   string                 `json:"version"`
	Checks    map[string]CheckResult `json:"checks"`
}

type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health reports process liveness plus any registered liveness checks.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := map[string]CheckResult{"process": {Status: "UP"}}
	status, httpStatus := h.run(r.Context(), h.liveness, checks)

	response := HealthResponse{
		Status:    status,
		Component: h.component,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// Ready reports whether the component can serve traffic: every liveness and
// readiness check must pass.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := make(map[string]CheckResult)
	status, httpStatus := h.run(r.Context(), h.liveness, checks)
	if readyStatus, readyHTTP := h.run(r.Context(), h.readiness, checks); readyStatus == "DOWN" {
		status, httpStatus = readyStatus, readyHTTP
	}

	response := map[string]interface{}{
		"status":    status,
		"component": h.component,
		"checks":    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// Live is an alias for Health.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}

// run executes a check set in name order and records the results. It returns
// DOWN and 503 as soon as the set contains a failure.
func (h *HealthHandler) run(ctx context.Context, set map[string]Check, into map[string]CheckResult) (string, int) {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	status, httpStatus := "UP", http.StatusOK
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := set[name](checkCtx)
		cancel()

		if err != nil {
			log.Printf("%s: health check %q failed: %v", h.component, name, err)
			into[name] = CheckResult{Status: "DOWN", Message: err.Error()}
			status, httpStatus = "DOWN", http.StatusServiceUnavailable
			continue
		}
		into[name] = CheckResult{Status: "UP"}
	}
	return status, httpStatus
}
