package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/handler"
)

func TestHealthHandler_Health(t *testing.T) {
	h := handler.NewHealthHandler("scheduling-api", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp handler.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "UP" {
		t.Errorf("expected status UP, got %q", resp.Status)
	}
	if resp.Component != "scheduling-api" {
		t.Errorf("expected component scheduling-api, got %q", resp.Component)
	}
	if resp.Checks["process"].Status != "UP" {
		t.Errorf("expected process check UP, got %+v", resp.Checks["process"])
	}
}

func TestHealthHandler_Health_LivenessFailure(t *testing.T) {
	h := handler.NewHealthHandler("schedule-reconciler",
		map[string]handler.Check{
			"worker": func(ctx context.Context) error {
				return errors.New("worker is not processing")
			},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}

	var resp handler.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "DOWN" {
		t.Errorf("expected status DOWN, got %q", resp.Status)
	}
	if got := resp.Checks["worker"]; got.Status != "DOWN" || got.Message == "" {
		t.Errorf("expected failing worker check with a message, got %+v", got)
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	storeDown := errors.New("connection refused")

	tests := []struct {
		name       string
		liveness   map[string]handler.Check
		readiness  map[string]handler.Check
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name: "all_checks_pass",
			readiness: map[string]handler.Check{
				"database": func(ctx context.Context) error { return nil },
				"journal":  func(ctx context.Context) error { return nil },
			},
			wantCode:   http.StatusOK,
			wantStatus: "UP",
			wantChecks: map[string]string{"database": "UP", "journal": "UP"},
		},
		{
			name: "one_readiness_check_fails",
			readiness: map[string]handler.Check{
				"database": func(ctx context.Context) error { return nil },
				"journal":  func(ctx context.Context) error { return storeDown },
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "DOWN",
			wantChecks: map[string]string{"database": "UP", "journal": "DOWN"},
		},
		{
			name: "liveness_failure_also_gates_readiness",
			liveness: map[string]handler.Check{
				"worker": func(ctx context.Context) error { return storeDown },
			},
			readiness: map[string]handler.Check{
				"journal": func(ctx context.Context) error { return nil },
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "DOWN",
			wantChecks: map[string]string{"worker": "DOWN", "journal": "UP"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler("scheduling-api", tt.liveness, tt.readiness)

			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			rec := httptest.NewRecorder()
			h.Ready(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}

			var resp struct {
				Status string                         `json:"status"`
				Checks map[string]handler.CheckResult `json:"checks"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, resp.Status)
			}
			for name, want := range tt.wantChecks {
				if got := resp.Checks[name].Status; got != want {
					t.Errorf("check %q: expected %q, got %q", name, want, got)
				}
			}
		})
	}
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	h := handler.NewHealthHandler("scheduling-api", nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}
