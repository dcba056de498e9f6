package config_test

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/config"
)

func TestNewCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cb := config.NewCircuitBreaker("RabbitMQ-Publisher")
	if cb.Name() != "RabbitMQ-Publisher" {
		t.Fatalf("expected breaker name to round-trip, got %q", cb.Name())
	}

	brokerDown := errors.New("broker unreachable")
	for i := 0; i < 3; i++ {
		if _, err := cb.Execute(func() (interface{}, error) { return nil, brokerDown }); !errors.Is(err, brokerDown) {
			t.Fatalf("expected failure %d to pass through, got %v", i+1, err)
		}
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("expected open state after 3 consecutive failures, got %v", cb.State())
	}
	if _, err := cb.Execute(func() (interface{}, error) { return nil, nil }); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState while open, got %v", err)
	}
}

func TestNewCircuitBreaker_SucceedingCallsKeepItClosed(t *testing.T) {
	cb := config.NewCircuitBreaker("Reconciler-PostgreSQL")

	for i := 0; i < 5; i++ {
		if _, err := cb.Execute(func() (interface{}, error) { return nil, nil }); err != nil {
			t.Fatalf("unexpected error on call %d: %v", i+1, err)
		}
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed state, got %v", cb.State())
	}
}
