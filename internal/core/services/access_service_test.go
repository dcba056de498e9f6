package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/services"
	"github.com/gracepointe/serve-hub/scheduling-service/test/mocks"
)

func TestAccessService_ResolveRole(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		email  string
		setup  func(store *mocks.MockTreeStore)
		want   domain.Role
	}{
		{
			name:   "role_from_user_record",
			userID: "u1",
			setup: func(store *mocks.MockTreeStore) {
				store.Seed("users/u1", map[string]any{"role": "operator", "email": "op@church.org"})
			},
			want: domain.RoleOperator,
		},
		{
			name:   "stored_case_is_folded",
			userID: "u1",
			setup: func(store *mocks.MockTreeStore) {
				store.Seed("users/u1", map[string]any{"role": "Admin"})
			},
			want: domain.RoleAdmin,
		},
		{
			name:   "email_fallback_when_record_has_no_role",
			userID: "u1",
			email:  "admin@church.org",
			setup: func(store *mocks.MockTreeStore) {
				store.Seed("users/u1", map[string]any{"email": "admin@church.org"})
				store.Seed("users/u7", map[string]any{"role": "Admin", "email": "admin@church.org"})
			},
			want: domain.RoleAdmin,
		},
		{
			name:  "email_fallback_when_uid_missing",
			email: "jane@church.org",
			setup: func(store *mocks.MockTreeStore) {
				store.Seed("users/u9", map[string]any{"role": "student", "email": "jane@church.org"})
			},
			want: domain.RoleStudent,
		},
		{
			name:   "unknown_user_defaults_to_guest",
			userID: "nobody",
			email:  "nobody@church.org",
			setup:  func(store *mocks.MockTreeStore) {},
			want:   domain.RoleGuest,
		},
		{
			name:   "lookup_error_defaults_to_guest",
			userID: "u1",
			setup: func(store *mocks.MockTreeStore) {
				store.ReadErrors["users/u1/role"] = context.DeadlineExceeded
			},
			want: domain.RoleGuest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockTreeStore()
			tt.setup(store)
			service := services.NewAccessService(store, nil, time.Hour)

			got := service.ResolveRole(context.Background(), tt.userID, tt.email)
			if got != tt.want {
				t.Errorf("expected role %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAccessService_RoleCaching(t *testing.T) {
	t.Run("cache_hit_skips_store", func(t *testing.T) {
		store := mocks.NewMockTreeStore()
		cache := mocks.NewMockRoleCache()
		cache.Set(context.Background(), "u1", domain.RoleAdmin, time.Hour)
		service := services.NewAccessService(store, cache, time.Hour)

		got := service.ResolveRole(context.Background(), "u1", "")
		if got != domain.RoleAdmin {
			t.Errorf("expected cached admin, got %q", got)
		}
		if len(store.ReadCalls) != 0 {
			t.Errorf("cache hit should not touch the store, got reads %v", store.ReadCalls)
		}
	})

	t.Run("resolved_role_is_cached", func(t *testing.T) {
		store := mocks.NewMockTreeStore()
		store.Seed("users/u1", map[string]any{"role": "operator"})
		cache := mocks.NewMockRoleCache()
		service := services.NewAccessService(store, cache, time.Hour)

		service.ResolveRole(context.Background(), "u1", "")
		if len(cache.SetCalls) != 1 {
			t.Fatalf("expected one cache write, got %v", cache.SetCalls)
		}
		if cache.LastTTL != time.Hour {
			t.Errorf("expected ttl %v, got %v", time.Hour, cache.LastTTL)
		}
	})

	t.Run("guest_is_not_cached", func(t *testing.T) {
		store := mocks.NewMockTreeStore()
		cache := mocks.NewMockRoleCache()
		service := services.NewAccessService(store, cache, time.Hour)

		service.ResolveRole(context.Background(), "unknown", "")
		if len(cache.SetCalls) != 0 {
			t.Errorf("guest fallback should not be cached, got %v", cache.SetCalls)
		}
	})

	t.Run("cache_failure_falls_through_to_store", func(t *testing.T) {
		store := mocks.NewMockTreeStore()
		store.Seed("users/u1", map[string]any{"role": "admin"})
		cache := mocks.NewMockRoleCache()
		cache.GetError = context.DeadlineExceeded
		service := services.NewAccessService(store, cache, time.Hour)

		got := service.ResolveRole(context.Background(), "u1", "")
		if got != domain.RoleAdmin {
			t.Errorf("expected store lookup despite cache error, got %q", got)
		}
	})
}

func TestAccessService_IsAdmin(t *testing.T) {
	store := mocks.NewMockTreeStore()
	store.Seed("users/a1", map[string]any{"role": "Admin"})
	store.Seed("users/o1", map[string]any{"role": "operator"})
	service := services.NewAccessService(store, nil, time.Hour)
	ctx := context.Background()

	if !service.IsAdmin(ctx, "a1", "") {
		t.Error("expected a1 to be admin")
	}
	if service.IsAdmin(ctx, "o1", "") {
		t.Error("expected o1 not to be admin")
	}
	if service.IsAdmin(ctx, "nobody", "") {
		t.Error("guest fallback must never be admin")
	}
}

// TestAccessService_IsEnabled pins the fail-open contract: only an explicit
// enabled == false locks the account out.
func TestAccessService_IsEnabled(t *testing.T) {
	tests := []struct {
		name  string
		setup func(store *mocks.MockTreeStore)
		want  bool
	}{
		{
			name: "explicitly_disabled",
			setup: func(store *mocks.MockTreeStore) {
				store.Seed("users/u1", map[string]any{"enabled": false})
			},
			want: false,
		},
		{
			name: "explicitly_enabled",
			setup: func(store *mocks.MockTreeStore) {
				store.Seed("users/u1", map[string]any{"enabled": true})
			},
			want: true,
		},
		{
			name: "field_absent_counts_as_enabled",
			setup: func(store *mocks.MockTreeStore) {
				store.Seed("users/u1", map[string]any{"role": "operator"})
			},
			want: true,
		},
		{
			name:  "record_absent_counts_as_enabled",
			setup: func(store *mocks.MockTreeStore) {},
			want:  true,
		},
		{
			name: "read_error_counts_as_enabled",
			setup: func(store *mocks.MockTreeStore) {
				store.ReadErrors["users/u1/enabled"] = context.DeadlineExceeded
			},
			want: true,
		},
		{
			name: "undecodable_value_counts_as_enabled",
			setup: func(store *mocks.MockTreeStore) {
				store.Seed("users/u1", map[string]any{"enabled": "soon"})
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockTreeStore()
			tt.setup(store)
			service := services.NewAccessService(store, nil, time.Hour)

			if got := service.IsEnabled(context.Background(), "u1"); got != tt.want {
				t.Errorf("expected enabled=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestAccessService_Allowed(t *testing.T) {
	service := services.NewAccessService(mocks.NewMockTreeStore(), nil, time.Hour)

	tests := []struct {
		role   domain.Role
		action ports.Action
		want   bool
	}{
		{domain.RoleAdmin, ports.ActionScheduleEvent, true},
		{domain.RoleAdmin, ports.ActionViewProgress, true},
		{domain.RoleOperator, ports.ActionScheduleEvent, false},
		{domain.RoleOperator, ports.ActionCompleteTask, true},
		{domain.RoleOperator, ports.ActionListUsers, false},
		{domain.RoleStudent, ports.ActionViewMenu, true},
		{domain.RoleStudent, ports.ActionListEvents, false},
		{domain.RoleGuest, ports.ActionViewMenu, false},
		{domain.RoleGuest, ports.ActionCompleteTask, false},
	}

	for _, tt := range tests {
		if got := service.Allowed(tt.role, tt.action); got != tt.want {
			t.Errorf("Allowed(%q, %q) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}
