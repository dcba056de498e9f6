package services_test

import (
	"context"
	"testing"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/services"
	"github.com/gracepointe/serve-hub/scheduling-service/test/mocks"
)

func TestCatalogService_Roles(t *testing.T) {
	store := mocks.NewMockTreeStore()
	store.Seed("roles", map[string]any{
		"ROLE_USHER":   map[string]any{"name": "Usher", "enabled": true},
		"ROLE_GREETER": map[string]any{"id": "ROLE_GREETER", "name": "Greeter", "enabled": false},
	})
	service := services.NewCatalogService(store)

	catalog, err := service.Roles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(catalog))
	}
	// A record missing its id field is backfilled from the key.
	if catalog["ROLE_USHER"].ID != "ROLE_USHER" {
		t.Errorf("expected backfilled id, got %q", catalog["ROLE_USHER"].ID)
	}
}

func TestCatalogService_RolesEmpty(t *testing.T) {
	service := services.NewCatalogService(mocks.NewMockTreeStore())

	catalog, err := service.Roles(context.Background())
	if err != nil {
		t.Fatalf("an absent catalog is empty, not an error: %v", err)
	}
	if len(catalog) != 0 {
		t.Errorf("expected empty catalog, got %v", catalog)
	}
}

func TestCatalogService_Menu(t *testing.T) {
	store := mocks.NewMockTreeStore()
	store.Seed("menu", map[string]domain.MenuItem{
		"dashboard": {ID: 1, Title: "Dashboard", Link: "/dashboard", Enable: true,
			Roles: domain.RoleSet{domain.RoleAdmin, domain.RoleOperator}},
		"users": {ID: 3, Title: "Users", Link: "/users", Enable: true,
			Roles: domain.RoleSet{domain.RoleAdmin}},
		"services": {ID: 2, Title: "Services", Link: "/services", Enable: true,
			Roles: domain.RoleSet{domain.RoleAdmin, domain.RoleOperator},
			Children: map[string]domain.MenuItem{
				"schedule": {ID: 1, Title: "Schedule", Link: "/services/new", Enable: true,
					Roles: domain.RoleSet{domain.RoleAdmin}},
				"list": {ID: 2, Title: "My Services", Link: "/services", Enable: true},
			}},
		"retired": {ID: 4, Title: "Old Page", Enable: false},
	})
	service := services.NewCatalogService(store)
	ctx := context.Background()

	t.Run("admin_menu", func(t *testing.T) {
		entries := service.Menu(ctx, domain.RoleAdmin)
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}
		// Sorted by id: Dashboard, Services, Users.
		if entries[0].Title != "Dashboard" || entries[1].Title != "Services" || entries[2].Title != "Users" {
			t.Errorf("unexpected order: %v", entries)
		}
		if len(entries[1].Children) != 2 {
			t.Errorf("expected both service children for admin, got %v", entries[1].Children)
		}
	})

	t.Run("operator_menu", func(t *testing.T) {
		entries := service.Menu(ctx, domain.RoleOperator)
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		for _, e := range entries {
			if e.Title == "Users" {
				t.Error("operator must not see the admin-only Users entry")
			}
		}
		// The admin-only child is filtered out too.
		if len(entries[1].Children) != 1 || entries[1].Children[0].Title != "My Services" {
			t.Errorf("unexpected operator children: %v", entries[1].Children)
		}
	})

	t.Run("guest_menu_is_empty", func(t *testing.T) {
		if entries := service.Menu(ctx, domain.RoleGuest); len(entries) != 0 {
			t.Errorf("expected no entries for guest, got %v", entries)
		}
	})
}

func TestCatalogService_MenuFailureDegrades(t *testing.T) {
	store := mocks.NewMockTreeStore()
	store.ReadErrors["menu"] = context.DeadlineExceeded
	service := services.NewCatalogService(store)

	if entries := service.Menu(context.Background(), domain.RoleAdmin); entries != nil {
		t.Errorf("expected nil on read failure, got %v", entries)
	}
}

func TestCatalogService_DashboardStats(t *testing.T) {
	store := mocks.NewMockTreeStore()
	store.Seed("dashboardStats", map[string]domain.StatCard{
		"volunteers": {ID: 2, Label: "Volunteers", Value: "34", Enabled: true},
		"services":   {ID: 1, Label: "Services", Value: "12", Enabled: true},
		"legacy":     {ID: 3, Label: "Legacy", Value: "0", Enabled: false},
	})
	service := services.NewCatalogService(store)

	cards := service.DashboardStats(context.Background())
	if len(cards) != 2 {
		t.Fatalf("expected 2 enabled cards, got %d", len(cards))
	}
	if cards[0].Label != "Services" || cards[1].Label != "Volunteers" {
		t.Errorf("expected id ordering, got %v", cards)
	}
}
