package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

// CatalogService serves reference data: the role catalog, the role-filtered
// navigation menu and the dashboard stat cards. Menu and stats are
// non-critical reads: any failure degrades to an empty result.
type CatalogService struct {
	store ports.TreeStore
}

var _ ports.CatalogService = (*CatalogService)(nil)

func NewCatalogService(store ports.TreeStore) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) Roles(ctx context.Context) (map[string]domain.RoleDef, error) {
	raw, err := s.store.Read(ctx, "roles")
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return map[string]domain.RoleDef{}, nil
		}
		return nil, err
	}
	var catalog map[string]domain.RoleDef
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, err
	}
	for id, def := range catalog {
		if def.ID == "" {
			def.ID = id
			catalog[id] = def
		}
	}
	return catalog, nil
}

// Menu returns the entries the role may see, sorted by id, children
// filtered the same way.
func (s *CatalogService) Menu(ctx context.Context, role domain.Role) []ports.MenuEntry {
	raw, err := s.store.Read(ctx, "menu")
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			log.Printf("catalog: menu read failed: %v", err)
		}
		return nil
	}
	var items map[string]domain.MenuItem
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Printf("catalog: menu decode failed: %v", err)
		return nil
	}
	return renderMenu(items, role)
}

func renderMenu(items map[string]domain.MenuItem, role domain.Role) []ports.MenuEntry {
	type keyed struct {
		item domain.MenuItem
	}
	visible := make([]keyed, 0, len(items))
	for _, item := range items {
		if item.VisibleTo(role) {
			visible = append(visible, keyed{item: item})
		}
	}
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].item.ID < visible[j].item.ID })

	out := make([]ports.MenuEntry, 0, len(visible))
	for _, k := range visible {
		entry := ports.MenuEntry{
			Title:   k.item.Title,
			Link:    k.item.Link,
			IconSVG: k.item.IconSVG,
		}
		if len(k.item.Children) > 0 {
			entry.Children = renderMenu(k.item.Children, role)
		}
		out = append(out, entry)
	}
	return out
}

// DashboardStats returns enabled stat cards sorted by id.
func (s *CatalogService) DashboardStats(ctx context.Context) []domain.StatCard {
	raw, err := s.store.Read(ctx, "dashboardStats")
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			log.Printf("catalog: dashboard stats read failed: %v", err)
		}
		return nil
	}
	var cards map[string]domain.StatCard
	if err := json.Unmarshal(raw, &cards); err != nil {
		log.Printf("catalog: dashboard stats decode failed: %v", err)
		return nil
	}

	out := make([]domain.StatCard, 0, len(cards))
	for _, card := range cards {
		if card.Enabled {
			out = append(out, card)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
