package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/middleware"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Roles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.catalog.Roles(r.Context())
	if err != nil {
		log.Printf("Role catalog read failed: %v", err)
		http.Error(w, "failed to load roles", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(roles)
}

// Menu degrades to an empty list on store trouble; the page renders either
// way.
func (h *CatalogHandler) Menu(w http.ResponseWriter, r *http.Request) {
	role, _ := r.Context().Value(middleware.RoleKey).(domain.Role)

	entries := h.catalog.Menu(r.Context(), role)
	if entries == nil {
		entries = []ports.MenuEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (h *CatalogHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	cards := h.catalog.DashboardStats(r.Context())
	if cards == nil {
		cards = []domain.StatCard{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cards)
}
