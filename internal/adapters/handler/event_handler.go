package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/adapters/middleware"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/services"
)

type EventHandler struct {
	scheduling ports.SchedulingService
	progress   ports.ProgressService
}

func NewEventHandler(scheduling ports.SchedulingService, progress ports.ProgressService) *EventHandler {
	return &EventHandler{scheduling: scheduling, progress: progress}
}

type ScheduleResponse struct {
	Message string `json:"message"`
	EventID string `json:"eventId"`
}

// Schedule creates an event and its task tree from an assignment map.
func (h *EventHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ports.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	eventID, err := h.scheduling.Schedule(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateAssignment) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		log.Printf("Schedule failed: %v", err)
		http.Error(w, "failed to schedule service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ScheduleResponse{
		Message: "Service scheduled",
		EventID: eventID,
	}); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// List returns the viewer's events, display fields included.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	role, _ := r.Context().Value(middleware.RoleKey).(domain.Role)
	userID, _ := r.Context().Value(middleware.UserIDKey).(string)

	events, err := h.scheduling.ListEvents(r.Context(), role, userID)
	if err != nil {
		log.Printf("List events failed: %v", err)
		http.Error(w, "failed to load services", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []ports.EventSummary{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

// Progress returns per-role completion statistics for one event.
func (h *EventHandler) Progress(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		http.Error(w, "missing event id", http.StatusBadRequest)
		return
	}

	progress, err := h.progress.Progress(r.Context(), eventID)
	if err != nil {
		log.Printf("Progress for %s failed: %v", eventID, err)
		http.Error(w, "failed to load progress", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(progress)
}
