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

// TaskHandler serves a volunteer's own checklist. The caller's identity
// comes from the session, never from the request, so a user can only read
// and complete their own instances.
type TaskHandler struct {
	tasks ports.TaskService
}

func NewTaskHandler(tasks ports.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) MyTasks(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	userID, _ := r.Context().Value(middleware.UserIDKey).(string)

	view, err := h.tasks.UserTasks(r.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			http.Error(w, "no tasks for this service", http.StatusNotFound)
			return
		}
		log.Printf("Task lookup %s/%s failed: %v", eventID, userID, err)
		http.Error(w, "failed to load tasks", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

type CompleteTaskRequest struct {
	RoleID string `json:"roleId"`
	Phase  string `json:"phase"`
	TaskID string `json:"taskId"`
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	userID, _ := r.Context().Value(middleware.UserIDKey).(string)

	var req CompleteTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.RoleID == "" || req.Phase == "" || req.TaskID == "" {
		http.Error(w, "roleId, phase and taskId are required", http.StatusBadRequest)
		return
	}

	err := h.tasks.CompleteTask(r.Context(), eventID, userID, req.RoleID, domain.Phase(req.Phase), req.TaskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		log.Printf("Complete task %s/%s failed: %v", eventID, req.TaskID, err)
		http.Error(w, "failed to complete task", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Task completed"})
}
