package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/services"
)

type UserHandler struct {
	directory ports.DirectoryService
}

func NewUserHandler(directory ports.DirectoryService) *UserHandler {
	return &UserHandler{directory: directory}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	result, err := h.directory.List(r.Context(), q.Get("search"), q.Get("role"), page)
	if err != nil {
		log.Printf("User listing failed: %v", err)
		http.Error(w, "failed to load users", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type CreateUserResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userID, err := h.directory.Create(r.Context(), req.Name, req.Email, req.Role, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			http.Error(w, "email already registered", http.StatusConflict)
			return
		}
		log.Printf("User creation failed: %v", err)
		http.Error(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(CreateUserResponse{
		Message: "User created",
		UserID:  userID,
	}); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

type SetStatusRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.directory.SetEnabled(r.Context(), userID, req.Enabled); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Printf("Status update for %s failed: %v", userID, err)
		http.Error(w, "failed to update status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Status updated"})
}
