package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jogivikas/skill-exchange/internal/services"
)

// AdminHandler serves the admin dashboard endpoints.
type AdminHandler struct {
	admin  services.AdminServiceProvider
	users  services.UserServiceProvider
	events services.EventServiceProvider
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin services.AdminServiceProvider, users services.UserServiceProvider, events services.EventServiceProvider) *AdminHandler {
	return &AdminHandler{admin: admin, users: users, events: events}
}

// GetMetrics returns the aggregate platform snapshot.
func (h *AdminHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.admin.GetMetrics()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// ListUsers returns the per-user summary table.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.admin.ListUsers()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// UpdateUserStatus switches an account between active and inactive.
func (h *AdminHandler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	user, err := h.users.SetStatus(chi.URLParam(r, "id"), payload.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetActivity returns recent platform events.
func (h *AdminHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20 // Default limit
	}

	events, err := h.events.GetRecentEvents(limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
