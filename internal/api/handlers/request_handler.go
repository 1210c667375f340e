package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jogivikas/skill-exchange/internal/auth"
	"github.com/jogivikas/skill-exchange/internal/services"
)

// RequestHandler handles the exchange request lifecycle endpoints.
type RequestHandler struct {
	service services.RequestServiceProvider
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(service services.RequestServiceProvider) *RequestHandler {
	return &RequestHandler{service: service}
}

// CreatePayload defines the structure for new exchange requests.
type CreatePayload struct {
	ToUserID      string   `json:"toUserId"`
	SkillsOffered []string `json:"skillsOffered"`
	SkillsWanted  []string `json:"skillsWanted"`
}

// Create proposes a new exchange to another user.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var payload CreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	req, err := h.service.Create(claims.UserID, payload.ToUserID, payload.SkillsOffered, payload.SkillsWanted)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// Accept marks an incoming request as accepted.
func (h *RequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	req, err := h.service.Accept(chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// Reject marks an incoming request as rejected.
func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	req, err := h.service.Reject(chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// ListIncoming returns requests addressed to the authenticated user.
func (h *RequestHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	requests, err := h.service.ListIncoming(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// ListOutgoing returns requests sent by the authenticated user.
func (h *RequestHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	requests, err := h.service.ListOutgoing(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}
