package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jogivikas/skill-exchange/internal/auth"
	"github.com/jogivikas/skill-exchange/internal/services"
)

// ConversationHandler handles conversation registry endpoints.
type ConversationHandler struct {
	service services.ConversationServiceProvider
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(service services.ConversationServiceProvider) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// GetOrCreate returns the conversation with the given partner, creating it
// on first contact. Answers 201 only when the conversation was created.
func (h *ConversationHandler) GetOrCreate(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var payload struct {
		PartnerID string `json:"partnerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if payload.PartnerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "partnerId is required"})
		return
	}

	conv, created, err := h.service.GetOrCreate(claims.UserID, payload.PartnerID)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, conv)
}

// ListForUser returns the user's conversations with their latest messages.
// The route carries a userId segment, but the list is always resolved for
// the authenticated user.
func (h *ConversationHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	if chi.URLParam(r, "userId") != claims.UserID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Not authorized"})
		return
	}

	conversations, err := h.service.ListForUser(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}
