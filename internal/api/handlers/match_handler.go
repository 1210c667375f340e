package handlers

import (
	"net/http"

	"github.com/jogivikas/skill-exchange/internal/auth"
	"github.com/jogivikas/skill-exchange/internal/services"
)

// MatchHandler serves the ranked match list.
type MatchHandler struct {
	service services.MatchServiceProvider
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(service services.MatchServiceProvider) *MatchHandler {
	return &MatchHandler{service: service}
}

// Find returns every other active user ranked by compatibility with the
// authenticated user.
func (h *MatchHandler) Find(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Could not retrieve user from token"})
		return
	}

	matches, err := h.service.FindMatches(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
