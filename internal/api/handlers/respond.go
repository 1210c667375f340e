package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jogivikas/skill-exchange/internal/services"
	"github.com/rs/zerolog/log"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP status codes and emits the
// {"error": ...} body shape the frontend expects.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Server error"

	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrDuplicateRequest),
		errors.Is(err, services.ErrSelfRequest),
		errors.Is(err, services.ErrSkillExists):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
		message = "Not authorized"
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrRequestClosed):
		status = http.StatusConflict
		message = err.Error()
	default:
		log.Error().Err(err).Msg("Unhandled error in request handler")
	}

	writeJSON(w, status, map[string]string{"error": message})
}
