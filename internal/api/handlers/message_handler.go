package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jogivikas/skill-exchange/internal/auth"
	"github.com/jogivikas/skill-exchange/internal/services"
)

// MessageHandler handles message persistence endpoints. Live delivery of
// sent messages goes through the websocket channel, not here.
type MessageHandler struct {
	service services.MessageServiceProvider
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(service services.MessageServiceProvider) *MessageHandler {
	return &MessageHandler{service: service}
}

// Send persists a new message and returns the stored record.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var payload struct {
		ConversationID string `json:"conversationId"`
		Text           string `json:"text"`
		ReceiverID     string `json:"receiverId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	msg, err := h.service.Create(payload.ConversationID, claims.UserID, payload.ReceiverID, payload.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// History returns a conversation's messages, oldest first.
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	messages, err := h.service.History(chi.URLParam(r, "conversationId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
