package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jogivikas/skill-exchange/internal/auth"
	"github.com/jogivikas/skill-exchange/internal/services"
	ws "github.com/jogivikas/skill-exchange/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades HTTP connections and relays chat traffic
// between sessions. Everything here is best-effort: malformed or
// unauthorized frames are logged and dropped, never surfaced to the peer's
// request/response path.
type WebSocketHandler struct {
	hub      *ws.Hub
	messages services.MessageServiceProvider
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *ws.Hub, messages services.MessageServiceProvider) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, messages: messages}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve handles the WebSocket connection request. A session presents its
// bearer credential as a query parameter on connect; sessions without a
// valid credential stay connected but carry no identity and cannot join
// rooms or be addressed.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	var userID string
	if token := r.URL.Query().Get("token"); token != "" {
		if claims, err := auth.ValidateJWT(token); err == nil {
			userID = claims.UserID
		} else {
			log.Warn().Err(err).Msg("Websocket connected with invalid credential")
		}
	}

	client := ws.NewClient(userID, conn)
	h.hub.Register(client)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		client.WritePump()
	}()
	go func() {
		defer wg.Done()
		client.ReadPump(h.handleIncoming)
	}()

	// Cleanup on disconnect.
	go func() {
		wg.Wait()
		h.hub.Unregister(client)
	}()
}

// handleIncoming processes frames received from a websocket session.
func (h *WebSocketHandler) handleIncoming(client *ws.Client, message []byte) {
	var msg ws.Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Warn().Err(err).Str("client_id", client.ID).Msg("Dropping undecodable websocket frame")
		return
	}

	switch msg.Action {
	case ws.ActionJoinConversation:
		var payload ws.RoomPayload
		if json.Unmarshal(msg.Payload, &payload) != nil || payload.ConversationID == "" {
			return
		}
		h.hub.JoinRoom(client, payload.ConversationID)

	case ws.ActionLeaveConversation:
		var payload ws.RoomPayload
		if json.Unmarshal(msg.Payload, &payload) != nil || payload.ConversationID == "" {
			return
		}
		h.hub.LeaveRoom(client, payload.ConversationID)

	case ws.ActionSendMessage:
		h.relayMessage(client, msg.Payload)

	case ws.ActionMessagesSeen:
		h.markSeen(client, msg.Payload)

	default:
		log.Warn().Str("action", msg.Action).Msg("Unknown websocket action received")
		client.Send <- ws.NewErrorMessage("Unknown action: " + msg.Action)
	}
}

// relayMessage broadcasts an already-persisted message to the other sessions
// in its conversation's room. The sender's session is excluded; its client
// already holds the message from the send call. Malformed payloads are
// dropped silently.
func (h *WebSocketHandler) relayMessage(client *ws.Client, raw json.RawMessage) {
	if client.UserID == "" {
		return
	}

	var payload ws.ChatPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return
	}
	if payload.ConversationID == "" || payload.Text == "" {
		return
	}
	// A session cannot relay messages under another user's identity.
	payload.SenderID = client.UserID

	h.hub.BroadcastToRoom(payload.ConversationID, ws.NewEventMessage(ws.ActionNewMessage, payload), client)
}

// markSeen flips the caller's unread messages in the conversation to read in
// one batch, then notifies the rest of the room. Fire-and-forget: failures
// are logged, not surfaced.
func (h *WebSocketHandler) markSeen(client *ws.Client, raw json.RawMessage) {
	if client.UserID == "" {
		return
	}

	var payload ws.RoomPayload
	if json.Unmarshal(raw, &payload) != nil || payload.ConversationID == "" {
		return
	}

	if err := h.messages.MarkConversationRead(payload.ConversationID, client.UserID); err != nil {
		log.Error().Err(err).Str("conversation_id", payload.ConversationID).Str("user_id", client.UserID).Msg("Failed to mark messages read")
		return
	}

	seen := ws.SeenPayload{
		ConversationID: payload.ConversationID,
		SeenBy:         client.UserID,
		SeenAt:         time.Now().UTC(),
	}
	h.hub.BroadcastToRoom(payload.ConversationID, ws.NewEventMessage(ws.ActionMessagesSeen, seen), client)
}
