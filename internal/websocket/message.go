package websocket

import (
	"encoding/json"
	"time"
)

// Message defines the envelope for websocket messages in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound actions.
const (
	ActionJoinConversation  = "joinConversation"
	ActionLeaveConversation = "leaveConversation"
	ActionSendMessage       = "sendMessage"
	ActionMessagesSeen      = "messagesSeen"
)

// Outbound actions.
const (
	ActionNewMessage = "newMessage"
	ActionError      = "error"
)

// RoomPayload is the payload for join/leave actions.
type RoomPayload struct {
	ConversationID string `json:"conversationId"`
}

// ChatPayload is the payload relayed for a persisted chat message. The relay
// trusts the caller to have persisted it first; id and createdAt come from
// the stored record.
type ChatPayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SeenPayload is the read-receipt notification broadcast to a room.
type SeenPayload struct {
	ConversationID string    `json:"conversationId"`
	SeenBy         string    `json:"seenBy"`
	SeenAt         time.Time `json:"seenAt"`
}

// NewEventMessage builds a serialized outbound envelope.
func NewEventMessage(action string, payload any) []byte {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	out, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil
	}
	return out
}

// NewErrorMessage builds an outbound error envelope.
func NewErrorMessage(text string) []byte {
	return NewEventMessage(ActionError, map[string]string{"message": text})
}
