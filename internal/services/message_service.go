package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jogivikas/skill-exchange/internal/models"
	"github.com/rs/zerolog/log"
)

// MessageServiceProvider defines the interface for message services.
type MessageServiceProvider interface {
	Create(conversationID, senderID, receiverID, text string) (models.Message, error)
	History(conversationID string) ([]models.Message, error)
	MarkConversationRead(conversationID, userID string) error
	CountAll() (int, error)
}

// MessageService persists chat messages. Live delivery is handled separately
// by the realtime hub; this layer is the durable record.
type MessageService struct {
	db            *sql.DB
	conversations ConversationServiceProvider
}

// NewMessageService creates a new MessageService.
func NewMessageService(db *sql.DB, conversations ConversationServiceProvider) *MessageService {
	return &MessageService{db: db, conversations: conversations}
}

// Create persists a new unread message and bumps the conversation's
// last-update time.
func (s *MessageService) Create(conversationID, senderID, receiverID, text string) (models.Message, error) {
	if conversationID == "" || text == "" || receiverID == "" {
		return models.Message{}, fmt.Errorf("%w: missing required fields", ErrValidation)
	}
	if _, err := s.conversations.GetByID(conversationID); err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           text,
		Read:           false,
		CreatedAt:      time.Now().UTC(),
	}

	stmt, err := s.db.Prepare(`INSERT INTO messages (id, conversation_id, sender_id, receiver_id, text, read, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`)
	if err != nil {
		return models.Message{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(msg.ID, msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.Text, msg.CreatedAt); err != nil {
		return models.Message{}, err
	}

	if err := s.conversations.Touch(conversationID, msg.CreatedAt); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("Failed to bump conversation update time")
	}

	return msg, nil
}

// History returns the conversation's messages in ascending creation order.
func (s *MessageService) History(conversationID string) ([]models.Message, error) {
	rows, err := s.db.Query(`SELECT id, conversation_id, sender_id, receiver_id, text, read, created_at
		FROM messages WHERE conversation_id = ? ORDER BY created_at ASC, id ASC`, conversationID)
	if err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to query messages")
		return []models.Message{}, nil
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		var read int
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.ReceiverID, &msg.Text, &read, &msg.CreatedAt); err != nil {
			log.Error().Err(err).Msg("Failed to scan message row")
			continue
		}
		msg.Read = read != 0
		messages = append(messages, msg)
	}
	return messages, nil
}

// MarkConversationRead flips every unread message addressed to the user in
// the given conversation to read, in one batch. Messages in other
// conversations and already-read messages are untouched.
func (s *MessageService) MarkConversationRead(conversationID, userID string) error {
	_, err := s.db.Exec(`UPDATE messages SET read = 1 WHERE conversation_id = ? AND receiver_id = ? AND read = 0`,
		conversationID, userID)
	return err
}

// CountAll returns the total number of persisted messages.
func (s *MessageService) CountAll() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}
