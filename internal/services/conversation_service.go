package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jogivikas/skill-exchange/internal/models"
	"github.com/rs/zerolog/log"
)

// ConversationServiceProvider defines the interface for the conversation registry.
type ConversationServiceProvider interface {
	GetOrCreate(userA, userB string) (models.Conversation, bool, error)
	GetByID(id string) (models.Conversation, error)
	ListForUser(userID string) ([]models.Conversation, error)
	Touch(id string, at time.Time) error
}

// ConversationService maps a pair of participants to a single conversation,
// created lazily on first contact.
type ConversationService struct {
	db    *sql.DB
	users UserServiceProvider
}

// NewConversationService creates a new ConversationService.
func NewConversationService(db *sql.DB, users UserServiceProvider) *ConversationService {
	return &ConversationService{db: db, users: users}
}

// orderPair canonicalizes a participant pair so the same two users always
// map onto the same (user_a, user_b) row.
func orderPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// GetOrCreate returns the conversation for the unordered pair {userA, userB},
// creating it if it does not exist, and reports whether it was created. The
// unique index on the canonicalized pair makes concurrent first contact from
// both sides converge on one row.
func (s *ConversationService) GetOrCreate(userA, userB string) (models.Conversation, bool, error) {
	if userA == "" || userB == "" {
		return models.Conversation{}, false, fmt.Errorf("%w: both participants are required", ErrValidation)
	}
	if userA == userB {
		return models.Conversation{}, false, fmt.Errorf("%w: participants must be distinct", ErrValidation)
	}
	if _, err := s.users.GetUserByID(userB); err != nil {
		return models.Conversation{}, false, fmt.Errorf("%w: partner %s", ErrNotFound, userB)
	}

	a, b := orderPair(userA, userB)

	conv, err := s.findByPair(a, b)
	if err == nil {
		return conv, false, nil
	}
	if err != sql.ErrNoRows {
		return models.Conversation{}, false, err
	}

	id := uuid.New().String()
	_, err = s.db.Exec(`INSERT INTO conversations (id, user_a, user_b) VALUES (?, ?, ?)`, id, a, b)
	if err != nil {
		// Lost the create race; the other side's row is the conversation.
		conv, lookupErr := s.findByPair(a, b)
		if lookupErr != nil {
			return models.Conversation{}, false, err
		}
		return conv, false, nil
	}

	conv, err = s.GetByID(id)
	if err != nil {
		return models.Conversation{}, false, err
	}
	return conv, true, nil
}

func (s *ConversationService) findByPair(a, b string) (models.Conversation, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM conversations WHERE user_a = ? AND user_b = ?`, a, b).Scan(&id)
	if err != nil {
		return models.Conversation{}, err
	}
	return s.GetByID(id)
}

// GetByID retrieves a conversation with its participant details.
func (s *ConversationService) GetByID(id string) (models.Conversation, error) {
	var conv models.Conversation
	var userA, userB string
	row := s.db.QueryRow(`SELECT id, user_a, user_b, created_at, updated_at FROM conversations WHERE id = ?`, id)
	if err := row.Scan(&conv.ID, &userA, &userB, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return models.Conversation{}, fmt.Errorf("%w: conversation %s", ErrNotFound, id)
		}
		return models.Conversation{}, err
	}

	conv.Participants = []models.Participant{}
	for _, participantID := range []string{userA, userB} {
		user, err := s.users.GetUserByID(participantID)
		if err != nil {
			log.Warn().Str("conversation_id", id).Str("user_id", participantID).Msg("Conversation participant no longer resolves")
			conv.Participants = append(conv.Participants, models.Participant{ID: participantID})
			continue
		}
		conv.Participants = append(conv.Participants, models.Participant{
			ID:       user.ID,
			FullName: user.FullName,
			Email:    user.Email,
		})
	}
	return conv, nil
}

// ListForUser returns all conversations containing the user, each annotated
// with its most recent message, ordered by last update descending.
func (s *ConversationService) ListForUser(userID string) ([]models.Conversation, error) {
	rows, err := s.db.Query(`SELECT id FROM conversations WHERE user_a = ? OR user_b = ? ORDER BY updated_at DESC`,
		userID, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to query conversations")
		return []models.Conversation{}, nil
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}

	conversations := []models.Conversation{}
	for _, id := range ids {
		conv, err := s.GetByID(id)
		if err != nil {
			continue
		}

		var msg models.Message
		var read int
		err = s.db.QueryRow(`SELECT id, conversation_id, sender_id, receiver_id, text, read, created_at
			FROM messages WHERE conversation_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, id).
			Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.ReceiverID, &msg.Text, &read, &msg.CreatedAt)
		if err == nil {
			msg.Read = read != 0
			conv.LastMessage = &msg
		}

		conversations = append(conversations, conv)
	}
	return conversations, nil
}

// Touch bumps the conversation's last-update time, used when a new message
// arrives so the list ordering tracks activity.
func (s *ConversationService) Touch(id string, at time.Time) error {
	_, err := s.db.Exec(`UPDATE conversations SET updated_at = ? WHERE id = ?`, at, id)
	return err
}
