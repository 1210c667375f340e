package models

import "time"

// Conversation links exactly two participants. At most one conversation
// exists per unordered participant pair.
type Conversation struct {
	ID           string        `json:"id"`
	Participants []Participant `json:"participants"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`

	// Most recent message, populated on list endpoints only.
	LastMessage *Message `json:"lastMessage,omitempty"`
}

// Participant is the slice of a user shown inside a conversation.
type Participant struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}
