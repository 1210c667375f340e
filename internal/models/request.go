package models

import "time"

// Request statuses. Accepted and rejected are terminal.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// Request represents a skill exchange proposal between two users.
// The skill lists are snapshots copied at creation time, independent of
// later edits to either account's live skill sets.
type Request struct {
	ID            string     `json:"id"`
	FromUserID    string     `json:"fromUserId"`
	ToUserID      string     `json:"toUserId"`
	SkillsOffered []string   `json:"skillsOffered"`
	SkillsWanted  []string   `json:"skillsWanted"`
	Status        string     `json:"status"`
	AcceptedAt    *time.Time `json:"acceptedAt"`
	RejectedAt    *time.Time `json:"rejectedAt"`
	CreatedAt     time.Time  `json:"createdAt"`

	// Counterparty display fields, populated on list endpoints only.
	FromUser *RequestParty `json:"fromUser,omitempty"`
	ToUser   *RequestParty `json:"toUser,omitempty"`
}

// RequestParty carries the public display fields of a request counterparty.
type RequestParty struct {
	ID       string  `json:"id"`
	FullName string  `json:"fullName"`
	Photo    *string `json:"photo"`
	Initials string  `json:"initials"`
}
