package models

import "time"

// User represents a user account in the system.
type User struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"` // Never expose this to the client
	ProfilePicture *string   `json:"profilePicture"`
	SkillsOffered  []string  `json:"skillsOffered"`
	SkillsWanted   []string  `json:"skillsWanted"`
	Rating         float64   `json:"rating"`
	Reviews        []Review  `json:"reviews"`
	Status         string    `json:"status"` // "active" or "inactive"
	IsAdmin        bool      `json:"isAdmin"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Review is a single rating left on a user's profile.
type Review struct {
	ReviewerID string    `json:"reviewerId"`
	Rating     float64   `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PublicUser is the projection of a User exposed to other users.
// Fields are enumerated explicitly so credentials and contact details
// can never leak through serialization.
type PublicUser struct {
	ID             string   `json:"id"`
	FullName       string   `json:"fullName"`
	ProfilePicture *string  `json:"profilePicture"`
	SkillsOffered  []string `json:"skillsOffered"`
	SkillsWanted   []string `json:"skillsWanted"`
	Rating         float64  `json:"rating"`
	Reviews        []Review `json:"reviews"`
	Status         string   `json:"status"`
}

// Public returns the user's public projection.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		FullName:       u.FullName,
		ProfilePicture: u.ProfilePicture,
		SkillsOffered:  u.SkillsOffered,
		SkillsWanted:   u.SkillsWanted,
		Rating:         u.Rating,
		Reviews:        u.Reviews,
		Status:         u.Status,
	}
}
