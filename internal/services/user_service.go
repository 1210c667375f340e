package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jogivikas/skill-exchange/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Skill list identifiers used by the add/remove skill operations.
const (
	SkillListOffered = "offered"
	SkillListWanted  = "wanted"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(fullName, email, password string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	GetAllUsers() ([]models.User, error)
	UpdateProfile(id string, fullName *string, profilePicture *string) (models.User, error)
	AddSkill(id, list, skill string) (models.User, error)
	RemoveSkill(id, list, skill string) (models.User, error)
	AddReview(userID string, review models.Review) (models.User, error)
	SetStatus(id, status string) (models.User, error)
}

// UserService provides business logic for account management.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, full_name, email, password_hash, profile_picture,
	skills_offered_json, skills_wanted_json, rating, reviews_json, status, is_admin,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var user models.User
	var offered, wanted, reviews string
	err := row.Scan(&user.ID, &user.FullName, &user.Email, &user.PasswordHash,
		&user.ProfilePicture, &offered, &wanted, &user.Rating, &reviews,
		&user.Status, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return models.User{}, err
	}
	user.SkillsOffered = unmarshalStrings(offered)
	user.SkillsWanted = unmarshalStrings(wanted)
	if err := json.Unmarshal([]byte(reviews), &user.Reviews); err != nil {
		user.Reviews = []models.Review{}
	}
	return user, nil
}

func unmarshalStrings(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func marshalJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// Register creates a new account with a hashed password and empty skill sets.
func (s *UserService) Register(fullName, email, password string) (models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&count); err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:            uuid.New().String(),
		FullName:      fullName,
		Email:         email,
		PasswordHash:  string(hashedPassword),
		SkillsOffered: []string{},
		SkillsWanted:  []string{},
		Reviews:       []models.Review{},
		Status:        "active",
	}

	stmt, err := s.db.Prepare(`INSERT INTO users
		(id, full_name, email, password_hash, skills_offered_json, skills_wanted_json, reviews_json, status)
		VALUES (?, ?, ?, ?, '[]', '[]', '[]', 'active')`)
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(user.ID, user.FullName, user.Email, user.PasswordHash); err != nil {
		return models.User{}, err
	}

	return s.GetUserByID(user.ID)
}

// Authenticate verifies a user's credentials.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	user, err := s.getUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *UserService) getUserByEmail(email string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("%w: email %s", ErrNotFound, email)
		}
		return models.User{}, err
	}
	return user, nil
}

// GetAllUsers retrieves every account. Read failures are logged and returned
// as an empty result.
func (s *UserService) GetAllUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT " + userColumns + " FROM users")
	if err != nil {
		log.Error().Err(err).Msg("Failed to query users")
		return []models.User{}, nil
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan user row")
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// UpdateProfile updates the user's display name and/or profile picture.
func (s *UserService) UpdateProfile(id string, fullName *string, profilePicture *string) (models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return models.User{}, err
	}
	if fullName != nil && strings.TrimSpace(*fullName) != "" {
		user.FullName = strings.TrimSpace(*fullName)
	}
	if profilePicture != nil {
		user.ProfilePicture = profilePicture
	}

	_, err = s.db.Exec(`UPDATE users SET full_name = ?, profile_picture = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		user.FullName, user.ProfilePicture, id)
	if err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(id)
}

// AddSkill appends a skill to one of the user's two lists. Duplicate entries
// within a list are rejected.
func (s *UserService) AddSkill(id, list, skill string) (models.User, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return models.User{}, fmt.Errorf("%w: skill is required", ErrValidation)
	}

	user, err := s.GetUserByID(id)
	if err != nil {
		return models.User{}, err
	}

	target := &user.SkillsOffered
	if list == SkillListWanted {
		target = &user.SkillsWanted
	}
	for _, existing := range *target {
		if existing == skill {
			return models.User{}, ErrSkillExists
		}
	}
	*target = append(*target, skill)

	return s.saveSkills(user)
}

// RemoveSkill removes a skill from one of the user's lists. Removing a skill
// that is not present is a no-op.
func (s *UserService) RemoveSkill(id, list, skill string) (models.User, error) {
	user, err := s.GetUserByID(id)
	if err != nil {
		return models.User{}, err
	}

	target := &user.SkillsOffered
	if list == SkillListWanted {
		target = &user.SkillsWanted
	}
	kept := (*target)[:0]
	for _, existing := range *target {
		if existing != skill {
			kept = append(kept, existing)
		}
	}
	*target = kept

	return s.saveSkills(user)
}

func (s *UserService) saveSkills(user models.User) (models.User, error) {
	_, err := s.db.Exec(`UPDATE users SET skills_offered_json = ?, skills_wanted_json = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		marshalJSON(user.SkillsOffered), marshalJSON(user.SkillsWanted), user.ID)
	if err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(user.ID)
}

// AddReview appends a review to the user's profile and recomputes the
// aggregate rating.
func (s *UserService) AddReview(userID string, review models.Review) (models.User, error) {
	if review.Rating < 0 || review.Rating > 5 {
		return models.User{}, fmt.Errorf("%w: rating must be between 0 and 5", ErrValidation)
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return models.User{}, err
	}

	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	user.Reviews = append(user.Reviews, review)

	var sum float64
	for _, r := range user.Reviews {
		sum += r.Rating
	}
	rating := sum / float64(len(user.Reviews))

	_, err = s.db.Exec(`UPDATE users SET reviews_json = ?, rating = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		marshalJSON(user.Reviews), rating, userID)
	if err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(userID)
}

// SetStatus switches an account between active and inactive.
func (s *UserService) SetStatus(id, status string) (models.User, error) {
	if status != "active" && status != "inactive" {
		return models.User{}, fmt.Errorf("%w: status must be active or inactive", ErrValidation)
	}
	if _, err := s.GetUserByID(id); err != nil {
		return models.User{}, err
	}
	_, err := s.db.Exec(`UPDATE users SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(id)
}
