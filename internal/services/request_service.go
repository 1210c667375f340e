package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jogivikas/skill-exchange/internal/models"
	"github.com/rs/zerolog/log"
)

// RequestServiceProvider defines the interface for exchange request services.
type RequestServiceProvider interface {
	Create(fromUserID, toUserID string, skillsOffered, skillsWanted []string) (models.Request, error)
	Accept(requestID, actingUserID string) (models.Request, error)
	Reject(requestID, actingUserID string) (models.Request, error)
	GetRequestByID(id string) (models.Request, error)
	ListIncoming(userID string) ([]models.Request, error)
	ListOutgoing(userID string) ([]models.Request, error)
	CountAccepted() (int, error)
	CountAcceptedFor(userID string) (int, error)
}

// RequestService manages the exchange request lifecycle:
// pending -> accepted or pending -> rejected, both terminal.
type RequestService struct {
	db     *sql.DB
	users  UserServiceProvider
	events EventServiceProvider
}

// NewRequestService creates a new RequestService.
func NewRequestService(db *sql.DB, users UserServiceProvider, events EventServiceProvider) *RequestService {
	return &RequestService{db: db, users: users, events: events}
}

const requestColumns = `id, from_user_id, to_user_id, skills_offered_json, skills_wanted_json,
	status, accepted_at, rejected_at, created_at`

func scanRequest(row rowScanner) (models.Request, error) {
	var req models.Request
	var offered, wanted string
	err := row.Scan(&req.ID, &req.FromUserID, &req.ToUserID, &offered, &wanted,
		&req.Status, &req.AcceptedAt, &req.RejectedAt, &req.CreatedAt)
	if err != nil {
		return models.Request{}, err
	}
	req.SkillsOffered = unmarshalStrings(offered)
	req.SkillsWanted = unmarshalStrings(wanted)
	return req, nil
}

// Create persists a new pending request, snapshotting the skill lists as
// they were passed in. At most one pending request may exist per ordered
// (from, to) pair.
func (s *RequestService) Create(fromUserID, toUserID string, skillsOffered, skillsWanted []string) (models.Request, error) {
	if toUserID == "" || skillsOffered == nil || skillsWanted == nil {
		return models.Request{}, fmt.Errorf("%w: missing required fields", ErrValidation)
	}
	if fromUserID == toUserID {
		return models.Request{}, ErrSelfRequest
	}
	if _, err := s.users.GetUserByID(toUserID); err != nil {
		return models.Request{}, fmt.Errorf("%w: recipient %s", ErrNotFound, toUserID)
	}

	var pending int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM requests WHERE from_user_id = ? AND to_user_id = ? AND status = 'pending'`,
		fromUserID, toUserID).Scan(&pending)
	if err != nil {
		return models.Request{}, err
	}
	if pending > 0 {
		return models.Request{}, ErrDuplicateRequest
	}

	req := models.Request{
		ID:            uuid.New().String(),
		FromUserID:    fromUserID,
		ToUserID:      toUserID,
		SkillsOffered: append([]string{}, skillsOffered...),
		SkillsWanted:  append([]string{}, skillsWanted...),
		Status:        models.RequestPending,
	}

	stmt, err := s.db.Prepare(`INSERT INTO requests
		(id, from_user_id, to_user_id, skills_offered_json, skills_wanted_json, status)
		VALUES (?, ?, ?, ?, ?, 'pending')`)
	if err != nil {
		return models.Request{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(req.ID, req.FromUserID, req.ToUserID,
		marshalJSON(req.SkillsOffered), marshalJSON(req.SkillsWanted)); err != nil {
		// The partial unique index backstops the pre-check under concurrency.
		// Anything other than the constraint firing is a storage failure.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.Request{}, ErrDuplicateRequest
		}
		return models.Request{}, err
	}

	s.events.CreateEvent("request.create", "info",
		fmt.Sprintf("Exchange request %s created", req.ID), &fromUserID)

	return s.GetRequestByID(req.ID)
}

// GetRequestByID retrieves a single request.
func (s *RequestService) GetRequestByID(id string) (models.Request, error) {
	row := s.db.QueryRow("SELECT "+requestColumns+" FROM requests WHERE id = ?", id)
	req, err := scanRequest(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Request{}, fmt.Errorf("%w: request %s", ErrNotFound, id)
		}
		return models.Request{}, err
	}
	return req, nil
}

// Accept transitions a pending request to accepted. Only the recipient may
// accept, and a request that already reached a terminal state stays there.
func (s *RequestService) Accept(requestID, actingUserID string) (models.Request, error) {
	return s.close(requestID, actingUserID, models.RequestAccepted)
}

// Reject transitions a pending request to rejected, under the same
// authorization rule as Accept.
func (s *RequestService) Reject(requestID, actingUserID string) (models.Request, error) {
	return s.close(requestID, actingUserID, models.RequestRejected)
}

func (s *RequestService) close(requestID, actingUserID, status string) (models.Request, error) {
	req, err := s.GetRequestByID(requestID)
	if err != nil {
		return models.Request{}, err
	}
	if req.ToUserID != actingUserID {
		return models.Request{}, ErrForbidden
	}
	if req.Status != models.RequestPending {
		return models.Request{}, ErrRequestClosed
	}

	now := time.Now().UTC()
	column := "accepted_at"
	if status == models.RequestRejected {
		column = "rejected_at"
	}
	// The status guard keeps a concurrent second transition from re-stamping.
	res, err := s.db.Exec(`UPDATE requests SET status = ?, `+column+` = ? WHERE id = ? AND status = 'pending'`,
		status, now, requestID)
	if err != nil {
		return models.Request{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Request{}, ErrRequestClosed
	}

	s.events.CreateEvent("request."+status, "info",
		fmt.Sprintf("Exchange request %s %s", requestID, status), &actingUserID)

	return s.GetRequestByID(requestID)
}

// ListIncoming returns all requests addressed to the user, enriched with the
// sender's public display fields.
func (s *RequestService) ListIncoming(userID string) ([]models.Request, error) {
	return s.list("to_user_id", userID)
}

// ListOutgoing returns all requests sent by the user, enriched with the
// recipient's public display fields.
func (s *RequestService) ListOutgoing(userID string) ([]models.Request, error) {
	return s.list("from_user_id", userID)
}

func (s *RequestService) list(column, userID string) ([]models.Request, error) {
	rows, err := s.db.Query("SELECT "+requestColumns+" FROM requests WHERE "+column+" = ? ORDER BY created_at DESC", userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to query requests")
		return []models.Request{}, nil
	}
	defer rows.Close()

	requests := []models.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan request row")
			continue
		}

		counterpartyID := req.FromUserID
		if column == "from_user_id" {
			counterpartyID = req.ToUserID
		}
		counterparty, err := s.users.GetUserByID(counterpartyID)
		if err != nil {
			// A request whose counterparty no longer resolves is dropped
			// from the result rather than erroring.
			log.Warn().Str("request_id", req.ID).Str("user_id", counterpartyID).Msg("Dropping request with unresolvable counterparty")
			continue
		}

		party := &models.RequestParty{
			ID:       counterparty.ID,
			FullName: counterparty.FullName,
			Photo:    counterparty.ProfilePicture,
			Initials: Initials(counterparty.FullName),
		}
		if column == "to_user_id" {
			req.FromUser = party
		} else {
			req.ToUser = party
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// CountAccepted returns the number of requests in the accepted state.
func (s *RequestService) CountAccepted() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM requests WHERE status = 'accepted'`).Scan(&count)
	return count, err
}

// CountAcceptedFor returns the number of accepted requests the user is party
// to, on either side.
func (s *RequestService) CountAcceptedFor(userID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM requests WHERE status = 'accepted' AND (from_user_id = ? OR to_user_id = ?)`,
		userID, userID).Scan(&count)
	return count, err
}
