package services

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes with errors.Is.
var (
	ErrValidation         = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateRequest   = errors.New("request already sent")
	ErrRequestClosed      = errors.New("request already accepted or rejected")
	ErrSelfRequest        = errors.New("cannot send a request to yourself")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSkillExists        = errors.New("skill already added")
)
