package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrInvalidDate = fmt.Errorf("%w: scheduled date must be in the future", ErrValidation)

	ErrNotFound     = errors.New("post not found")
	ErrConflict     = errors.New("conflict")
	ErrNotPublished = fmt.Errorf("%w: post is not published", ErrConflict)

	ErrNotLinked = errors.New("linkedin account not connected")

	ErrUpstream      = errors.New("upstream service failed")
	ErrAuthFailed    = fmt.Errorf("%w: linkedin authorization failed", ErrUpstream)
	ErrProfileFetch  = fmt.Errorf("%w: failed to fetch linkedin profile", ErrUpstream)
	ErrPublishFailed = fmt.Errorf("%w: failed to publish post to linkedin", ErrUpstream)

	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidState       = errors.New("invalid or expired oauth state")
	ErrApiKeyLimit        = errors.New("only 5 API keys can be created")
	ErrApiKeyNotFound     = errors.New("api key doesn't exist")
)

// validationError tags a DTO validation failure so handlers can map it to 400.
func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
