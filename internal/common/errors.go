// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Ledger errors.
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("duplicate transaction id")

	// Remote store errors.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrRateLimit         = errors.New("rate limit exceeded")

	// Receipt pipeline errors.
	ErrNoCredential  = errors.New("no OCR credential configured")
	ErrNoItemsFound  = errors.New("no items found in receipt")
	ErrBadExtraction = errors.New("unparsable extraction response")
	ErrWrongState    = errors.New("operation not valid in current state")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
