// Package common holds the error values, logging setup and retry helpers
// shared by the moodlet services.
package common

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is by the HTTP layer.
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionMismatch = errors.New("session_id mismatch")
	ErrUnauthorized    = errors.New("unauthorized")

	// ErrAIResponse means the model answered with something the survey
	// flow cannot use.
	ErrAIResponse = errors.New("unusable AI response")

	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError pairs an internal cause with the text returned to API clients.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
}

func (e *UserError) Unwrap() error { return e.Err }

// NewUserError wraps err with a client-facing message.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// ClientMessage returns the client-facing text of the first UserError in
// err's chain.
func ClientMessage(err error) (string, bool) {
	var ue *UserError
	if !errors.As(err, &ue) {
		return "", false
	}
	return ue.UserMessage, true
}
