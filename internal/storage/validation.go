// Package storage provides the data persistence layer for the moodlet backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/moodlet/moodlet-backend/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidID         = errors.New("id must be positive")
	ErrInvalidQuestion   = errors.New("invalid session question")
	ErrInvalidAnswer     = errors.New("invalid session answer")
	ErrInvalidResult     = errors.New("invalid style result")
	ErrInvalidUser       = errors.New("invalid user")
	ErrInvalidFurniture  = errors.New("invalid furniture product")
	ErrInvalidQueryLimit = errors.New("limit must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures an identifier is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s=%d", ErrInvalidID, paramName, id)
	}
	return nil
}

// validateSessionQuestion validates a question before it is snapshotted.
func validateSessionQuestion(q *model.SessionQuestion) error {
	if q == nil {
		return fmt.Errorf("%w: question", ErrNilParameter)
	}
	if q.SessionID <= 0 {
		return fmt.Errorf("%w: missing session id", ErrInvalidQuestion)
	}
	if strings.TrimSpace(q.Code) == "" {
		return fmt.Errorf("%w: missing code", ErrInvalidQuestion)
	}
	if strings.TrimSpace(q.QuestionText) == "" {
		return fmt.Errorf("%w: missing question text", ErrInvalidQuestion)
	}
	if !q.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, q.Type)
	}
	switch q.Source {
	case model.SourceGlobal, model.SourceAI:
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidQuestion, q.Source)
	}
	return nil
}

// validateStyleResult validates a ranked style result.
func validateStyleResult(r *model.StyleResult) error {
	if r == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}
	if r.ThemeID <= 0 {
		return fmt.Errorf("%w: missing theme id", ErrInvalidResult)
	}
	if r.Rank <= 0 {
		return fmt.Errorf("%w: rank must be positive", ErrInvalidResult)
	}
	if r.Score < 0 || r.Score > 1 {
		return fmt.Errorf("%w: score must be between 0 and 1", ErrInvalidResult)
	}
	return nil
}

// validateUser validates an OAuth user.
func validateUser(u *model.User) error {
	if u == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: missing email", ErrInvalidUser)
	}
	if strings.TrimSpace(u.OAuthProvider) == "" {
		return fmt.Errorf("%w: missing oauth provider", ErrInvalidUser)
	}
	if strings.TrimSpace(u.OAuthSubject) == "" {
		return fmt.Errorf("%w: missing oauth subject", ErrInvalidUser)
	}
	return nil
}

// validateFurniture validates a catalog product.
func validateFurniture(p *model.FurnitureProduct) error {
	if p == nil {
		return fmt.Errorf("%w: product", ErrNilParameter)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidFurniture)
	}
	return nil
}
