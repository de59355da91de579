package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/model"
)

// GetUserByID retrieves a user by id.
func (s *SQLiteStorage) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "userID"); err != nil {
		return nil, err
	}

	return s.getUser(ctx, "user_id = ?", id)
}

// GetUserByEmail retrieves a user by email address.
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}

	return s.getUser(ctx, "email = ?", strings.TrimSpace(email))
}

func (s *SQLiteStorage) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var (
		user           model.User
		name, imageURL sql.NullString
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT user_id, email, name, image_url, oauth_provider, oauth_subject, created_at
		FROM users
		WHERE `+where, arg).Scan(
		&user.ID,
		&user.Email,
		&name,
		&imageURL,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Name = name.String
	user.ImageURL = imageURL.String

	return &user, nil
}

// CreateUser inserts a new user and sets its id.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	result, err := s.q.ExecContext(ctx, `
		INSERT INTO users (email, name, image_url, oauth_provider, oauth_subject, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(user.Email), nullString(user.Name), nullString(user.ImageURL),
		user.OAuthProvider, user.OAuthSubject, user.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("user %s: %w", user.Email, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if user.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}
	return nil
}
