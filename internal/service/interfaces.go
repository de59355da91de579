// Package service declares the storage contract the survey, recommendation
// and auth services are written against.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/moodlet/moodlet-backend/internal/model"
)

// Storage persists survey sessions, style results, the furniture catalog and
// users.
type Storage interface {
	// Survey form
	ListActiveGlobalQuestions(ctx context.Context) ([]model.GlobalQuestion, error)

	// Sessions
	CreateSession(ctx context.Context, userID *int64) (*model.Session, error)
	GetSession(ctx context.Context, id int64) (*model.Session, error)
	CompleteSession(ctx context.Context, id int64, at time.Time) error
	AddSessionQuestions(ctx context.Context, questions []model.SessionQuestion) error
	ListSessionQuestions(ctx context.Context, sessionID int64) ([]model.SessionQuestion, error)
	UpsertSessionAnswer(ctx context.Context, sessionID, questionID int64, answer json.RawMessage) error
	ListSessionAnswers(ctx context.Context, sessionID int64) ([]model.SessionAnswer, error)

	// Classification results
	ReplaceStyleResults(ctx context.Context, sessionID int64, results []model.StyleResult) error
	ListStyleResults(ctx context.Context, sessionID int64) ([]model.StyleResult, error)
	GetTopStyleResult(ctx context.Context, sessionID int64) (*model.StyleResult, error)

	// Themes and furniture
	GetStyleTheme(ctx context.Context, id int64) (*model.StyleTheme, error)
	ListStyleThemes(ctx context.Context) ([]model.StyleTheme, error)
	SaveFurniture(ctx context.Context, product *model.FurnitureProduct) error
	ListFurnitureCategories(ctx context.Context, themeID int64) ([]string, error)
	ListTopFurniture(ctx context.Context, themeID int64, category string, limit int) ([]model.FurnitureProduct, error)
	ListFurnitureByCategories(ctx context.Context, categories []string) ([]model.FurnitureProduct, error)
	GetFurnitureDetail(ctx context.Context, id int64) (*model.FurnitureProduct, error)

	// Users
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error

	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction is a Storage whose calls share one database transaction.
type Transaction interface {
	Storage
	Commit() error
	Rollback() error
}

// RetryOptions tunes the backoff used around AI provider calls.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
