package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// Helper function to create a session with the global questions snapshotted.
func createTestSession(t *testing.T, store *SQLiteStorage) (*model.Session, []model.SessionQuestion) {
	t.Helper()
	ctx := context.Background()

	session, err := store.CreateSession(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	globals, err := store.ListActiveGlobalQuestions(ctx)
	if err != nil {
		t.Fatalf("Failed to list global questions: %v", err)
	}

	questions := make([]model.SessionQuestion, 0, len(globals))
	for _, g := range globals {
		questions = append(questions, model.SessionQuestion{
			SessionID:    session.ID,
			Source:       model.SourceGlobal,
			Code:         g.Code,
			Type:         g.Type,
			OrderNo:      g.OrderNo,
			QuestionText: g.QuestionText,
			Options:      g.Options,
		})
	}
	if err := store.AddSessionQuestions(ctx, questions); err != nil {
		t.Fatalf("Failed to add session questions: %v", err)
	}

	return session, questions
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStorage(""); !errors.Is(err, ErrEmptyString) {
		t.Errorf("NewSQLiteStorage(\"\") error = %v, want %v", err, ErrEmptyString)
	}
}

func TestSQLiteStorage_Path(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	if filepath.Base(store.Path()) != "test.db" {
		t.Errorf("Path() = %q, want a test.db file", store.Path())
	}
}

func TestSQLiteStorage_TransactionCommit(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	session, err := tx.CreateSession(ctx, nil)
	if err != nil {
		_ = tx.Rollback()
		t.Fatalf("Failed to create session in transaction: %v", err)
	}
	if err := tx.ReplaceStyleResults(ctx, session.ID, []model.StyleResult{
		{ThemeID: 5, Score: 1.0, Rank: 1},
	}); err != nil {
		_ = tx.Rollback()
		t.Fatalf("Failed to save results in transaction: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}

	top, err := store.GetTopStyleResult(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to read committed result: %v", err)
	}
	if top.ThemeID != 5 {
		t.Errorf("ThemeID = %d, want 5", top.ThemeID)
	}
}

func TestSQLiteStorage_TransactionRollback(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	session, err := tx.CreateSession(ctx, nil)
	if err != nil {
		_ = tx.Rollback()
		t.Fatalf("Failed to create session in transaction: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Failed to roll back: %v", err)
	}

	if _, err := store.GetSession(ctx, session.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetSession after rollback error = %v, want %v", err, common.ErrNotFound)
	}
}

func TestSQLiteStorage_TransactionRestrictions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.Migrate(ctx); err == nil {
		t.Error("Migrate inside a transaction should fail")
	}
	if _, err := tx.BeginTx(ctx); err == nil {
		t.Error("nested BeginTx should fail")
	}
	if err := tx.Close(); err == nil {
		t.Error("Close on a transaction should fail")
	}
}

func TestSQLiteStorage_NilContext(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	//nolint:staticcheck // nil context is what is under test
	if _, err := store.GetSession(nil, 1); !errors.Is(err, ErrNilContext) {
		t.Errorf("GetSession(nil) error = %v, want %v", err, ErrNilContext)
	}
	//nolint:staticcheck // nil context is what is under test
	if _, err := store.ListActiveGlobalQuestions(nil); !errors.Is(err, ErrNilContext) {
		t.Errorf("ListActiveGlobalQuestions(nil) error = %v, want %v", err, ErrNilContext)
	}
}

func TestSQLiteStorage_CompleteSession(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	session, err := store.CreateSession(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	at := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	if err := store.CompleteSession(ctx, session.ID, at); err != nil {
		t.Fatalf("Failed to complete session: %v", err)
	}

	got, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(at) {
		t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, at)
	}

	if err := store.CompleteSession(ctx, session.ID+100, at); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("CompleteSession(missing) error = %v, want %v", err, common.ErrNotFound)
	}
}
