package storage

import (
	"context"
	"testing"

	"github.com/moodlet/moodlet-backend/internal/model"
	"github.com/moodlet/moodlet-backend/internal/style"
)

func TestMigrate_SchemaVersion(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("Failed to read schema version: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, ExpectedSchemaVersion)
	}

	// Running again is a no-op.
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}

	var themeCount int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM style_theme`).Scan(&themeCount); err != nil {
		t.Fatalf("Failed to count themes: %v", err)
	}
	if themeCount != len(style.All()) {
		t.Errorf("theme count after re-migrate = %d, want %d", themeCount, len(style.All()))
	}
}

func TestMigrate_SeedsThemes(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	themes, err := store.ListStyleThemes(ctx)
	if err != nil {
		t.Fatalf("Failed to list themes: %v", err)
	}
	if len(themes) != 8 {
		t.Fatalf("got %d themes, want 8", len(themes))
	}

	for _, theme := range themes {
		code, ok := style.Parse(theme.Name)
		if !ok {
			t.Errorf("theme %d has unknown name %q", theme.ID, theme.Name)
			continue
		}
		id, _ := style.ThemeID(theme.Name)
		if id != theme.ID {
			t.Errorf("theme %s stored with id %d, want %d", code, theme.ID, id)
		}
		if theme.Description != style.Label(code) {
			t.Errorf("theme %s description = %q, want %q", code, theme.Description, style.Label(code))
		}
	}
}

func TestMigrate_SeedsGlobalQuestions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	questions, err := store.ListActiveGlobalQuestions(context.Background())
	if err != nil {
		t.Fatalf("Failed to list global questions: %v", err)
	}
	if len(questions) != 7 {
		t.Fatalf("got %d global questions, want 7", len(questions))
	}

	for i, q := range questions {
		wantCode := "Q" + string(rune('1'+i))
		if q.Code != wantCode {
			t.Errorf("question %d code = %q, want %q", i, q.Code, wantCode)
		}
		if q.Type != model.QuestionSingle {
			t.Errorf("question %s type = %q, want SINGLE", q.Code, q.Type)
		}
		if q.OrderNo != i+1 {
			t.Errorf("question %s order = %d, want %d", q.Code, q.OrderNo, i+1)
		}
		if len(q.Options) != 3 {
			t.Fatalf("question %s has %d options, want 3", q.Code, len(q.Options))
		}
		for j, opt := range q.Options {
			if want := string(rune('A' + j)); opt.Value != want {
				t.Errorf("question %s option %d value = %q, want %q", q.Code, j, opt.Value, want)
			}
			if opt.Label == "" {
				t.Errorf("question %s option %s has no label", q.Code, opt.Value)
			}
		}
	}
}

func TestMigrate_InactiveQuestionsHidden(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.db.Exec(`UPDATE survey_global_question SET active = 0 WHERE code = 'Q2'`); err != nil {
		t.Fatalf("Failed to deactivate question: %v", err)
	}

	questions, err := store.ListActiveGlobalQuestions(ctx)
	if err != nil {
		t.Fatalf("Failed to list global questions: %v", err)
	}
	if len(questions) != 6 {
		t.Fatalf("got %d questions, want 6", len(questions))
	}
	for _, q := range questions {
		if q.Code == "Q2" {
			t.Error("inactive question Q2 was returned")
		}
	}
}
