package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/moodlet/moodlet-backend/internal/common"
	"github.com/moodlet/moodlet-backend/internal/model"
)

func TestSQLiteStorage_ReplaceStyleResults(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	session, err := store.CreateSession(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	first := []model.StyleResult{
		{ThemeID: 1, Score: 1.0, Rank: 1},
		{ThemeID: 2, Score: 0.8, Rank: 2},
		{ThemeID: 3, Score: 0.8, Rank: 3},
	}
	if err := store.ReplaceStyleResults(ctx, session.ID, first); err != nil {
		t.Fatalf("Failed to save results: %v", err)
	}

	second := []model.StyleResult{
		{ThemeID: 5, Score: 1.0, Rank: 1},
		{ThemeID: 2, Score: 0.8, Rank: 2},
	}
	if err := store.ReplaceStyleResults(ctx, session.ID, second); err != nil {
		t.Fatalf("Failed to replace results: %v", err)
	}

	results, err := store.ListStyleResults(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 after replace", len(results))
	}
	if results[0].ThemeID != 5 || results[0].Rank != 1 || results[0].Score != 1.0 {
		t.Errorf("rank 1 = %+v, want theme 5 score 1.0", results[0])
	}
	if results[1].ThemeID != 2 || results[1].Rank != 2 || results[1].Score != 0.8 {
		t.Errorf("rank 2 = %+v, want theme 2 score 0.8", results[1])
	}

	top, err := store.GetTopStyleResult(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to get top result: %v", err)
	}
	if top.ThemeID != 5 {
		t.Errorf("top theme = %d, want 5", top.ThemeID)
	}
}

func TestSQLiteStorage_GetTopStyleResult_Missing(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	session, err := store.CreateSession(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if _, err := store.GetTopStyleResult(ctx, session.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetTopStyleResult error = %v, want %v", err, common.ErrNotFound)
	}
}

func TestSQLiteStorage_ReplaceStyleResults_Invalid(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	session, err := store.CreateSession(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	tests := []struct {
		name   string
		result model.StyleResult
	}{
		{"missing theme", model.StyleResult{Score: 1, Rank: 1}},
		{"zero rank", model.StyleResult{ThemeID: 1, Score: 1}},
		{"score above one", model.StyleResult{ThemeID: 1, Score: 1.5, Rank: 1}},
		{"negative score", model.StyleResult{ThemeID: 1, Score: -0.1, Rank: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.ReplaceStyleResults(ctx, session.ID, []model.StyleResult{tt.result})
			if !errors.Is(err, ErrInvalidResult) {
				t.Errorf("ReplaceStyleResults error = %v, want %v", err, ErrInvalidResult)
			}
		})
	}

	// A rejected batch leaves nothing behind.
	results, err := store.ListStyleResults(ctx, session.ID)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results after rejected writes, want 0", len(results))
	}
}
