package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/moodlet/moodlet-backend/internal/config"
	"github.com/moodlet/moodlet-backend/internal/storage"
)

// openStorage opens the database at dbPath and brings its schema up to date.
func openStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	if err := config.EnsureDir(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
