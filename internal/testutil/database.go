// Package testutil provides shared test helpers for packages that sit on top
// of the storage layer.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/moodlet/moodlet-backend/internal/service"
	"github.com/moodlet/moodlet-backend/internal/storage"
)

// TestDB is a migrated SQLite database living in the test's temp dir.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a migrated database seeded with the style themes and
// the default survey form. It is closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.SeedFurniture(testutil.NewCatalog().
//		Add("oak bed", 3, "bed_frame", 0.9).
//		Products()...)
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

