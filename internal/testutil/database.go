// Package testutil provides test helpers shared across packages: a migrated
// SQLite store, an in-memory store with failure injection and record fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory SQLite store seeded with records.
// It is closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewRecord(1).Offers("КК").Build(),
//	)
func SetupTestDB(t *testing.T, records ...model.ReportRecord) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Records: records})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	// CustomSetup runs after migrations and seeding.
	CustomSetup func(context.Context, *storage.SQLiteStorage) error
	// Path selects a database file; empty means in-memory.
	Path    string
	Records []model.ReportRecord
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	path := opts.Path
	if path == "" {
		path = ":memory:"
	}

	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for i := range opts.Records {
		if err := store.SaveRecord(ctx, &opts.Records[i]); err != nil {
			t.Fatalf("failed to seed record %q: %v", opts.Records[i].ID, err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// MustLoadUser returns every record of userID or fails the test.
func (db *TestDB) MustLoadUser(userID int64) []model.ReportRecord {
	db.t.Helper()
	records, err := db.Storage.LoadRecords(context.Background(), UserFilter(userID))
	if err != nil {
		db.t.Fatalf("failed to load records: %v", err)
	}
	return records
}
