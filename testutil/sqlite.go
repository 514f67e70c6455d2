package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"

	"github.com/pkordes/slot-scheduler/internal/repo"
	"github.com/pkordes/slot-scheduler/internal/repo/sqlite"
	"github.com/pkordes/slot-scheduler/migrations"
)

// NewSQLiteDB opens a private in-memory SQLite database with every sqlite
// migration applied. It is closed automatically when the test finishes.
func NewSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, sqlite.MemoryPath, 0)
	if err != nil {
		t.Fatalf("testutil.NewSQLiteDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := migrations.Up(ctx, db, goose.DialectSQLite3); err != nil {
		t.Fatalf("testutil.NewSQLiteDB: %v", err)
	}
	return db
}

// NewSQLiteStore returns a repo.Store over a fresh in-memory database.
func NewSQLiteStore(t *testing.T) repo.Store {
	t.Helper()
	return sqlite.NewStore(NewSQLiteDB(t))
}
