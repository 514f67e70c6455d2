// Package sqlite implements the repo interfaces on an embedded SQLite database
// (modernc.org/sqlite, no cgo). It suits single-node deployments and gives the
// integration tests a real database without a running server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/pkordes/slot-scheduler/internal/repo"
)

// timestampLayout is how created_at and updated_at are stored. The fixed-width
// fraction keeps text order equal to time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens (creating if needed) the SQLite database at path and applies the
// connection pragmas the store relies on. Pass MemoryPath for a throwaway
// database. Callers are responsible for closing the returned *sql.DB.
func Open(ctx context.Context, path string, busyTimeout time.Duration) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite.Open: path is required")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.Open: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}
	// A single connection serializes writers, which is what makes the
	// check-then-insert in slot creation safe, and keeps an in-memory
	// database alive for the lifetime of the *sql.DB.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}
	return db, nil
}

// dsn carries the pragmas as _pragma query parameters, which the driver
// applies to every connection it opens, including replacements for
// connections the pool discards.
func dsn(path string, busyTimeout time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	if busyTimeout > 0 {
		q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	}
	if path != MemoryPath {
		q.Add("_pragma", "journal_mode(WAL)")
		q.Add("_pragma", "synchronous(NORMAL)")
	}
	return path + "?" + q.Encode()
}

// store is the SQLite implementation of repo.Store.
type store struct {
	q  querier
	db *sql.DB // nil when q is a transaction
}

// NewStore constructs a repo.Store backed by db.
// The database must have been migrated with the sqlite migrations.
func NewStore(db *sql.DB) repo.Store {
	return &store{q: db, db: db}
}

func (s *store) Slots() repo.SlotRepo           { return &slotRepo{q: s.q} }
func (s *store) Exceptions() repo.ExceptionRepo { return &exceptionRepo{q: s.q} }

// WithinTx begins a transaction. SQLite has no cheap nested transactions, so a
// store already bound to one runs fn inside the outer transaction.
func (s *store) WithinTx(ctx context.Context, fn func(repo.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite.Store.WithinTx: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&store{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite.Store.WithinTx: commit: %w", err)
	}
	return nil
}

// Ping runs a trivial query on the bound connection or transaction.
func (s *store) Ping(ctx context.Context) error {
	var one int
	if err := s.q.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("sqlite.Store.Ping: %w", err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func now() string {
	return time.Now().UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
