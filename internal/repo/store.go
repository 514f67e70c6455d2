// Package repo contains all database access logic for the slot scheduler.
// Each resource has its own file with an interface and a Postgres implementation;
// an embedded SQLite implementation of the same interfaces lives in repo/sqlite.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so WithinTx nests cleanly inside such a test transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store groups the repositories the schedule service depends on and lets it
// run several of their calls in one transaction.
type Store interface {
	Slots() SlotRepo
	Exceptions() ExceptionRepo

	// WithinTx runs fn against a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise;
	// fn's error is returned unchanged.
	WithinTx(ctx context.Context, fn func(Store) error) error

	// Ping verifies the backing database answers queries.
	Ping(ctx context.Context) error
}

// pgStore is the Postgres implementation of Store.
type pgStore struct {
	db db
}

// NewStore constructs a Store backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStore(db db) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Slots() SlotRepo           { return &pgSlotRepo{db: s.db} }
func (s *pgStore) Exceptions() ExceptionRepo { return &pgExceptionRepo{db: s.db} }

// WithinTx begins a transaction (or a savepoint when s is already bound to one).
func (s *pgStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Store.WithinTx: begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op returning pgx.ErrTxClosed.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Store.WithinTx: commit: %w", err)
	}
	return nil
}

// Ping runs a trivial query. It works for pools and transactions alike.
func (s *pgStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("repo.Store.Ping: %w", err)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}
