package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/pkordes/slot-scheduler/internal/config"
	"github.com/pkordes/slot-scheduler/internal/repo"
	"github.com/pkordes/slot-scheduler/internal/repo/sqlite"
	"github.com/pkordes/slot-scheduler/migrations"
)

// maxPingBackoff caps the delay between two startup pings.
const maxPingBackoff = 10 * time.Second

// sqliteBusyTimeout is how long SQLite waits on a locked database file.
const sqliteBusyTimeout = 5 * time.Second

// pinger is satisfied by *pgxpool.Pool and repo.Store.
type pinger interface {
	Ping(ctx context.Context) error
}

// OpenStore opens the store selected by cfg.StoreDriver, waits for it to
// answer a ping, and applies pending migrations when cfg.MigrateOnStart is set.
// The returned func releases the underlying connections.
func OpenStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg, log)
	default:
		return nil, nil, fmt.Errorf("app.OpenStore: unsupported store driver %q", cfg.StoreDriver)
	}
}

func openPostgres(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.Store, func(), error) {
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("app.OpenStore: create pool: %w", err)
	}

	// Verify the DB is reachable before accepting traffic.
	if err := PingWithRetry(ctx, pool, cfg.DBConnectRetries, cfg.DBConnectBackoff, log); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("app.OpenStore: connect: %w", err)
	}
	log.InfoContext(ctx, "database connection established", "driver", config.DriverPostgres)

	if cfg.MigrateOnStart {
		// goose works on *sql.DB, so borrow one backed by the same pool.
		// Closing it does not close the pool.
		db := stdlib.OpenDBFromPool(pool)
		results, err := migrations.Up(ctx, db, goose.DialectPostgres)
		_ = db.Close()
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("app.OpenStore: %w", err)
		}
		log.InfoContext(ctx, "migrations applied", "count", len(results))
	}

	return repo.NewStore(pool), pool.Close, nil
}

func openSQLite(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.Store, func(), error) {
	db, err := sqlite.Open(ctx, cfg.SQLitePath, sqliteBusyTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("app.OpenStore: %w", err)
	}
	closeDB := func() { _ = db.Close() }
	log.InfoContext(ctx, "database opened", "driver", config.DriverSQLite, "path", cfg.SQLitePath)

	if cfg.MigrateOnStart {
		results, err := migrations.Up(ctx, db, goose.DialectSQLite3)
		if err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("app.OpenStore: %w", err)
		}
		log.InfoContext(ctx, "migrations applied", "count", len(results))
	}

	return sqlite.NewStore(db), closeDB, nil
}

// PingWithRetry pings p until it answers, retrying up to retries more times
// with exponential backoff starting at backoff and capped at maxPingBackoff.
// It returns the last ping error once retries are exhausted, or the context
// error if ctx ends first.
func PingWithRetry(ctx context.Context, p pinger, retries uint64, backoff time.Duration, log *slog.Logger) error {
	if backoff <= 0 {
		backoff = time.Millisecond
	}
	b := retry.NewExponential(backoff)
	b = retry.WithCappedDuration(maxPingBackoff, b)
	b = retry.WithMaxRetries(retries, b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		if err := p.Ping(ctx); err != nil {
			log.WarnContext(ctx, "database not reachable", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}
