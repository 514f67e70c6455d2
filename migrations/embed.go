// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests and server bootstrap.
// Each supported database has its own directory of numbered migrations.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// FS holds all *.sql migration files embedded at compile time.
// Use For to get the subtree for one dialect instead of relying on
// a filesystem path at runtime.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// For returns the migrations for dialect, rooted so goose sees the
// numbered files directly.
func For(dialect goose.Dialect) (fs.FS, error) {
	var dir string
	switch dialect {
	case goose.DialectPostgres:
		dir = "postgres"
	case goose.DialectSQLite3:
		dir = "sqlite"
	default:
		return nil, fmt.Errorf("migrations.For: unsupported dialect %q", dialect)
	}
	return fs.Sub(FS, dir)
}

// Up applies every pending migration for dialect to db and returns the
// migrations that ran. An up-to-date database yields an empty result.
func Up(ctx context.Context, db *sql.DB, dialect goose.Dialect) ([]*goose.MigrationResult, error) {
	fsys, err := For(dialect)
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("migrations.Up: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations.Up: %w", err)
	}
	return results, nil
}
