// Package dbmigrate applies embedded goose migrations to Postgres.
package dbmigrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" //nolint:blank-imports // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
)

// Up applies every pending migration found in fsys to the database at dsn.
func Up(ctx context.Context, dsn string, fsys fs.FS) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("dbmigrate: open: %w", err)
	}
	defer func() {
		if cErr := db.Close(); cErr != nil {
			slog.WarnContext(ctx, "failed to close migration connection", "error", cErr)
		}
	}()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("dbmigrate: provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("dbmigrate: up: %w", err)
	}

	for _, r := range results {
		slog.InfoContext(ctx, "migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration", r.Duration.String(),
		)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("dbmigrate: version: %w", err)
	}
	slog.InfoContext(ctx, "database schema is up to date", "version", version, "applied", len(results))

	return nil
}
