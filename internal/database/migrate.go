package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationFS は方言ごとのマイグレーションディレクトリを返します。
func migrationFS(d Dialect) (fs.FS, error) {
	sub, err := fs.Sub(migrationsFS, path.Join("migrations", string(d)))
	if err != nil {
		return nil, fmt.Errorf("could not load %s migrations: %w", d, err)
	}
	return sub, nil
}

func newProvider(db *sql.DB, d Dialect) (*goose.Provider, error) {
	fsys, err := migrationFS(d)
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(d.gooseDialect(), db, fsys)
	if err != nil {
		return nil, fmt.Errorf("could not create migration provider: %w", err)
	}
	return provider, nil
}

// Migrate は未適用のマイグレーションをすべて適用します。
func Migrate(ctx context.Context, db *sql.DB, d Dialect) ([]*goose.MigrationResult, error) {
	provider, err := newProvider(db, d)
	if err != nil {
		return nil, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return results, fmt.Errorf("could not apply migrations: %w", err)
	}
	for _, r := range results {
		slog.Info("applied migration",
			"version", r.Source.Version,
			"file", r.Source.Path,
			"duration", r.Duration)
	}
	return results, nil
}

// MigrationStatus は各マイグレーションの適用状態を返します。
func MigrationStatus(ctx context.Context, db *sql.DB, d Dialect) ([]*goose.MigrationStatus, error) {
	provider, err := newProvider(db, d)
	if err != nil {
		return nil, err
	}
	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read migration status: %w", err)
	}
	return statuses, nil
}
