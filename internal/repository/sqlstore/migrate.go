package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// MigrationResult describes one applied migration.
type MigrationResult struct {
	Version int64
	Source  string
}

// Migrate applies every pending migration for the store's dialect.
func Migrate(ctx context.Context, s *Store) ([]MigrationResult, error) {
	provider, err := newProvider(s)
	if err != nil {
		return nil, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	applied := make([]MigrationResult, 0, len(results))
	for _, r := range results {
		applied = append(applied, MigrationResult{
			Version: r.Source.Version,
			Source:  r.Source.Path,
		})
	}
	return applied, nil
}

// MigrationVersion reports the current schema version.
func MigrationVersion(ctx context.Context, s *Store) (int64, error) {
	provider, err := newProvider(s)
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

func newProvider(s *Store) (*goose.Provider, error) {
	var (
		dialect goose.Dialect
		dir     string
	)
	switch s.dialect {
	case DialectSQLite:
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	case DialectPostgres:
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	default:
		return nil, fmt.Errorf("unsupported dialect %q", s.dialect)
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, s.db, fsys)
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}
	return provider, nil
}
