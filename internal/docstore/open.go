package docstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/companion/migrations"
)

// Backend names accepted by Open.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Backends returns every backend name Open accepts.
func Backends() []string {
	return []string{BackendPostgres, BackendSQLite, BackendMemory}
}

// Options selects and configures a backend.
type Options struct {
	Backend     string
	DatabaseURL string // postgres
	SQLitePath  string // sqlite
}

// Open constructs the configured backend and brings its schema up to date.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return NewSQLite(ctx, opts.SQLitePath)
	case BackendPostgres:
		return openPostgres(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("docstore.Open: unknown backend %q", opts.Backend)
	}
}

func openPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	// goose needs database/sql; use a short-lived handle rather than the pool.
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("docstore.Open: open migration handle: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Up(ctx, goose.DialectPostgres, sqlDB, migrations.Postgres()); err != nil {
		return nil, fmt.Errorf("docstore.Open: %w", err)
	}

	// pgxpool.New does not open connections immediately; Ping verifies the DB is reachable.
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("docstore.Open: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("docstore.Open: ping: %w", err)
	}
	return NewPostgres(pool), nil
}
