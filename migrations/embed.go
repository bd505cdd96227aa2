// Package migrations embeds the SQL migration files for each document-store
// backend and applies them with the goose provider API. It is used by store
// bootstrap and by the integration tests.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns the migrations for the Postgres backend.
func Postgres() fs.FS {
	return sub("postgres")
}

// SQLite returns the migrations for the SQLite backend.
func SQLite() fs.FS {
	return sub("sqlite")
}

func sub(dir string) fs.FS {
	fsys, err := fs.Sub(files, dir)
	if err != nil {
		// Only reachable if the embed pattern above is changed.
		panic("migrations: " + err.Error())
	}
	return fsys
}

// Up applies every pending migration in fsys to db.
func Up(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS) error {
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("migrations.Up: create provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrations.Up: %w", err)
	}
	return nil
}
