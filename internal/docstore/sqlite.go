package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/pkordes/companion/internal/domain"
	"github.com/pkordes/companion/migrations"
)

// SQLite is a Store backed by a single SQLite file. Change notification is
// in-process only, so every writer and subscriber must share one *SQLite.
type SQLite struct {
	db  *sql.DB
	hub *hub
}

// NewSQLite opens (creating if needed) the database at path and applies the
// SQLite migrations. Pass ":memory:" for a throwaway database.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("docstore.NewSQLite: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("docstore.NewSQLite: open: %w", err)
	}
	// A single connection serialises writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("docstore.NewSQLite: ping: %w", err)
	}
	if err := migrations.Up(ctx, goose.DialectSQLite3, db, migrations.SQLite()); err != nil {
		db.Close()
		return nil, fmt.Errorf("docstore.NewSQLite: %w", err)
	}

	s := &SQLite{db: db}
	s.hub = newHub(s.List)
	return s, nil
}

// Subscribe implements Store.
func (s *SQLite) Subscribe(ctx context.Context, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error) {
	if collection == "" {
		return nil, fmt.Errorf("docstore.SQLite.Subscribe: collection is required")
	}
	return s.hub.subscribe(ctx, collection, onSnapshot, onError)
}

// Set implements Store.
func (s *SQLite) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := checkKey(collection, id); err != nil {
		return fmt.Errorf("docstore.SQLite.Set: %w", err)
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("docstore.SQLite.Set: encode: %w", err)
	}

	const q = `
		INSERT INTO documents (collection, id, data)
		VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE
		SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`

	if _, err := s.db.ExecContext(ctx, q, collection, id, string(data)); err != nil {
		return fmt.Errorf("docstore.SQLite.Set: %w", err)
	}
	s.hub.publish(collection)
	return nil
}

// Update implements Store. Fields are merged with json_patch, so a nil value
// removes the field.
func (s *SQLite) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := checkKey(collection, id); err != nil {
		return fmt.Errorf("docstore.SQLite.Update: %w", err)
	}
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("docstore.SQLite.Update: encode: %w", err)
	}

	const q = `
		UPDATE documents
		SET data = json_patch(data, ?), updated_at = CURRENT_TIMESTAMP
		WHERE collection = ? AND id = ?`

	res, err := s.db.ExecContext(ctx, q, string(patch), collection, id)
	if err != nil {
		return fmt.Errorf("docstore.SQLite.Update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("docstore.SQLite.Update: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("docstore.SQLite.Update: %s/%s: %w", collection, id, domain.ErrNotFound)
	}
	s.hub.publish(collection)
	return nil
}

// List implements Store.
func (s *SQLite) List(ctx context.Context, collection string) ([]Document, error) {
	const q = `
		SELECT id, data
		FROM documents
		WHERE collection = ?
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, q, collection)
	if err != nil {
		return nil, fmt.Errorf("docstore.SQLite.List: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var (
			doc  Document
			data string
		)
		if err := rows.Scan(&doc.ID, &data); err != nil {
			return nil, fmt.Errorf("docstore.SQLite.List: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &doc.Fields); err != nil {
			return nil, fmt.Errorf("docstore.SQLite.List: decode %s: %w", doc.ID, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("docstore.SQLite.List: rows: %w", err)
	}
	return docs, nil
}

// Close ends all subscriptions and closes the database.
func (s *SQLite) Close() error {
	s.hub.close()
	return s.db.Close()
}
