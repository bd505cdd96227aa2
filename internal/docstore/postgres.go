package docstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkordes/companion/internal/domain"
)

// notifyChannel must match the channel used by the notify_document_change trigger.
const notifyChannel = "docstore_changes"

// db is the minimal interface satisfied by *pgxpool.Pool, *pgxpool.Conn, and pgx.Tx.
// The read/write helpers accept it so the same SQL serves both the pool and
// the dedicated listener connection.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is a Store backed by the documents table. Subscriptions hold a
// dedicated pool connection that LISTENs on notifyChannel and re-reads the
// collection on every notification for it.
type Postgres struct {
	pool *pgxpool.Pool

	mu   sync.Mutex
	subs map[*pgSubscription]struct{}
}

type pgSubscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPostgres wraps an open pool. The schema must already be migrated;
// Open does both.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, subs: make(map[*pgSubscription]struct{})}
}

// Subscribe implements Store. A failure of the listener connection is passed
// to onError and ends the subscription; callers resubscribe if they want to.
func (p *Postgres) Subscribe(ctx context.Context, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error) {
	if collection == "" {
		return nil, fmt.Errorf("docstore.Postgres.Subscribe: collection is required")
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("docstore.Postgres.Subscribe: acquire: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("docstore.Postgres.Subscribe: listen: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &pgSubscription{cancel: cancel, done: make(chan struct{})}

	p.mu.Lock()
	p.subs[s] = struct{}{}
	p.mu.Unlock()

	go p.listen(ctx, s, conn, collection, onSnapshot, onError)

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-s.done
		})
	}, nil
}

func (p *Postgres) listen(ctx context.Context, s *pgSubscription, conn *pgxpool.Conn, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) {
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// Never hand a listening connection back to the pool.
		if _, err := conn.Exec(cleanupCtx, "UNLISTEN "+notifyChannel); err != nil {
			_ = conn.Conn().Close(cleanupCtx)
		}
		conn.Release()

		p.mu.Lock()
		delete(p.subs, s)
		p.mu.Unlock()
		close(s.done)
	}()

	fail := func(err error) {
		if ctx.Err() == nil && onError != nil {
			onError(fmt.Errorf("docstore.Postgres.Subscribe %s: %w", collection, err))
		}
	}

	deliver := func() bool {
		docs, err := listDocuments(ctx, conn, collection)
		if ctx.Err() != nil {
			return false
		}
		if err != nil {
			fail(err)
			return false
		}
		onSnapshot(docs)
		return true
	}

	if !deliver() {
		return
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			fail(err)
			return
		}
		if n.Payload != collection {
			continue
		}
		if !deliver() {
			return
		}
	}
}

// Set implements Store.
func (p *Postgres) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := checkKey(collection, id); err != nil {
		return fmt.Errorf("docstore.Postgres.Set: %w", err)
	}

	const q = `
		INSERT INTO documents (collection, id, data)
		VALUES (@collection, @id, @data)
		ON CONFLICT (collection, id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = now()`

	args := pgx.NamedArgs{
		"collection": collection,
		"id":         id,
		"data":       fields,
	}
	if _, err := p.pool.Exec(ctx, q, args); err != nil {
		return fmt.Errorf("docstore.Postgres.Set: %w", err)
	}
	return nil
}

// Update implements Store. Fields are merged with the jsonb || operator.
func (p *Postgres) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := checkKey(collection, id); err != nil {
		return fmt.Errorf("docstore.Postgres.Update: %w", err)
	}

	const q = `
		UPDATE documents
		SET data       = data || @fields,
		    updated_at = now()
		WHERE collection = @collection AND id = @id`

	args := pgx.NamedArgs{
		"collection": collection,
		"id":         id,
		"fields":     fields,
	}
	tag, err := p.pool.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("docstore.Postgres.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("docstore.Postgres.Update: %s/%s: %w", collection, id, domain.ErrNotFound)
	}
	return nil
}

// List implements Store.
func (p *Postgres) List(ctx context.Context, collection string) ([]Document, error) {
	docs, err := listDocuments(ctx, p.pool, collection)
	if err != nil {
		return nil, fmt.Errorf("docstore.Postgres.List: %w", err)
	}
	return docs, nil
}

// Close ends every subscription and closes the pool.
func (p *Postgres) Close() error {
	p.mu.Lock()
	subs := make([]*pgSubscription, 0, len(p.subs))
	for s := range p.subs {
		subs = append(subs, s)
	}
	p.mu.Unlock()

	for _, s := range subs {
		s.cancel()
		<-s.done
	}
	p.pool.Close()
	return nil
}

// listDocuments reads a collection ordered by id in byte order, matching the
// ordering of the other backends regardless of the database collation.
func listDocuments(ctx context.Context, q db, collection string) ([]Document, error) {
	const sql = `
		SELECT id, data
		FROM documents
		WHERE collection = @collection
		ORDER BY id COLLATE "C"`

	rows, err := q.Query(ctx, sql, pgx.NamedArgs{"collection": collection})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Fields); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return docs, nil
}
