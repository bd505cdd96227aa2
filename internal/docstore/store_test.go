package docstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/companion/internal/docstore"
	"github.com/pkordes/companion/internal/domain"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// recorder collects snapshots delivered to a subscription.
type recorder struct {
	mu    sync.Mutex
	snaps [][]docstore.Document
	errs  []error
}

func (r *recorder) onSnapshot(docs []docstore.Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, docs)
}

func (r *recorder) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func (r *recorder) last() []docstore.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return nil
	}
	return r.snaps[len(r.snaps)-1]
}

func ids(docs []docstore.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

// collectionName returns a collection unique to the calling test so suites can
// share a database without cleanup.
func collectionName() string {
	return "test_" + uuid.NewString()
}

// runStoreSuite exercises the Store contract against one backend.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Run("SetThenListOrderedByID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		c := collectionName()

		for _, id := range []string{"m3", "m1", "m5", "m2"} {
			require.NoError(t, s.Set(ctx, c, id, map[string]any{"name": id}))
		}

		docs, err := s.List(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, []string{"m1", "m2", "m3", "m5"}, ids(docs))
		assert.Equal(t, "m1", docs[0].Fields["name"])
	})

	t.Run("SetOverwrites", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		c := collectionName()

		require.NoError(t, s.Set(ctx, c, "m1", map[string]any{"name": "Hana", "color": "rose"}))
		require.NoError(t, s.Set(ctx, c, "m1", map[string]any{"name": "Hana"}))

		docs, err := s.List(ctx, c)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, map[string]any{"name": "Hana"}, docs[0].Fields)
	})

	t.Run("UpdateMergesFields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		c := collectionName()

		require.NoError(t, s.Set(ctx, c, "m2", map[string]any{"name": "Min", "color": "blue"}))
		require.NoError(t, s.Update(ctx, c, "m2", map[string]any{"name": "Minho"}))

		docs, err := s.List(ctx, c)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "Minho", docs[0].Fields["name"])
		assert.Equal(t, "blue", docs[0].Fields["color"])
	})

	t.Run("UpdateMissingDocument", func(t *testing.T) {
		s := newStore(t)

		err := s.Update(context.Background(), collectionName(), "m9", map[string]any{"name": "x"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("EmptyIDRejected", func(t *testing.T) {
		s := newStore(t)

		err := s.Set(context.Background(), collectionName(), "", map[string]any{})

		assert.Error(t, err)
	})

	t.Run("ListEmptyCollection", func(t *testing.T) {
		s := newStore(t)

		docs, err := s.List(context.Background(), collectionName())

		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("SubscribeDeliversInitialAndChanges", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		c := collectionName()
		rec := &recorder{}

		unsubscribe, err := s.Subscribe(ctx, c, rec.onSnapshot, rec.onError)
		require.NoError(t, err)
		t.Cleanup(unsubscribe)

		require.Eventually(t, func() bool { return rec.count() >= 1 }, waitFor, tick)
		assert.Empty(t, rec.last(), "initial snapshot of an empty collection")

		require.NoError(t, s.Set(ctx, c, "m1", map[string]any{"name": "Hana"}))
		require.Eventually(t, func() bool { return len(rec.last()) == 1 }, waitFor, tick)

		require.NoError(t, s.Update(ctx, c, "m1", map[string]any{"name": "Hanna"}))
		require.Eventually(t, func() bool {
			docs := rec.last()
			return len(docs) == 1 && docs[0].Fields["name"] == "Hanna"
		}, waitFor, tick)
	})

	t.Run("SubscribeIgnoresOtherCollections", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		c := collectionName()
		rec := &recorder{}

		unsubscribe, err := s.Subscribe(ctx, c, rec.onSnapshot, rec.onError)
		require.NoError(t, err)
		t.Cleanup(unsubscribe)
		require.Eventually(t, func() bool { return rec.count() == 1 }, waitFor, tick)

		require.NoError(t, s.Set(ctx, collectionName(), "x", map[string]any{}))

		assert.Never(t, func() bool { return rec.count() > 1 }, 100*time.Millisecond, tick)
	})

	t.Run("UnsubscribeStopsDelivery", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		c := collectionName()
		rec := &recorder{}

		unsubscribe, err := s.Subscribe(ctx, c, rec.onSnapshot, rec.onError)
		require.NoError(t, err)
		require.Eventually(t, func() bool { return rec.count() == 1 }, waitFor, tick)

		unsubscribe()
		unsubscribe() // idempotent

		require.NoError(t, s.Set(ctx, c, "m1", map[string]any{"name": "Hana"}))
		assert.Never(t, func() bool { return rec.count() > 1 }, 150*time.Millisecond, tick)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) docstore.Store {
		s := docstore.NewMemory()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestMemoryStore_ClosedRejectsWrites(t *testing.T) {
	s := docstore.NewMemory()
	require.NoError(t, s.Close())

	err := s.Set(context.Background(), "members", "m1", map[string]any{})
	assert.ErrorIs(t, err, docstore.ErrClosed)

	_, err = s.Subscribe(context.Background(), "members", func([]docstore.Document) {}, nil)
	assert.ErrorIs(t, err, docstore.ErrClosed)
}

func TestMemoryStore_CloseEndsSubscriptions(t *testing.T) {
	s := docstore.NewMemory()
	rec := &recorder{}
	_, err := s.Subscribe(context.Background(), "members", rec.onSnapshot, rec.onError)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.count() == 1 }, waitFor, tick)

	require.NoError(t, s.Close())

	assert.Never(t, func() bool { return rec.count() > 1 }, 100*time.Millisecond, tick)
}

func TestMemoryStore_ListReturnsCopies(t *testing.T) {
	s := docstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "members", "m1", map[string]any{"name": "Hana"}))

	docs, err := s.List(ctx, "members")
	require.NoError(t, err)
	docs[0].Fields["name"] = "mutated"

	again, err := s.List(ctx, "members")
	require.NoError(t, err)
	assert.Equal(t, "Hana", again[0].Fields["name"])
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) docstore.Store {
		s, err := docstore.NewSQLite(context.Background(), t.TempDir()+"/companion.db")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := docstore.Open(context.Background(), docstore.Options{Backend: "firestore"})

	assert.ErrorContains(t, err, "firestore")
}

func TestOpen_Memory(t *testing.T) {
	s, err := docstore.Open(context.Background(), docstore.Options{Backend: docstore.BackendMemory})

	require.NoError(t, err)
	assert.IsType(t, &docstore.Memory{}, s)
}

func TestEncodeDecode(t *testing.T) {
	in := domain.Member{ID: "m1", Name: "Hana", Color: "rose", Avatar: "a.svg"}

	fields, err := docstore.Encode(in)
	require.NoError(t, err)
	assert.Equal(t, "Hana", fields["name"])
	assert.Equal(t, "rose", fields["color"])

	var out domain.Member
	require.NoError(t, docstore.Decode(docstore.Document{ID: "m1", Fields: fields}, &out))
	assert.Equal(t, in, out)
}
