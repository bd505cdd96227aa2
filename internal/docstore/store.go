// Package docstore is the document-store collaborator behind the trip companion.
// A store holds named collections of documents (an id plus a flat field map)
// and lets callers subscribe to live snapshots of a collection.
//
// Three backends implement Store: Memory (tests and demos), SQLite (single
// node, in-process change notification) and Postgres (LISTEN/NOTIFY).
package docstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a store after Close.
var ErrClosed = errors.New("docstore: closed")

// Document is one entry of a collection.
type Document struct {
	ID     string
	Fields map[string]any
}

// SnapshotFunc receives the full contents of a collection, ordered by id.
// Calls for one subscription never overlap.
type SnapshotFunc func(docs []Document)

// ErrorFunc receives errors that end or interrupt a subscription.
type ErrorFunc func(err error)

// Unsubscribe releases a subscription. It is safe to call more than once and
// blocks until any in-flight SnapshotFunc has returned; after it returns no
// further callbacks fire. It must not be called from inside a callback.
type Unsubscribe func()

// Store is the set of primitives the shell and services depend on.
type Store interface {
	// Subscribe registers a live listener on collection. The current contents
	// are delivered first, then a new snapshot after every change.
	Subscribe(ctx context.Context, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error)

	// Set creates or overwrites the document id in collection.
	Set(ctx context.Context, collection, id string, fields map[string]any) error

	// Update merges fields into an existing document.
	// Returns domain.ErrNotFound if the document does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// List returns the current contents of collection once, ordered by id.
	List(ctx context.Context, collection string) ([]Document, error)

	// Close releases the backend's resources and ends every subscription.
	Close() error
}

// checkKey rejects empty collection names and ids before they reach a backend.
func checkKey(collection, id string) error {
	if collection == "" {
		return fmt.Errorf("docstore: collection is required")
	}
	if id == "" {
		return fmt.Errorf("docstore: document id is required")
	}
	return nil
}
