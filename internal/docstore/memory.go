package docstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/pkordes/companion/internal/domain"
)

// Memory is an in-process Store. Contents are lost when the process exits.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]map[string]map[string]any // collection -> id -> fields
	closed bool

	hub *hub
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	m := &Memory{data: make(map[string]map[string]map[string]any)}
	m.hub = newHub(m.List)
	return m
}

// Subscribe implements Store.
func (m *Memory) Subscribe(ctx context.Context, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error) {
	if collection == "" {
		return nil, fmt.Errorf("docstore.Memory.Subscribe: collection is required")
	}
	return m.hub.subscribe(ctx, collection, onSnapshot, onError)
}

// Set implements Store.
func (m *Memory) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := checkKey(collection, id); err != nil {
		return fmt.Errorf("docstore.Memory.Set: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("docstore.Memory.Set: %w", err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("docstore.Memory.Set: %w", ErrClosed)
	}
	docs, ok := m.data[collection]
	if !ok {
		docs = make(map[string]map[string]any)
		m.data[collection] = docs
	}
	docs[id] = copyFields(fields)
	m.mu.Unlock()

	m.hub.publish(collection)
	return nil
}

// Update implements Store.
func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := checkKey(collection, id); err != nil {
		return fmt.Errorf("docstore.Memory.Update: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("docstore.Memory.Update: %w", err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("docstore.Memory.Update: %w", ErrClosed)
	}
	doc, ok := m.data[collection][id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("docstore.Memory.Update: %s/%s: %w", collection, id, domain.ErrNotFound)
	}
	merged := copyFields(doc)
	for k, v := range fields {
		merged[k] = v
	}
	m.data[collection][id] = merged
	m.mu.Unlock()

	m.hub.publish(collection)
	return nil
}

// List implements Store.
func (m *Memory) List(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("docstore.Memory.List: %w", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("docstore.Memory.List: %w", ErrClosed)
	}

	docs := make([]Document, 0, len(m.data[collection]))
	for id, fields := range m.data[collection] {
		docs = append(docs, Document{ID: id, Fields: copyFields(fields)})
	}
	slices.SortFunc(docs, func(a, b Document) int { return strings.Compare(a.ID, b.ID) })
	return docs, nil
}

// Close ends all subscriptions. Later calls on the store return ErrClosed.
func (m *Memory) Close() error {
	m.hub.close()
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
