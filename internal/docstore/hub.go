package docstore

import (
	"context"
	"sync"
)

// loadFunc reads the current contents of a collection.
type loadFunc func(ctx context.Context, collection string) ([]Document, error)

// hub fans change notifications out to in-process subscribers.
// Each subscription owns one goroutine, so its callbacks run in order and
// never overlap. Notifications coalesce: a subscriber that is busy when
// several writes land receives one snapshot reflecting all of them.
type hub struct {
	load loadFunc

	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

type subscription struct {
	collection string
	notify     chan struct{}
	cancel     context.CancelFunc
	done       chan struct{}
}

func newHub(load loadFunc) *hub {
	return &hub{load: load, subs: make(map[*subscription]struct{})}
}

func (h *hub) subscribe(ctx context.Context, collection string, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &subscription{
		collection: collection,
		notify:     make(chan struct{}, 1),
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	// Queue the initial snapshot.
	s.notify <- struct{}{}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	go h.run(ctx, s, onSnapshot, onError)

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-s.done
		})
	}, nil
}

func (h *hub) run(ctx context.Context, s *subscription, onSnapshot SnapshotFunc, onError ErrorFunc) {
	defer func() {
		h.mu.Lock()
		delete(h.subs, s)
		h.mu.Unlock()
		close(s.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
		}

		docs, err := h.load(ctx, s.collection)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if onError != nil {
				onError(err)
			}
			continue
		}
		onSnapshot(docs)
	}
}

// publish marks every subscriber of collection as stale.
func (h *hub) publish(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		if s.collection != collection {
			continue
		}
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
}

// close ends every subscription and waits for their goroutines to exit.
func (h *hub) close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*subscription, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.cancel()
		<-s.done
	}
}
