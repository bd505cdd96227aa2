// Package shell is the root controller of the trip companion. It owns the
// active tab, the roster and the settings flag, mirrors the remote members
// collection into that state, seeds the collection on first run, and turns
// name edits into single-field store updates.
//
// Local state is only ever changed by the subscription for the roster and by
// the caller for tab and settings. Renames are not applied optimistically;
// the roster reflects a rename once the store echoes it back in a snapshot.
package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pkordes/companion/internal/docstore"
	"github.com/pkordes/companion/internal/domain"
	"github.com/pkordes/companion/internal/logging"
)

var (
	// ErrClosed is returned by operations on a Shell after Close.
	ErrClosed = errors.New("shell: closed")

	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("shell: already started")
)

// dispatchQueueSize bounds the fire-and-forget writes waiting to be sent.
const dispatchQueueSize = 64

// Status describes the shell's relationship with the store.
type Status struct {
	Connected   bool      `json:"connected"`
	Seeding     bool      `json:"seeding"`
	LastError   string    `json:"last_error,omitempty"`
	LastErrorAt time.Time `json:"last_error_at,omitzero"`
}

// State is a read-only copy of everything the shell owns.
type State struct {
	ActiveTab    domain.Tab      `json:"active_tab"`
	Members      []domain.Member `json:"members"`
	SettingsOpen bool            `json:"settings_open"`
	Status       Status          `json:"status"`
}

// Shell is the application controller. Construct it with New, call Start
// once, and Close it when the UI goes away.
type Shell struct {
	store     docstore.Store
	log       *slog.Logger
	views     ViewTable
	reporter  ErrorReporter
	publisher RosterPublisher
	onChange  func(State)
	jobs      chan func(ctx context.Context)
	published chan struct{}

	mu           sync.RWMutex
	activeTab    domain.Tab
	members      []domain.Member
	settingsOpen bool
	status       Status
	seeding      bool
	pending      *domain.RosterSnapshot
	started      bool
	closed       bool
	ctx          context.Context
	cancel       context.CancelFunc
	unsubscribe  docstore.Unsubscribe

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New returns a Shell on the schedule tab with an empty roster and the
// settings overlay closed. Nothing touches the store until Start.
func New(store docstore.Store, log *slog.Logger, opts ...Option) *Shell {
	s := &Shell{
		store:     store,
		log:       logging.For(log, logging.ComponentShell),
		views:     DefaultViews(),
		jobs:      make(chan func(ctx context.Context), dispatchQueueSize),
		published: make(chan struct{}, 1),
		activeTab: domain.TabSchedule,
		members:   []domain.Member{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to the members collection. Writes issued by the shell
// run under a context derived from ctx and cancelled by Close.
func (s *Shell) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	runCtx, cancel := context.WithCancel(ctx)
	s.ctx, s.cancel = runCtx, cancel
	s.wg.Add(1)
	publish := s.publisher != nil
	if publish {
		s.wg.Add(1)
	}
	s.mu.Unlock()

	go s.dispatch(runCtx)
	if publish {
		go s.publishLoop(runCtx)
	}

	unsubscribe, err := s.store.Subscribe(runCtx, domain.MembersCollection, s.handleSnapshot, s.handleSubscriptionError)
	if err != nil {
		s.fail("subscribe", err)
		return fmt.Errorf("shell.Shell.Start: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		// Close ran while we were subscribing and found nothing to release.
		s.mu.Unlock()
		unsubscribe()
		return ErrClosed
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	s.log.Info("subscribed to roster", "collection", domain.MembersCollection)
	return nil
}

// Close releases the subscription, cancels in-flight writes and waits for
// them to return. After Close no state changes. Safe to call more than once.
func (s *Shell) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.status.Connected = false
		unsubscribe, cancel := s.unsubscribe, s.cancel
		s.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
		if cancel != nil {
			cancel()
		}
		s.wg.Wait()
		s.log.Info("shell closed")
	})
	return nil
}

// handleSnapshot maps, sorts and applies one delivery of the members collection.
// An empty collection is never applied; it triggers seeding instead.
func (s *Shell) handleSnapshot(docs []docstore.Document) {
	members := make([]domain.Member, 0, len(docs))
	for _, d := range docs {
		members = append(members, memberFromDocument(d))
	}
	slices.SortFunc(members, func(a, b domain.Member) int { return strings.Compare(a.ID, b.ID) })

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.status.Connected = true
	ctx := s.ctx
	at := time.Now().UTC()

	if len(members) == 0 {
		if s.seeding {
			s.mu.Unlock()
			s.log.Debug("empty roster snapshot while seeding; ignored")
			return
		}
		s.seeding = true
		s.status.Seeding = true
		s.wg.Add(1)
		state := s.stateLocked()
		s.mu.Unlock()

		s.log.Info("roster is empty; seeding", "members", len(domain.SeedMembers()))
		s.emit(state)
		go s.runSeed(ctx)
		return
	}

	s.members = members
	state := s.stateLocked()
	publish := s.publisher != nil
	if publish {
		s.pending = &domain.RosterSnapshot{Members: slices.Clone(members), At: at}
	}
	s.mu.Unlock()

	s.log.Debug("roster snapshot applied", "members", len(members))
	s.emit(state)
	if publish {
		select {
		case s.published <- struct{}{}:
		default:
			// A wakeup is already queued; it will pick up this snapshot.
		}
	}
}

func (s *Shell) handleSubscriptionError(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.status.Connected = false
	s.mu.Unlock()

	s.fail("subscribe", err)
}

func (s *Shell) runSeed(ctx context.Context) {
	defer s.wg.Done()

	err := s.Seed(ctx)

	s.mu.Lock()
	s.seeding = false
	s.status.Seeding = false
	closed := s.closed
	state := s.stateLocked()
	s.mu.Unlock()

	if err != nil {
		s.fail("seed", err)
		return
	}
	if !closed {
		s.emit(state)
	}
}

// Seed writes every seed member into the members collection, keyed by id,
// one after another. It keeps going after a failed write and returns all
// failures joined. Writing the same seed twice leaves the collection unchanged.
func (s *Shell) Seed(ctx context.Context) error {
	var errs []error
	for _, m := range domain.SeedMembers() {
		if err := s.store.Set(ctx, domain.MembersCollection, m.ID, memberFields(m)); err != nil {
			s.log.Error("seed write failed", "member_id", m.ID, "error", err)
			errs = append(errs, fmt.Errorf("member %s: %w", m.ID, err))
			continue
		}
		s.log.Debug("seeded member", "member_id", m.ID)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("shell.Shell.Seed: %w", err)
	}
	return nil
}

// Rename updates the name field of member id in the store. The roster is
// not touched; it changes when the next snapshot arrives.
func (s *Shell) Rename(ctx context.Context, id, name string) error {
	if id == "" {
		return fmt.Errorf("shell.Shell.Rename: %w: member id is required", domain.ErrValidation)
	}
	if s.isClosed() {
		return ErrClosed
	}

	err := s.store.Update(ctx, domain.MembersCollection, id, map[string]any{"name": name})
	if err != nil {
		s.fail("rename", err)
		return fmt.Errorf("shell.Shell.Rename: %w", err)
	}
	s.log.Info("member rename dispatched", "member_id", id)
	return nil
}

// RenameAsync queues Rename without waiting for it. Queued renames are sent
// in order, so the last keystroke wins. Failures are logged and reported.
func (s *Shell) RenameAsync(id, name string) {
	s.mu.RLock()
	ready := s.started && !s.closed
	ctx := s.ctx
	s.mu.RUnlock()
	if !ready {
		s.log.Warn("rename dropped; shell not running", "member_id", id)
		return
	}

	job := func(ctx context.Context) { _ = s.Rename(ctx, id, name) }
	select {
	case s.jobs <- job:
	case <-ctx.Done():
	}
}

// dispatch runs queued writes one at a time until ctx is cancelled.
func (s *Shell) dispatch(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			job(ctx)
		}
	}
}

// publishLoop sends the latest applied roster each time it is woken, one
// publish at a time, until ctx is cancelled.
func (s *Shell) publishLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.published:
		}

		s.mu.Lock()
		snap := s.pending
		s.pending = nil
		s.mu.Unlock()
		if snap == nil {
			continue
		}
		if err := s.publisher.PublishRoster(ctx, *snap); err != nil {
			s.fail("publish", err)
		}
	}
}

// SwitchTab makes tab the active tab. It never touches the store or the roster.
func (s *Shell) SwitchTab(tab domain.Tab) error {
	if !tab.Valid() {
		return fmt.Errorf("shell.Shell.SwitchTab: %w: unknown tab %q", domain.ErrValidation, tab)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.activeTab = tab
	return nil
}

// OpenSettings shows the settings overlay.
func (s *Shell) OpenSettings() { s.setSettings(true) }

// CloseSettings hides the settings overlay. Edits were already dispatched
// as they were made, so nothing is saved or reverted here.
func (s *Shell) CloseSettings() { s.setSettings(false) }

func (s *Shell) setSettings(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.settingsOpen = open
	}
}

// Render builds the active tab's view from the dispatch table.
func (s *Shell) Render() View {
	s.mu.RLock()
	tab := s.activeTab
	members := slices.Clone(s.members)
	s.mu.RUnlock()

	view, ok := s.views[tab]
	if !ok {
		view, ok = s.views[domain.TabSchedule]
	}
	if !ok {
		view = LabelledView(domain.TabSchedule)
	}
	return view(members)
}

// SettingsRows returns one row per roster member, in roster order.
func (s *Shell) SettingsRows() []SettingsRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]SettingsRow, len(s.members))
	for i, m := range s.members {
		rows[i] = SettingsRow{ID: m.ID, Name: m.Name, Color: m.Color, Avatar: m.Avatar}
	}
	return rows
}

// Members returns a copy of the roster.
func (s *Shell) Members() []domain.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.members)
}

// ActiveTab returns the active tab.
func (s *Shell) ActiveTab() domain.Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeTab
}

// SettingsOpen reports whether the settings overlay is shown.
func (s *Shell) SettingsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settingsOpen
}

// Status returns the connection and error status.
func (s *Shell) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// State returns a copy of all shell state.
func (s *Shell) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Shell) stateLocked() State {
	return State{
		ActiveTab:    s.activeTab,
		Members:      slices.Clone(s.members),
		SettingsOpen: s.settingsOpen,
		Status:       s.status,
	}
}

func (s *Shell) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// fail logs err and, unless the shell is closed, records it in the status
// and hands it to the reporter.
func (s *Shell) fail(op string, err error) {
	s.log.Error("store operation failed", "op", op, "error", err)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.status.LastError = err.Error()
	s.status.LastErrorAt = time.Now().UTC()
	state := s.stateLocked()
	s.mu.Unlock()

	if s.reporter != nil {
		s.reporter.Report(op, err)
	}
	s.emit(state)
}

func (s *Shell) emit(state State) {
	if s.onChange != nil {
		s.onChange(state)
	}
}

// memberFromDocument maps a members document onto a Member. The document id
// is authoritative; a stored "id" field is ignored.
func memberFromDocument(d docstore.Document) domain.Member {
	return domain.Member{
		ID:     d.ID,
		Name:   stringField(d.Fields, "name"),
		Color:  stringField(d.Fields, "color"),
		Avatar: stringField(d.Fields, "avatar"),
	}
}

func memberFields(m domain.Member) map[string]any {
	return map[string]any{
		"id":     m.ID,
		"name":   m.Name,
		"color":  m.Color,
		"avatar": m.Avatar,
	}
}

func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string)
	return v
}
