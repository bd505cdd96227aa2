package shell

import (
	"context"

	"github.com/pkordes/companion/internal/domain"
)

// ErrorReporter receives failures of store operations so a UI can surface
// them (toast, banner, status line). op is one of "subscribe", "seed",
// "rename" or "publish". Implementations must be safe for concurrent use.
type ErrorReporter interface {
	Report(op string, err error)
}

// ErrorReporterFunc adapts a function to ErrorReporter.
type ErrorReporterFunc func(op string, err error)

// Report implements ErrorReporter.
func (f ErrorReporterFunc) Report(op string, err error) { f(op, err) }

// RosterPublisher forwards applied roster snapshots to another system.
// Calls are made one at a time in the order snapshots were applied. A
// snapshot superseded while an earlier publish is in flight is skipped.
type RosterPublisher interface {
	PublishRoster(ctx context.Context, snap domain.RosterSnapshot) error
}

// Option configures a Shell.
type Option func(*Shell)

// WithViews replaces the tab dispatch table. Tabs missing from t fall back
// to the schedule view.
func WithViews(t ViewTable) Option {
	return func(s *Shell) { s.views = t }
}

// WithErrorReporter installs r in addition to logging.
func WithErrorReporter(r ErrorReporter) Option {
	return func(s *Shell) { s.reporter = r }
}

// WithPublisher forwards applied roster snapshots to p.
func WithPublisher(p RosterPublisher) Option {
	return func(s *Shell) { s.publisher = p }
}

// WithChangeHook registers fn to run after every store-driven change: an
// applied snapshot, the start or end of seeding, or a recorded failure.
// Local transitions (tab, settings) do not fire it. fn may be called from
// several goroutines and must not call back into Close.
func WithChangeHook(fn func(State)) Option {
	return func(s *Shell) { s.onChange = fn }
}
