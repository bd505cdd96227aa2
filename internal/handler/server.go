// Package handler implements the HTTP handlers for the trip companion API.
// All handlers are methods on Server and are mounted on a chi router by
// Handler. Methods are split into domain-specific files (health.go,
// members.go, shell.go, expense.go) but share the same Server struct.
package handler

import (
	"context"
	"log/slog"

	"github.com/pkordes/companion/internal/domain"
	"github.com/pkordes/companion/internal/logging"
	"github.com/pkordes/companion/internal/service"
	"github.com/pkordes/companion/internal/shell"
)

// RosterShell defines the shell operations the HTTP layer depends on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without a document store behind it.
type RosterShell interface {
	Members() []domain.Member
	Rename(ctx context.Context, id, name string) error
	ActiveTab() domain.Tab
	SwitchTab(tab domain.Tab) error
	Render() shell.View
	SettingsOpen() bool
	SettingsRows() []shell.SettingsRow
	OpenSettings()
	CloseSettings()
	Status() shell.Status
}

// ExpenseServicer defines the ledger operations the expense handlers depend on.
type ExpenseServicer interface {
	Create(ctx context.Context, in service.ExpenseInput) (domain.Expense, error)
	List(ctx context.Context, payerID string, p domain.PaginationParams) ([]domain.Expense, int64, error)
	Balances(ctx context.Context) ([]domain.Balance, error)
}

// Server holds the dependencies of every endpoint.
type Server struct {
	shell    RosterShell
	expenses ExpenseServicer
	log      *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(sh RosterShell, expenses ExpenseServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{shell: sh, expenses: expenses, log: logging.For(log, logging.ComponentHTTP)}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}
