// Package service contains the business logic that sits beside the shell.
// Services validate inputs, enforce ledger rules and talk to the document
// store through narrow interfaces, never a concrete backend.
package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pkordes/companion/internal/docstore"
	"github.com/pkordes/companion/internal/domain"
)

// DocumentStore is the subset of docstore.Store the ledger needs.
type DocumentStore interface {
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	List(ctx context.Context, collection string) ([]docstore.Document, error)
}

// RosterReader exposes the current roster. *shell.Shell satisfies it.
type RosterReader interface {
	Members() []domain.Member
}

// ExpenseInput is what a caller supplies to record an expense. Amount is in
// Currency; the other currency is derived.
type ExpenseInput struct {
	Amount       decimal.Decimal
	Currency     domain.Currency
	Category     string
	Description  string
	PayerID      string
	SplitWithIDs []string
	Date         time.Time
}

// ExpenseService records expenses and derives per-member balances.
type ExpenseService struct {
	store  DocumentStore
	roster RosterReader
	now    func() time.Time
}

// NewExpenseService constructs an ExpenseService that writes to store and
// validates member ids against roster.
func NewExpenseService(store DocumentStore, roster RosterReader) *ExpenseService {
	return &ExpenseService{store: store, roster: roster, now: time.Now}
}

// Create validates in, converts the amount, and writes a new expense.
// Returns domain.ErrValidation if input violates ledger rules.
func (s *ExpenseService) Create(ctx context.Context, in ExpenseInput) (domain.Expense, error) {
	if err := validateExpense(in, s.roster.Members()); err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Create: %w", err)
	}

	krw, twd := domain.ConvertAmount(in.Amount, in.Currency)
	e := domain.Expense{
		ID:           uuid.NewString(),
		AmountKRW:    krw,
		AmountTWD:    twd,
		Currency:     in.Currency,
		Category:     strings.TrimSpace(in.Category),
		Description:  strings.TrimSpace(in.Description),
		PayerID:      in.PayerID,
		SplitWithIDs: dedupe(in.SplitWithIDs),
		Date:         truncateToDay(in.Date),
		Timestamp:    s.now().UTC(),
	}

	fields, err := docstore.Encode(e)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Create: %w", err)
	}
	if err := s.store.Set(ctx, domain.ExpensesCollection, e.ID, fields); err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Create: %w", err)
	}
	return e, nil
}

// List returns one page of expenses ordered by date, then timestamp, and the
// total number of matching expenses. An empty payerID matches every payer.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ExpenseService) List(ctx context.Context, payerID string, p domain.PaginationParams) ([]domain.Expense, int64, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ExpenseService.List: %w", err)
	}
	if payerID != "" {
		all = slices.DeleteFunc(all, func(e domain.Expense) bool { return e.PayerID != payerID })
	}
	start, end := p.Window(len(all))
	page := make([]domain.Expense, 0, end-start)
	page = append(page, all[start:end]...)
	return page, int64(len(all)), nil
}

// Balances returns every member's paid amount, equal-split share and net
// position in TWD, ordered by member id. Nets across all members sum to zero. Members of the roster with no
// expenses are included with zero balances.
func (s *ExpenseService) Balances(ctx context.Context) ([]domain.Balance, error) {
	expenses, err := s.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExpenseService.Balances: %w", err)
	}

	byMember := make(map[string]*domain.Balance)
	get := func(id string) *domain.Balance {
		b, ok := byMember[id]
		if !ok {
			b = &domain.Balance{MemberID: id, Paid: decimal.Zero, Share: decimal.Zero}
			byMember[id] = b
		}
		return b
	}
	for _, m := range s.roster.Members() {
		get(m.ID)
	}
	for _, e := range expenses {
		get(e.PayerID).Paid = get(e.PayerID).Paid.Add(e.AmountTWD)
		if len(e.SplitWithIDs) == 0 {
			continue
		}
		for i, share := range splitShares(e.AmountTWD, len(e.SplitWithIDs)) {
			b := get(e.SplitWithIDs[i])
			b.Share = b.Share.Add(share)
		}
	}

	out := make([]domain.Balance, 0, len(byMember))
	for _, b := range byMember {
		b.Net = b.Paid.Sub(b.Share)
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b domain.Balance) int { return strings.Compare(a.MemberID, b.MemberID) })
	return out, nil
}

// splitShares divides amount into n equal shares rounded to cents. The first
// share absorbs the rounding remainder so the shares always sum to amount.
func splitShares(amount decimal.Decimal, n int) []decimal.Decimal {
	share := amount.DivRound(decimal.NewFromInt(int64(n)), 2)
	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = share
	}
	shares[0] = amount.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))
	return shares
}

// all enumerates the expenses collection once and sorts it.
func (s *ExpenseService) all(ctx context.Context) ([]domain.Expense, error) {
	docs, err := s.store.List(ctx, domain.ExpensesCollection)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Expense, 0, len(docs))
	for _, d := range docs {
		var e domain.Expense
		if err := docstore.Decode(d, &e); err != nil {
			return nil, err
		}
		e.ID = d.ID
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b domain.Expense) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// validateExpense enforces the ledger rules.
//   - Amount must be positive and Currency known.
//   - Payer and every split member must be on the roster.
//   - At least one split member; Date must be set.
func validateExpense(in ExpenseInput, roster []domain.Member) error {
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if _, err := domain.ParseCurrency(string(in.Currency)); err != nil {
		return err
	}
	if in.PayerID == "" {
		return fmt.Errorf("%w: payer is required", domain.ErrValidation)
	}
	if !domain.HasMember(roster, in.PayerID) {
		return fmt.Errorf("%w: payer %q is not a member", domain.ErrValidation, in.PayerID)
	}
	if len(in.SplitWithIDs) == 0 {
		return fmt.Errorf("%w: split_with must name at least one member", domain.ErrValidation)
	}
	for _, id := range in.SplitWithIDs {
		if !domain.HasMember(roster, id) {
			return fmt.Errorf("%w: split member %q is not a member", domain.ErrValidation, id)
		}
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	return nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
