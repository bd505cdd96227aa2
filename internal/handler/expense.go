package handler

import (
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/companion/internal/domain"
	"github.com/pkordes/companion/internal/service"
)

// CreateExpense handles POST /expenses.
func (s *Server) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var body CreateExpenseRequest
	if !decodeBody(w, r, &body) {
		return
	}
	currency, err := domain.ParseCurrency(body.Currency)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
		return
	}

	created, err := s.expenses.Create(r.Context(), service.ExpenseInput{
		Amount:       body.Amount,
		Currency:     currency,
		Category:     derefString(body.Category),
		Description:  derefString(body.Description),
		PayerID:      body.PayerId,
		SplitWithIDs: body.SplitWithIds,
		Date:         body.Date.Time,
	})
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusCreated, expenseToResponse(created))
}

// ListExpenses handles GET /expenses.
// Supports ?payer= and ?page= / ?limit= query parameters (defaults: page=1, limit=50, max=100).
func (s *Server) ListExpenses(w http.ResponseWriter, r *http.Request) {
	var (
		payer       *string
		page, limit *int
	)
	for name, dest := range map[string]any{"payer": &payer, "page": &page, "limit": &limit} {
		if err := queryParam(r, name, dest); err != nil {
			writeJSON(w, http.StatusBadRequest, requestBody("invalid "+name+": "+err.Error()))
			return
		}
	}

	params := domain.NewPaginationParams(page, limit)
	expenses, total, err := s.expenses.List(r.Context(), derefString(payer), params)
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}

	data := make([]Expense, len(expenses))
	for i, e := range expenses {
		data[i] = expenseToResponse(e)
	}
	writeJSON(w, http.StatusOK, ExpenseList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetBalances handles GET /expenses/balances.
func (s *Server) GetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.expenses.Balances(r.Context())
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	data := make([]Balance, len(balances))
	for i, b := range balances {
		data[i] = Balance{MemberId: b.MemberID, Paid: b.Paid, Share: b.Share, Net: b.Net}
	}
	writeJSON(w, http.StatusOK, BalanceList{Data: data})
}

// expenseToResponse converts a domain.Expense to the API response type.
// Empty strings become nil pointers for optional JSON fields (category,
// description) so they are omitted from the response.
func expenseToResponse(e domain.Expense) Expense {
	split := e.SplitWithIDs
	if split == nil {
		split = []string{}
	}
	return Expense{
		Id:           e.ID,
		AmountKRW:    e.AmountKRW,
		AmountTWD:    e.AmountTWD,
		Currency:     e.Currency,
		Category:     nilIfEmpty(e.Category),
		Description:  nilIfEmpty(e.Description),
		PayerId:      e.PayerID,
		SplitWithIds: split,
		Date:         openapi_types.Date{Time: e.Date},
		Timestamp:    e.Timestamp,
	}
}

// derefString safely dereferences a *string, returning "" when nil.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nilIfEmpty converts an empty string to a nil pointer.
// Used when mapping domain strings to optional API response fields.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
