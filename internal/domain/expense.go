package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExpensesCollection is the document-store collection that holds the ledger.
const ExpensesCollection = "expenses"

// Currency is the currency an expense was entered in.
type Currency string

const (
	CurrencyKRW Currency = "KRW"
	CurrencyTWD Currency = "TWD"
)

// ExchangeRate is the fixed number of TWD per KRW.
var ExchangeRate = decimal.RequireFromString("0.024")

// ParseCurrency converts s into a Currency.
func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(s); c {
	case CurrencyKRW, CurrencyTWD:
		return c, nil
	}
	return "", fmt.Errorf("%w: unknown currency %q", ErrValidation, s)
}

// Expense is one ledger entry. Both amounts are always populated: the one
// matching Currency is what was entered, the other is derived with ExchangeRate.
type Expense struct {
	ID           string          `json:"id"`
	AmountKRW    decimal.Decimal `json:"amountKRW"`
	AmountTWD    decimal.Decimal `json:"amountTWD"`
	Currency     Currency        `json:"currency"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	PayerID      string          `json:"payerId"`
	SplitWithIDs []string        `json:"splitWithIds"`
	Date         time.Time       `json:"date"`
	Timestamp    time.Time       `json:"timestamp"`
}

// ConvertAmount returns the KRW and TWD amounts for amount entered in c.
// Both results are rounded to whole units; neither currency uses minor units.
func ConvertAmount(amount decimal.Decimal, c Currency) (krw, twd decimal.Decimal) {
	if c == CurrencyTWD {
		return amount.Div(ExchangeRate).Round(0), amount.Round(0)
	}
	return amount.Round(0), amount.Mul(ExchangeRate).Round(0)
}

// Balance is one member's position across the whole ledger, in TWD.
// Net is positive when the member is owed money.
type Balance struct {
	MemberID string          `json:"memberId"`
	Paid     decimal.Decimal `json:"paid"`
	Share    decimal.Decimal `json:"share"`
	Net      decimal.Decimal `json:"net"`
}
