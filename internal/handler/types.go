package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/pkordes/companion/internal/domain"
	"github.com/pkordes/companion/internal/shell"
)

// Wire types for the JSON API. Field names follow openapi.yaml.

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type Member struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Avatar string `json:"avatar"`
}

type MemberList struct {
	Data []Member `json:"data"`
}

// RenameRequest is a pointer so a missing field can be told apart from an
// empty name, which is a legal edit.
type RenameRequest struct {
	Name *string `json:"name"`
}

type TabBody struct {
	Tab   domain.Tab `json:"tab"`
	Label string     `json:"label,omitempty"`
}

type ViewResponse struct {
	Tab     domain.Tab `json:"tab"`
	Label   string     `json:"label"`
	Members []Member   `json:"members"`
}

type SettingsRequest struct {
	Open *bool `json:"open"`
}

type SettingsResponse struct {
	Open    bool                `json:"open"`
	Members []shell.SettingsRow `json:"members"`
}

type StatusResponse struct {
	Connected   bool       `json:"connected"`
	Seeding     bool       `json:"seeding"`
	LastError   *string    `json:"last_error,omitempty"`
	LastErrorAt *time.Time `json:"last_error_at,omitempty"`
}

type CreateExpenseRequest struct {
	Amount       decimal.Decimal    `json:"amount"`
	Currency     string             `json:"currency"`
	Category     *string            `json:"category,omitempty"`
	Description  *string            `json:"description,omitempty"`
	PayerId      string             `json:"payer_id"`
	SplitWithIds []string           `json:"split_with_ids"`
	Date         openapi_types.Date `json:"date"`
}

type Expense struct {
	Id           string             `json:"id"`
	AmountKRW    decimal.Decimal    `json:"amount_krw"`
	AmountTWD    decimal.Decimal    `json:"amount_twd"`
	Currency     domain.Currency    `json:"currency"`
	Category     *string            `json:"category,omitempty"`
	Description  *string            `json:"description,omitempty"`
	PayerId      string             `json:"payer_id"`
	SplitWithIds []string           `json:"split_with_ids"`
	Date         openapi_types.Date `json:"date"`
	Timestamp    time.Time          `json:"timestamp"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type ExpenseList struct {
	Data       []Expense  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Balance struct {
	MemberId string          `json:"member_id"`
	Paid     decimal.Decimal `json:"paid_twd"`
	Share    decimal.Decimal `json:"share_twd"`
	Net      decimal.Decimal `json:"net_twd"`
}

type BalanceList struct {
	Data []Balance `json:"data"`
}
