package domain

import "errors"

// ErrNotFound is returned when the requested document or member does not exist.
// Handlers map it to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule
// (unknown tab, non-positive amount, payer outside the roster).
// Handlers map it to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")
