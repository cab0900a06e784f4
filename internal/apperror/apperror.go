// Package apperror defines the closed set of error kinds the application
// returns. Services produce these; the HTTP layer maps them to status codes.
//
// The kinds are deliberately distinct: "forbidden" (the board exists but you
// may not touch it) is never collapsed into "not found", and "unauthorized"
// (no valid session) is never collapsed into "forbidden" (valid session,
// insufficient privilege). Callers distinguish them with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// AppError carries a kind (Err), a human-readable message, and optionally the
// input field that caused a validation failure. It wraps the sentinel so both
// errors.Is(err, ErrX) and errors.As(err, &appErr) work on the chain.
type AppError struct {
	Err     error  // one of the sentinel kinds above
	Message string // human-readable description
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized returns an AppError for a missing, invalid, or expired session.
// HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}
