// Package apierr defines the JSON error envelope the HTTP API speaks.
// Every failure surfaces as {"error": code, "error_description": text};
// unexpected failures collapse to ErrServerError so internals never leak.
package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes carried in the "error" field.
const (
	CodeValidation         = "validation_error"
	CodeDuplicate          = "duplicate"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidToken       = "invalid_token"
	CodeTokenExpired       = "token_expired"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeServerError        = "server_error"
)

// Error is a wire-level API error. It implements the error interface and is
// written directly by HTTP handlers.
type Error struct {
	// StatusCode is the HTTP status for this error.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code.
	Code string `json:"error"`

	// Description is a human-readable description. It must never contain
	// internals (stack traces, secrets, other identities' data).
	Description string `json:"error_description"`

	// Field optionally names the offending input field (duplicates,
	// validation failures).
	Field string `json:"field,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WithField returns a copy of e naming the offending field.
func (e *Error) WithField(field string) *Error {
	dup := *e
	dup.Field = field
	return &dup
}

// WithDescription returns a copy of e with a different description.
func (e *Error) WithDescription(desc string) *Error {
	dup := *e
	dup.Description = desc
	return &dup
}

// WriteError writes e as a JSON response.
func (e *Error) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

var (
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        CodeValidation,
		Description: "missing or malformed input",
	}

	// ErrDuplicate is returned when a unique field is already taken. Use
	// WithField to name it.
	ErrDuplicate = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        CodeDuplicate,
		Description: "already exists",
	}

	// ErrInvalidCredentials is returned for unknown identity or wrong
	// secret. The description deliberately does not say which.
	ErrInvalidCredentials = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeInvalidCredentials,
		Description: "invalid credentials",
	}

	// ErrMissingToken is returned when no bearer credential was supplied.
	ErrMissingToken = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeInvalidToken,
		Description: "missing Authorization header: expected 'Authorization: Bearer <token>'",
	}

	// ErrInvalidToken is returned for malformed or tampered tokens.
	ErrInvalidToken = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeInvalidToken,
		Description: "invalid token",
	}

	// ErrTokenExpired is returned for well-formed tokens past their expiry,
	// distinct from ErrInvalidToken so clients know to log in again.
	ErrTokenExpired = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeTokenExpired,
		Description: "token has expired",
	}

	// ErrForbidden is returned after successful authentication when the
	// caller's role does not intersect the required set.
	ErrForbidden = &Error{
		StatusCode:  http.StatusForbidden,
		Code:        CodeForbidden,
		Description: "access forbidden",
	}

	// ErrNotFound is returned when a referenced resource does not exist.
	ErrNotFound = &Error{
		StatusCode:  http.StatusNotFound,
		Code:        CodeNotFound,
		Description: "not found",
	}

	// ErrServerError is the generic 500. Details stay in the server log.
	ErrServerError = &Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        CodeServerError,
		Description: "internal server error",
	}
)
