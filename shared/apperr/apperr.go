// Package apperr defines the error kinds shared by every service and the
// mapping from those kinds to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a lookup by identifier yields no row
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a uniqueness constraint would be violated
	ErrDuplicate = errors.New("already registered")

	// ErrInsufficientStock is returned when a sale asks for more units than are in stock
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrAuthenticationFailed is returned on credential mismatch
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrInvalidInput is returned for requests that fail validation
	ErrInvalidInput = errors.New("invalid input")
)

// Error pairs an error kind with the message shown to the client.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// New builds an Error of the given kind.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around a cause.
func Wrap(kind error, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound returns "<entity> not found".
func NotFound(entity string) *Error {
	return New(ErrNotFound, entity+" not found")
}

// Duplicate returns "<what> already registered".
func Duplicate(what string) *Error {
	return New(ErrDuplicate, what+" already registered")
}

// InsufficientStock returns the point-of-sale rejection message.
func InsufficientStock(current, requested int) *Error {
	return New(ErrInsufficientStock, fmt.Sprintf(
		"Stock insuficiente. Stock actual: %d, cantidad solicitada: %d", current, requested,
	))
}

// Message returns the client-facing message carried by err, or fallback.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}

// HTTPStatus maps an error to the status code it is rendered with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthenticationFailed):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
