package domain

import "errors"

var (
	// ErrInvalidArguments is returned when a job's arguments do not match its operation
	ErrInvalidArguments = errors.New("invalid job arguments")

	// ErrUnknownOperation is returned for operations no task is registered for
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrMalformedMessage is returned when a delivery body cannot be decoded
	ErrMalformedMessage = errors.New("malformed job message")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or anything it wraps, is a RetryableError
func IsRetryable(err error) bool {
	var retryableErr *RetryableError
	return errors.As(err, &retryableErr)
}
