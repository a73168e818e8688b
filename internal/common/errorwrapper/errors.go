package errorwrapper

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinels matched with errors.Is across packages.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrNoTargets ends a keyword run that found no websites.
	ErrNoTargets      = errors.New("no targets")
	ErrBlocked        = errors.New("blocked by anti-bot protection")
	ErrTimeout        = errors.New("operation timed out")
	ErrNetworkFailure = errors.New("network failure")
)

// WrapError prefixes err with message, keeping it matchable. A nil err still
// yields an error so call sites never lose the message.
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError is fmt.Errorf, kept so packages need a single errors import.
func NewError(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// ValidationError rejects a single field of user input or configuration.
// It matches ErrInvalidInput.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// NewValidationError creates a ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NetworkError is a transport failure for URL: DNS, connect, TLS, read or
// timeout. It matches ErrNetworkFailure and whatever it wraps.
type NetworkError struct {
	URL     string
	Reason  string
	Wrapped error
}

// NewNetworkError creates a NetworkError
func NewNetworkError(url, reason string, wrapped error) *NetworkError {
	return &NetworkError{URL: url, Reason: reason, Wrapped: wrapped}
}

func (e *NetworkError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Reason, e.URL)
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *NetworkError) Unwrap() []error {
	if e.Wrapped == nil {
		return []error{ErrNetworkFailure}
	}
	return []error{ErrNetworkFailure, e.Wrapped}
}

// HTTPError is an unexpected status from a server that did answer.
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

// NewHTTPErrorWithURL creates an HTTPError for url
func NewHTTPErrorWithURL(statusCode int, message, url string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message, URL: url}
}

func (e *HTTPError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("status %d from %s: %s", e.StatusCode, e.URL, e.Message)
}

// IsNetworkError reports whether err was caused by a connectivity failure.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeout reports whether err is a deadline or transport timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
