// Package apierr defines the error taxonomy surfaced by the HTTP API.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeProviderTimeout   = "PROVIDER_TIMEOUT"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeProviderError     = "PROVIDER_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeEventNotFound     = "EVENT_NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeCache             = "CACHE_ERROR"
	CodeDatabase          = "DATABASE_ERROR"
)

type Error struct {
	Code    string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Status  int            `json:"-"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func ProviderTimeout(endpoint string, timeoutSecs int) *Error {
	return &Error{
		Code:    CodeProviderTimeout,
		Message: "Odds provider did not respond in time",
		Details: map[string]any{"timeout_seconds": timeoutSecs, "endpoint": endpoint},
		Status:  http.StatusGatewayTimeout,
	}
}

func RateLimited(retryAfter int) *Error {
	return &Error{
		Code:    CodeRateLimitExceeded,
		Message: "Rate limit exceeded",
		Details: map[string]any{"retry_after": retryAfter},
		Status:  http.StatusTooManyRequests,
	}
}

// ProviderError reports an upstream failure. Upstream 404s keep their status so
// callers see a not-found rather than a bad gateway.
func ProviderError(endpoint string, statusCode int, body string) *Error {
	status := http.StatusBadGateway
	if statusCode == http.StatusNotFound {
		status = http.StatusNotFound
	}
	details := map[string]any{"endpoint": endpoint}
	if statusCode > 0 {
		details["status_code"] = statusCode
	}
	if body != "" {
		details["response_body"] = body
	}
	return &Error{
		Code:    CodeProviderError,
		Message: fmt.Sprintf("Odds provider returned an error for %s", endpoint),
		Details: details,
		Status:  status,
	}
}

func ProviderUnavailable(endpoint string, err error) *Error {
	return &Error{
		Code:    CodeProviderError,
		Message: "Odds provider unreachable",
		Details: map[string]any{"endpoint": endpoint},
		Status:  http.StatusBadGateway,
		cause:   err,
	}
}

func NotFound(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message, Status: http.StatusNotFound}
}

func EventNotFound(eventID string) *Error {
	return &Error{
		Code:    CodeEventNotFound,
		Message: fmt.Sprintf("Event %s not found", eventID),
		Details: map[string]any{"event_id": eventID},
		Status:  http.StatusNotFound,
	}
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Status: http.StatusBadRequest}
}

// Unprocessable is a validation failure on a well-formed but unacceptable value.
func Unprocessable(message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Status: http.StatusUnprocessableEntity}
}

func Cache(err error) *Error {
	return &Error{Code: CodeCache, Message: "Cache unavailable", Status: http.StatusServiceUnavailable, cause: err}
}

func Database(err error) *Error {
	return &Error{Code: CodeDatabase, Message: "Database unavailable", Status: http.StatusServiceUnavailable, cause: err}
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf returns the HTTP status for err, 500 for untyped errors.
func StatusOf(err error) int {
	if e, ok := As(err); ok && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}
