package fetch

import (
	"errors"
	"fmt"
)

// Common errors returned by a Channel.
var (
	// ErrNotFound indicates the resource was not found upstream.
	ErrNotFound = errors.New("not found")

	// ErrAuthError indicates an authentication error (missing/invalid API key).
	ErrAuthError = errors.New("authentication error")

	// ErrRateLimited indicates the upstream rate limit has been exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue or timeout.
	ErrNetworkError = errors.New("network error")

	// ErrRetriesExhausted indicates a transient failure persisted through
	// all retry attempts.
	ErrRetriesExhausted = errors.New("retry attempts exhausted")
)

// APIError represents an HTTP-layer error from an upstream API.
type APIError struct {
	API        string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.API, e.StatusCode, e.Message)
}

// Transient reports whether the failure is worth retrying: server
// errors and explicit rate-limit signals. Other 4xx responses are
// permanent.
func (e *APIError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// IsTransient returns true if the error is retryable: timeouts, network
// failures, server errors, and rate-limit signals.
func IsTransient(err error) bool {
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	return false
}
