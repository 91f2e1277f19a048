// Package common defines shared constants and sentinel errors used across
// the session, auth, cache and cursor layers. Callers should use errors.Is to
// match these values and errors.As to extract *RequestError context.
package common

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Transport errors (retry budget exhausted, empty response body).
	ErrConnectivity = errors.New("connectivity error")

	// Auth errors (401 without a viable refresh path, failed login).
	ErrAuthorization = errors.New("authorization error")

	// Conflict retries exhausted; the last response was handed back as-is.
	ErrConflictExhausted = errors.New("conflict retries exhausted")

	// Malformed JSON or failed hydration.
	ErrDecoding = errors.New("decoding error")

	// Cursor errors.
	ErrCursorState   = errors.New("invalid cursor state")
	ErrEndOfSequence = errors.New("end of cursor sequence")

	// Cache errors.
	ErrCacheKey        = errors.New("cache key not found")
	ErrInvalidCapacity = errors.New("invalid cache capacity")

	// Any other error response reported by the server.
	ErrServer = errors.New("server error")

	// Configuration errors.
	ErrNoEndpoints = errors.New("no endpoints configured")
)

// RequestError carries the request/response context of a failed call.
// It unwraps to Err, which normally wraps one of the sentinels above.
type RequestError struct {
	Err        error
	Method     string
	URL        string
	Body       []byte
	StatusCode int
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: %d %s: %v", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
