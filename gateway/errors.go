package gateway

import (
	"errors"
	"fmt"
)

// ErrAuthExpired is an exported constant or variable used by the session core.
// It marks a 401 that could not be recovered via refresh; the session is
// terminally expired.
var ErrAuthExpired = errors.New("authentication expired")

// NetworkError wraps a transport-level failure. The gateway never retries
// these; they surface to the caller as-is.
type NetworkError struct {
	URL string
	Err error
}

// Error describes the error operation and its observable behavior.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

// Unwrap describes the unwrap operation and its observable behavior.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RequestError carries the HTTP status of any non-401 non-2xx response.
type RequestError struct {
	Status int
	URL    string
	Body   string
}

// Error describes the error operation and its observable behavior.
func (e *RequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.Status, e.Body)
	}
	return fmt.Sprintf("request to %s failed with status %d", e.URL, e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not a
// [RequestError].
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}
