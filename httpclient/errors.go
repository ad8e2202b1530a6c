// httpclient/errors.go
package httpclient

import (
	"errors"
	"fmt"

	"github.com/boxtools/go-box-client/response"
)

// TransportError represents a network-level failure for which no HTTP
// response was received.
type TransportError struct {
	Err    error
	Method string
	URL    string

	// MaxRetriesExceeded is set once the retry budget has been exhausted.
	MaxRetriesExceeded bool
}

func (e *TransportError) Error() string {
	if e.MaxRetriesExceeded {
		return fmt.Sprintf("transport error on %s %s: %v (max retries exceeded)", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("transport error on %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MarkMaxRetriesExceeded flags the error as having exhausted its retry
// budget. The underlying error is annotated, not replaced.
func MarkMaxRetriesExceeded(err error) error {
	var apiErr *response.APIError
	if errors.As(err, &apiErr) {
		apiErr.MaxRetriesExceeded = true
		return err
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		transportErr.MaxRetriesExceeded = true
		return err
	}
	return err
}

// IsMaxRetriesExceeded reports whether the error carries the max-retries flag.
func IsMaxRetriesExceeded(err error) bool {
	var apiErr *response.APIError
	if errors.As(err, &apiErr) {
		return apiErr.MaxRetriesExceeded
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.MaxRetriesExceeded
	}
	return false
}
