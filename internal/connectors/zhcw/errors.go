package zhcw

import (
	"fmt"
	"net/http"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

// ErrMalformedEnvelope indicates the response body was not a JSONP-wrapped
// JSON envelope.
var ErrMalformedEnvelope = fmt.Errorf("zhcw: malformed envelope: %w", domain.ErrFetchFailed)

// APIError represents a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zhcw: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Unwrap lets callers match the error against domain.ErrFetchFailed.
// Client errors other than timeouts and throttling also match
// domain.ErrRemoteRejected.
func (e *APIError) Unwrap() []error {
	if e.rejected() {
		return []error{domain.ErrFetchFailed, domain.ErrRemoteRejected}
	}
	return []error{domain.ErrFetchFailed}
}

func (e *APIError) rejected() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// RemoteError represents an envelope whose errorCode is not "0".
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("zhcw: remote error code %s", e.Code)
	}
	return fmt.Sprintf("zhcw: remote error code %s: %s", e.Code, e.Message)
}

// Unwrap lets callers match the error against domain.ErrFetchFailed and
// domain.ErrRemoteRejected.
func (e *RemoteError) Unwrap() []error {
	return []error{domain.ErrFetchFailed, domain.ErrRemoteRejected}
}
