package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrRangeTooWide indicates a range query spans more draws than allowed.
	ErrRangeTooWide = errors.New("range too wide")

	// Source Errors.

	// ErrFetchFailed indicates a page could not be retrieved or decoded.
	// The remote may still hold more data.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrRemoteRejected marks a fetch failure the source reported on
	// purpose. Retrying the same request will not help.
	ErrRemoteRejected = errors.New("remote rejected request")
)
