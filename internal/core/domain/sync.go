package domain

import "time"

// StopReason records why a sync run stopped paging.
type StopReason string

// Stop reasons.
const (
	// StopCaughtUp means a page contained an already-stored draw.
	StopCaughtUp StopReason = "caught_up"

	// StopEndOfData means the source returned an empty or short page.
	StopEndOfData StopReason = "end_of_data"

	// StopFetchFailed means a page could not be fetched or decoded.
	// The run looks the same as caught up to the store, but the remote
	// may still hold newer draws.
	StopFetchFailed StopReason = "fetch_failed"

	// StopStoreUnavailable means the high-water mark could not be read.
	StopStoreUnavailable StopReason = "store_unavailable"

	// StopPageLimit means the configured page limit was reached.
	StopPageLimit StopReason = "page_limit"

	// StopCancelled means the context was cancelled mid-run.
	StopCancelled StopReason = "cancelled"

	// StopDeadline means the context deadline fell before the next page
	// was due under the configured page delay.
	StopDeadline StopReason = "deadline"
)

// IsFailure returns true when the run stopped because of an error rather
// than because there was nothing more to fetch.
func (r StopReason) IsFailure() bool {
	return r == StopFetchFailed || r == StopStoreUnavailable
}

// String returns the string representation.
func (r StopReason) String() string {
	return string(r)
}

// SyncReport is the outcome of one sync run.
type SyncReport struct {
	// RunID uniquely identifies the run in logs and task history.
	RunID string

	// KnownMax is the high-water mark read before fetching.
	KnownMax int64

	// PagesFetched counts page requests that returned a response.
	PagesFetched int

	// Inserted counts draws stored during the run.
	Inserted int

	// Skipped counts malformed entries that were not stored.
	Skipped int

	// Failed counts entries whose upsert failed.
	Failed int

	// StopReason records why paging stopped.
	StopReason StopReason

	// LastError holds the last fetch or store error message, if any.
	LastError string

	// Running is true while the run is in progress.
	Running bool

	StartedAt time.Time
	EndedAt   time.Time
}

// SyncSettings controls paging behaviour of the sync driver.
type SyncSettings struct {
	// PageSize is the number of draws requested per page.
	PageSize int

	// PageDelay is the minimum pause between page requests.
	PageDelay time.Duration

	// MaxPages stops the run after this many pages. Zero means no limit.
	MaxPages int

	// FetchRetries is how many times a failed page fetch is retried.
	FetchRetries int
}
