package driving

import (
	"context"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

// SyncService brings the local draw store up to date with the remote source.
type SyncService interface {
	// Sync runs one incremental sync and returns its report.
	// Fetch and store failures are recorded in the report rather than
	// returned; the error is non-nil only for cancellation or when a run
	// is already in progress.
	Sync(ctx context.Context) (*domain.SyncReport, error)

	// Status returns a snapshot of the running sync, or the last
	// completed report if none is running. Nil if no run has happened.
	Status(ctx context.Context) (*domain.SyncReport, error)
}
