package driving

import (
	"context"
	"time"
)

// Scheduler runs the periodic draw sync.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// UpdateInterval changes how often a task runs.
	UpdateInterval(ctx context.Context, taskID string, enabled bool, interval time.Duration) error
}
