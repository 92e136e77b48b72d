package driving

import (
	"context"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

// DrawService answers read queries over stored draws.
type DrawService interface {
	// Latest returns the most recent stored draw.
	Latest(ctx context.Context) (*domain.DrawRecord, error)

	// Get returns the draw for an issue label.
	Get(ctx context.Context, issue string) (*domain.DrawRecord, error)

	// Range returns draws between two issue labels inclusive, ascending.
	Range(ctx context.Context, startIssue, endIssue string) ([]domain.DrawRecord, error)

	// Count returns the number of stored draws.
	Count(ctx context.Context) (int, error)
}
