package driven

import (
	"context"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

// DrawStore persists draw records keyed by sequence ID.
type DrawStore interface {
	// Initialize ensures the backing schema exists.
	// Safe to call on every run.
	Initialize(ctx context.Context) error

	// LatestSequenceID returns the highest stored sequence ID,
	// or 0 if the store is empty.
	LatestSequenceID(ctx context.Context) (int64, error)

	// Upsert inserts a record or replaces the record with the same sequence ID.
	// Returns domain.ErrInvalidInput if the record fails validation.
	Upsert(ctx context.Context, record domain.DrawRecord) error

	// Get retrieves a record by sequence ID.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, sequenceID int64) (*domain.DrawRecord, error)

	// Latest returns the record with the highest sequence ID.
	// Returns domain.ErrNotFound if the store is empty.
	Latest(ctx context.Context) (*domain.DrawRecord, error)

	// Range returns records with from <= sequence ID <= to, ascending.
	Range(ctx context.Context, from, to int64) ([]domain.DrawRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
