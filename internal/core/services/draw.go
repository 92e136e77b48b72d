package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/ports/driven"
	"github.com/custodia-labs/drawsync/internal/core/ports/driving"
)

// MaxRangeDraws caps how many draws a range query may return.
// Issue labels jump at each year boundary, so the cap counts draws rather
// than the numeric distance between labels.
const MaxRangeDraws = 1000

// Ensure DrawService implements the interface.
var _ driving.DrawService = (*DrawService)(nil)

// DrawService answers read queries over stored draws.
type DrawService struct {
	store driven.DrawStore
}

// NewDrawService creates a new draw service.
func NewDrawService(store driven.DrawStore) *DrawService {
	return &DrawService{store: store}
}

// Latest returns the most recent stored draw.
func (s *DrawService) Latest(ctx context.Context) (*domain.DrawRecord, error) {
	return s.store.Latest(ctx)
}

// Get returns the draw for an issue label.
func (s *DrawService) Get(ctx context.Context, issue string) (*domain.DrawRecord, error) {
	id, err := domain.ParseSequenceID(issue)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// Range returns draws between two issue labels inclusive, ascending.
func (s *DrawService) Range(ctx context.Context, startIssue, endIssue string) ([]domain.DrawRecord, error) {
	start, err := domain.ParseSequenceID(startIssue)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := domain.ParseSequenceID(endIssue)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	if start > end {
		return nil, fmt.Errorf("%w: start %d is after end %d", domain.ErrInvalidInput, start, end)
	}

	draws, err := s.store.Range(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(draws) > MaxRangeDraws {
		return nil, fmt.Errorf("%w: %d to %d holds %d draws, limit is %d",
			domain.ErrRangeTooWide, start, end, len(draws), MaxRangeDraws)
	}
	return draws, nil
}

// Count returns the number of stored draws.
func (s *DrawService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}
