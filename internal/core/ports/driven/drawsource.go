package driven

import (
	"context"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

// DrawSource fetches pages of draws from a remote endpoint, newest first.
// It is the only component that talks to the network and it never retries.
type DrawSource interface {
	// FetchPage returns page n (1-indexed) of the most recent draws.
	// An empty slice with a nil error means the source has no more data.
	// Transport, decoding and remote-reported failures are returned as
	// errors wrapping domain.ErrFetchFailed.
	FetchPage(ctx context.Context, page int) ([]domain.RawDraw, error)

	// PageSize returns the number of draws requested per page.
	PageSize() int
}
