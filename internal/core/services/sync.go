package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/ports/driven"
	"github.com/custodia-labs/drawsync/internal/core/ports/driving"
	"github.com/custodia-labs/drawsync/internal/logger"
)

// Ensure SyncDriver implements the interface.
var _ driving.SyncService = (*SyncDriver)(nil)

// SyncDriver pulls new draws from a source into a store.
//
// Pages are requested newest first starting at page 1. Paging stops at the
// first page that contains a draw already stored, at an empty or short
// page, or at the first fetch failure. Each draw is upserted on its own,
// so an interrupted run leaves every record it reached committed.
type SyncDriver struct {
	store    driven.DrawStore
	source   driven.DrawSource
	settings domain.SyncSettings

	// Status tracking
	mu      sync.RWMutex
	current *domain.SyncReport
	last    *domain.SyncReport

	newLimiter func() *rate.Limiter
	newRunID   func() string
}

// NewSyncDriver creates a sync driver.
// A non-positive PageSize falls back to the source's page size.
func NewSyncDriver(store driven.DrawStore, source driven.DrawSource, settings domain.SyncSettings) *SyncDriver {
	if settings.PageSize <= 0 {
		settings.PageSize = source.PageSize()
	}
	delay := settings.PageDelay

	return &SyncDriver{
		store:    store,
		source:   source,
		settings: settings,
		newLimiter: func() *rate.Limiter {
			if delay <= 0 {
				return rate.NewLimiter(rate.Inf, 1)
			}
			// Burst of one lets the first page go immediately.
			return rate.NewLimiter(rate.Every(delay), 1)
		},
		newRunID: func() string { return uuid.NewString() },
	}
}

// Sync runs one incremental sync.
func (d *SyncDriver) Sync(ctx context.Context) (*domain.SyncReport, error) {
	report := &domain.SyncReport{
		RunID:     d.newRunID(),
		Running:   true,
		StartedAt: time.Now(),
	}

	d.mu.Lock()
	if d.current != nil {
		d.mu.Unlock()
		return nil, domain.ErrSyncInProgress
	}
	d.current = report
	d.mu.Unlock()

	log := logger.With(map[string]any{"run": report.RunID})

	err := d.run(ctx, report, log)

	d.mu.Lock()
	report.Running = false
	report.EndedAt = time.Now()
	final := *report
	d.current = nil
	d.last = &final
	d.mu.Unlock()

	log.WithField("reason", final.StopReason).Infof(
		"Sync finished: %d inserted, %d skipped, %d failed over %d page(s)",
		final.Inserted, final.Skipped, final.Failed, final.PagesFetched)

	return &final, err
}

// Status returns a snapshot of the running sync, or the last finished one.
func (d *SyncDriver) Status(_ context.Context) (*domain.SyncReport, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch {
	case d.current != nil:
		snapshot := *d.current
		return &snapshot, nil
	case d.last != nil:
		snapshot := *d.last
		return &snapshot, nil
	}
	return nil, nil
}

// run executes the paging loop, recording progress into report.
// It returns a non-nil error only when ctx is cancelled.
//
//nolint:gocyclo // Sequential paging loop with explicit stop conditions
func (d *SyncDriver) run(ctx context.Context, report *domain.SyncReport, log *logger.Entry) error {
	knownMax, err := d.store.LatestSequenceID(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			d.update(report, func(r *domain.SyncReport) { r.StopReason = domain.StopCancelled })
			return ctxErr
		}
		log.Errorf("Reading latest stored draw: %v", err)
		d.update(report, func(r *domain.SyncReport) {
			r.StopReason = domain.StopStoreUnavailable
			r.LastError = err.Error()
		})
		return nil
	}

	d.update(report, func(r *domain.SyncReport) { r.KnownMax = knownMax })
	log.Infof("Latest stored issue: %d", knownMax)

	limiter := d.newLimiter()

	for page := 1; ; page++ {
		if err := limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				d.update(report, func(r *domain.SyncReport) { r.StopReason = domain.StopCancelled })
				return ctxErr
			}
			// The deadline falls before the next page is due.
			log.Warnf("Stopping before page %d: %v", page, err)
			d.update(report, func(r *domain.SyncReport) {
				r.StopReason = domain.StopDeadline
				r.LastError = err.Error()
			})
			return nil
		}

		batch, err := d.fetch(ctx, page, log)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				d.update(report, func(r *domain.SyncReport) { r.StopReason = domain.StopCancelled })
				return ctxErr
			}
			log.Errorf("Fetching page %d: %v", page, err)
			d.update(report, func(r *domain.SyncReport) {
				r.StopReason = domain.StopFetchFailed
				r.LastError = err.Error()
			})
			return nil
		}

		d.update(report, func(r *domain.SyncReport) { r.PagesFetched++ })
		log.Infof("Fetched page %d: %d draw(s)", page, len(batch))

		if len(batch) == 0 {
			d.update(report, func(r *domain.SyncReport) { r.StopReason = domain.StopEndOfData })
			return nil
		}

		boundary, err := d.processPage(ctx, batch, knownMax, report, log)
		if err != nil {
			d.update(report, func(r *domain.SyncReport) { r.StopReason = domain.StopCancelled })
			return err
		}

		switch {
		case boundary:
			d.update(report, func(r *domain.SyncReport) { r.StopReason = domain.StopCaughtUp })
			return nil
		case len(batch) < d.settings.PageSize:
			d.update(report, func(r *domain.SyncReport) { r.StopReason = domain.StopEndOfData })
			return nil
		case d.settings.MaxPages > 0 && page >= d.settings.MaxPages:
			d.update(report, func(r *domain.SyncReport) { r.StopReason = domain.StopPageLimit })
			return nil
		}
	}
}

// fetch requests one page, retrying up to FetchRetries times.
// Failures the source rejected on purpose are not retried.
func (d *SyncDriver) fetch(ctx context.Context, page int, log *logger.Entry) ([]domain.RawDraw, error) {
	var lastErr error
	for attempt := 0; attempt <= d.settings.FetchRetries; attempt++ {
		if attempt > 0 {
			log.Warnf("Retrying page %d (attempt %d): %v", page, attempt+1, lastErr)
		}
		batch, err := d.source.FetchPage(ctx, page)
		if err == nil {
			return batch, nil
		}
		if ctx.Err() != nil || errors.Is(err, domain.ErrRemoteRejected) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// processPage stores every entry newer than knownMax, newest first.
// It reports whether an entry at or below knownMax was reached.
func (d *SyncDriver) processPage(
	ctx context.Context,
	batch []domain.RawDraw,
	knownMax int64,
	report *domain.SyncReport,
	log *logger.Entry,
) (bool, error) {
	for _, raw := range batch {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		id, err := raw.SequenceID()
		if err != nil {
			log.Warnf("Skipping entry with bad issue %q: %v", raw.Issue, err)
			d.update(report, func(r *domain.SyncReport) { r.Skipped++ })
			continue
		}

		if id <= knownMax {
			return true, nil
		}

		record, err := domain.NewDrawRecord(raw)
		if err != nil {
			log.Warnf("Skipping malformed draw %s: %v", raw.Issue, err)
			d.update(report, func(r *domain.SyncReport) { r.Skipped++ })
			continue
		}

		if err := d.store.Upsert(ctx, record); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false, err
			}
			log.Errorf("Storing draw %s: %v", record.IssueLabel, err)
			d.update(report, func(r *domain.SyncReport) {
				r.Failed++
				r.LastError = err.Error()
			})
			continue
		}

		d.update(report, func(r *domain.SyncReport) { r.Inserted++ })
		log.Infof("Stored draw %s: %s + %02d",
			record.IssueLabel, record.PrimaryString(), record.SecondaryNumber)
	}

	return false, nil
}

// update mutates the in-flight report under the status lock.
func (d *SyncDriver) update(report *domain.SyncReport, fn func(*domain.SyncReport)) {
	d.mu.Lock()
	fn(report)
	d.mu.Unlock()
}
