package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/ports/driving"
)

// ErrSyncFailed is returned by sync --strict when the run stopped on an error.
var ErrSyncFailed = errors.New("sync stopped on error")

// progressInterval is how often a running sync is polled for progress.
var progressInterval = 500 * time.Millisecond

var syncStrict bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch new draws from the results service",
	Long: `Fetches draws newer than the latest stored issue and stores them.

Pages are requested newest first until a page contains a draw that is
already stored, or the remote runs out of data. A failed page request
stops the run but keeps every draw stored so far; the next sync resumes
from there.

By default the command exits 0 even when a page could not be fetched.
Use --strict to exit non-zero in that case.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncStrict, "strict", false, "exit non-zero when the sync stops on a fetch or store error")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if app == nil || app.Sync == nil {
		return fmt.Errorf("sync: %w", errNotConfigured)
	}

	cmd.Println("Synchronising draws...")

	report, err := syncWithProgress(cmd.Context(), cmd, app.Sync)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	if report == nil {
		return errors.New("sync failed: no report")
	}

	st := outputStyles(cmd)
	cmd.Printf("Latest stored issue before sync: %d\n", report.KnownMax)
	cmd.Printf("Fetched %d page(s), stored %d draw(s)", report.PagesFetched, report.Inserted)
	if report.Skipped > 0 || report.Failed > 0 {
		cmd.Printf(" (%d skipped, %d failed)", report.Skipped, report.Failed)
	}
	cmd.Println()
	cmd.Printf("Stopped: %s\n", st.StopReason(report.StopReason))
	if report.LastError != "" {
		cmd.Printf("Last error: %s\n", report.LastError)
	}

	if syncStrict && report.StopReason.IsFailure() {
		return fmt.Errorf("%w: %s", ErrSyncFailed, report.StopReason)
	}
	return nil
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	syncSvc driving.SyncService,
) (*domain.SyncReport, error) {
	type result struct {
		report *domain.SyncReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		r, err := syncSvc.Sync(ctx)
		done <- result{r, err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case r := <-done:
			if lastCount > 0 {
				cmd.Println()
			}
			return r.report, r.err
		case <-ticker.C:
			// Best effort; a status error just skips this tick.
			status, err := syncSvc.Status(ctx)
			if err == nil && status != nil && status.Running && status.Inserted > lastCount {
				cmd.Printf("\rStored %d draws...", status.Inserted)
				lastCount = status.Inserted
			}
		}
	}
}
