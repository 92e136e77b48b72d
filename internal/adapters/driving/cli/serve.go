package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/drawsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/drawsync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the draw API and sync on a schedule",
	Long: `Starts the read-only HTTP API and the background scheduler.

Endpoints:
  GET /lottery/latest                      most recent draw
  GET /lottery/range?startQh=..&endQh=..   draws between two issues
  GET /lottery/sync                        last sync report
  GET /healthz                             liveness

The scheduler runs a sync at startup and then on the configured interval.
Changes to the scheduler section of config.toml are applied without a
restart. SIGINT or SIGTERM shuts everything down gracefully.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings, e.g. :3000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if app == nil || app.Draws == nil {
		return fmt.Errorf("serve: %w", errNotConfigured)
	}

	addr := serveAddr
	if addr == "" {
		addr = app.ServerAddr
	}
	if addr == "" {
		addr = domain.DefaultServerAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	api := httpapi.New(app.Draws, app.Sync)
	g.Go(func() error {
		return api.Run(gctx, addr)
	})

	if app.Scheduler != nil {
		g.Go(func() error {
			err := app.Scheduler.Start(gctx)
			if gctx.Err() != nil {
				// Shutdown, not a scheduler failure.
				return nil
			}
			return err
		})
	}

	if app.ConfigStore != nil {
		w := file.NewWatcher(app.ConfigStore, func() { reloadSchedule(gctx) })
		g.Go(func() error {
			if err := w.Run(gctx); err != nil {
				logger.Warn("Config watcher stopped: %v", err)
			}
			return nil
		})
	}

	cmd.Printf("Serving draws on %s (Ctrl+C to stop)\n", addr)

	err := g.Wait()
	if app.Scheduler != nil {
		if stopErr := app.Scheduler.Stop(); stopErr != nil {
			logger.Warn("Stopping scheduler: %v", stopErr)
		}
	}
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	cmd.Println("Stopped.")
	return nil
}

// reloadSchedule applies the draw sync task settings after a config change.
func reloadSchedule(ctx context.Context) {
	if app == nil || app.Scheduler == nil || app.Settings == nil {
		return
	}
	cfg := schedulerConfig()
	if err := app.Scheduler.UpdateInterval(ctx, domain.TaskIDDrawSync, cfg.Enabled, cfg.Interval); err != nil {
		logger.Warn("Config reload: %v", err)
	}
}
