// Package cli provides the drawsync command line.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drawsync/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var (
	configDir string
	dataDir   string
	verbose   bool
	logJSON   bool
)

var (
	// app holds the wired services for the running command.
	app *App

	// ownsApp is true when app was built by this process run and must be closed.
	ownsApp bool

	// bootstrap builds the App. Replaced in tests.
	bootstrap = newApp

	// stdioLogOutput receives logs while stdout carries MCP JSON-RPC.
	stdioLogOutput io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "drawsync",
	Short: "Keep a local copy of lottery draw results",
	Long: `drawsync mirrors double colour ball draw results from the public
results service into a local SQLite database.

Each sync reads the newest stored issue, then pages through the remote
results newest first until it reaches a draw it already has.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: teardownApp,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.drawsync)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.drawsync/data)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
}

// Execute runs the root command.
// The app is also closed here because cobra skips post-run hooks when a
// command fails.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := teardownApp(rootCmd, nil); err == nil {
		err = closeErr
	}
	return err
}

func setupApp(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetJSON(logJSON)
	if stdioMode(cmd) {
		logger.SetOutput(stdioLogOutput)
	}

	if app != nil || cmd == versionCmd {
		return nil
	}

	a, err := bootstrap(cmd.Context(), needsStore(cmd))
	if err != nil {
		return err
	}
	app = a
	ownsApp = true
	return nil
}

func teardownApp(_ *cobra.Command, _ []string) error {
	if !ownsApp || app == nil {
		return nil
	}
	a := app
	app = nil
	ownsApp = false
	if a.Close != nil {
		return a.Close()
	}
	return nil
}

// needsStore reports whether cmd needs the database and remote source.
// Settings commands only touch the config file, so they work even when
// the stored settings are invalid.
func needsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == settingsCmd {
			return false
		}
	}
	return true
}

// stdioMode reports whether cmd serves MCP over stdin and stdout.
func stdioMode(cmd *cobra.Command) bool {
	if cmd != mcpServeCmd {
		return false
	}
	port, err := cmd.Flags().GetInt("port")
	return err == nil && port == 0
}

// errNotConfigured is returned when a command runs without its service.
var errNotConfigured = errors.New("service not configured")
