package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the source, sync and server settings stored in
config.toml. DRAWSYNC_* environment variables override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting and save it to config.toml.

Keys:
  ` + strings.Join(settingKeys(), "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingSetters maps user-facing keys to field updates.
var settingSetters = map[string]func(s *domain.AppSettings, v string) error{
	"base_url": func(s *domain.AppSettings, v string) error {
		s.Source.BaseURL = v
		return nil
	},
	"timeout": func(s *domain.AppSettings, v string) error {
		return setDuration(&s.Source.Timeout, v)
	},
	"page_size": func(s *domain.AppSettings, v string) error {
		return setInt(&s.Sync.PageSize, v)
	},
	"page_delay": func(s *domain.AppSettings, v string) error {
		return setDuration(&s.Sync.PageDelay, v)
	},
	"max_pages": func(s *domain.AppSettings, v string) error {
		return setInt(&s.Sync.MaxPages, v)
	},
	"fetch_retries": func(s *domain.AppSettings, v string) error {
		return setInt(&s.Sync.FetchRetries, v)
	},
	"server_addr": func(s *domain.AppSettings, v string) error {
		s.Server.Addr = v
		return nil
	},
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, v)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%w: %q is not a duration (e.g. 1s, 30s)", domain.ErrInvalidInput, v)
	}
	*dst = d
	return nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if app == nil || app.Settings == nil {
		return fmt.Errorf("settings: %w", errNotConfigured)
	}

	settings, err := app.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Source]")
	cmd.Printf("  Base URL: %s\n", settings.Source.BaseURL)
	cmd.Printf("  Lottery ID: %s\n", settings.Source.LotteryID)
	cmd.Printf("  Timeout: %s\n", settings.Source.Timeout)
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Page size: %d\n", settings.Sync.PageSize)
	cmd.Printf("  Page delay: %s\n", settings.Sync.PageDelay)
	if settings.Sync.MaxPages > 0 {
		cmd.Printf("  Max pages: %d\n", settings.Sync.MaxPages)
	} else {
		cmd.Println("  Max pages: unlimited")
	}
	cmd.Printf("  Fetch retries: %d\n", settings.Sync.FetchRetries)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Println()

	sched := app.Settings.GetSchedulerConfig()
	task := sched.GetTaskConfig(domain.TaskIDDrawSync)
	cmd.Println("[Scheduler]")
	cmd.Printf("  Enabled: %t\n", sched.Enabled)
	cmd.Printf("  Draw sync: enabled=%t every %s\n", task.Enabled, task.Interval)
	cmd.Println()

	if err := app.Settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'drawsync settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if app == nil || app.Settings == nil {
		return fmt.Errorf("settings: %w", errNotConfigured)
	}

	key, value := args[0], args[1]
	set, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (valid: %s)",
			domain.ErrInvalidInput, key, strings.Join(settingKeys(), ", "))
	}

	settings, err := app.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := set(settings, value); err != nil {
		return err
	}
	if err := app.Settings.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	if err := app.Settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}
