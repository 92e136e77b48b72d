package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/drawsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/drawsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/drawsync/internal/connectors/zhcw"
	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/ports/driving"
	"github.com/custodia-labs/drawsync/internal/core/services"
	"github.com/custodia-labs/drawsync/internal/logger"
)

// dotEnvFile is read from the working directory before settings load.
const dotEnvFile = ".env"

// App is the set of services a command works with.
type App struct {
	Settings  driving.SettingsService
	Sync      driving.SyncService
	Draws     driving.DrawService
	Scheduler driving.Scheduler

	// ConfigStore is watched by serve for live changes. Nil in tests.
	ConfigStore *file.ConfigStore

	// ServerAddr is the configured HTTP listen address.
	ServerAddr string

	Close func() error
}

// newApp wires the application. When withStore is false only the config
// store and settings service are created.
func newApp(_ context.Context, withStore bool) (*App, error) {
	if err := LoadDotEnv(dotEnvFile); err != nil {
		return nil, fmt.Errorf("loading %s: %w", dotEnvFile, err)
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsSvc := services.NewSettingsService(configStore)

	a := &App{
		Settings:    settingsSvc,
		ConfigStore: configStore,
	}
	if !withStore {
		return a, nil
	}

	if err := settingsSvc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings (see 'drawsync settings show'): %w", err)
	}
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, err
	}
	a.ServerAddr = settings.Server.Addr

	dir := dataDir
	if dir == "" {
		dir = os.Getenv(services.EnvDataDir)
	}
	store, err := sqlite.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening draw store: %w", err)
	}
	logger.Debug("Draw store: %s", store.Path())

	source := zhcw.New(zhcw.ParseConfig(settings.Source, settings.Sync.PageSize), nil)
	driver := services.NewSyncDriver(store.DrawStore(), source, settings.Sync)

	a.Sync = driver
	a.Draws = services.NewDrawService(store.DrawStore())
	a.Scheduler = services.NewScheduler(settingsSvc.GetSchedulerConfig(), store.SchedulerStore(), driver)
	a.Close = store.Close
	return a, nil
}

// schedulerConfig returns the draw sync task config from current settings.
func schedulerConfig() domain.TaskConfig {
	cfg := app.Settings.GetSchedulerConfig()
	return cfg.GetTaskConfig(domain.TaskIDDrawSync)
}
