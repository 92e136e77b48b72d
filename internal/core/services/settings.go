package services

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/custodia-labs/drawsync/internal/core/domain"
	"github.com/custodia-labs/drawsync/internal/core/ports/driven"
	"github.com/custodia-labs/drawsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keySourceBaseURL     = "source.base_url"
	keySourceLotteryID   = "source.lottery_id"
	keySourceTxType      = "source.transaction_type"
	keySourcePageSize    = "source.page_size"
	keySourceTimeout     = "source.timeout"
	keySourceUserAgent   = "source.user_agent"
	keySourceReferer     = "source.referer"
	keySyncPageDelay     = "sync.page_delay"
	keySyncMaxPages      = "sync.max_pages"
	keySyncFetchRetries  = "sync.fetch_retries"
	keyServerAddr        = "server.addr"
	keySchedulerEnabled  = "scheduler.enabled"
	keySchedulerDrawSync = "scheduler.draw_sync."
)

// Environment overrides, applied on top of the config file.
const (
	EnvBaseURL  = "DRAWSYNC_BASE_URL"
	EnvPageSize = "DRAWSYNC_PAGE_SIZE"
	EnvDataDir  = "DRAWSYNC_DATA_DIR"
	EnvHTTPAddr = "DRAWSYNC_HTTP_ADDR"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Values come from the config store, then DRAWSYNC_* environment variables.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Source: domain.SourceSettings{
			BaseURL:         s.getString(keySourceBaseURL, defaults.Source.BaseURL),
			LotteryID:       s.getString(keySourceLotteryID, defaults.Source.LotteryID),
			TransactionType: s.getString(keySourceTxType, defaults.Source.TransactionType),
			Timeout:         s.getDuration(keySourceTimeout, defaults.Source.Timeout),
			UserAgent:       s.getString(keySourceUserAgent, defaults.Source.UserAgent),
			Referer:         s.getString(keySourceReferer, defaults.Source.Referer),
		},
		Sync: domain.SyncSettings{
			PageSize:     s.getInt(keySourcePageSize, defaults.Sync.PageSize),
			PageDelay:    s.getDuration(keySyncPageDelay, defaults.Sync.PageDelay),
			MaxPages:     s.getInt(keySyncMaxPages, defaults.Sync.MaxPages),
			FetchRetries: s.getInt(keySyncFetchRetries, defaults.Sync.FetchRetries),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}

	if v := s.getenv(EnvBaseURL); v != "" {
		settings.Source.BaseURL = v
	}
	if v := s.getenv(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %s=%q", domain.ErrInvalidInput, EnvPageSize, v)
		}
		settings.Sync.PageSize = n
	}
	if v := s.getenv(EnvHTTPAddr); v != "" {
		settings.Server.Addr = v
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}

	values := []struct {
		key string
		val any
	}{
		{keySourceBaseURL, settings.Source.BaseURL},
		{keySourceLotteryID, settings.Source.LotteryID},
		{keySourceTxType, settings.Source.TransactionType},
		{keySourcePageSize, settings.Sync.PageSize},
		{keySourceTimeout, settings.Source.Timeout.String()},
		{keySourceUserAgent, settings.Source.UserAgent},
		{keySourceReferer, settings.Source.Referer},
		{keySyncPageDelay, settings.Sync.PageDelay.String()},
		{keySyncMaxPages, settings.Sync.MaxPages},
		{keySyncFetchRetries, settings.Sync.FetchRetries},
		{keyServerAddr, settings.Server.Addr},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return s.configStore.Save()
}

// Validate checks that current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error

	u, err := url.Parse(settings.Source.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("%w: source.base_url %q", domain.ErrInvalidInput, settings.Source.BaseURL))
	}
	if settings.Sync.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: source.page_size must be positive", domain.ErrInvalidInput))
	}
	if settings.Sync.PageDelay < 0 {
		errs = append(errs, fmt.Errorf("%w: sync.page_delay must not be negative", domain.ErrInvalidInput))
	}
	if settings.Sync.MaxPages < 0 || settings.Sync.FetchRetries < 0 {
		errs = append(errs, fmt.Errorf("%w: sync limits must not be negative", domain.ErrInvalidInput))
	}

	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		defaults.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	taskCfg := defaults.TaskConfigs[domain.TaskIDDrawSync]
	if _, exists := s.configStore.Get(keySchedulerDrawSync + "enabled"); exists {
		taskCfg.Enabled = s.configStore.GetBool(keySchedulerDrawSync + "enabled")
	}
	// Interval is a duration string like "6h"
	taskCfg.Interval = s.getDuration(keySchedulerDrawSync+"interval", taskCfg.Interval)
	defaults.TaskConfigs[domain.TaskIDDrawSync] = taskCfg

	return defaults
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getDuration accepts a duration string or a whole number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if str := s.configStore.GetString(key); str != "" {
		if d, err := time.ParseDuration(str); err == nil && d > 0 {
			return d
		}
		return defaultVal
	}
	if secs := s.configStore.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}
