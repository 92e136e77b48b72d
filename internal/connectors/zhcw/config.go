package zhcw

import (
	"time"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

// Config holds the request parameters for the source.
type Config struct {
	BaseURL         string
	LotteryID       string
	TransactionType string
	PageSize        int
	Timeout         time.Duration
	UserAgent       string
	Referer         string
}

// ParseConfig builds a Config from application settings, falling back to
// the defaults for anything left empty.
func ParseConfig(src domain.SourceSettings, pageSize int) Config {
	defaults := domain.DefaultAppSettings().Source

	cfg := Config{
		BaseURL:         orDefault(src.BaseURL, defaults.BaseURL),
		LotteryID:       orDefault(src.LotteryID, defaults.LotteryID),
		TransactionType: orDefault(src.TransactionType, defaults.TransactionType),
		PageSize:        pageSize,
		Timeout:         src.Timeout,
		UserAgent:       orDefault(src.UserAgent, defaults.UserAgent),
		Referer:         orDefault(src.Referer, defaults.Referer),
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = domain.DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	return cfg
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
