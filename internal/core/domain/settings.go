package domain

import "time"

// Source defaults for the double colour ball game.
const (
	DefaultBaseURL         = "https://jc.zhcw.com/port/client_json.php"
	DefaultTransactionType = "10001001"
	DefaultLotteryID       = "1"
	DefaultPageSize        = 30
	DefaultReferer         = "https://www.zhcw.com/"
	DefaultUserAgent       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"
	DefaultSourceTimeout = 30 * time.Second
	DefaultPageDelay     = time.Second
	DefaultServerAddr    = ":3000"
)

// AppSettings holds all user-configurable settings.
type AppSettings struct {
	Source SourceSettings
	Sync   SyncSettings
	Server ServerSettings
}

// SourceSettings configures the remote draw source.
type SourceSettings struct {
	// BaseURL is the JSONP endpoint.
	BaseURL string

	// LotteryID identifies the game at the source.
	LotteryID string

	// TransactionType is the fixed request type identifier.
	TransactionType string

	// Timeout bounds a single page request.
	Timeout time.Duration

	// UserAgent and Referer are sent with every request.
	UserAgent string
	Referer   string
}

// ServerSettings configures the read-only HTTP API.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":3000".
	Addr string
}

// DefaultAppSettings returns sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Source: SourceSettings{
			BaseURL:         DefaultBaseURL,
			LotteryID:       DefaultLotteryID,
			TransactionType: DefaultTransactionType,
			Timeout:         DefaultSourceTimeout,
			UserAgent:       DefaultUserAgent,
			Referer:         DefaultReferer,
		},
		Sync: SyncSettings{
			PageSize:  DefaultPageSize,
			PageDelay: DefaultPageDelay,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
	}
}
