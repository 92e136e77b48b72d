// Package logger provides leveled logging for drawsync.
// Progress lines (Info, Warn, Error) are always printed. Debug messages and
// section headers are printed only when verbose mode is enabled via the
// --verbose flag.
package logger

import (
	"io"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
)

var (
	mu      sync.RWMutex
	verbose bool
	base    = newLogger(os.Stdout)
)

func newLogger(w io.Writer) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetLevel(log.InfoLevel)
	l.SetFormatter(&log.TextFormatter{
		FullTimestamp:    true,
		DisableQuote:     true,
		DisableSorting:   false,
		QuoteEmptyFields: true,
	})
	return l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		base.SetLevel(log.DebugLevel)
	} else {
		base.SetLevel(log.InfoLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stdout. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base.SetOutput(w)
}

// SetJSON switches between the text and JSON formatters.
func SetJSON(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	if enabled {
		base.SetFormatter(&log.JSONFormatter{})
		return
	}
	base.SetFormatter(&log.TextFormatter{FullTimestamp: true, DisableQuote: true, QuoteEmptyFields: true})
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Debugf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		base.WithField("section", name).Debug("===")
	}
}

// Info prints an informational message.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Infof(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Warnf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Errorf(format, args...)
}

// Entry is a log line builder carrying fields.
type Entry = log.Entry

// With returns an entry carrying the given fields, for tagging every line
// of a sync run with its run ID.
func With(fields map[string]any) *Entry {
	mu.RLock()
	defer mu.RUnlock()
	return base.WithFields(log.Fields(fields))
}
