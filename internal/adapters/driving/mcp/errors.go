// Package mcp provides an MCP (Model Context Protocol) server adapter for drawsync.
// It lets AI assistants read stored draws and trigger a sync.
package mcp

import "errors"

var (
	// ErrMissingDrawService is returned when the draw service is not provided.
	ErrMissingDrawService = errors.New("mcp: draw service is required")

	// ErrSyncUnavailable is returned by sync_draws when no sync service is wired.
	ErrSyncUnavailable = errors.New("mcp: sync is not available")
)
