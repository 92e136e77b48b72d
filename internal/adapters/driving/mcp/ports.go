package mcp

import (
	"github.com/custodia-labs/drawsync/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Draws answers draw queries.
	Draws driving.DrawService

	// Sync runs an incremental sync. Optional.
	Sync driving.SyncService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Draws == nil {
		return ErrMissingDrawService
	}
	return nil
}
