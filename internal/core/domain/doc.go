// Package domain defines the core business entities for drawsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DrawRecord: One validated lottery draw as stored locally
//   - RawDraw: One draw entry exactly as returned by the remote source
//   - SyncReport: The outcome of one incremental sync run
//   - ScheduledTask: A recurring background task
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
