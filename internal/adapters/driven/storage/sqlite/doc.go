// Package sqlite provides the SQLite-based implementation of the driven
// storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A single database file holds:
//
//   - DrawStore: the draw history table (ball_info)
//   - SchedulerStore: scheduled task state and run history
//
// # Schema
//
// The schema lives in embedded SQL files under migrations/. Every statement
// is create-if-absent, so opening the store on each run is safe.
//
// # Data Location
//
// By default, the database is stored at ~/.drawsync/data/draws.db
//
// # Thread Safety
//
// Each upsert commits on its own. SQLite runs in WAL mode with a busy
// timeout so the scheduler and HTTP API can share the file.
package sqlite
