// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services never import adapters or connectors; those are wired in by
// the CLI bootstrap.
package services
