// Package connectors holds implementations of the driven.DrawSource port.
// Each connector knows how to fetch pages of draws from one remote results
// service and hand them back as domain.RawDraw entries.
//
// The zhcw connector serves the double colour ball game.
package connectors
