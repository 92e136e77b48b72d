// Package httpapi serves stored draws over a small read-only JSON API.
//
// Routes:
//
//	GET /lottery/latest                       most recent draw
//	GET /lottery/range?startQh=...&endQh=...  draws in an issue range, ascending
//	GET /lottery/sync                         last or running sync report
//	GET /healthz                              liveness and draw count
package httpapi
