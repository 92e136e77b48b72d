// Package zhcw implements driven.DrawSource against the zhcw.com JSONP
// draw history endpoint.
//
// The endpoint wraps a JSON envelope in a jQuery callback:
//
//	jQuery1712345678901({"errorCode":"0","value":[{"issue":"2024030",...}]})
//
// The client strips the callback, decodes the envelope and returns the
// entries newest first. It never retries; pacing and retry policy belong
// to the sync driver.
package zhcw
