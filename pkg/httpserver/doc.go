// Package httpserver wraps net/http.Server with graceful shutdown on
// SIGINT/SIGTERM or context cancellation, environment-driven configuration,
// and structured startup/stop logging.
package httpserver
