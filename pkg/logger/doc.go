// Package logger builds configured log/slog loggers: JSON or text output,
// level from the environment, static attributes, and a few attribute helpers
// (Error, UserID, SessionID, Component) used across the codebase for
// consistent keys.
package logger
