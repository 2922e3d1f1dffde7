// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
)

// Environments accepted in APP_ENV.
const (
	// EnvLocal logs human-readable text at debug level.
	EnvLocal = "local"
	// EnvDev logs JSON at debug level.
	EnvDev = "dev"
	// EnvProd logs JSON at info level.
	EnvProd = "prod"
)

// New returns a logger for env: human-readable text locally, JSON elsewhere,
// debug level everywhere except prod.
func New(env string, w io.Writer) *slog.Logger {
	switch env {
	case EnvDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case EnvProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
