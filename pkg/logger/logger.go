// Package logger provides the zap logger constructor for the service.
package logger

import (
	"go.uber.org/zap"
)

// New creates a zap logger configured for the given environment.
// "local" and "development" get a human-readable development logger,
// everything else gets the production JSON logger.
func New(env string) *zap.Logger {
	var log *zap.Logger
	var err error

	switch env {
	case "local", "development":
		log, err = zap.NewDevelopment()
	default:
		log, err = zap.NewProduction()
	}

	if err != nil {
		// Fall back to a no-op logger rather than crash on startup
		return zap.NewNop()
	}

	return log
}
