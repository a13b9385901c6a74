package main

import (
	"log/slog"
	"strings"

	"storyengine/internal/logger"
)

// setLogLevel maps the configured log_level string to logger.SetLevel,
// defaulting to info for anything unrecognized.
func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(slog.LevelDebug)
	case "warn", "warning":
		logger.SetLevel(slog.LevelWarn)
	case "error":
		logger.SetLevel(slog.LevelError)
	default:
		logger.SetLevel(slog.LevelInfo)
	}
}
