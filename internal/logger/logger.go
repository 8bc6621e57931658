// Package logger builds the process-wide zerolog root logger. Components
// derive their own sub-loggers from it via With().Str("component", ...).
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup configures zerolog and returns the root logger. format "json"
// emits machine-readable lines for production; anything else gets the
// human-oriented console writer. An unknown level falls back to info.
func Setup(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	logger := zerolog.New(os.Stdout)
	if format != "json" {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	return logger.With().Timestamp().Caller().Logger()
}
