// Package logger configures zerolog for the process. Components do not log
// through a package-level singleton; New hands out a logger that is passed
// down explicitly at construction.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the root logger for the given environment. Development gets a
// console writer, everything else structured JSON.
func New(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var logger zerolog.Logger
	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return logger.Level(zerolog.InfoLevel)
}
