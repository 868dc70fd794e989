// Package log constructs the process-wide structured logger.
package log

import (
	"os"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"matchbook/config"
)

type Logger = zerolog.Logger

// NewLogger builds a zerolog logger from config. Pretty mode writes
// human-readable console output; otherwise JSON lines on stderr.
func NewLogger(cfg config.Config) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	var l zerolog.Logger
	if cfg.Logging.Pretty {
		l = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		l = zlog.Logger
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	return l
}
