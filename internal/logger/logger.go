package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// New builds the process logger from LOG_LEVEL and LOG_FORMAT. It runs before
// the config is loaded, so it reads the environment directly.
func New() zerolog.Logger {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return build(os.Stdout, os.Getenv("LOG_FORMAT"), level)
}

func SetLevel(level zerolog.Level) zerolog.Logger {
	return build(os.Stderr, "console", level)
}

func build(w io.Writer, format string, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(level)
}

var Module = fx.Provide(New)
