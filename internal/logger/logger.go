// Package logger builds the process-wide zerolog logger.
// Every line is one JSON object with a "ts" field rendered in the configured location.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to stdout.
func New(level, format string, loc *time.Location) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, format, loc)
}

// NewWithWriter returns a logger writing to w. format "console" switches to the human-readable writer.
func NewWithWriter(w io.Writer, level, format string, loc *time.Location) zerolog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(ParseLevel(level)).
		Hook(tsHook{loc: loc})
}

// ParseLevel maps a config string onto a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type tsHook struct {
	loc *time.Location
}

func (h tsHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str("ts", time.Now().In(h.loc).Format(time.RFC3339Nano))
}
