// Package logging defines the structured-logging interface used by the
// server, the HTTP handlers and the CLI. Two backends are provided: slog
// (JSON or text) and zerolog (console or JSON).
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "user registered", "username", name)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

const (
	FormatJSON    = "json"
	FormatText    = "text"
	FormatConsole = "console"
)

// New returns a Logger writing to w in the given format. "json" and "text"
// use slog, "console" uses zerolog's human-friendly writer. Unknown formats
// fall back to JSON.
func New(format string, w io.Writer) Logger {
	if w == nil {
		w = os.Stdout
	}

	switch strings.ToLower(format) {
	case FormatConsole:
		zl := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).With().Timestamp().Logger()
		return NewZerologLogger(zl)
	case FormatText:
		return NewSlogLogger(slog.New(slog.NewTextHandler(w, nil)))
	default:
		return NewSlogLogger(slog.New(slog.NewJSONHandler(w, nil)))
	}
}

// Nop discards everything. Useful in tests and for optional dependencies.
func Nop() Logger {
	return NewZerologLogger(zerolog.Nop())
}
