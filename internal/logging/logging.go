// Package logging wires the process-wide slog default and hands out
// component-scoped loggers to the subcommands.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init installs the global slog default. Format is "text" or "json"; an
// optional writer overrides os.Stderr, which the tests use to capture output.
func Init(level slog.Level, format string, w ...io.Writer) {
	out := io.Writer(os.Stderr)
	if len(w) > 0 && w[0] != nil {
		out = w[0]
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(h))
}

// New returns the default logger tagged with a "component" attribute.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}

// LevelFromVerbosity maps the CLI's -q/-v flags to a slog level:
// quiet selects Error, no flags Warn, -v Info, -vv and above Debug.
func LevelFromVerbosity(quiet bool, verbose int) slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose >= 2:
		return slog.LevelDebug
	case verbose == 1:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}
