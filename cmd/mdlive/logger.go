package main

import (
	"io"

	"cdr.dev/slog"
	"cdr.dev/slog/sloggers/sloghuman"
)

// newLogger returns a human-readable logger on w. Info by default, debug
// with verbose, errors only with quiet.
func newLogger(w io.Writer, quiet, verbose bool) slog.Logger {
	l := slog.Make(sloghuman.Sink(w))
	switch {
	case verbose:
		l = l.Leveled(slog.LevelDebug)
	case quiet:
		l = l.Leveled(slog.LevelError)
	}
	return l
}
