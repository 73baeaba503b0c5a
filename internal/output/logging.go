package output

import (
	"io"
	"log/slog"
	"math"
	"strings"
)

// SetupLogger creates a slog.Logger configured for the given verbosity.
// Output is written to w (typically os.Stderr).
//
// Log level mapping:
//   - quiet=true: Suppress ALL output (level set to math.MaxInt to disable all messages)
//   - debug=true: slog.LevelDebug
//   - verbose=true: slog.LevelInfo
//   - otherwise: the configured level name, or slog.LevelWarn when empty
//
// Priority: quiet > debug > verbose > configured level
func SetupLogger(quiet, verbose, debug bool, configured string, w io.Writer) *slog.Logger {
	var level slog.Level

	switch {
	case quiet:
		level = slog.Level(math.MaxInt)
	case debug:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	default:
		level = ParseLevel(configured)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level. Unknown names yield warn.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
