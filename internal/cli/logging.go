package cli

import (
	"io"
	"log/slog"
)

// NewLogger returns a text logger whose level can be raised after flags
// are parsed
func NewLogger(w io.Writer) (*slog.Logger, *slog.LevelVar) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), level
}

// SetVerbose switches level between warnings only and debug output
func SetVerbose(level *slog.LevelVar, verbose bool) {
	if verbose {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelWarn)
}
