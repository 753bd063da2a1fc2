// Package logging builds the zerolog logger used for diagnostics.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/junyeong-ai/modmap/internal/ansi"
)

// New returns a logger writing to w at the given level. Format "console"
// selects the human-readable writer; anything else emits JSON lines.
// Unknown levels fall back to info.
func New(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	out := w
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !ansi.Enabled(w)}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
