// Package logging provides structured logging for annomerge using zerolog.
// Console output is used when stderr is a terminal, JSON otherwise.
//
// Import runs carry their logger in the context, tagged with the store and
// document being worked on:
//
//	ctx = logging.WithStore(ctx, "/data/ann")
//	ctx = logging.WithDocument(ctx, "APW_ENG_20090605.0323")
//	logging.FromContext(ctx).Info().Int("added", 12).Msg("Merged document")
package logging

import (
	"io"
	"os"

	goisatty "github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Nop discards everything.
var Nop = zerolog.Nop()

var defaultLogger = NewLoggerFromConfig(DefaultConfig())

// Default returns the process-wide logger, used when a context carries none.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's global
// log.Logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New creates a JSON logger on w at the current global level.
func New(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return goisatty.IsTerminal(fd) || goisatty.IsCygwinTerminal(fd)
}
