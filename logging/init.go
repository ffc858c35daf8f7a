package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// GlobalLogger describes a Logger that is disabled by default and is instantiated when the CLI starts. Components
// which are not handed a logger fall back to sub-loggers of it.
var GlobalLogger *Logger

// init will instantiate the global logger and set up some global parameters from the zerolog package.
func init() {
	// Instantiate the global logger
	GlobalLogger = NewLogger(zerolog.Disabled, false)

	// Setup stack trace support and set the timestamp format to UNIX
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}
