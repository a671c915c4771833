package contract

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging routes the global logger through a console writer on stderr
// so tables and JSON on stdout stay machine-readable.
func SetupLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	log.Fatal().Err(err).Msg(msg)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	log.Warn().Err(err).Msg(msg)
}

// LogInfo logs an informational message to stderr.
func LogInfo(msg string) {
	log.Info().Msg(msg)
}
