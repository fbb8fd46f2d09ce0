package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// The package logger starts disabled; components can be used from tests or
// as a library without any logging configuration.
var logger = zerolog.Nop()

// Setup configures the package logger for the given verbosity. 0 disables
// logging entirely; 1 through 5 enable progressively more detail, from
// errors only up to per-item trace output.
func Setup(verbosity int) {
	if verbosity <= 0 {
		logger = zerolog.Nop()
		return
	}

	level := zerolog.ErrorLevel
	switch {
	case verbosity >= 5:
		level = zerolog.TraceLevel
	case verbosity == 4:
		level = zerolog.DebugLevel
	case verbosity == 3:
		level = zerolog.InfoLevel
	case verbosity == 2:
		level = zerolog.WarnLevel
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Tracef logs a per-item detail message.
func Tracef(format string, args ...interface{}) {
	logger.Trace().Msgf(format, args...)
}

// Debugf logs a debugging message.
func Debugf(format string, args ...interface{}) {
	logger.Debug().Msgf(format, args...)
}

// Infof logs a progress message.
func Infof(format string, args ...interface{}) {
	logger.Info().Msgf(format, args...)
}

// Warnf logs a recoverable problem.
func Warnf(format string, args ...interface{}) {
	logger.Warn().Msgf(format, args...)
}

// Errorf logs a serious problem.
func Errorf(format string, args ...interface{}) {
	logger.Error().Msgf(format, args...)
}

// ItemProcessed logs the outcome of one file in one phase. Successes are
// trace-level noise; failures are warnings because the run continues
// without the item.
func ItemProcessed(phase, path string, err error) {
	if err != nil {
		logger.Warn().Str("phase", phase).Str("path", path).Err(err).Msg("item failed")
		return
	}
	logger.Trace().Str("phase", phase).Str("path", path).Msg("item processed")
}
