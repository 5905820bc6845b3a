// Package logging adapts zerolog to the rbt.Logger interface.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger writes structured log lines through zerolog.
type Logger struct {
	logger zerolog.Logger
}

// New creates a logger writing to out at the given level ("debug", "info",
// "warn", "error"). Console output is human readable; otherwise one JSON
// object is written per line.
func New(out io.Writer, level string, console bool) (*Logger, error) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	if parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	if console {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return &Logger{
		logger: zerolog.New(out).Level(parsed).With().Timestamp().Str("app", "rbt").Logger(),
	}, nil
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

// Error logs at error level.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}
