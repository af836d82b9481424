// Package logger implements a logging adapter using zerolog.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.trai.ch/lode/internal/core/ports"
)

var _ ports.Logger = (*Logger)(nil)

// Logger implements ports.Logger using zerolog.
type Logger struct {
	logger zerolog.Logger
}

// New creates a Logger writing human-readable output to stderr.
func New() *Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return &Logger{
		logger: zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel),
	}
}

// NewWriter creates a Logger writing to the given writer. Used in tests.
func NewWriter(w io.Writer) *Logger {
	return &Logger{logger: zerolog.New(w)}
}

// NewNop creates a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// Component returns a child logger tagged with a component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{logger: l.logger.With().Str("component", name).Logger()}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

// Error logs an error.
func (l *Logger) Error(err error) {
	l.logger.Error().Err(err).Msg("operation failed")
}
