// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

package blackjackvm

import (
	"fmt"
	"io"
	"strings"

	"github.com/op/go-logging"
)

// Field represents a structured logging field with a key-value pair.
type Field struct {
	Key   string
	Value interface{}
}

// Logger defines the interface for structured logging throughout the library.
type Logger interface {
	// Debug logs debug-level messages with optional structured fields.
	Debug(msg string, fields ...Field)

	// Info logs info-level messages with optional structured fields.
	Info(msg string, fields ...Field)

	// Warn logs warning-level messages with optional structured fields.
	Warn(msg string, fields ...Field)

	// Error logs error-level messages with optional structured fields.
	Error(msg string, fields ...Field)

	// With creates a new logger instance with the provided fields pre-populated.
	With(fields ...Field) Logger
}

// NoOpLogger is a Logger implementation that discards all log messages.
type NoOpLogger struct{}

// Debug discards debug-level log messages.
func (l *NoOpLogger) Debug(msg string, fields ...Field) {
}

// Info discards info-level log messages.
func (l *NoOpLogger) Info(msg string, fields ...Field) {
}

// Warn discards warning-level log messages.
func (l *NoOpLogger) Warn(msg string, fields ...Field) {
}

// Error discards error-level log messages.
func (l *NoOpLogger) Error(msg string, fields ...Field) {
}

// With returns a new NoOpLogger instance (ignores fields).
func (l *NoOpLogger) With(fields ...Field) Logger {
	return &NoOpLogger{}
}

// LeveledLogger implements Logger on top of a go-logging module logger.
// Levels are filtered by the go-logging backend, see InitLogging.
type LeveledLogger struct {
	// Logger is the underlying go-logging logger.
	Logger *logging.Logger

	contextFields []Field
}

// NewLeveledLogger returns a LeveledLogger for the named go-logging module.
func NewLeveledLogger(module string) *LeveledLogger {
	return &LeveledLogger{Logger: logging.MustGetLogger(module)}
}

// InitLogging configures the process-wide go-logging backend to write to w
// at the given level (DEBUG, INFO, WARNING, ERROR, CRITICAL).
func InitLogging(level string, w io.Writer) error {
	backend := logging.NewLogBackend(w, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s} %{module} %{message}`,
	)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))

	lvl, err := logging.LogLevel(strings.ToUpper(level))
	if err != nil {
		return configurationError("InitLogging", fmt.Sprintf("invalid log level %q", level), err)
	}
	leveled.SetLevel(lvl, "")

	logging.SetBackend(leveled)
	return nil
}

func (l *LeveledLogger) ensureLogger() *logging.Logger {
	if l.Logger == nil {
		l.Logger = logging.MustGetLogger("blackjackvm")
	}
	return l.Logger
}

// formatMessage formats a log message with structured fields.
func (l *LeveledLogger) formatMessage(msg string, fields ...Field) string {
	allFields := make([]Field, 0, len(l.contextFields)+len(fields))
	allFields = append(allFields, l.contextFields...)
	allFields = append(allFields, fields...)

	var b strings.Builder
	b.WriteString(msg)
	for _, field := range allFields {
		b.WriteString(" ")
		b.WriteString(field.Key)
		b.WriteString("=")
		b.WriteString(formatFieldValue(field.Value))
	}
	return b.String()
}

// formatFieldValue converts a field value to a string representation for logging.
// Strings containing whitespace are quoted, errors are quoted, other values use default formatting.
func formatFieldValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		if strings.ContainsAny(v, " \t\n\r") {
			return `"` + v + `"`
		}
		return v
	case error:
		return `"` + v.Error() + `"`
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Debug logs a debug-level message with structured fields.
func (l *LeveledLogger) Debug(msg string, fields ...Field) {
	l.ensureLogger().Debugf("%s", l.formatMessage(msg, fields...))
}

// Info logs an info-level message with structured fields.
func (l *LeveledLogger) Info(msg string, fields ...Field) {
	l.ensureLogger().Infof("%s", l.formatMessage(msg, fields...))
}

// Warn logs a warning-level message with structured fields.
func (l *LeveledLogger) Warn(msg string, fields ...Field) {
	l.ensureLogger().Warningf("%s", l.formatMessage(msg, fields...))
}

// Error logs an error-level message with structured fields.
func (l *LeveledLogger) Error(msg string, fields ...Field) {
	l.ensureLogger().Errorf("%s", l.formatMessage(msg, fields...))
}

// With creates a new LeveledLogger with additional context fields.
func (l *LeveledLogger) With(fields ...Field) Logger {
	newContextFields := make([]Field, 0, len(l.contextFields)+len(fields))
	newContextFields = append(newContextFields, l.contextFields...)
	newContextFields = append(newContextFields, fields...)

	return &LeveledLogger{
		Logger:        l.Logger,
		contextFields: newContextFields,
	}
}
