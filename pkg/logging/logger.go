package logging

import (
	"context"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Level represents log severity
type Level = charmlog.Level

const (
	DebugLevel = charmlog.DebugLevel
	InfoLevel  = charmlog.InfoLevel
	WarnLevel  = charmlog.WarnLevel
	ErrorLevel = charmlog.ErrorLevel
)

// Format represents the log output format
type Format string

const (
	FormatJSON   Format = "json"
	FormatText   Format = "text"
	FormatLogfmt Format = "logfmt"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger defines the interface for logging.
// The verifier core only ever talks to this interface; a NullLogger
// is used when logging is disabled.
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields Fields)

	// Info logs an info message
	Info(ctx context.Context, msg string, fields Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields Fields)

	// WithFields returns a logger with additional fields
	WithFields(fields Fields) Logger

	// Close flushes and closes the logger
	Close() error
}

// ParseLevel parses a log level string, falling back to info
func ParseLevel(s string) Level {
	if strings.EqualFold(s, "warning") {
		return WarnLevel
	}
	level, err := charmlog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return InfoLevel
	}
	return level
}

// ParseFormat parses a log format string, falling back to text
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "logfmt":
		return FormatLogfmt
	default:
		return FormatText
	}
}

// LevelString returns the level name in upper case
func LevelString(level Level) string {
	name := level.String()
	if name == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(name)
}

func (f Format) formatter() charmlog.Formatter {
	switch f {
	case FormatJSON:
		return charmlog.JSONFormatter
	case FormatLogfmt:
		return charmlog.LogfmtFormatter
	default:
		return charmlog.TextFormatter
	}
}
