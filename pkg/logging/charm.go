package logging

import (
	"context"
	"io"
	"sort"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// CharmLogger implements Logger on top of charmbracelet/log
type CharmLogger struct {
	logger *charmlog.Logger
	closer io.Closer
}

// New creates a logger writing to w in the given format
func New(w io.Writer, format Format, level Level) *CharmLogger {
	logger := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		Formatter:       format.formatter(),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	return &CharmLogger{logger: logger}
}

// Debug logs a debug message
func (l *CharmLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.logger.Debug(msg, keyvals(fields)...)
}

// Info logs an info message
func (l *CharmLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.logger.Info(msg, keyvals(fields)...)
}

// Warn logs a warning message
func (l *CharmLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.logger.Warn(msg, keyvals(fields)...)
}

// Error logs an error message
func (l *CharmLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	kv := keyvals(fields)
	if err != nil {
		kv = append(kv, "error", err.Error())
	}
	l.logger.Error(msg, kv...)
}

// WithFields returns a logger with additional fields
func (l *CharmLogger) WithFields(fields Fields) Logger {
	return &CharmLogger{
		logger: l.logger.With(keyvals(fields)...),
		closer: l.closer,
	}
}

// Close closes the underlying writer when the logger owns one
func (l *CharmLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// keyvals flattens fields in key order so output is stable
func keyvals(fields Fields) []interface{} {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return kv
}
