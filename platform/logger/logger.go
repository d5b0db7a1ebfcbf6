// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("component", name)),
	}
}

// CoverageDiagnostic logs malformed vendor coverage data. Malformed entries
// contribute zero coverage; they never crash matching or widen a service area.
func (l *Logger) CoverageDiagnostic(vendorID, problem string) {
	l.Warn("vendor_coverage_diagnostic",
		slog.String("vendor_id", vendorID),
		slog.String("problem", problem),
	)
}

// AssignmentEvent logs the outcome of an assignment attempt.
func (l *Logger) AssignmentEvent(leadID, vendorID, outcome string) {
	l.Info("assignment_event",
		slog.String("lead_id", leadID),
		slog.String("vendor_id", vendorID),
		slog.String("outcome", outcome),
	)
}

// SyncRetry logs a failed external sync attempt that will be retried.
func (l *Logger) SyncRetry(leadID string, attempt int, err error) {
	l.Warn("external_sync_retry",
		slog.String("lead_id", leadID),
		slog.Int("attempt", attempt),
		slog.String("error", err.Error()),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}
