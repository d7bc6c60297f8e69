// Package logging carries request-scoped slog loggers through contexts so
// services and handlers annotate the same logger instead of rebuilding
// attribute chains.
package logging

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// ContextWithLogger attaches logger to ctx. A nil context or nil logger
// leaves the context unchanged.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached to ctx, or nil when none was
// attached. Callers decide their own fallback.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return nil
}
