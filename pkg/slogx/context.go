package slogx

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithContext stores logger on ctx for FromContext.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request logger, or slog.Default outside a request.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// WithSubject tags every later log line of the request with the
// authenticated caller. An empty subject leaves ctx unchanged.
func WithSubject(ctx context.Context, subjectID, role string) context.Context {
	if subjectID == "" {
		return ctx
	}
	return WithContext(ctx, FromContext(ctx).With(
		slog.String("subject_id", subjectID),
		slog.String("role", role),
	))
}
