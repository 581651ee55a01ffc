package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithField adds a single string field to the logger in the context.
func WithField(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithStore tags the context logger with an annotation store location.
func WithStore(ctx context.Context, location string) context.Context {
	return WithField(ctx, "store", location)
}

// WithSystemOutput tags the context logger with a system output store location.
func WithSystemOutput(ctx context.Context, location string) context.Context {
	return WithField(ctx, "system_output", location)
}

// WithDocument tags the context logger with a document id.
func WithDocument(ctx context.Context, docID string) context.Context {
	return WithField(ctx, "doc_id", docID)
}

// WithOperation adds operation context to the logger.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}

// WithDryRun marks every event logged through the context as part of a
// dry run.
func WithDryRun(ctx context.Context) context.Context {
	logger := FromContext(ctx).With().Bool("dry_run", true).Logger()
	return WithLogger(ctx, &logger)
}
