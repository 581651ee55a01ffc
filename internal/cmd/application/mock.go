// Package application provides test doubles for the command application
// interface.
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/annomerge/cmd/application"
	"github.com/agentstation/annomerge/pkg/stores"
	"github.com/agentstation/annomerge/pkg/stores/memory"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value; stores
// default to empty in-memory stores named after their location.
type Mock struct {
	SystemOutputStoreFunc func(ctx context.Context, location string, format stores.Format) (stores.ArgumentStore, error)
	AnnotationStoreFunc   func(ctx context.Context, location string, format stores.Format, create bool, opts ...stores.Option) (stores.AnnotationStore, error)
	LoggerFunc            func() *zerolog.Logger
	OutputFormatFunc      func() string
	VersionFunc           func() string
	CommitFunc            func() string
	DateFunc              func() string
	BuiltByFunc           func() string
}

// SystemOutputStore returns a store using the mock function or an empty
// in-memory store.
func (m *Mock) SystemOutputStore(ctx context.Context, location string, format stores.Format) (stores.ArgumentStore, error) {
	if m.SystemOutputStoreFunc != nil {
		return m.SystemOutputStoreFunc(ctx, location, format)
	}
	return memory.NewArgumentStore(location), nil
}

// AnnotationStore returns a store using the mock function or an empty
// in-memory store.
func (m *Mock) AnnotationStore(ctx context.Context, location string, format stores.Format, create bool, opts ...stores.Option) (stores.AnnotationStore, error) {
	if m.AnnotationStoreFunc != nil {
		return m.AnnotationStoreFunc(ctx, location, format, create, opts...)
	}
	return memory.NewAnnotationStore(location), nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ application.Application = (*Mock)(nil)
