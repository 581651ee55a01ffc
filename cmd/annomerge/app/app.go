// Package app provides the application context and dependency management
// for the annomerge CLI. It centralizes configuration, logging and the
// lifecycle of the stores commands open.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/annomerge/cmd/application"
	"github.com/agentstation/annomerge/pkg/errors"
	"github.com/agentstation/annomerge/pkg/stores"
)

// App represents the annomerge application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Stores opened through the app, closed on Shutdown if a command
	// bailed out before closing them.
	mu     sync.Mutex
	opened []*closeOnce
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// SystemOutputStore opens an existing system output store.
func (a *App) SystemOutputStore(ctx context.Context, location string, format stores.Format) (stores.ArgumentStore, error) {
	store, err := stores.OpenSystemOutput(ctx, location, format)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("location", location).Str("format", format.String()).Msg("Opened system output")
	c := a.track(store)
	return &argumentStore{ArgumentStore: store, closer: c}, nil
}

// AnnotationStore opens an annotation store, creating it when create is set.
func (a *App) AnnotationStore(ctx context.Context, location string, format stores.Format, create bool, opts ...stores.Option) (stores.AnnotationStore, error) {
	open := stores.OpenAnnotations
	if create {
		open = stores.OpenOrCreateAnnotations
	}
	store, err := open(ctx, location, format, opts...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("location", location).Str("format", format.String()).Bool("create", create).Msg("Opened annotation store")
	c := a.track(store)
	return &annotationStore{AnnotationStore: store, closer: c}, nil
}

// Shutdown closes every store a command left open.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	opened := a.opened
	a.opened = nil
	a.mu.Unlock()

	var firstErr error
	for _, c := range opened {
		if err := ctx.Err(); err != nil {
			return errors.WrapCanceled(err)
		}
		if err := c.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close store during shutdown")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (a *App) track(c interface{ Close() error }) *closeOnce {
	once := &closeOnce{inner: c}
	a.mu.Lock()
	a.opened = append(a.opened, once)
	a.mu.Unlock()
	return once
}

// closeOnce makes Close idempotent so a command and Shutdown can both call it.
type closeOnce struct {
	inner interface{ Close() error }
	once  sync.Once
	err   error
}

func (c *closeOnce) Close() error {
	c.once.Do(func() { c.err = c.inner.Close() })
	return c.err
}

type argumentStore struct {
	stores.ArgumentStore
	closer *closeOnce
}

func (s *argumentStore) Close() error { return s.closer.Close() }

type annotationStore struct {
	stores.AnnotationStore
	closer *closeOnce
}

func (s *annotationStore) Close() error { return s.closer.Close() }

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "config cannot be nil")
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			return errors.NewValidationError("logger", nil, "logger cannot be nil")
		}
		a.logger = logger
		return nil
	}
}
