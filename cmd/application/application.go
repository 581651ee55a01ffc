// Package application provides the application interface for annomerge commands.
//
// The Application interface is the contract between the application layer and
// command implementations. Commands accept it instead of the concrete App so
// they can be tested against in-memory stores.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            store, err := app.AnnotationStore(cmd.Context(), dir, stores.FormatYAML, false)
//	            if err != nil {
//	                return err
//	            }
//	            defer store.Close()
//	            // ... use store
//	            return nil
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    AnnotationStoreFunc: func(ctx context.Context, location string, format stores.Format, create bool, opts ...stores.Option) (stores.AnnotationStore, error) {
//	        return memory.NewAnnotationStore(location), nil
//	    },
//	}
//	cmd := stats.NewCommand(mock)
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/annomerge/pkg/stores"
)

// Application provides what commands need from the application.
// The App struct from cmd/annomerge/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// SystemOutputStore opens an existing system output store.
	SystemOutputStore(ctx context.Context, location string, format stores.Format) (stores.ArgumentStore, error)

	// AnnotationStore opens an annotation store. With create set the store
	// is created when it does not exist yet.
	AnnotationStore(ctx context.Context, location string, format stores.Format, create bool, opts ...stores.Option) (stores.AnnotationStore, error)

	// Logger returns the configured logger instance.
	// Commands should use this for all logging operations.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, wide).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
