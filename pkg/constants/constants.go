// Package constants provides shared constants used throughout the annomerge
// codebase: file permissions, timeouts, cache settings and default names.
package constants

import "time"

// Timeout constants
const (
	// DefaultTimeout is the standard timeout for opening a networked store
	DefaultTimeout = 10 * time.Second

	// ShutdownTimeout bounds cleanup after a failed run
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached answer keys
	CacheTTL = 15 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 5 * time.Minute
)

// Store defaults
const (
	// DefaultStoreFormat is the encoding used when none is configured
	DefaultStoreFormat = "yaml"

	// DefaultRedisPrefix namespaces redis keys when the location has no prefix
	DefaultRedisPrefix = "annomerge"

	// PostgresTable holds every document of every postgres-backed store
	PostgresTable = "annomerge_documents"

	// MaxParallelism caps concurrent annotation store merges per document
	MaxParallelism = 32
)

// Path constants
const (
	// ConfigFileName is the base name of the user config file searched in $HOME and "."
	ConfigFileName = ".annomerge"

	// EnvPrefix prefixes environment overrides of import parameters
	EnvPrefix = "ANNOMERGE"
)
