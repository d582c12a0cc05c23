// Package cache provides byte-oriented key/value stores with expiry.
//
// The recipe cache (see package recipecache) stores encoded recipe
// documents through the [Cache] interface, so the storage behind it can be
// swapped without touching the caching policy:
//
//   - [MemoryCache]: process-local map, for the HTTP server and tests
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [SQLiteCache]: a single SQLite database file
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: MongoDB collection with a TTL index
//   - [NullCache]: stores nothing
//
// All implementations are safe for concurrent use and check expiry lazily
// on read. Backend failures are returned as errors with code
// BACKEND_UNAVAILABLE.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get returns the value for key. hit is false when the key is absent
	// or expired; err is reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl <= 0 stores without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases connections and file handles.
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Purger is implemented by backends that keep expired entries on disk
// until they are read. Purge removes them and reports how many were dropped.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Clock returns the current time. Backends use it for expiry checks so
// tests can control time.
type Clock func() time.Time

// Now returns c(), or time.Now when c is nil.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// Backend names, as used in configuration and metrics labels.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Name returns the backend name of c, or "custom" for implementations
// outside this package.
func Name(c Cache) string {
	if n, ok := c.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}
