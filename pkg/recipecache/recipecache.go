// Package recipecache caches parsed recipe documents by source.
//
// The caching policy lives here; storage is any [cache.Cache]. An entry
// records when it was stored and the TTL it was stored with, and is live
// while now - storedAt < ttl. Only successful, non-empty loads are stored,
// so a fetch failure or an empty document is retried on the next request
// instead of being remembered for the whole TTL window.
//
// TTL values have special meanings:
//
//	ttl > 0   read through the cache, store non-empty results
//	ttl == 0  bypass: never read or write the cache
//	ttl < 0   delete the entry, then behave as ttl == 0
//
// Backend failures never reach the caller. They are logged, reported to
// the observability hooks and the call falls through to the loader.
package recipecache

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beerxml/pkg/cache"
	"github.com/matzehuels/beerxml/pkg/observability"
	"github.com/matzehuels/beerxml/pkg/recipe"
)

// Loader produces the recipes for a source, typically by fetching and
// parsing the document.
type Loader func(ctx context.Context) ([]recipe.Recipe, error)

// Cache applies the TTL policy on top of a byte store.
// It is safe for concurrent use. Concurrent misses for the same source
// each call their loader; the last store wins.
type Cache struct {
	store   cache.Cache
	backend string
	clock   cache.Clock
	logger  *log.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the clock used for storedAt and liveness checks.
func WithClock(clock cache.Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

// WithLogger sets the logger for degraded backend operations.
func WithLogger(logger *log.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New wraps store. A nil store caches nothing.
func New(store cache.Cache, opts ...Option) *Cache {
	if store == nil {
		store = cache.NewNullCache()
	}
	c := &Cache{
		store:   store,
		backend: cache.Name(store),
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result describes where recipes came from.
type Result struct {
	Recipes []recipe.Recipe

	// Hit is true when Recipes were read from the cache.
	Hit bool

	// StoredAt is when the cached entry was written. It is set on hits and
	// after a successful store, and zero otherwise.
	StoredAt time.Time

	// Stored is true when this call wrote a new entry.
	Stored bool
}

// GetOrLoad returns the recipes for sourceID, from the cache if a live
// entry exists, otherwise from load. Errors from load are returned
// unchanged; backend errors are not returned.
func (c *Cache) GetOrLoad(ctx context.Context, sourceID string, ttl time.Duration, load Loader) ([]recipe.Recipe, error) {
	res, err := c.Lookup(ctx, sourceID, ttl, load)
	return res.Recipes, err
}

// Lookup is GetOrLoad with details about the cache interaction.
func (c *Cache) Lookup(ctx context.Context, sourceID string, ttl time.Duration, load Loader) (Result, error) {
	if ttl < 0 {
		c.invalidate(ctx, sourceID)
	}
	if ttl <= 0 {
		recipes, err := load(ctx)
		return Result{Recipes: recipes}, err
	}

	if res, ok := c.read(ctx, sourceID); ok {
		return res, nil
	}

	recipes, err := load(ctx)
	if err != nil || len(recipes) == 0 {
		return Result{Recipes: recipes}, err
	}

	res := Result{Recipes: recipes}
	res.StoredAt, res.Stored = c.write(ctx, sourceID, ttl, recipes)
	return res, nil
}

// Invalidate deletes the entry for sourceID. Unlike the ttl < 0 path of
// GetOrLoad, a backend failure is returned.
func (c *Cache) Invalidate(ctx context.Context, sourceID string) error {
	return c.store.Delete(ctx, sourceID)
}

// Close closes the underlying store.
func (c *Cache) Close() error { return c.store.Close() }

// Backend returns the name of the underlying store.
func (c *Cache) Backend() string { return c.backend }

// entry is the stored envelope.
type entry struct {
	StoredAt time.Time       `json:"stored_at"`
	TTL      time.Duration   `json:"ttl"`
	Recipes  []recipe.Recipe `json:"recipes"`
}

func (e entry) live(now time.Time) bool {
	return now.Sub(e.StoredAt) < e.TTL
}

func (c *Cache) read(ctx context.Context, sourceID string) (Result, bool) {
	data, hit, err := c.store.Get(ctx, sourceID)
	if err != nil {
		c.degraded(ctx, "get", sourceID, err)
		return Result{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, c.backend)
		return Result{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Debug("discarding undecodable cache entry", "key", sourceID, "error", err)
		observability.Cache().OnCacheMiss(ctx, c.backend)
		return Result{}, false
	}
	if !e.live(c.clock.Now()) || len(e.Recipes) == 0 {
		observability.Cache().OnCacheMiss(ctx, c.backend)
		return Result{}, false
	}

	observability.Cache().OnCacheHit(ctx, c.backend)
	c.logger.Debug("cache hit", "key", sourceID, "stored_at", e.StoredAt)
	return Result{Recipes: e.Recipes, Hit: true, StoredAt: e.StoredAt}, true
}

func (c *Cache) write(ctx context.Context, sourceID string, ttl time.Duration, recipes []recipe.Recipe) (time.Time, bool) {
	e := entry{StoredAt: c.clock.Now(), TTL: ttl, Recipes: recipes}
	data, err := json.Marshal(e)
	if err != nil {
		c.degraded(ctx, "encode", sourceID, err)
		return time.Time{}, false
	}
	if err := c.store.Set(ctx, sourceID, data, ttl); err != nil {
		c.degraded(ctx, "set", sourceID, err)
		return time.Time{}, false
	}
	observability.Cache().OnCacheSet(ctx, c.backend, len(data))
	c.logger.Debug("cached", "key", sourceID, "ttl", ttl, "bytes", len(data))
	return e.StoredAt, true
}

func (c *Cache) invalidate(ctx context.Context, sourceID string) {
	if err := c.store.Delete(ctx, sourceID); err != nil {
		c.degraded(ctx, "delete", sourceID, err)
		return
	}
	c.logger.Debug("invalidated", "key", sourceID)
}

func (c *Cache) degraded(ctx context.Context, op, sourceID string, err error) {
	observability.Cache().OnCacheError(ctx, c.backend, op, err)
	c.logger.Warn("cache backend failed, loading directly", "backend", c.backend, "op", op, "key", sourceID, "error", err)
}
