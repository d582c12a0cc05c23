// Package pipeline provides the load → render pipeline for beerxml.
//
// This package implements the path from a source locator to displayable
// output that both the CLI and the HTTP server use. By centralizing this
// logic, we ensure consistent caching and error behavior across entry
// points.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Load: normalize the source, consult the recipe cache, and on a miss
//     fetch and parse the BeerXML document
//  2. Render: project the first recipe into the requested unit system and
//     write it in the requested format
//
// Load failures are not pipeline errors. A document that cannot be fetched
// or parsed produces a Result without a recipe and the failure in
// Result.LoadErr, which the render stage turns into a placeholder. Only
// invalid options make Execute return an error.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, nil, fetcher, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Source: "https://example.com/pale-ale.xml",
//	    Units:  units.Metric,
//	})
//	if err != nil {
//	    return err // bad options
//	}
//	return pipeline.Render(os.Stdout, res, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beerxml/pkg/errors"
	"github.com/matzehuels/beerxml/pkg/recipe"
	"github.com/matzehuels/beerxml/pkg/render"
	"github.com/matzehuels/beerxml/pkg/source"
	"github.com/matzehuels/beerxml/pkg/units"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultCacheTTLSeconds keeps parsed documents for 12 hours.
	DefaultCacheTTLSeconds = 12 * 60 * 60

	// DefaultTimeout bounds a document fetch.
	DefaultTimeout = source.DefaultTimeout

	// DefaultFormat is the output format when none is requested.
	DefaultFormat = render.FormatText
)

// TTL special values.
const (
	// TTLBypass skips the cache for one request.
	TTLBypass = 0

	// TTLInvalidate deletes the cached entry and then bypasses the cache.
	TTLInvalidate = -1
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source string `json:"source"`
	Scope  string `json:"scope,omitempty"`

	// CacheTTLSeconds is how long a parsed document stays cached. Nil means
	// DefaultCacheTTLSeconds, 0 bypasses the cache and a negative value
	// invalidates the cached entry before loading.
	CacheTTLSeconds *int          `json:"cache_ttl_seconds,omitempty"`
	Timeout         time.Duration `json:"timeout,omitempty"`
	MaxBytes        int64         `json:"max_bytes,omitempty"`

	// Render options
	Units  units.System `json:"units,omitempty"`
	Format string       `json:"format,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// locator is the normalized Source, set by ValidateAndSetDefaults.
	locator source.Locator

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Seconds returns a pointer to n, for Options.CacheTTLSeconds.
func Seconds(n int) *int { return &n }

// Result contains the outputs of a pipeline run.
type Result struct {
	// Source is the normalized locator that was loaded.
	Source source.Locator

	// Key is the cache key the document is stored under.
	Key string

	// Recipes are all recipes in the document, in document order.
	Recipes []recipe.Recipe

	// Recipe is the first recipe, or nil when the document was empty or
	// could not be loaded.
	Recipe *recipe.Recipe

	// LoadErr is the fetch or parse failure, if any. It carries code
	// SOURCE_UNAVAILABLE or MALFORMED.
	LoadErr error

	// CacheInfo tracks how the cache was used.
	CacheInfo CacheInfo

	// Stats contains timing and size information.
	Stats Stats
}

// Empty reports whether there is no recipe to show.
func (r *Result) Empty() bool { return r.Recipe == nil }

// CacheInfo describes the recipe cache interaction for a run.
type CacheInfo struct {
	Backend  string        // Backend name, e.g. "file"
	TTL      time.Duration // Effective TTL (<= 0 means bypass)
	Hit      bool          // Whether recipes came from cache
	Stored   bool          // Whether this run wrote a new entry
	StoredAt time.Time     // When the served entry was written
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RecipeCount int
	LoadTime    time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return render.ValidateFormat(format)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks and defaults the load options.
func (o *Options) ValidateForLoad() error {
	loc, err := source.Normalize(o.Source)
	if err != nil {
		return err
	}
	o.locator = loc

	if err := errors.ValidateScope(o.Scope); err != nil {
		return err
	}
	if o.CacheTTLSeconds == nil {
		o.CacheTTLSeconds = Seconds(DefaultCacheTTLSeconds)
	}
	if o.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timeout must not be negative")
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxBytes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_bytes must not be negative")
	}
	if o.MaxBytes == 0 {
		o.MaxBytes = source.DefaultMaxBytes
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ValidateForRender checks and defaults the render options.
func (o *Options) ValidateForRender() error {
	sys, err := units.ParseSystem(string(o.Units))
	if err != nil {
		return err
	}
	o.Units = sys

	if o.Format == "" {
		o.Format = DefaultFormat
	}
	return ValidateFormat(o.Format)
}

// TTL returns the cache TTL as a duration. Negative values are preserved.
func (o *Options) TTL() time.Duration {
	if o.CacheTTLSeconds == nil {
		return DefaultCacheTTLSeconds * time.Second
	}
	return time.Duration(*o.CacheTTLSeconds) * time.Second
}

// Locator returns the normalized source. It is only valid after
// ValidateAndSetDefaults.
func (o *Options) Locator() source.Locator { return o.locator }

// String summarizes the options for logs.
func (o *Options) String() string {
	return fmt.Sprintf("source=%s scope=%q ttl=%s units=%s format=%s",
		o.Source, o.Scope, o.TTL(), o.Units, o.Format)
}
