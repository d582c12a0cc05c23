package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beerxml/pkg/beerxml"
	"github.com/matzehuels/beerxml/pkg/cache"
	"github.com/matzehuels/beerxml/pkg/errors"
	"github.com/matzehuels/beerxml/pkg/observability"
	"github.com/matzehuels/beerxml/pkg/recipe"
	"github.com/matzehuels/beerxml/pkg/recipecache"
	"github.com/matzehuels/beerxml/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, fetcher and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache   *recipecache.Cache
	Keyer   cache.Keyer
	Fetcher *source.Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner over the given store.
// If store is nil, a NullCache is used (caching disabled).
// If keyer is nil, a DefaultKeyer is used.
// If fetcher is nil, one with DefaultTimeout is created.
func NewRunner(store cache.Cache, keyer cache.Keyer, fetcher *source.Fetcher, logger *log.Logger, opts ...recipecache.Option) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if fetcher == nil {
		fetcher = source.NewFetcher(DefaultTimeout)
	}
	if logger == nil {
		logger = log.Default()
	}
	opts = append([]recipecache.Option{recipecache.WithLogger(logger)}, opts...)
	return &Runner{
		Cache:   recipecache.New(store, opts...),
		Keyer:   keyer,
		Fetcher: fetcher,
		Logger:  logger,
	}
}

// Execute loads the document named by opts.Source through the cache.
//
// The returned error is non-nil only for invalid options. Fetch and parse
// failures are reported in Result.LoadErr with Result.Recipe left nil.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return r.load(ctx, opts), nil
}

// Load runs only the load stage. Unlike Execute it does not validate the
// render options.
func (r *Runner) Load(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return r.load(ctx, opts), nil
}

func (r *Runner) load(ctx context.Context, opts Options) *Result {
	loc := opts.Locator()
	key := r.Keyer.RecipeKey(opts.Scope, loc.Name(), loc.String())
	ttl := opts.TTL()

	start := time.Now()
	lookup, err := r.Cache.Lookup(ctx, key, ttl, r.loader(loc, opts))

	res := &Result{
		Source:  loc,
		Key:     key,
		Recipes: lookup.Recipes,
		LoadErr: err,
		CacheInfo: CacheInfo{
			Backend:  r.Cache.Backend(),
			TTL:      ttl,
			Hit:      lookup.Hit,
			Stored:   lookup.Stored,
			StoredAt: lookup.StoredAt,
		},
		Stats: Stats{
			RecipeCount: len(lookup.Recipes),
			LoadTime:    time.Since(start),
		},
	}
	if first, ok := recipe.First(lookup.Recipes); ok && err == nil {
		// Callers may edit the rendered recipe; Recipes must not change with it.
		first = first.Clone()
		res.Recipe = &first
	}

	switch {
	case err != nil:
		opts.Logger.Warn("could not load recipe",
			"source", loc,
			"code", errors.GetCode(err),
			"error", errors.UserMessage(err))
	case res.Empty():
		opts.Logger.Warn("document contains no recipes", "source", loc)
	default:
		opts.Logger.Info("loaded recipe",
			"name", res.Recipe.Name,
			"recipes", res.Stats.RecipeCount,
			"cached", res.CacheInfo.Hit,
			"duration", res.Stats.LoadTime)
		if res.Recipe.IsEmpty() {
			opts.Logger.Warn("recipe lists no ingredients", "source", loc, "name", res.Recipe.Name)
		}
	}
	return res
}

// loader fetches and parses loc with the per-run limits.
func (r *Runner) loader(loc source.Locator, opts Options) recipecache.Loader {
	fetch := fetcherFunc(func(ctx context.Context, loc source.Locator) ([]byte, error) {
		return r.Fetcher.FetchWith(ctx, loc, source.FetchOptions{
			Timeout:  opts.Timeout,
			MaxBytes: opts.MaxBytes,
		})
	})
	return func(ctx context.Context) ([]recipe.Recipe, error) {
		observability.Load().OnLoadStart(ctx, loc.String())
		start := time.Now()
		recipes, err := beerxml.Load(ctx, fetch, loc)
		observability.Load().OnLoadComplete(ctx, loc.String(), len(recipes), time.Since(start), err)
		return recipes, err
	}
}

// Invalidate deletes the cached entry for a source and scope.
func (r *Runner) Invalidate(ctx context.Context, src, scope string) error {
	loc, err := source.Normalize(src)
	if err != nil {
		return err
	}
	if err := errors.ValidateScope(scope); err != nil {
		return err
	}
	return r.Cache.Invalidate(ctx, r.Keyer.RecipeKey(scope, loc.Name(), loc.String()))
}

// Close releases the cache backend.
func (r *Runner) Close() error {
	if r.Cache == nil {
		return nil
	}
	return r.Cache.Close()
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// fetcherFunc adapts a function to beerxml.Fetcher.
type fetcherFunc func(ctx context.Context, loc source.Locator) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, loc source.Locator) ([]byte, error) {
	return f(ctx, loc)
}
