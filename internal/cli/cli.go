// Package cli implements the beerxml command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/beerxml/pkg/buildinfo"
	"github.com/matzehuels/beerxml/pkg/cache"
	"github.com/matzehuels/beerxml/pkg/config"
	"github.com/matzehuels/beerxml/pkg/errors"
	"github.com/matzehuels/beerxml/pkg/observability"
	"github.com/matzehuels/beerxml/pkg/pipeline"
	"github.com/matzehuels/beerxml/pkg/source"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config *config.Config

	verbose    bool
	configPath string
	backend    string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "beerxml",
		Short: "beerxml shows BeerXML recipes in metric or imperial units",
		Long: `beerxml fetches BeerXML documents from files, HTTP(S) URLs or S3, caches the
parsed recipes and shows their fermentables, hops and yeasts as tables,
JSON, YAML or an HTML fragment.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/beerxml/config.toml)")
	flags.StringVar(&c.backend, "backend", "", "cache backend: memory, file, sqlite, redis, mongo or none")

	root.AddCommand(c.showCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// ReportError prints a failed command's error on stderr. Coded errors get
// a hint line for the codes a user can act on.
func ReportError(err error) {
	printError("%s", err)
	switch errors.GetCode(err) {
	case errors.ErrCodeBackendUnavailable:
		printDetail("try --backend file or --backend none")
	case errors.ErrCodeInvalidUnits, errors.ErrCodeInvalidFormat:
		printDetail("see beerxml show --help")
	}
}

// setup applies the global flags before a subcommand runs.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if c.backend != "" {
		cfg.Cache.Backend = c.backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// openCache opens the configured store backend.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	opts, err := c.Config.CacheOptions()
	if err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	store, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("opened cache", "backend", cache.Name(store))
	return store, nil
}

// newRunner creates a pipeline runner for CLI use. Callers must Close it.
// An unreachable backend does not fail the command: documents are then
// loaded without caching.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.openCache(ctx)
	if err != nil {
		if !cache.IsBackendUnavailable(err) {
			return nil, err
		}
		backend := c.Config.Cache.Backend
		c.Logger.Warn("cache backend unavailable, loading without cache", "backend", backend, "error", err)
		observability.Cache().OnCacheError(ctx, backend, "open", err)
		store = cache.NewNullCache()
	}
	return c.runnerWith(store), nil
}

// runnerWith builds a pipeline runner on top of an opened store.
func (c *CLI) runnerWith(store cache.Cache) *pipeline.Runner {
	fetcher := source.NewFetcher(c.Config.Defaults.Timeout, c.Config.S3Options()...)
	fetcher.Logger = c.Logger
	return pipeline.NewRunner(store, c.Config.Keyer(), fetcher, c.Logger)
}
