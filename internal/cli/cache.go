package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/matzehuels/beerxml/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the recipe cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cacheDropCommand())
	cmd.AddCommand(c.cachePurgeCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached recipe from the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				return fmt.Errorf("the %s backend cannot be cleared", cache.Name(store))
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Cleared the %s cache", cache.Name(store))
			if loc := c.cacheLocation(); loc != "" {
				printDetail("Location: %s", loc)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the configured backend stores entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := c.cacheLocation()
			if loc == "" {
				return fmt.Errorf("the %s backend has no location", c.Config.Cache.Backend)
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc)
			return nil
		},
	}
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured cache backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printKeyValue("Backend", c.Config.Cache.Backend)
			if loc := c.cacheLocation(); loc != "" {
				printKeyValue("Location", loc)
			}
			ttl := "disabled"
			if n := c.Config.Defaults.CacheTTLSeconds; n != nil && *n > 0 {
				ttl = (time.Duration(*n) * time.Second).String()
			}
			printKeyValue("TTL", ttl)
			return nil
		},
	}
}

// cacheDropCommand creates the "cache drop" subcommand.
func (c *CLI) cacheDropCommand() *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "drop <source>...",
		Short: "Remove the cached recipes of specific sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Dropping entries needs the real backend, never the null fallback.
			store, err := c.openCache(cmd.Context())
			if err != nil {
				return err
			}
			runner := c.runnerWith(store)
			defer runner.Close()

			for _, src := range args {
				if err := runner.Invalidate(cmd.Context(), src, scope); err != nil {
					return fmt.Errorf("%s: %w", src, err)
				}
				printSuccess("Dropped %s", src)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "cache scope the entries were stored under")
	return cmd
}

// cachePurgeCommand creates the "cache purge" subcommand.
func (c *CLI) cachePurgeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete expired entries from backends that keep them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			purger, ok := store.(cache.Purger)
			if !ok {
				printInfo("The %s backend expires entries itself", cache.Name(store))
				return nil
			}
			n, err := purger.Purge(cmd.Context())
			if err != nil {
				return err
			}
			printSuccess("Purged %s", english.Plural(int(n), "expired entry", "expired entries"))
			return nil
		},
	}
}

// cacheLocation describes where the configured backend keeps its data:
// a directory, a database file or a server address.
func (c *CLI) cacheLocation() string {
	opts, err := c.Config.CacheOptions()
	if err != nil {
		return ""
	}
	switch opts.Backend {
	case "", cache.BackendFile:
		return opts.Dir
	case cache.BackendSQLite:
		if opts.SQLitePath != "" {
			return opts.SQLitePath
		}
		return filepath.Join(opts.Dir, "cache.db")
	case cache.BackendRedis:
		return "redis://" + opts.RedisAddr
	case cache.BackendMongo:
		return opts.MongoURI
	}
	return ""
}
