package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/matzehuels/beerxml/pkg/errors"
	"github.com/matzehuels/beerxml/pkg/pipeline"
	"github.com/matzehuels/beerxml/pkg/render"
	"github.com/matzehuels/beerxml/pkg/units"
)

// maxConcurrentLoads bounds parallel fetches for `show a.xml b.xml ...`.
const maxConcurrentLoads = 4

// showOpts holds the command-line flags for the show command.
type showOpts struct {
	units    string
	format   string
	scope    string
	cacheTTL int
	timeout  time.Duration
	maxBytes int64
	refresh  bool // invalidate before loading
	strict   bool // fail when a source yields no recipe
}

func (c *CLI) showCommand() *cobra.Command {
	var o showOpts

	cmd := &cobra.Command{
		Use:   "show <source>...",
		Short: "Show the first recipe of one or more BeerXML documents",
		Long: `Show fetches each source, parses it and prints its first recipe.

A source is a file path, an http(s):// URL or an s3://bucket/key location.
Several sources are loaded concurrently and printed in argument order.

A document that cannot be loaded prints a placeholder and a warning; use
--strict to turn that into a failing exit status.`,
		Example: `  beerxml show pale-ale.xml
  beerxml show --units metric https://example.com/recipes/ipa.xml
  beerxml show --format html --cache-ttl 0 s3://recipes/stout.xml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.showOptions(cmd, o)
			if err != nil {
				return err
			}
			return c.runShow(cmd.Context(), cmd.OutOrStdout(), args, opts, o.strict)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.units, "units", "u", "", "unit system: metric or imperial (default from config, else imperial)")
	flags.StringVarP(&o.format, "format", "f", "", "output format: text, json, yaml or html")
	flags.StringVar(&o.scope, "scope", "", "cache scope, e.g. the page embedding the recipe")
	flags.IntVar(&o.cacheTTL, "cache-ttl", pipeline.DefaultCacheTTLSeconds, "cache lifetime in seconds; 0 bypasses the cache, -1 invalidates")
	flags.DurationVar(&o.timeout, "timeout", pipeline.DefaultTimeout, "fetch timeout per document")
	flags.Int64Var(&o.maxBytes, "max-bytes", 0, "reject documents larger than this many bytes")
	flags.BoolVar(&o.refresh, "refresh", false, "discard the cached copy and fetch again (same as --cache-ttl -1)")
	flags.BoolVar(&o.strict, "strict", false, "exit with an error when a source yields no recipe")

	return cmd
}

// showOptions merges flags that were set over the configured defaults.
func (c *CLI) showOptions(cmd *cobra.Command, o showOpts) (pipeline.Options, error) {
	opts := c.Config.PipelineOptions()
	opts.Logger = c.Logger

	flags := cmd.Flags()
	if flags.Changed("units") {
		opts.Units = units.System(o.units)
	}
	if flags.Changed("format") {
		opts.Format = o.format
	}
	if flags.Changed("scope") {
		opts.Scope = o.scope
	}
	if flags.Changed("cache-ttl") {
		opts.CacheTTLSeconds = pipeline.Seconds(o.cacheTTL)
	}
	if flags.Changed("timeout") {
		opts.Timeout = o.timeout
	}
	if flags.Changed("max-bytes") {
		opts.MaxBytes = o.maxBytes
	}
	if o.refresh {
		opts.CacheTTLSeconds = pipeline.Seconds(pipeline.TTLInvalidate)
	}

	// Fail on bad units or format before anything is fetched.
	if err := opts.ValidateForRender(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (c *CLI) runShow(ctx context.Context, out io.Writer, sources []string, opts pipeline.Options, strict bool) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	var spinner *Spinner
	if !c.verbose && isTerminal(os.Stderr) {
		spinner = newSpinnerWithContext(ctx, statusOut, fmt.Sprintf("Loading %d document(s)...", len(sources)))
		spinner.Start()
	}
	var loaded atomic.Int32
	prog := newProgress(c.Logger)

	results := make([]*pipeline.Result, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, src := range sources {
		g.Go(func() error {
			o := opts
			o.Source = src
			res, err := runner.Execute(gctx, o)
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}
			results[i] = res
			if spinner != nil {
				spinner.Update(fmt.Sprintf("Loaded %d/%d documents...", loaded.Add(1), len(sources)))
			}
			return nil
		})
	}
	err = g.Wait()
	if spinner != nil {
		if err != nil && !spinner.Cancelled() {
			spinner.StopWithError("Loading failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}
	if len(sources) > 1 {
		prog.done(fmt.Sprintf("Loaded %d documents", len(sources)))
	}

	var missing int
	for i, res := range results {
		if i > 0 && opts.Format == render.FormatText {
			fmt.Fprintln(out)
		}
		if err := pipeline.Render(out, res, opts); err != nil {
			return err
		}
		if res.Empty() {
			missing++
			printWarning("%s: %s", sources[i], pipeline.NoRecipeReason(res))
			continue
		}
		if opts.Format == render.FormatText {
			printLoadStats(res)
		}
	}

	if strict && missing > 0 {
		return errors.New(errors.ErrCodeNoRecipe, "%d of %d sources yielded no recipe", missing, len(sources))
	}
	return nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
