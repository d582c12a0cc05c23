package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/beerxml/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		allowFiles bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recipes over HTTP",
		Long: `Serve starts an HTTP server with the endpoints

  GET    /v1/recipe?source=&units=&cache=&scope=&format=json|html
  DELETE /v1/recipe?source=&scope=
  GET    /healthz
  GET    /metrics

Settings come from the [server] section of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts := server.OptionsFromConfig(c.Config)
			if cmd.Flags().Changed("addr") {
				opts.Addr = addr
			}
			opts.AllowFileSources = allowFiles
			if err := opts.Defaults.ValidateForRender(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			server.RegisterMetricsHooks()
			printInfo("Serving on %s (cache: %s)", opts.Addr, runner.Cache.Backend())
			return server.New(runner, opts, c.Logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&allowFiles, "allow-files", false, "accept local file paths as sources")
	return cmd
}
