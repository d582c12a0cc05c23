package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/beerxml/pkg/errors"
	"github.com/matzehuels/beerxml/pkg/pipeline"
	"github.com/matzehuels/beerxml/pkg/units"
)

func (c *CLI) browseCommand() *cobra.Command {
	var unitsFlag, scope string

	cmd := &cobra.Command{
		Use:   "browse <source>",
		Short: "Browse every recipe of a document interactively",
		Long: `Browse loads a document and opens an interactive viewer. Unlike show, it
lets you step through all recipes of a multi-recipe document and switch
between metric and imperial units.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := c.Config.PipelineOptions()
			opts.Source = args[0]
			opts.Logger = c.Logger
			if cmd.Flags().Changed("units") {
				opts.Units = units.System(unitsFlag)
			}
			if cmd.Flags().Changed("scope") {
				opts.Scope = scope
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}
			if res.Empty() {
				return errors.New(errors.ErrCodeNoRecipe, "nothing to browse: %s", pipeline.NoRecipeReason(res))
			}

			sys, _ := units.ParseSystem(string(opts.Units))
			model := NewRecipeBrowserModel(res, sys)
			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&unitsFlag, "units", "u", "", "initial unit system: metric or imperial")
	cmd.Flags().StringVar(&scope, "scope", "", "cache scope")
	return cmd
}
