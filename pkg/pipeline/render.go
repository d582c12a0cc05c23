package pipeline

import (
	"fmt"
	"io"

	"github.com/matzehuels/beerxml/pkg/errors"
	"github.com/matzehuels/beerxml/pkg/render"
)

// Render writes the first recipe of res in opts.Format and opts.Units.
// An empty result renders the format's "no recipe" placeholder instead.
func Render(w io.Writer, res *Result, opts Options) error {
	if err := opts.ValidateForRender(); err != nil {
		return err
	}
	if res.Empty() {
		return render.WriteNoRecipe(w, opts.Format, NoRecipeReason(res))
	}
	view := render.Project(*res.Recipe, opts.Units)
	if err := render.Write(w, view, opts.Format); err != nil {
		return fmt.Errorf("render %s: %w", opts.Format, err)
	}
	return nil
}

// NoRecipeReason explains an empty result in a short phrase suitable for
// the placeholder.
func NoRecipeReason(res *Result) string {
	switch {
	case res.LoadErr == nil:
		return "the document contains no recipes"
	case errors.Has(res.LoadErr, errors.ErrCodeMalformed):
		return "the document is not valid BeerXML"
	case errors.Has(res.LoadErr, errors.ErrCodeSourceUnavailable):
		return "the document could not be retrieved"
	}
	return "the recipe could not be loaded"
}
