// Package render turns recipes into display output.
//
// # Overview
//
// Rendering happens in two steps. [Project] converts a canonical
// [recipe.Recipe] into a [View] whose quantities are already converted to
// the requested unit system and rounded for display. The sinks then write
// a View in one of the supported formats:
//
//   - text: terminal tables styled with lipgloss
//   - json: the View as indented JSON
//   - yaml: the View as YAML
//   - html: a fragment with fermentables, hops and yeast tables
//
// Project never modifies its input. Recipes handed out by the recipe
// cache are shared, so rendering the same recipe in metric and then in
// imperial must give the same result as rendering it in imperial alone.
//
//	view := render.Project(r, units.Metric)
//	err := render.Write(os.Stdout, view, render.FormatHTML)
//
// # Empty results
//
// When there is no recipe to show, [WriteNoRecipe] writes a placeholder
// appropriate for the format: an HTML comment, a JSON object with
// "recipe": null, or a short line of text.
package render
