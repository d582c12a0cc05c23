package render

import (
	"io"

	"github.com/matzehuels/beerxml/pkg/errors"
)

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatHTML = "html"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatYAML: true,
	FormatHTML: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: text, json, yaml, html)", format)
	}
	return nil
}

// ContentType returns the HTTP content type for format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Write renders v to w in format.
func Write(w io.Writer, v View, format string) error {
	switch format {
	case FormatText:
		return WriteText(w, v)
	case FormatJSON:
		return WriteJSON(w, v)
	case FormatYAML:
		return WriteYAML(w, v)
	case FormatHTML:
		return WriteHTML(w, v)
	}
	return ValidateFormat(format)
}

// WriteNoRecipe writes the placeholder shown when there is no recipe.
// reason is a short human-readable explanation.
func WriteNoRecipe(w io.Writer, format, reason string) error {
	switch format {
	case FormatText:
		return writeNoRecipeText(w, reason)
	case FormatJSON:
		return writeNoRecipeJSON(w, reason)
	case FormatYAML:
		return writeNoRecipeYAML(w, reason)
	case FormatHTML:
		return writeNoRecipeHTML(w)
	}
	return ValidateFormat(format)
}
