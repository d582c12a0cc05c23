package render

import (
	"encoding/json"
	"io"
)

// jsonDocument wraps the view so that an empty result has the same shape.
type jsonDocument struct {
	Recipe *View  `json:"recipe"`
	Reason string `json:"reason,omitempty"`
}

// WriteJSON writes {"recipe": v} as indented JSON.
func WriteJSON(w io.Writer, v View) error {
	return writeJSON(w, jsonDocument{Recipe: &v})
}

func writeNoRecipeJSON(w io.Writer, reason string) error {
	return writeJSON(w, jsonDocument{Reason: reason})
}

func writeJSON(w io.Writer, doc jsonDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
