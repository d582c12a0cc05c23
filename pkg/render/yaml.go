package render

import (
	"io"

	"gopkg.in/yaml.v3"
)

type yamlDocument struct {
	Recipe *View  `yaml:"recipe"`
	Reason string `yaml:"reason,omitempty"`
}

// WriteYAML writes the view as a YAML document with a top-level recipe key.
func WriteYAML(w io.Writer, v View) error {
	return writeYAML(w, yamlDocument{Recipe: &v})
}

func writeNoRecipeYAML(w io.Writer, reason string) error {
	return writeYAML(w, yamlDocument{Reason: reason})
}

func writeYAML(w io.Writer, doc yamlDocument) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
