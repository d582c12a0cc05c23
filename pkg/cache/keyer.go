package cache

import "strings"

// Keyer builds cache keys for recipe documents.
type Keyer interface {
	// RecipeKey returns the key for the document at locator, as seen from
	// scope. name is a human-readable label (usually the file name) that
	// only serves to make keys recognizable when inspecting a backend.
	RecipeKey(scope, name, locator string) string
}

// DefaultKeyer produces keys of the form
//
//	recipe:<scope>:<name>:<sha256(locator)>
//
// The hash of the full canonical locator keeps two documents with the same
// file name on different hosts apart.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RecipeKey implements Keyer.
func (DefaultKeyer) RecipeKey(scope, name, locator string) string {
	var b strings.Builder
	b.WriteString("recipe:")
	b.WriteString(scope)
	b.WriteByte(':')
	b.WriteString(name)
	b.WriteByte(':')
	b.WriteString(Hash([]byte(locator)))
	return b.String()
}
