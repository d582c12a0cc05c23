package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis or Mongo instance without seeing each other's entries.
//
// Example usage:
//
//	// Staging and production on the same Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix == "" {
		return inner
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RecipeKey generates a prefixed recipe key.
func (k *ScopedKeyer) RecipeKey(scope, name, locator string) string {
	return k.prefix + k.inner.RecipeKey(scope, name, locator)
}
