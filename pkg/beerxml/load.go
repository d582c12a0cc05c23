package beerxml

import (
	"context"

	"github.com/matzehuels/beerxml/pkg/errors"
	"github.com/matzehuels/beerxml/pkg/recipe"
	"github.com/matzehuels/beerxml/pkg/source"
)

// Fetcher obtains the raw bytes of a document.
// [source.Fetcher] is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, loc source.Locator) ([]byte, error)
}

// Load fetches the document at loc and parses it.
// Fetch errors are returned with code SOURCE_UNAVAILABLE, parse errors with
// code MALFORMED.
func Load(ctx context.Context, f Fetcher, loc source.Locator) ([]recipe.Recipe, error) {
	data, err := f.Fetch(ctx, loc)
	if err != nil {
		if errors.Has(err, errors.ErrCodeSourceUnavailable) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "fetch %s", loc)
	}
	return Parse(data)
}

// IsSourceUnavailable reports whether err means the document could not be
// obtained at all.
func IsSourceUnavailable(err error) bool {
	return errors.Has(err, errors.ErrCodeSourceUnavailable)
}
