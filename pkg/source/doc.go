// Package source resolves and fetches BeerXML documents.
//
// A source locator is what a user types: a URL, a file path or an S3
// object. [Normalize] turns it into a [Locator] with a canonical string
// form, which is also what cache keys are derived from, so
// "HTTPS://Example.com/a.xml#top" and "https://example.com/a.xml" share a
// cache entry.
//
// [Fetcher] reads the bytes behind a Locator:
//
//	f := source.NewFetcher(10 * time.Second)
//	data, err := f.Fetch(ctx, loc)
//
// Fetch applies the timeout to the whole operation, retries transient
// HTTP failures with [httputil.Retry] and caps the document size. All
// failures carry the SOURCE_UNAVAILABLE error code.
//
// [httputil.Retry]: github.com/matzehuels/beerxml/pkg/httputil.Retry
package source
