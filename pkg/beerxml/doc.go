// Package beerxml reads BeerXML recipe documents.
//
// # Overview
//
// BeerXML is an XML interchange format for brewing recipes. This package
// decodes the subset of the format that the rest of beerxml works with:
// recipe header fields, fermentables, hops and yeasts. Everything else in
// a document (mash profiles, equipment, notes, vendor extensions) is
// ignored, so documents from newer or extended tools still load.
//
// # Parsing
//
// [Parse] is a pure function of its input bytes:
//
//	recipes, err := beerxml.Parse(data)
//	if beerxml.IsMalformed(err) {
//	    // not BeerXML, or values out of range
//	}
//	if len(recipes) == 0 {
//	    // well formed, but no <RECIPE> elements
//	}
//
// "Parsed but empty" and "failed to parse" are distinct outcomes; callers
// that only display recipes may treat them the same, but the error is
// kept for logging.
//
// # Loading
//
// [Load] combines a [Fetcher] with [Parse]. Fetch failures are reported
// with code SOURCE_UNAVAILABLE so they can be told apart from malformed
// content:
//
//	recipes, err := beerxml.Load(ctx, fetcher, loc)
//	if beerxml.IsSourceUnavailable(err) {
//	    // network, file or bucket error, or the fetch timed out
//	}
package beerxml
