package beerxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/matzehuels/beerxml/pkg/errors"
	"github.com/matzehuels/beerxml/pkg/recipe"
)

const (
	rootRecipes = "RECIPES"
	rootRecipe  = "RECIPE"
)

// Parse decodes a BeerXML document into recipes, in document order.
//
// The document root must be <RECIPES> or a single <RECIPE>. Elements the
// model does not know about are skipped. A well-formed document without
// any <RECIPE> elements yields an empty slice and a nil error.
//
// Any failure is an *errors.Error with code MALFORMED: XML syntax errors,
// an unexpected root element, numeric fields that are not numbers, or
// values that violate the recipe invariants.
func Parse(data []byte) ([]recipe.Recipe, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader is like [Parse] but reads the document from r.
func ParseReader(r io.Reader) ([]recipe.Recipe, error) {
	dec := newDecoder(r)

	var doc []xmlRecipe
	root, err := nextStart(dec)
	if err == io.EOF {
		return nil, malformed(nil, "document has no root element")
	}
	if err != nil {
		return nil, malformed(err, "read document")
	}

	switch root.Name.Local {
	case rootRecipes:
		var list xmlRecipes
		if err := dec.DecodeElement(&list, &root); err != nil {
			return nil, malformed(err, "decode %s", rootRecipes)
		}
		doc = list.Recipes
	case rootRecipe:
		var single xmlRecipe
		if err := dec.DecodeElement(&single, &root); err != nil {
			return nil, malformed(err, "decode %s", rootRecipe)
		}
		doc = []xmlRecipe{single}
	default:
		return nil, malformed(nil, "unexpected root element <%s>", root.Name.Local)
	}

	// Trailing content must still be well formed.
	if err := drain(dec); err != nil {
		return nil, malformed(err, "trailing content")
	}

	recipes := make([]recipe.Recipe, 0, len(doc))
	for i, x := range doc {
		r, err := x.toRecipe()
		if err != nil {
			return nil, malformed(err, "recipe %d", i)
		}
		if err := r.Validate(); err != nil {
			return nil, malformed(err, "recipe %d (%s)", i, r.Name)
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

// IsMalformed reports whether err describes a document that could not be parsed.
func IsMalformed(err error) bool {
	return errors.Has(err, errors.ErrCodeMalformed)
}

func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	// Recipe notes exported from some tools contain HTML entities.
	dec.Entity = xml.HTMLEntity
	return dec
}

// charsetReader decodes non-UTF-8 documents. BeerXML files written by
// older desktop tools commonly declare ISO-8859-1 or windows-1252.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func drain(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return fmt.Errorf("second root element <%s>", se.Name.Local)
		}
	}
}

func malformed(cause error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeMalformed, cause, format, args...)
}

// parseNumber reads a BeerXML numeric field. Missing or blank values are 0.
func parseNumber(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", field, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: non-finite number %q", field, raw)
	}
	return v, nil
}
