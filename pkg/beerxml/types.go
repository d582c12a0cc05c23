package beerxml

import (
	"errors"
	"strings"

	"github.com/matzehuels/beerxml/pkg/recipe"
)

// Numeric fields are decoded as strings so a bad value can be reported by
// field name instead of failing the whole decode with a generic error.

type xmlRecipes struct {
	Recipes []xmlRecipe `xml:"RECIPE"`
}

type xmlRecipe struct {
	Name         string           `xml:"NAME"`
	Type         string           `xml:"TYPE"`
	Brewer       string           `xml:"BREWER"`
	BatchSize    string           `xml:"BATCH_SIZE"`
	BoilTime     string           `xml:"BOIL_TIME"`
	Fermentables []xmlFermentable `xml:"FERMENTABLES>FERMENTABLE"`
	Hops         []xmlHop         `xml:"HOPS>HOP"`
	Yeasts       []xmlYeast       `xml:"YEASTS>YEAST"`
}

type xmlFermentable struct {
	Name   string `xml:"NAME"`
	Amount string `xml:"AMOUNT"`
}

type xmlHop struct {
	Name   string `xml:"NAME"`
	Amount string `xml:"AMOUNT"`
	Time   string `xml:"TIME"`
	Use    string `xml:"USE"`
	Form   string `xml:"FORM"`
	Alpha  string `xml:"ALPHA"`
}

type xmlYeast struct {
	Name           string `xml:"NAME"`
	Laboratory     string `xml:"LABORATORY"`
	Attenuation    string `xml:"ATTENUATION"`
	MinTemperature string `xml:"MIN_TEMPERATURE"`
	MaxTemperature string `xml:"MAX_TEMPERATURE"`
}

// numbers collects parse errors so one pass reports every bad field.
type numbers struct{ errs []error }

func (n *numbers) parse(field, raw string) float64 {
	v, err := parseNumber(field, raw)
	if err != nil {
		n.errs = append(n.errs, err)
	}
	return v
}

func (n *numbers) err() error { return errors.Join(n.errs...) }

func (x xmlRecipe) toRecipe() (recipe.Recipe, error) {
	var n numbers
	r := recipe.Recipe{
		Name:         clean(x.Name),
		Type:         clean(x.Type),
		Brewer:       clean(x.Brewer),
		BatchSize:    n.parse("BATCH_SIZE", x.BatchSize),
		BoilTime:     n.parse("BOIL_TIME", x.BoilTime),
		Fermentables: make([]recipe.Fermentable, 0, len(x.Fermentables)),
		Hops:         make([]recipe.Hop, 0, len(x.Hops)),
		Yeasts:       make([]recipe.Yeast, 0, len(x.Yeasts)),
	}

	for _, f := range x.Fermentables {
		r.Fermentables = append(r.Fermentables, recipe.Fermentable{
			Name:   clean(f.Name),
			Amount: n.parse("FERMENTABLE/AMOUNT", f.Amount),
		})
	}
	for _, h := range x.Hops {
		r.Hops = append(r.Hops, recipe.Hop{
			Name:   clean(h.Name),
			Amount: n.parse("HOP/AMOUNT", h.Amount),
			Time:   n.parse("HOP/TIME", h.Time),
			Use:    clean(h.Use),
			Form:   clean(h.Form),
			Alpha:  n.parse("HOP/ALPHA", h.Alpha),
		})
	}
	for _, y := range x.Yeasts {
		minRaw, maxRaw := temperatureBounds(y.MinTemperature, y.MaxTemperature)
		r.Yeasts = append(r.Yeasts, recipe.Yeast{
			Name:           clean(y.Name),
			Laboratory:     clean(y.Laboratory),
			Attenuation:    n.parse("YEAST/ATTENUATION", y.Attenuation),
			MinTemperature: n.parse("YEAST/MIN_TEMPERATURE", minRaw),
			MaxTemperature: n.parse("YEAST/MAX_TEMPERATURE", maxRaw),
		})
	}

	if err := n.err(); err != nil {
		return recipe.Recipe{}, err
	}
	return r, nil
}

// temperatureBounds fills a missing yeast temperature bound with the
// other one, so a yeast that only states a minimum gets the range [min, min]
// instead of a zero maximum below it.
func temperatureBounds(minRaw, maxRaw string) (string, string) {
	switch {
	case strings.TrimSpace(minRaw) == "":
		return maxRaw, maxRaw
	case strings.TrimSpace(maxRaw) == "":
		return minRaw, minRaw
	}
	return minRaw, maxRaw
}

// clean collapses the whitespace that pretty-printed documents leave
// around text values.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
