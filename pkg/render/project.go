package render

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matzehuels/beerxml/pkg/recipe"
	"github.com/matzehuels/beerxml/pkg/units"
)

// View is a recipe converted for display.
type View struct {
	Name         string           `json:"name" yaml:"name"`
	Type         string           `json:"type,omitempty" yaml:"type,omitempty"`
	Brewer       string           `json:"brewer,omitempty" yaml:"brewer,omitempty"`
	BatchSize    *units.Quantity  `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	BoilTime     *units.Quantity  `json:"boil_time,omitempty" yaml:"boil_time,omitempty"`
	Units        units.System     `json:"units" yaml:"units"`
	Fermentables []FermentableRow `json:"fermentables" yaml:"fermentables"`
	Hops         []HopRow         `json:"hops" yaml:"hops"`
	Yeasts       []YeastRow       `json:"yeasts" yaml:"yeasts"`
}

// FermentableRow is one line of the fermentables table.
type FermentableRow struct {
	Name   string         `json:"name" yaml:"name"`
	Amount units.Quantity `json:"amount" yaml:"amount"`
}

// HopRow is one line of the hops table.
type HopRow struct {
	Name   string         `json:"name" yaml:"name"`
	Amount units.Quantity `json:"amount" yaml:"amount"`
	Time   units.Quantity `json:"time" yaml:"time"`
	Use    string         `json:"use" yaml:"use"`
	Form   string         `json:"form" yaml:"form"`
	Alpha  units.Quantity `json:"alpha" yaml:"alpha"`
}

// YeastRow is one line of the yeast table.
type YeastRow struct {
	Name           string         `json:"name" yaml:"name"`
	Laboratory     string         `json:"laboratory" yaml:"laboratory"`
	Attenuation    units.Quantity `json:"attenuation" yaml:"attenuation"`
	MinTemperature units.Quantity `json:"min_temperature" yaml:"min_temperature"`
	MaxTemperature units.Quantity `json:"max_temperature" yaml:"max_temperature"`
}

// TemperatureRange formats the yeast's range as "64.4°F - 71.6°F".
func (y YeastRow) TemperatureRange() string {
	return y.MinTemperature.Number() + "°" + y.MinTemperature.Unit +
		" - " + y.MaxTemperature.Number() + "°" + y.MaxTemperature.Unit
}

// Project converts r into display values for sys. r is not modified.
func Project(r recipe.Recipe, sys units.System) View {
	v := View{
		Name:         r.Name,
		Type:         r.Type,
		Brewer:       r.Brewer,
		Units:        sys,
		Fermentables: make([]FermentableRow, 0, len(r.Fermentables)),
		Hops:         make([]HopRow, 0, len(r.Hops)),
		Yeasts:       make([]YeastRow, 0, len(r.Yeasts)),
	}
	if r.BatchSize > 0 {
		q := units.Volume(r.BatchSize, sys)
		v.BatchSize = &q
	}
	if r.BoilTime > 0 {
		q := units.Time(r.BoilTime)
		v.BoilTime = &q
	}

	for _, f := range r.Fermentables {
		v.Fermentables = append(v.Fermentables, FermentableRow{
			Name:   f.Name,
			Amount: units.Mass(f.Amount, sys),
		})
	}
	for _, h := range r.Hops {
		v.Hops = append(v.Hops, HopRow{
			Name:   h.Name,
			Amount: units.HopMass(h.Amount, sys),
			Time:   units.Time(h.Time),
			Use:    title(h.Use),
			Form:   title(h.Form),
			Alpha:  units.Alpha(h.Alpha),
		})
	}
	for _, y := range r.Yeasts {
		v.Yeasts = append(v.Yeasts, YeastRow{
			Name:           y.Name,
			Laboratory:     y.Laboratory,
			Attenuation:    units.Attenuation(y.Attenuation),
			MinTemperature: units.Temperature(y.MinTemperature, sys),
			MaxTemperature: units.Temperature(y.MaxTemperature, sys),
		})
	}
	return v
}

// title normalizes enum-like values such as "dry hop" or "PELLET".
// Documents from different tools disagree on case.
func title(s string) string {
	if s == "" {
		return s
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}
