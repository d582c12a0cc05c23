// Package recipe defines the in-memory brewing recipe model.
//
// All measurements are canonical metric values: masses in kilograms,
// volumes in liters, temperatures in degrees Celsius, times in minutes and
// percentages in the range 0-100. Display conversion lives in the units and
// render packages and never writes back into these types.
//
// A Recipe is created by the beerxml parser and treated as immutable after
// that; the recipe cache hands the same values to concurrent readers.
package recipe

import (
	"errors"
	"fmt"
)

// Recipe is a single brewing recipe with its ingredient lists.
// Ingredient slices keep document order.
type Recipe struct {
	Name         string        `json:"name"`
	Type         string        `json:"type,omitempty"`
	Brewer       string        `json:"brewer,omitempty"`
	BatchSize    float64       `json:"batch_size,omitempty"` // liters
	BoilTime     float64       `json:"boil_time,omitempty"`  // minutes
	Fermentables []Fermentable `json:"fermentables"`
	Hops         []Hop         `json:"hops"`
	Yeasts       []Yeast       `json:"yeasts"`
}

// Fermentable is a grain, sugar or extract addition.
type Fermentable struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"` // kilograms
}

// Hop is a hop addition.
type Hop struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"` // kilograms
	Time   float64 `json:"time"`   // minutes
	Use    string  `json:"use"`    // e.g. "Boil", "Dry Hop"
	Form   string  `json:"form"`   // e.g. "Pellet", "Leaf"
	Alpha  float64 `json:"alpha"`  // percent
}

// Yeast is a yeast strain with its fermentation characteristics.
type Yeast struct {
	Name           string  `json:"name"`
	Laboratory     string  `json:"laboratory"`
	Attenuation    float64 `json:"attenuation"`     // percent
	MinTemperature float64 `json:"min_temperature"` // Celsius
	MaxTemperature float64 `json:"max_temperature"` // Celsius
}

// Validate checks the model invariants and returns every violation joined
// into one error, or nil.
func (r *Recipe) Validate() error {
	var errs []error
	if !isNonNegative(r.BatchSize) {
		errs = append(errs, fmt.Errorf("batch size %v must not be negative", r.BatchSize))
	}
	if !isNonNegative(r.BoilTime) {
		errs = append(errs, fmt.Errorf("boil time %v must not be negative", r.BoilTime))
	}
	for i := range r.Fermentables {
		if err := r.Fermentables[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("fermentable %d: %w", i, err))
		}
	}
	for i := range r.Hops {
		if err := r.Hops[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("hop %d: %w", i, err))
		}
	}
	for i := range r.Yeasts {
		if err := r.Yeasts[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("yeast %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks amount >= 0.
func (f *Fermentable) Validate() error {
	if !isNonNegative(f.Amount) {
		return fmt.Errorf("%q: amount %v must not be negative", f.Name, f.Amount)
	}
	return nil
}

// Validate checks amount >= 0, time >= 0 and 0 <= alpha <= 100.
func (h *Hop) Validate() error {
	var errs []error
	if !isNonNegative(h.Amount) {
		errs = append(errs, fmt.Errorf("%q: amount %v must not be negative", h.Name, h.Amount))
	}
	if !isNonNegative(h.Time) {
		errs = append(errs, fmt.Errorf("%q: time %v must not be negative", h.Name, h.Time))
	}
	if !isPercentage(h.Alpha) {
		errs = append(errs, fmt.Errorf("%q: alpha %v must be within 0-100", h.Name, h.Alpha))
	}
	return errors.Join(errs...)
}

// Validate checks 0 <= attenuation <= 100 and min <= max temperature.
func (y *Yeast) Validate() error {
	var errs []error
	if !isPercentage(y.Attenuation) {
		errs = append(errs, fmt.Errorf("%q: attenuation %v must be within 0-100", y.Name, y.Attenuation))
	}
	if !(y.MinTemperature <= y.MaxTemperature) {
		errs = append(errs, fmt.Errorf("%q: min temperature %v exceeds max temperature %v",
			y.Name, y.MinTemperature, y.MaxTemperature))
	}
	return errors.Join(errs...)
}

// IsEmpty reports whether the recipe has no ingredients at all.
func (r *Recipe) IsEmpty() bool {
	return len(r.Fermentables) == 0 && len(r.Hops) == 0 && len(r.Yeasts) == 0
}

// Clone returns a deep copy so callers can modify it without affecting
// shared (cached) values.
func (r Recipe) Clone() Recipe {
	r.Fermentables = append([]Fermentable(nil), r.Fermentables...)
	r.Hops = append([]Hop(nil), r.Hops...)
	r.Yeasts = append([]Yeast(nil), r.Yeasts...)
	return r
}

// First returns the first recipe of a parsed document. Only the first
// recipe is rendered by default; ok is false for an empty document.
func First(recipes []Recipe) (Recipe, bool) {
	if len(recipes) == 0 {
		return Recipe{}, false
	}
	return recipes[0], true
}

// isNonNegative and isPercentage are false for NaN.
func isNonNegative(v float64) bool {
	return v >= 0
}

func isPercentage(v float64) bool {
	return v >= 0 && v <= 100
}
