package units

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/beerxml/pkg/errors"
)

// System selects the unit system used for display.
type System string

const (
	Metric   System = "metric"
	Imperial System = "imperial"
)

// DefaultSystem is used when no system is requested.
const DefaultSystem = Imperial

// Conversion factors from canonical (metric) units.
const (
	PoundsPerKilogram = 2.20462
	OuncesPerKilogram = 35.274
	GallonsPerLiter   = 0.264172
	MinutesPerDay     = 1440
)

// ParseSystem converts a user-supplied name into a System.
// Matching is case-insensitive; an empty string yields DefaultSystem.
func ParseSystem(s string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultSystem, nil
	case "metric", "si":
		return Metric, nil
	case "imperial", "us":
		return Imperial, nil
	}
	return "", errors.New(errors.ErrCodeInvalidUnits, "invalid unit system: %q (must be one of: metric, imperial)", s)
}

// IsMetric reports whether s is the metric system.
func (s System) IsMetric() bool { return s == Metric }

// Toggle returns the other unit system.
func (s System) Toggle() System {
	if s == Metric {
		return Imperial
	}
	return Metric
}

// Quantity is a display value with its unit label.
// Places records the rounding precision so String can print it consistently.
type Quantity struct {
	Value  float64 `json:"value" yaml:"value"`
	Unit   string  `json:"unit" yaml:"unit"`
	Places int     `json:"-" yaml:"-"`
}

// Number formats the value without trailing zeros, e.g. 2.2 rather than 2.20.
func (q Quantity) Number() string {
	return strconv.FormatFloat(Round(q.Value, q.Places), 'f', -1, 64)
}

// String formats the quantity as "<value> <unit>".
func (q Quantity) String() string {
	return q.Number() + " " + q.Unit
}

// Mass converts a fermentable mass in kilograms.
// Imperial yields pounds at 2 decimals; metric keeps kilograms at 3.
func Mass(kg float64, sys System) Quantity {
	if sys.IsMetric() {
		return Quantity{Value: Round(kg, 3), Unit: "kg", Places: 3}
	}
	return Quantity{Value: Round(kg*PoundsPerKilogram, 2), Unit: "lbs", Places: 2}
}

// HopMass converts a hop mass in kilograms. Hops are small additions so
// they use ounces (2 decimals) or grams (1 decimal).
func HopMass(kg float64, sys System) Quantity {
	if sys.IsMetric() {
		return Quantity{Value: Round(kg*1000, 1), Unit: "g", Places: 1}
	}
	return Quantity{Value: Round(kg*OuncesPerKilogram, 2), Unit: "oz", Places: 2}
}

// Time converts minutes. Durations of a day or more are shown in days at
// 1 decimal; the label is singular only when the rounded value is exactly 1.
func Time(minutes float64) Quantity {
	if minutes >= MinutesPerDay {
		days := Round(minutes/MinutesPerDay, 1)
		unit := "days"
		if days == 1 {
			unit = "day"
		}
		return Quantity{Value: days, Unit: unit, Places: 1}
	}
	return Quantity{Value: Round(minutes, 0), Unit: "min", Places: 0}
}

// Temperature converts degrees Celsius.
// Imperial yields Fahrenheit at 1 decimal; metric keeps Celsius at 2.
func Temperature(celsius float64, sys System) Quantity {
	if sys.IsMetric() {
		return Quantity{Value: Round(celsius, 2), Unit: "C", Places: 2}
	}
	return Quantity{Value: Round(celsius*9/5+32, 1), Unit: "F", Places: 1}
}

// Volume converts liters to gallons (2 decimals) or keeps liters (1 decimal).
func Volume(liters float64, sys System) Quantity {
	if sys.IsMetric() {
		return Quantity{Value: Round(liters, 1), Unit: "L", Places: 1}
	}
	return Quantity{Value: Round(liters*GallonsPerLiter, 2), Unit: "gal", Places: 2}
}

// Attenuation rounds an apparent attenuation percentage to a whole number.
func Attenuation(pct float64) Quantity {
	return Quantity{Value: Round(pct, 0), Unit: "%", Places: 0}
}

// Alpha rounds a hop alpha acid percentage to 1 decimal.
func Alpha(pct float64) Quantity {
	return Quantity{Value: Round(pct, 1), Unit: "%", Places: 1}
}

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int) float64 {
	if places <= 0 {
		return math.Round(v)
	}
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	// Strip representation noise such as 2.2046200000000003.
	f, err := strconv.ParseFloat(strconv.FormatFloat(r, 'f', places, 64), 64)
	if err != nil {
		return r
	}
	return f
}
