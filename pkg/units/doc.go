// Package units converts canonical recipe measurements into display values.
//
// Recipes store every measurement in metric units (kilograms, liters,
// degrees Celsius, minutes). The functions in this package are pure: they
// take a canonical value and a [System] and return a new [Quantity] with a
// rounded value and a unit label. Nothing here mutates recipe data.
//
// Precision differs by measurement, following brewing convention:
//
//	Mass         lbs 2dp    | kg 3dp
//	HopMass      oz  2dp    | g  1dp
//	Temperature  F   1dp    | C  2dp
//	Time         min 0dp, or days 1dp when >= 1440 minutes
//	Attenuation  0dp, Alpha 1dp
package units
