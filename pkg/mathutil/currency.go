// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/thermogain/thermogain/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// RoundTo rounds a value to the given number of decimals.
func RoundTo(val float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(val*factor) / factor
}

// Clamp bounds a value to [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}

// Sum adds all values.
func Sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// PercentToRatio converts a percentage into a ratio, e.g. 5 -> 0.05.
func PercentToRatio(percent float64) float64 {
	return percent / constants.PercentageMultiplier
}

// CAGR returns the compound annual growth rate, in percent, between two
// values separated by the given number of years. Non-positive inputs yield 0.
func CAGR(first, last float64, years int) float64 {
	if first <= 0 || last <= 0 || years <= 0 {
		return 0
	}
	return (math.Pow(last/first, 1/float64(years)) - 1) * constants.PercentageMultiplier
}
