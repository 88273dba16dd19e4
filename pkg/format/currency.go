// Package format renders amounts for human-readable output.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Euro returns an amount in French notation with a euro sign (e.g., "-1 234,56 €").
func Euro(amount float64) string {
	formatted := formatPositive(math.Abs(amount), ' ', ',')
	if amount < 0 && formatted != "0,00" {
		return "-" + formatted + " €"
	}
	return formatted + " €"
}

// NumericEuro returns an amount without a currency symbol, grouped with
// commas (e.g., "-1,234.56").
func NumericEuro(amount float64) string {
	sign := ""
	formatted := formatPositive(math.Abs(amount), ',', '.')
	if amount < 0 && formatted != "0.00" {
		sign = "-"
	}
	return sign + formatted
}

// PricePerKWh renders an energy price with four decimals (e.g., "0,2516 €/kWh").
func PricePerKWh(price float64) string {
	return strings.Replace(fmt.Sprintf("%.4f", price), ".", ",", 1) + " €/kWh"
}

// Years renders a duration in years with one decimal, or "-" when nil.
func Years(years *float64) string {
	if years == nil {
		return "-"
	}
	return strings.Replace(fmt.Sprintf("%.1f", *years), ".", ",", 1) + " ans"
}

// Percent renders a percentage with two decimals (e.g., "4,80 %").
func Percent(value float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", value), ".", ",", 1) + " %"
}

func formatPositive(value float64, thousands, decimal byte) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(thousands)
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + string(decimal) + decPart
}
