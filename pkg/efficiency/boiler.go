// Package efficiency models the real-world efficiency of an existing heating
// installation from its type, age and maintenance condition.
package efficiency

import (
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/mathutil"
)

const (
	// ageLossPerYear is the efficiency lost per year of service.
	ageLossPerYear = 0.01
	// maxAgeYears caps the age degradation.
	maxAgeYears = 25
	// minEfficiency is the lowest efficiency the model returns.
	minEfficiency = 0.30
)

// Adjustment is the result of correcting an estimated consumption for the
// real efficiency of the installation.
type Adjustment struct {
	AdjustedConsumption float64 `json:"adjustedConsumption"`
	Efficiency          float64 `json:"efficiency"`
}

// NominalEfficiency returns the efficiency of a new installation.
func NominalEfficiency(heating energy.HeatingType) float64 {
	switch heating {
	case energy.HeatingGas:
		return 0.92
	case energy.HeatingFuelOil:
		return 0.85
	case energy.HeatingLPG:
		return 0.90
	case energy.HeatingWood:
		return 0.75
	case energy.HeatingPellets:
		return 0.90
	case energy.HeatingElectric, energy.HeatingHeatPump:
		return 1.0
	default:
		return 1.0
	}
}

// ReferenceEfficiency returns the efficiency assumed by consumption estimates
// for a heating type.
func ReferenceEfficiency(heating energy.HeatingType) float64 {
	switch heating {
	case energy.HeatingGas:
		return 0.82
	case energy.HeatingFuelOil:
		return 0.68
	case energy.HeatingLPG:
		return 0.80
	case energy.HeatingWood:
		return 0.60
	case energy.HeatingPellets:
		return 0.80
	case energy.HeatingElectric, energy.HeatingHeatPump:
		return 1.0
	default:
		return 1.0
	}
}

// ConditionFactor returns the multiplier attached to a maintenance condition.
func ConditionFactor(condition energy.Condition) float64 {
	switch condition {
	case energy.ConditionGood:
		return 1.0
	case energy.ConditionAverage:
		return 0.92
	case energy.ConditionPoor:
		return 0.80
	default:
		return 0.92
	}
}

// CalculateBoilerEfficiency returns the real efficiency ratio in (0, 1] of an
// installation. Electric systems and heat pumps have no combustion losses and
// always return 1.
func CalculateBoilerEfficiency(heating energy.HeatingType, ageYears float64, condition energy.Condition) float64 {
	if heating.IsElectric() || !heating.Valid() {
		return 1.0
	}

	age := mathutil.Clamp(ageYears, 0, maxAgeYears)
	ageFactor := 1 - ageLossPerYear*age

	efficiency := NominalEfficiency(heating) * ageFactor * ConditionFactor(condition)
	return mathutil.Clamp(efficiency, minEfficiency, 1.0)
}

// AdjustConsumptionForEfficiency scales an estimated consumption by the ratio
// of the reference efficiency to the real efficiency: a less efficient
// installation burns more fuel for the same delivered heat.
func AdjustConsumptionForEfficiency(baseline float64, heating energy.HeatingType, ageYears float64, condition energy.Condition) Adjustment {
	real := CalculateBoilerEfficiency(heating, ageYears, condition)
	return Adjustment{
		AdjustedConsumption: baseline * ReferenceEfficiency(heating) / real,
		Efficiency:          real,
	}
}
