// Package energyprice implements the mean-reversion energy price evolution
// model: a recent escalation rate decaying linearly toward a structural
// equilibrium rate, and the historical analysis that derives both rates.
package energyprice

import (
	"errors"
	"fmt"

	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/mathutil"
)

// ErrModelMissing is returned when no price evolution model is available for
// an energy type. Projections never fall back to a guessed model.
var ErrModelMissing = errors.New("energy price model missing")

// Model is the price evolution model of one energy type. Rates are yearly
// percentages. The JSON names follow the persisted model format.
type Model struct {
	Energy          energy.Type `json:"energy" yaml:"energy"`
	RecentRate      float64     `json:"tauxRecent" yaml:"tauxRecent"`
	EquilibriumRate float64     `json:"tauxEquilibre" yaml:"tauxEquilibre"`
	TransitionYears int         `json:"anneesTransition,omitempty" yaml:"anneesTransition"`
	CurrentPrice    float64     `json:"currentPrice,omitempty" yaml:"currentPrice"`
}

// Transition returns the transition length, defaulting to
// constants.DefaultTransitionYears when unset.
func (m Model) Transition() int {
	if m.TransitionYears <= 0 {
		return constants.DefaultTransitionYears
	}
	return m.TransitionYears
}

// Validate checks that the model can drive a projection.
func (m Model) Validate() error {
	if m.TransitionYears < 0 {
		return fmt.Errorf("energy model %s: transition years must not be negative, got %d", m.Energy, m.TransitionYears)
	}
	if m.CurrentPrice < 0 {
		return fmt.Errorf("energy model %s: current price must not be negative, got %f", m.Energy, m.CurrentPrice)
	}
	if m.RecentRate <= -100 || m.EquilibriumRate <= -100 {
		return fmt.Errorf("energy model %s: rates must be above -100%%", m.Energy)
	}
	return nil
}

// MeanReversionRate returns the escalation rate, in percent, applied during
// the given year index. Year 0 uses the recent rate; the rate then moves
// linearly to the equilibrium rate, reached at the end of the transition and
// held constant afterwards.
func MeanReversionRate(yearIndex int, m Model) float64 {
	transition := m.Transition()
	if yearIndex <= 0 {
		return m.RecentRate
	}
	if yearIndex >= transition {
		return m.EquilibriumRate
	}
	progress := float64(yearIndex) / float64(transition)
	return m.RecentRate + (m.EquilibriumRate-m.RecentRate)*progress
}

// EscalationFactor returns the cumulative price multiplier reached at the
// given year index, the product of (1 + rate(i)/100) for i in [0, yearIndex).
func EscalationFactor(yearIndex int, m Model) float64 {
	factor := 1.0
	for i := 0; i < yearIndex; i++ {
		factor *= 1 + mathutil.PercentToRatio(MeanReversionRate(i, m))
	}
	return factor
}

// CalculateCostForYear escalates the year-one variable cost to the given year
// index and adds the fixed costs, which stay constant in real terms.
func CalculateCostForYear(variableCostYear1, fixedCostsAnnual float64, yearIndex int, m Model) float64 {
	return variableCostYear1*EscalationFactor(yearIndex, m) + fixedCostsAnnual
}

// Curve returns the escalation rate of each year of a horizon.
func Curve(years int, m Model) []float64 {
	if years <= 0 {
		return nil
	}
	rates := make([]float64, years)
	for i := range rates {
		rates[i] = MeanReversionRate(i, m)
	}
	return rates
}
