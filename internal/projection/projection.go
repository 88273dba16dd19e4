// Package projection computes the year-by-year cost comparison between the
// current heating system and a heat pump, the payback period and the lifetime
// profitability of the investment.
package projection

import (
	"math"

	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/costs"
	"github.com/thermogain/thermogain/pkg/energyprice"
	"github.com/thermogain/thermogain/pkg/mathutil"
)

// YearlyDataPoint is one projected year. Points are produced in order since
// the cumulative savings depend on every prior year.
type YearlyDataPoint struct {
	Year              int     `json:"year"`
	CurrentCost       float64 `json:"currentCost"`
	HeatPumpCost      float64 `json:"heatPumpCost"`
	Savings           float64 `json:"savings"`
	CumulativeSavings float64 `json:"cumulativeSavings"`
}

// CostBasis holds the year-one costs of both systems and the price models
// escalating their variable parts.
type CostBasis struct {
	CurrentVariable  float64
	CurrentFixed     float64
	HeatPumpVariable float64
	HeatPumpFixed    float64
	CurrentModel     energyprice.Model
	ElectricityModel energyprice.Model
}

// CalculateYearlyData projects both systems over the given number of years.
// Year index i is labelled startYear + i.
func CalculateYearlyData(basis CostBasis, years, startYear int) []YearlyDataPoint {
	if years <= 0 {
		return nil
	}

	data := make([]YearlyDataPoint, 0, years)
	cumulative := 0.0
	for i := 0; i < years; i++ {
		current := mathutil.Round(costs.ProjectedCost(basis.CurrentVariable, basis.CurrentFixed, i, basis.CurrentModel))
		heatPump := mathutil.Round(costs.ProjectedCost(basis.HeatPumpVariable, basis.HeatPumpFixed, i, basis.ElectricityModel))
		savings := mathutil.Round(current - heatPump)
		cumulative = mathutil.Round(cumulative + savings)

		data = append(data, YearlyDataPoint{
			Year:              startYear + i,
			CurrentCost:       current,
			HeatPumpCost:      heatPump,
			Savings:           savings,
			CumulativeSavings: cumulative,
		})
	}
	return data
}

// CalculatePayback returns the fractional number of years after which the
// cumulative savings cover the investment, rounded to 1 decimal, or nil when
// that never happens within the series.
//
// The investment is deducted once before year index 0. At the first index i
// where the position turns non-negative, the crossing is interpolated as
// i + deficit/savings(i), where deficit is the amount still uncovered at the
// start of that year.
func CalculatePayback(data []YearlyDataPoint, investment float64) *float64 {
	position := -investment
	for i, point := range data {
		deficit := -position
		position += point.Savings
		if position < 0 {
			continue
		}

		payback := float64(i)
		if deficit > 0 && point.Savings > 0 {
			payback += deficit / point.Savings
		}
		payback = mathutil.RoundTo(payback, 1)
		return &payback
	}
	return nil
}

// PaybackYear returns the calendar year in which the payback occurs.
func PaybackYear(currentYear int, payback *float64) *int {
	if payback == nil {
		return nil
	}
	year := currentYear + int(math.Floor(*payback))
	return &year
}

// ProfitabilityRate returns the annualized return, in percent, of an
// investment producing the given net benefit over the lifetime:
// ((investment + netBenefit) / investment)^(1/lifetime) − 1.
func ProfitabilityRate(investment, netBenefit float64, lifetimeYears int) float64 {
	if investment <= 0 || lifetimeYears <= 0 {
		return 0
	}
	ratio := (investment + netBenefit) / investment
	if ratio <= 0 {
		return -constants.PercentageMultiplier
	}
	rate := (math.Pow(ratio, 1/float64(lifetimeYears)) - 1) * constants.PercentageMultiplier
	return mathutil.Round(rate)
}

// Totals holds the lifetime aggregates of a projection.
type Totals struct {
	TotalCurrentCost  float64 `json:"totalCurrentCost"`
	TotalHeatPumpCost float64 `json:"totalHeatPumpCost"`
	TotalSavings      float64 `json:"totalSavings"`
	NetBenefit        float64 `json:"netBenefit"`
	ProfitabilityRate float64 `json:"profitabilityRate"`
}

// CalculateTotals aggregates a yearly series. The heat pump total includes the
// actual investment.
func CalculateTotals(data []YearlyDataPoint, investment float64) Totals {
	var current, heatPump, savings float64
	for _, point := range data {
		current += point.CurrentCost
		heatPump += point.HeatPumpCost
		savings += point.Savings
	}
	heatPump += investment

	net := mathutil.Round(current - heatPump)
	return Totals{
		TotalCurrentCost:  mathutil.Round(current),
		TotalHeatPumpCost: mathutil.Round(heatPump),
		TotalSavings:      mathutil.Round(savings),
		NetBenefit:        net,
		ProfitabilityRate: ProfitabilityRate(investment, net, len(data)),
	}
}
