package energyprice

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/datetime"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/mathutil"
)

// ErrInsufficientHistory is returned when a price history holds fewer than two
// complete calendar years.
var ErrInsufficientHistory = errors.New("insufficient price history")

// monthsForCompleteYear is the number of monthly prices a calendar year needs
// to enter the trend computation.
const monthsForCompleteYear = 12

// Point is one monthly price observation.
type Point struct {
	Period string  `json:"period" yaml:"period"`
	Price  float64 `json:"price" yaml:"price"`
}

// YearlyAverage is the mean monthly price of a calendar year.
type YearlyAverage struct {
	Year    int     `json:"year"`
	Average float64 `json:"average"`
	// Change is the escalation versus the previous year in percent, 0 for the
	// first year.
	Change float64 `json:"change"`
	Crisis bool    `json:"crisis"`
}

// Params holds the tunable weights of the historical analysis.
type Params struct {
	LongTermWeight    float64
	TheoreticalWeight float64
	CrisisThreshold   float64
	RecentWindowYears int
	TransitionYears   int
	StructuralRates   map[energy.Type]float64
}

// DefaultStructuralRates are the yearly structural escalation rates, in
// percent, combining inflation and demand growth for each energy.
func DefaultStructuralRates() map[energy.Type]float64 {
	return map[energy.Type]float64{
		energy.Gas:         2.5,
		energy.Electricity: 3.0,
		energy.FuelOil:     3.5,
		energy.Wood:        2.5,
	}
}

// DefaultParams returns the analysis parameters used when none are configured.
func DefaultParams() Params {
	return Params{
		LongTermWeight:    constants.DefaultLongTermWeight,
		TheoreticalWeight: constants.DefaultTheoreticalWeight,
		CrisisThreshold:   constants.DefaultCrisisThreshold,
		RecentWindowYears: constants.DefaultRecentWindowYears,
		TransitionYears:   constants.DefaultTransitionYears,
		StructuralRates:   DefaultStructuralRates(),
	}
}

// StructuralRate returns the structural rate of an energy, falling back to the
// default table.
func (p Params) StructuralRate(e energy.Type) float64 {
	if rate, ok := p.StructuralRates[e]; ok {
		return rate
	}
	return DefaultStructuralRates()[e]
}

// Analysis is the outcome of a historical price analysis.
type Analysis struct {
	Model            Model           `json:"model"`
	YearlyAverages   []YearlyAverage `json:"yearlyAverages"`
	LongTermRate     float64         `json:"longTermRate"`
	ShortTermRate    float64         `json:"shortTermRate"`
	NonCrisisAverage float64         `json:"nonCrisisAverage"`
	FirstPeriod      string          `json:"firstPeriod"`
	LastPeriod       string          `json:"lastPeriod"`
}

// AnalyzeHistory derives a mean-reversion model from a monthly price series.
//
// The recent rate blends the growth over the whole history with the growth of
// the last RecentWindowYears years. The equilibrium rate blends the structural
// rate of the energy with the average escalation of non-crisis years, or uses
// the structural rate alone when every year was a crisis year.
func AnalyzeHistory(e energy.Type, points []Point, params Params) (Analysis, error) {
	if len(points) == 0 {
		return Analysis{}, fmt.Errorf("%w: no prices for %s", ErrInsufficientHistory, e)
	}

	type month struct {
		period string
		year   int
		price  float64
	}
	byPeriod := make(map[string]month, len(points))
	for _, p := range points {
		t, err := datetime.ParsePeriod(p.Period)
		if err != nil {
			return Analysis{}, fmt.Errorf("price history for %s: %w", e, err)
		}
		if p.Price <= 0 {
			return Analysis{}, fmt.Errorf("price history for %s: non-positive price %f at %s", e, p.Price, p.Period)
		}
		key := t.Format(datetime.PeriodLayout)
		byPeriod[key] = month{period: key, year: t.Year(), price: p.Price}
	}

	months := make([]month, 0, len(byPeriod))
	for _, m := range byPeriod {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].period < months[j].period })

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, m := range months {
		sums[m.year] += m.price
		counts[m.year]++
	}
	var years []int
	for year, count := range counts {
		if count >= monthsForCompleteYear {
			years = append(years, year)
		}
	}
	sort.Ints(years)
	if len(years) < 2 {
		return Analysis{}, fmt.Errorf("%w: %s has %d complete years, need at least 2", ErrInsufficientHistory, e, len(years))
	}

	averages := make([]YearlyAverage, len(years))
	var nonCrisis []float64
	for i, year := range years {
		averages[i] = YearlyAverage{Year: year, Average: sums[year] / float64(counts[year])}
		if i == 0 {
			continue
		}
		change := (averages[i].Average/averages[i-1].Average - 1) * constants.PercentageMultiplier
		averages[i].Change = change
		if math.Abs(change) < params.CrisisThreshold {
			nonCrisis = append(nonCrisis, change)
		} else {
			averages[i].Crisis = true
		}
	}

	last := len(averages) - 1
	longTerm := mathutil.CAGR(averages[0].Average, averages[last].Average, last)

	window := params.RecentWindowYears
	if window <= 0 || window > last {
		window = last
	}
	shortTerm := mathutil.CAGR(averages[last-window].Average, averages[last].Average, window)

	recent := params.LongTermWeight*longTerm + (1-params.LongTermWeight)*shortTerm

	structural := params.StructuralRate(e)
	nonCrisisAverage := 0.0
	equilibrium := structural
	if len(nonCrisis) > 0 {
		nonCrisisAverage = mathutil.Sum(nonCrisis) / float64(len(nonCrisis))
		equilibrium = params.TheoreticalWeight*structural + (1-params.TheoreticalWeight)*nonCrisisAverage
	}

	transition := params.TransitionYears
	if transition <= 0 {
		transition = constants.DefaultTransitionYears
	}

	return Analysis{
		Model: Model{
			Energy:          e,
			RecentRate:      mathutil.Round(recent),
			EquilibriumRate: mathutil.Round(equilibrium),
			TransitionYears: transition,
			CurrentPrice:    months[len(months)-1].price,
		},
		YearlyAverages:   averages,
		LongTermRate:     longTerm,
		ShortTermRate:    shortTerm,
		NonCrisisAverage: nonCrisisAverage,
		FirstPeriod:      months[0].period,
		LastPeriod:       months[len(months)-1].period,
	}, nil
}
