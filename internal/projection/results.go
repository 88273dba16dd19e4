package projection

import (
	"time"

	"github.com/thermogain/thermogain/pkg/climate"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/energyprice"
	"github.com/thermogain/thermogain/pkg/loans"
)

// Results is the terminal record of one calculation, persisted verbatim.
type Results struct {
	ProjectID    string    `json:"projectId"`
	CalculatedAt time.Time `json:"calculatedAt"`

	CurrentCostYear1    float64 `json:"currentCostYear1"`
	HeatPumpCostYear1   float64 `json:"heatPumpCostYear1"`
	SavingsYear1        float64 `json:"savingsYear1"`
	MonthlyCurrentCost  float64 `json:"monthlyCurrentCost"`
	MonthlyHeatPumpCost float64 `json:"monthlyHeatPumpCost"`
	MonthlySavings      float64 `json:"monthlySavings"`

	// PaybackPeriod is nil when the investment is not recovered within the
	// heat pump lifetime.
	PaybackPeriod *float64 `json:"paybackPeriod"`
	PaybackYear   *int     `json:"paybackYear"`

	Totals

	MonthlyPayment   float64 `json:"monthlyPayment"`
	TotalCreditCost  float64 `json:"totalCreditCost"`
	ActualInvestment float64 `json:"actualInvestment"`

	YearlyData          []YearlyDataPoint     `json:"yearlyData"`
	HeatPumpConsumption float64               `json:"heatPumpConsumption"`
	LoanSchedule        []loans.YearlyPayment `json:"loanSchedule,omitempty"`

	Details Details `json:"details"`
}

// Details exposes the intermediate figures of a calculation.
type Details struct {
	ClimateZone          climate.Zone      `json:"climateZone"`
	BoilerEfficiency     float64           `json:"boilerEfficiency"`
	CurrentConsumption   float64           `json:"currentConsumption"`
	CurrentUnit          energy.Unit       `json:"currentUnit"`
	HeatDemand           float64           `json:"heatDemand"`
	HotWaterDemand       float64           `json:"hotWaterDemand"`
	AdjustedCOP          float64           `json:"adjustedCop"`
	HotWaterCOP          float64           `json:"hotWaterCop,omitempty"`
	CurrentVariableCost  float64           `json:"currentVariableCost"`
	CurrentFixedCost     float64           `json:"currentFixedCost"`
	HeatPumpVariableCost float64           `json:"heatPumpVariableCost"`
	HeatPumpFixedCost    float64           `json:"heatPumpFixedCost"`
	CurrentModel         energyprice.Model `json:"currentModel"`
	ElectricityModel     energyprice.Model `json:"electricityModel"`
}

// PaybackReached reports whether the investment is recovered.
func (r *Results) PaybackReached() bool {
	return r.PaybackPeriod != nil
}

// Lifetime returns the number of projected years.
func (r *Results) Lifetime() int {
	return len(r.YearlyData)
}
