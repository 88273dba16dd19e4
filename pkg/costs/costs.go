package costs

import (
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/energyprice"
	"go.uber.org/zap"
)

// specificNeed is the yearly space heating need in kWh per m² by insulation
// quality.
var specificNeed = map[energy.Insulation]float64{
	energy.InsulationGood:    80,
	energy.InsulationAverage: 130,
	energy.InsulationPoor:    200,
}

const (
	// oldBuildingYear is the first construction year covered by thermal
	// regulation; older homes get oldBuildingPenalty.
	oldBuildingYear    = 1975
	oldBuildingPenalty = 1.15
)

// CurrentSystem describes the heating system being replaced.
type CurrentSystem struct {
	Heating energy.HeatingType
	// Consumption is the yearly consumption in the native unit of Heating.
	Consumption float64
	// Price is the price of one native unit.
	Price              float64
	SubscribedPowerKVA int
	Maintenance        float64
}

// HeatPump describes the projected heat pump installation.
type HeatPump struct {
	SubscribedPowerKVA int
	// ExistingPowerKVA is the subscription tier held before the installation.
	ExistingPowerKVA int
	Maintenance      float64
	ElectricityPrice float64
	// AnnualConsumption is the yearly electricity consumption in kWh.
	AnnualConsumption float64
}

// CurrentVariableCost returns consumption × unit price. An unmapped heating
// type costs 0.
func (c *Calculator) CurrentVariableCost(system CurrentSystem) float64 {
	if !system.Heating.Valid() {
		c.logger.Warn("unknown heating type, variable cost set to zero",
			zap.String("op", "costs.CurrentVariableCost"),
			zap.String("heating", string(system.Heating)),
		)
		return 0
	}
	return system.Consumption * system.Price
}

// CurrentFixedCost returns the subscriptions attributable to the heating mode
// plus the declared maintenance.
func (c *Calculator) CurrentFixedCost(system CurrentSystem) float64 {
	fixed := system.Maintenance
	if system.Heating.IsElectric() {
		fixed += c.ElectricSubscription(system.SubscribedPowerKVA)
	}
	if system.Heating.IsGas() {
		fixed += c.GasSubscription()
	}
	return fixed
}

// HeatPumpFixedCost returns the change in electricity subscription fee caused
// by the heat pump plus its maintenance. The delta is negative when the heat
// pump needs a lower tier than the one already held.
func (c *Calculator) HeatPumpFixedCost(hp HeatPump) float64 {
	delta := c.ElectricSubscription(hp.SubscribedPowerKVA) - c.ElectricSubscription(hp.ExistingPowerKVA)
	return delta + hp.Maintenance
}

// HeatPumpVariableCost returns the yearly electricity cost of the heat pump.
func HeatPumpVariableCost(hp HeatPump) float64 {
	return hp.ElectricityPrice * hp.AnnualConsumption
}

// HeatDemand converts a native-unit consumption into the thermal kWh actually
// delivered to the home.
func HeatDemand(consumption float64, heating energy.HeatingType, efficiency float64) float64 {
	return consumption * heating.EnergyContent() * efficiency
}

// Home holds the housing data used to estimate a heat need.
type Home struct {
	Surface          float64
	ConstructionYear int
	Insulation       energy.Insulation
	// ClimateAdjustment scales the need with local degree days.
	ClimateAdjustment float64
}

// EstimateHeatNeed returns the yearly space heating need of a home in kWh.
func EstimateHeatNeed(home Home) float64 {
	need, ok := specificNeed[home.Insulation]
	if !ok {
		need = specificNeed[energy.InsulationAverage]
	}
	need *= home.Surface
	if home.ConstructionYear > 0 && home.ConstructionYear < oldBuildingYear {
		need *= oldBuildingPenalty
	}
	adjustment := home.ClimateAdjustment
	if adjustment <= 0 {
		adjustment = 1
	}
	return need * adjustment
}

// EstimateConsumption returns the native-unit consumption the given system
// needs to deliver the estimated heat need of a home.
func EstimateConsumption(home Home, heating energy.HeatingType, efficiency float64) float64 {
	if efficiency <= 0 {
		efficiency = 1
	}
	return EstimateHeatNeed(home) / (heating.EnergyContent() * efficiency)
}

// ProjectedCost returns the cost of a system in the given year index, with the
// variable part escalated by the energy price model.
func ProjectedCost(variableCostYear1, fixedCostsAnnual float64, yearIndex int, model energyprice.Model) float64 {
	return energyprice.CalculateCostForYear(variableCostYear1, fixedCostsAnnual, yearIndex, model)
}
