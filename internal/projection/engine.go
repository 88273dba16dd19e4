package projection

import (
	"fmt"
	"math"
	"time"

	"github.com/thermogain/thermogain/internal/project"
	"github.com/thermogain/thermogain/pkg/climate"
	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/costs"
	"github.com/thermogain/thermogain/pkg/efficiency"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/energyprice"
	"github.com/thermogain/thermogain/pkg/heatpump"
	"github.com/thermogain/thermogain/pkg/loans"
	"github.com/thermogain/thermogain/pkg/mathutil"
	"go.uber.org/zap"
)

// ModelProvider supplies the price evolution model of an energy type. It must
// return an error rather than a guessed model when none is available.
type ModelProvider interface {
	Get(e energy.Type) (energyprice.Model, error)
}

// Options tunes an Engine. Zero values select the built-in defaults.
type Options struct {
	FallbackCOP        float64
	GasSubscription    float64
	DHWNeedPerOccupant float64
	Defaults           project.Defaults
}

// DefaultOptions returns the built-in engine options.
func DefaultOptions() Options {
	return Options{
		FallbackCOP:        constants.FallbackCOP,
		GasSubscription:    constants.DefaultGasSubscription,
		DHWNeedPerOccupant: constants.DefaultDHWNeedPerOccupant,
		Defaults:           project.DefaultDefaults(),
	}
}

// Engine runs projections. It holds no per-calculation state and can be used
// concurrently.
type Engine struct {
	logger   *zap.Logger
	models   ModelProvider
	resolver *climate.Resolver
	cop      *heatpump.Calculator
	costs    *costs.Calculator
	loans    *loans.AmortizationScheduleGenerator
	options  Options
}

// NewEngine creates a projection engine reading price models from models.
func NewEngine(logger *zap.Logger, models ModelProvider, options Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultOptions()
	if options.FallbackCOP <= 0 {
		options.FallbackCOP = defaults.FallbackCOP
	}
	if options.GasSubscription <= 0 {
		options.GasSubscription = defaults.GasSubscription
	}
	if options.DHWNeedPerOccupant <= 0 {
		options.DHWNeedPerOccupant = defaults.DHWNeedPerOccupant
	}
	if options.Defaults == (project.Defaults{}) {
		options.Defaults = defaults.Defaults
	}

	resolver := climate.NewResolver(logger)
	return &Engine{
		logger:   logger,
		models:   models,
		resolver: resolver,
		cop:      heatpump.NewCalculator(resolver, logger, options.FallbackCOP),
		costs:    costs.NewCalculator(logger, options.GasSubscription),
		loans:    loans.NewAmortizationScheduleGenerator(logger),
		options:  options,
	}
}

// Calculate runs the projection of a snapshot starting in the current year.
func (e *Engine) Calculate(snapshot project.Snapshot) (*Results, error) {
	return e.CalculateWithFixedTime(snapshot, time.Now())
}

// CalculateWithFixedTime runs the projection with an injectable clock. The
// first projected year is now's calendar year.
func (e *Engine) CalculateWithFixedTime(snapshot project.Snapshot, now time.Time) (*Results, error) {
	s, err := snapshot.Normalize(e.options.Defaults)
	if err != nil {
		return nil, err
	}
	hp, err := s.RequireHeatPump()
	if err != nil {
		return nil, err
	}

	electricityModel, err := e.model(energy.Electricity)
	if err != nil {
		return nil, err
	}

	heating := s.CurrentHeating.Type
	var currentModel energyprice.Model
	if fuel, ok := heating.Energy(); ok {
		currentModel, err = e.model(fuel)
		if err != nil {
			return nil, err
		}
	} else {
		e.logger.Warn("unknown heating type, current energy cost will not escalate",
			zap.String("op", "projection.Calculate"),
			zap.String("projectId", s.ProjectID),
			zap.String("heating", string(heating)),
		)
	}

	zoneInfo := e.resolver.GetClimateInfo(s.Housing.PostalCode)
	boilerEfficiency := efficiency.CalculateBoilerEfficiency(heating, s.CurrentHeating.InstallationAge, s.CurrentHeating.Condition)
	consumption := e.currentConsumption(s)

	currentPrice := s.CurrentHeating.Price
	if currentPrice == 0 && heating.Valid() && heating.Unit() == energy.UnitKWh && currentModel.CurrentPrice > 0 {
		currentPrice = currentModel.CurrentPrice
		e.logger.Info("no current energy price declared, using the market price",
			zap.String("op", "projection.Calculate"),
			zap.String("projectId", s.ProjectID),
			zap.Float64("price", currentPrice),
		)
	}
	electricityPrice := hp.ElectricityPrice
	if electricityPrice == 0 && electricityModel.CurrentPrice > 0 {
		electricityPrice = electricityModel.CurrentPrice
		e.logger.Info("no electricity price declared, using the market price",
			zap.String("op", "projection.Calculate"),
			zap.String("projectId", s.ProjectID),
			zap.Float64("price", electricityPrice),
		)
	}

	heatDemand := costs.HeatDemand(consumption, heating, boilerEfficiency)
	// The reported COP is the divisor applied, fallback included.
	spaceCOP := e.cop.EffectiveCOP(e.cop.CalculateAdjustedCOP(hp.NominalCOP, hp.OutletTemperature, hp.Emitter, s.Housing.PostalCode, hp.Type))
	dhwDemand, dhwCOP := e.hotWater(s, hp, heatDemand)
	hpConsumption := e.cop.AnnualConsumption(heatDemand-dhwDemand, spaceCOP)
	if dhwDemand > 0 {
		hpConsumption += e.cop.AnnualConsumption(dhwDemand, dhwCOP)
	}

	currentSystem := costs.CurrentSystem{
		Heating:            heating,
		Consumption:        consumption,
		Price:              currentPrice,
		SubscribedPowerKVA: s.CurrentHeating.SubscribedPowerKVA,
		Maintenance:        s.CurrentHeating.Maintenance,
	}
	heatPumpSystem := costs.HeatPump{
		SubscribedPowerKVA: hp.SubscribedPowerKVA,
		ExistingPowerKVA:   s.CurrentHeating.SubscribedPowerKVA,
		Maintenance:        hp.Maintenance,
		ElectricityPrice:   electricityPrice,
		AnnualConsumption:  hpConsumption,
	}
	basis := CostBasis{
		CurrentVariable:  e.costs.CurrentVariableCost(currentSystem),
		CurrentFixed:     e.costs.CurrentFixedCost(currentSystem),
		HeatPumpVariable: costs.HeatPumpVariableCost(heatPumpSystem),
		HeatPumpFixed:    e.costs.HeatPumpFixedCost(heatPumpSystem),
		CurrentModel:     currentModel,
		ElectricityModel: electricityModel,
	}

	financing := loans.Evaluate(loans.Financing{
		Mode:           s.Financing.Mode,
		TotalCost:      s.Costs.Total,
		Subsidies:      s.Costs.Subsidies,
		DownPayment:    s.Financing.DownPayment,
		LoanAmount:     s.Financing.LoanAmount,
		InterestRate:   s.Financing.InterestRate,
		DurationMonths: s.Financing.DurationMonths,
	})
	var loanSchedule []loans.YearlyPayment
	if s.Financing.Mode.UsesLoan() && financing.LoanAmount > 0 {
		schedule, err := e.loans.GenerateSchedule(loans.Loan{
			Principal:    financing.LoanAmount,
			InterestRate: s.Financing.InterestRate,
			Term:         s.Financing.DurationMonths,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate loan schedule: %w", err)
		}
		loanSchedule = loans.YearlySchedule(schedule)
	}

	startYear := now.Year()
	yearly := CalculateYearlyData(basis, hp.LifetimeYears, startYear)
	payback := CalculatePayback(yearly, financing.ActualInvestment)
	totals := CalculateTotals(yearly, financing.ActualInvestment)

	results := &Results{
		ProjectID:           s.ProjectID,
		CalculatedAt:        now.UTC(),
		PaybackPeriod:       payback,
		PaybackYear:         PaybackYear(startYear, payback),
		Totals:              totals,
		MonthlyPayment:      financing.MonthlyPayment,
		TotalCreditCost:     financing.TotalCreditCost,
		ActualInvestment:    financing.ActualInvestment,
		YearlyData:          yearly,
		HeatPumpConsumption: mathutil.Round(hpConsumption),
		LoanSchedule:        loanSchedule,
		Details: Details{
			ClimateZone:          zoneInfo.Zone,
			BoilerEfficiency:     mathutil.RoundTo(boilerEfficiency, 4),
			CurrentConsumption:   mathutil.Round(consumption),
			CurrentUnit:          heating.Unit(),
			HeatDemand:           mathutil.Round(heatDemand),
			HotWaterDemand:       mathutil.Round(dhwDemand),
			AdjustedCOP:          spaceCOP,
			HotWaterCOP:          dhwCOP,
			CurrentVariableCost:  mathutil.Round(basis.CurrentVariable),
			CurrentFixedCost:     mathutil.Round(basis.CurrentFixed),
			HeatPumpVariableCost: mathutil.Round(basis.HeatPumpVariable),
			HeatPumpFixedCost:    mathutil.Round(basis.HeatPumpFixed),
			CurrentModel:         currentModel,
			ElectricityModel:     electricityModel,
		},
	}
	if len(yearly) > 0 {
		first := yearly[0]
		results.CurrentCostYear1 = first.CurrentCost
		results.HeatPumpCostYear1 = first.HeatPumpCost
		results.SavingsYear1 = first.Savings
		results.MonthlyCurrentCost = mathutil.Round(first.CurrentCost / constants.MonthsPerYear)
		results.MonthlyHeatPumpCost = mathutil.Round(first.HeatPumpCost / constants.MonthsPerYear)
		results.MonthlySavings = mathutil.Round(first.Savings / constants.MonthsPerYear)
	}

	e.logger.Debug("projection calculated",
		zap.String("op", "projection.Calculate"),
		zap.String("projectId", s.ProjectID),
		zap.Float64("savingsYear1", results.SavingsYear1),
		zap.Float64("netBenefit", totals.NetBenefit),
		zap.Bool("paybackReached", payback != nil),
	)
	return results, nil
}

func (e *Engine) model(fuel energy.Type) (energyprice.Model, error) {
	if e.models == nil {
		return energyprice.Model{}, fmt.Errorf("no energy model provider configured for %s", fuel)
	}
	model, err := e.models.Get(fuel)
	if err != nil {
		return energyprice.Model{}, fmt.Errorf("failed to get energy model for %s: %w", fuel, err)
	}
	return model, nil
}

// currentConsumption returns the yearly consumption of the current system in
// its native unit. Missing consumption is estimated from the home; estimated
// consumption is corrected for the real efficiency of the installation; bill
// figures are used as-is.
func (e *Engine) currentConsumption(s project.Snapshot) float64 {
	heating := s.CurrentHeating.Type
	consumption := s.CurrentHeating.Consumption
	estimated := s.CurrentHeating.ConsumptionEstimated

	if consumption == 0 && heating.Valid() {
		home := costs.Home{
			Surface:           s.Housing.Surface,
			ConstructionYear:  s.Housing.ConstructionYear,
			Insulation:        s.Housing.Insulation,
			ClimateAdjustment: e.resolver.GetConsumptionAdjustment(s.Housing.PostalCode),
		}
		consumption = costs.EstimateConsumption(home, heating, efficiency.ReferenceEfficiency(heating))
		estimated = true
		e.logger.Debug("estimated current consumption from housing data",
			zap.String("op", "projection.currentConsumption"),
			zap.String("projectId", s.ProjectID),
			zap.Float64("consumption", consumption),
			zap.String("unit", string(heating.Unit())),
		)
	}

	if !estimated {
		return consumption
	}
	adjustment := efficiency.AdjustConsumptionForEfficiency(consumption, heating, s.CurrentHeating.InstallationAge, s.CurrentHeating.Condition)
	return adjustment.AdjustedConsumption
}

// hotWater returns the part of the heat demand spent on domestic hot water
// when the heat pump produces it, and the COP it is produced at.
func (e *Engine) hotWater(s project.Snapshot, hp *project.HeatPump, heatDemand float64) (float64, float64) {
	if !hp.HandlesDHW {
		return 0, 0
	}
	if hp.Type == energy.AirAir {
		e.logger.Warn("an Air/Air heat pump cannot produce hot water, ignoring the flag",
			zap.String("op", "projection.hotWater"),
			zap.String("projectId", s.ProjectID),
		)
		return 0, 0
	}

	need := float64(s.Housing.Occupants) * e.options.DHWNeedPerOccupant
	demand := math.Min(need, heatDemand*constants.MaxDHWShare)
	cop := e.cop.CalculateAdjustedCOP(hp.NominalCOP, constants.DHWOutletTemperature, energy.EmitterUnderfloor, s.Housing.PostalCode, hp.Type)
	return demand, e.cop.EffectiveCOP(cop)
}
