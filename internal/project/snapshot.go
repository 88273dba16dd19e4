// Package project defines the flattened, read-only view of a heat pump project
// consumed by the projection engine, and the single normalization step that
// makes every numeric default explicit.
package project

import (
	"errors"
	"fmt"

	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/energy"
)

// ErrInvalidSnapshot is wrapped by every normalization failure.
var ErrInvalidSnapshot = errors.New("invalid project snapshot")

// DefaultOutletTemperature is the water outlet temperature assumed for a
// hydraulic heat pump when none is declared.
const DefaultOutletTemperature = 45.0

// Housing describes the home.
type Housing struct {
	Surface          float64           `json:"surface" yaml:"surface"`
	ConstructionYear int               `json:"constructionYear" yaml:"constructionYear"`
	Insulation       energy.Insulation `json:"insulation" yaml:"insulation"`
	Occupants        int               `json:"occupants" yaml:"occupants"`
	PostalCode       string            `json:"postalCode" yaml:"postalCode"`
}

// CurrentHeating describes the heating system being replaced. Consumption and
// Price are expressed in the native unit of Type.
type CurrentHeating struct {
	Type                 energy.HeatingType `json:"type" yaml:"type"`
	Consumption          float64            `json:"consumption" yaml:"consumption"`
	ConsumptionEstimated bool               `json:"consumptionEstimated" yaml:"consumptionEstimated"`
	Price                float64            `json:"price" yaml:"price"`
	SubscribedPowerKVA   int                `json:"subscribedPowerKva" yaml:"subscribedPowerKva"`
	Maintenance          float64            `json:"maintenance" yaml:"maintenance"`
	InstallationAge      float64            `json:"installationAge" yaml:"installationAge"`
	Condition            energy.Condition   `json:"condition" yaml:"condition"`
}

// HeatPump describes the projected heat pump.
type HeatPump struct {
	Type               energy.PACType     `json:"type" yaml:"type"`
	NominalCOP         float64            `json:"nominalCop" yaml:"nominalCop"`
	RatedPowerKW       float64            `json:"ratedPowerKw" yaml:"ratedPowerKw"`
	SubscribedPowerKVA int                `json:"subscribedPowerKva" yaml:"subscribedPowerKva"`
	Emitter            energy.EmitterType `json:"emitter" yaml:"emitter"`
	OutletTemperature  float64            `json:"outletTemperature" yaml:"outletTemperature"`
	Maintenance        float64            `json:"maintenance" yaml:"maintenance"`
	LifetimeYears      int                `json:"lifetimeYears" yaml:"lifetimeYears"`
	ElectricityPrice   float64            `json:"electricityPrice" yaml:"electricityPrice"`
	HandlesDHW         bool               `json:"handlesDhw" yaml:"handlesDhw"`
}

// Costs holds the installation quote.
type Costs struct {
	Equipment    float64 `json:"equipment" yaml:"equipment"`
	Installation float64 `json:"installation" yaml:"installation"`
	Ancillary    float64 `json:"ancillary" yaml:"ancillary"`
	Total        float64 `json:"total" yaml:"total"`
	Subsidies    float64 `json:"subsidies" yaml:"subsidies"`
}

// Financing holds how the installation is paid for.
type Financing struct {
	Mode           energy.FinancingMode `json:"mode" yaml:"mode"`
	DownPayment    float64              `json:"downPayment" yaml:"downPayment"`
	LoanAmount     float64              `json:"loanAmount" yaml:"loanAmount"`
	InterestRate   float64              `json:"interestRate" yaml:"interestRate"`
	DurationMonths int                  `json:"durationMonths" yaml:"durationMonths"`
}

// Snapshot is the calculation input of one project.
type Snapshot struct {
	ProjectID      string         `json:"projectId" yaml:"projectId"`
	Name           string         `json:"name" yaml:"name"`
	Housing        Housing        `json:"housing" yaml:"housing"`
	CurrentHeating CurrentHeating `json:"currentHeating" yaml:"currentHeating"`
	HeatPump       *HeatPump      `json:"heatPump,omitempty" yaml:"heatPump"`
	Costs          Costs          `json:"costs" yaml:"costs"`
	Financing      Financing      `json:"financing" yaml:"financing"`
}

// Defaults holds the values used to fill unset snapshot fields.
type Defaults struct {
	HeatPumpMaintenance float64
	HeatPumpLifetime    int
	SubscribedPowerKVA  int
	OutletTemperature   float64
}

// DefaultDefaults returns the built-in snapshot defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		HeatPumpMaintenance: constants.DefaultHeatPumpMaintenance,
		HeatPumpLifetime:    constants.DefaultHeatPumpLifetime,
		SubscribedPowerKVA:  constants.DefaultSubscribedPowerKVA,
		OutletTemperature:   DefaultOutletTemperature,
	}
}

func invalid(field, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSnapshot, field, fmt.Sprintf(format, args...))
}

// Normalize returns a copy of the snapshot with enumerations canonicalized and
// every unset default made explicit. The receiver is not modified.
//
// Unknown heating types are kept as-is: cost dispatch handles them. Unknown
// heat pump types and financing modes are rejected.
func (s Snapshot) Normalize(d Defaults) (Snapshot, error) {
	n := s
	if s.HeatPump != nil {
		hp := *s.HeatPump
		n.HeatPump = &hp
	}

	if err := n.checkNonNegative(); err != nil {
		return Snapshot{}, err
	}

	n.Housing.Insulation = energy.ParseInsulation(string(n.Housing.Insulation))

	if heating, ok := energy.ParseHeatingType(string(n.CurrentHeating.Type)); ok {
		n.CurrentHeating.Type = heating
	}
	n.CurrentHeating.Condition = energy.ParseCondition(string(n.CurrentHeating.Condition))
	if n.CurrentHeating.SubscribedPowerKVA == 0 {
		n.CurrentHeating.SubscribedPowerKVA = d.SubscribedPowerKVA
	}

	mode, ok := energy.ParseFinancingMode(string(n.Financing.Mode))
	if !ok {
		return Snapshot{}, invalid("financing.mode", "unknown financing mode %q", n.Financing.Mode)
	}
	n.Financing.Mode = mode
	if mode.UsesLoan() && n.Financing.DurationMonths <= 0 {
		return Snapshot{}, invalid("financing.durationMonths", "a loan needs a positive duration")
	}
	if n.Financing.DurationMonths > constants.MaxLoanDurationMonths {
		return Snapshot{}, invalid("financing.durationMonths", "%d months exceeds the maximum of %d",
			n.Financing.DurationMonths, constants.MaxLoanDurationMonths)
	}
	if !mode.UsesLoan() {
		n.Financing.DownPayment = 0
		n.Financing.LoanAmount = 0
		n.Financing.InterestRate = 0
		n.Financing.DurationMonths = 0
	}

	if n.Costs.Total == 0 {
		n.Costs.Total = n.Costs.Equipment + n.Costs.Installation + n.Costs.Ancillary
	}

	if n.HeatPump == nil {
		return n, nil
	}

	hp := n.HeatPump
	if hp.Type != "" {
		pacType, ok := energy.ParsePACType(string(hp.Type))
		if !ok {
			return Snapshot{}, invalid("heatPump.type", "unknown heat pump type %q", hp.Type)
		}
		hp.Type = pacType
	}
	hp.Emitter = energy.ParseEmitterType(string(hp.Emitter))
	if hp.Maintenance == 0 {
		hp.Maintenance = d.HeatPumpMaintenance
	}
	if hp.LifetimeYears == 0 {
		hp.LifetimeYears = d.HeatPumpLifetime
	}
	if hp.LifetimeYears > constants.MaxHeatPumpLifetime {
		return Snapshot{}, invalid("heatPump.lifetimeYears", "%d years exceeds the maximum of %d",
			hp.LifetimeYears, constants.MaxHeatPumpLifetime)
	}
	if hp.SubscribedPowerKVA == 0 {
		hp.SubscribedPowerKVA = n.CurrentHeating.SubscribedPowerKVA
	}
	if hp.OutletTemperature == 0 {
		hp.OutletTemperature = d.OutletTemperature
	}

	return n, nil
}

func (s Snapshot) checkNonNegative() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"housing.surface", s.Housing.Surface},
		{"housing.occupants", float64(s.Housing.Occupants)},
		{"currentHeating.consumption", s.CurrentHeating.Consumption},
		{"currentHeating.price", s.CurrentHeating.Price},
		{"currentHeating.subscribedPowerKva", float64(s.CurrentHeating.SubscribedPowerKVA)},
		{"currentHeating.maintenance", s.CurrentHeating.Maintenance},
		{"currentHeating.installationAge", s.CurrentHeating.InstallationAge},
		{"costs.equipment", s.Costs.Equipment},
		{"costs.installation", s.Costs.Installation},
		{"costs.ancillary", s.Costs.Ancillary},
		{"costs.total", s.Costs.Total},
		{"costs.subsidies", s.Costs.Subsidies},
		{"financing.downPayment", s.Financing.DownPayment},
		{"financing.loanAmount", s.Financing.LoanAmount},
		{"financing.interestRate", s.Financing.InterestRate},
		{"financing.durationMonths", float64(s.Financing.DurationMonths)},
	}
	if hp := s.HeatPump; hp != nil {
		fields = append(fields, []struct {
			name  string
			value float64
		}{
			{"heatPump.ratedPowerKw", hp.RatedPowerKW},
			{"heatPump.subscribedPowerKva", float64(hp.SubscribedPowerKVA)},
			{"heatPump.outletTemperature", hp.OutletTemperature},
			{"heatPump.maintenance", hp.Maintenance},
			{"heatPump.lifetimeYears", float64(hp.LifetimeYears)},
			{"heatPump.electricityPrice", hp.ElectricityPrice},
		}...)
	}

	for _, f := range fields {
		if f.value < 0 {
			return invalid(f.name, "must not be negative, got %v", f.value)
		}
	}
	return nil
}

// RequireHeatPump returns the heat pump of a snapshot or an error when the
// project has none.
func (s Snapshot) RequireHeatPump() (*HeatPump, error) {
	if s.HeatPump == nil {
		return nil, invalid("heatPump", "the project has no heat pump")
	}
	return s.HeatPump, nil
}
