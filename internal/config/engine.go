package config

import (
	"fmt"
	"sort"

	"github.com/thermogain/thermogain/internal/project"
	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/energy"
)

// EngineConfig holds the tunable constants of the projection engine and of
// the price history analysis. Weights are pointers so that an explicit 0 is
// distinguishable from unset.
type EngineConfig struct {
	LongTermWeight      *float64           `yaml:"longTermWeight,omitempty" mapstructure:"longTermWeight"`
	TheoreticalWeight   *float64           `yaml:"theoreticalWeight,omitempty" mapstructure:"theoreticalWeight"`
	CrisisThreshold     float64            `yaml:"crisisThreshold,omitempty" mapstructure:"crisisThreshold"`
	RecentWindowYears   int                `yaml:"recentWindowYears,omitempty" mapstructure:"recentWindowYears"`
	TransitionYears     int                `yaml:"transitionYears,omitempty" mapstructure:"transitionYears"`
	FreshnessDays       int                `yaml:"freshnessDays,omitempty" mapstructure:"freshnessDays"`
	FallbackCOP         float64            `yaml:"fallbackCOP,omitempty" mapstructure:"fallbackCOP"`
	GasSubscription     float64            `yaml:"gasSubscription,omitempty" mapstructure:"gasSubscription"`
	DHWNeedPerOccupant  float64            `yaml:"dhwNeedPerOccupant,omitempty" mapstructure:"dhwNeedPerOccupant"`
	HeatPumpMaintenance float64            `yaml:"defaultHeatPumpMaintenance,omitempty" mapstructure:"defaultHeatPumpMaintenance"`
	HeatPumpLifetime    int                `yaml:"defaultHeatPumpLifetime,omitempty" mapstructure:"defaultHeatPumpLifetime"`
	SubscribedPowerKVA  int                `yaml:"defaultSubscribedPowerKva,omitempty" mapstructure:"defaultSubscribedPowerKva"`
	OutletTemperature   float64            `yaml:"defaultOutletTemperature,omitempty" mapstructure:"defaultOutletTemperature"`
	StructuralRates     map[string]float64 `yaml:"structuralRates,omitempty" mapstructure:"structuralRates"`
}

func floatPtr(v float64) *float64 {
	return &v
}

// Normalize ensures defaults are applied before validation.
func (e *EngineConfig) Normalize() {
	if e == nil {
		return
	}
	if e.LongTermWeight == nil {
		e.LongTermWeight = floatPtr(constants.DefaultLongTermWeight)
	}
	if e.TheoreticalWeight == nil {
		e.TheoreticalWeight = floatPtr(constants.DefaultTheoreticalWeight)
	}
	if e.CrisisThreshold <= 0 {
		e.CrisisThreshold = constants.DefaultCrisisThreshold
	}
	if e.RecentWindowYears <= 0 {
		e.RecentWindowYears = constants.DefaultRecentWindowYears
	}
	if e.TransitionYears <= 0 {
		e.TransitionYears = constants.DefaultTransitionYears
	}
	if e.FreshnessDays <= 0 {
		e.FreshnessDays = constants.DefaultFreshnessDays
	}
	if e.FallbackCOP <= 0 {
		e.FallbackCOP = constants.FallbackCOP
	}
	if e.GasSubscription <= 0 {
		e.GasSubscription = constants.DefaultGasSubscription
	}
	if e.DHWNeedPerOccupant <= 0 {
		e.DHWNeedPerOccupant = constants.DefaultDHWNeedPerOccupant
	}
	if e.HeatPumpMaintenance <= 0 {
		e.HeatPumpMaintenance = constants.DefaultHeatPumpMaintenance
	}
	if e.HeatPumpLifetime <= 0 {
		e.HeatPumpLifetime = constants.DefaultHeatPumpLifetime
	}
	if e.SubscribedPowerKVA <= 0 {
		e.SubscribedPowerKVA = constants.DefaultSubscribedPowerKVA
	}
	if e.OutletTemperature <= 0 {
		e.OutletTemperature = project.DefaultOutletTemperature
	}
}

// Validate returns an error when the engine configuration is unusable.
func (e *EngineConfig) Validate() error {
	if e == nil {
		return fmt.Errorf("engine configuration cannot be nil")
	}

	e.Normalize()

	if *e.LongTermWeight < 0 || *e.LongTermWeight > 1 {
		return fmt.Errorf("longTermWeight %.2f must be between 0 and 1", *e.LongTermWeight)
	}
	if *e.TheoreticalWeight < 0 || *e.TheoreticalWeight > 1 {
		return fmt.Errorf("theoreticalWeight %.2f must be between 0 and 1", *e.TheoreticalWeight)
	}
	if e.HeatPumpLifetime > constants.MaxHeatPumpLifetime {
		return fmt.Errorf("defaultHeatPumpLifetime %d is not plausible", e.HeatPumpLifetime)
	}

	names := make([]string, 0, len(e.StructuralRates))
	for name := range e.StructuralRates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := energy.ParseType(name); !ok {
			return fmt.Errorf("structuralRates: unknown energy type %q", name)
		}
		if e.StructuralRates[name] <= -100 {
			return fmt.Errorf("structuralRates: rate for %s must be above -100%%", name)
		}
	}
	return nil
}
