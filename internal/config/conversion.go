package config

import (
	"fmt"
	"time"

	"github.com/thermogain/thermogain/internal/project"
	"github.com/thermogain/thermogain/internal/projection"
	"github.com/thermogain/thermogain/pkg/datetime"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/energyprice"
)

// ModelConfig seeds an energy price model directly, for deployments without
// price history.
type ModelConfig struct {
	Energy          string  `yaml:"energy" mapstructure:"energy"`
	RecentRate      float64 `yaml:"recentRate" mapstructure:"recentRate"`
	EquilibriumRate float64 `yaml:"equilibriumRate" mapstructure:"equilibriumRate"`
	TransitionYears int     `yaml:"transitionYears,omitempty" mapstructure:"transitionYears"`
	CurrentPrice    float64 `yaml:"currentPrice,omitempty" mapstructure:"currentPrice"`
	UpdatedAt       string  `yaml:"updatedAt,omitempty" mapstructure:"updatedAt"`
}

// ToModel converts the configuration entry to an energy price model.
func (m *ModelConfig) ToModel() (energyprice.Model, error) {
	e, ok := energy.ParseType(m.Energy)
	if !ok {
		return energyprice.Model{}, fmt.Errorf("unknown energy type %q", m.Energy)
	}
	model := energyprice.Model{
		Energy:          e,
		RecentRate:      m.RecentRate,
		EquilibriumRate: m.EquilibriumRate,
		TransitionYears: m.TransitionYears,
		CurrentPrice:    m.CurrentPrice,
	}
	if err := model.Validate(); err != nil {
		return energyprice.Model{}, err
	}
	return model, nil
}

// UpdatedTime returns the month the seeded model was computed, or fallback
// when unset.
func (m *ModelConfig) UpdatedTime(fallback time.Time) (time.Time, error) {
	if m.UpdatedAt == "" {
		return fallback, nil
	}
	t, err := datetime.ParsePeriod(m.UpdatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("energy model %s: %w", m.Energy, err)
	}
	return t, nil
}

// ToOptions converts the engine configuration to projection engine options.
func (e *EngineConfig) ToOptions() projection.Options {
	e.Normalize()
	return projection.Options{
		FallbackCOP:        e.FallbackCOP,
		GasSubscription:    e.GasSubscription,
		DHWNeedPerOccupant: e.DHWNeedPerOccupant,
		Defaults: project.Defaults{
			HeatPumpMaintenance: e.HeatPumpMaintenance,
			HeatPumpLifetime:    e.HeatPumpLifetime,
			SubscribedPowerKVA:  e.SubscribedPowerKVA,
			OutletTemperature:   e.OutletTemperature,
		},
	}
}

// ToParams converts the engine configuration to price history analysis
// parameters. Unknown energy names in StructuralRates are ignored; Validate
// reports them.
func (e *EngineConfig) ToParams() energyprice.Params {
	e.Normalize()
	rates := energyprice.DefaultStructuralRates()
	for name, rate := range e.StructuralRates {
		if t, ok := energy.ParseType(name); ok {
			rates[t] = rate
		}
	}
	return energyprice.Params{
		LongTermWeight:    *e.LongTermWeight,
		TheoreticalWeight: *e.TheoreticalWeight,
		CrisisThreshold:   e.CrisisThreshold,
		RecentWindowYears: e.RecentWindowYears,
		TransitionYears:   e.TransitionYears,
		StructuralRates:   rates,
	}
}
