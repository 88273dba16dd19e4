// Package testutil provides common fixtures for testing.
package testutil

import (
	"fmt"

	"github.com/thermogain/thermogain/internal/project"
	"github.com/thermogain/thermogain/pkg/energy"
	"github.com/thermogain/thermogain/pkg/energyprice"
)

// ReferenceProjectID identifies the reference scenario.
const ReferenceProjectID = "reference-paris"

// ReferenceSnapshot returns the reference scenario: a 100 m² home built in
// 1980 with average insulation in Paris, heated by a 15 year old gas boiler in
// average condition, replaced by an Air/Eau heat pump with a nominal COP of 4
// at 45°C on low temperature radiators, paid 15000 in cash.
func ReferenceSnapshot() project.Snapshot {
	return project.Snapshot{
		ProjectID: ReferenceProjectID,
		Name:      "Paris gas boiler replacement",
		Housing: project.Housing{
			Surface:          100,
			ConstructionYear: 1980,
			Insulation:       energy.InsulationAverage,
			Occupants:        3,
			PostalCode:       "75001",
		},
		CurrentHeating: project.CurrentHeating{
			Type:               energy.HeatingGas,
			Price:              0.10,
			SubscribedPowerKVA: 6,
			Maintenance:        150,
			InstallationAge:    15,
			Condition:          energy.ConditionAverage,
		},
		HeatPump: &project.HeatPump{
			Type:               energy.AirWater,
			NominalCOP:         4.0,
			RatedPowerKW:       8,
			SubscribedPowerKVA: 9,
			Emitter:            energy.EmitterLowTempRadiator,
			OutletTemperature:  45,
			Maintenance:        120,
			LifetimeYears:      17,
			ElectricityPrice:   0.25,
		},
		Costs: project.Costs{
			Equipment:    10000,
			Installation: 4000,
			Ancillary:    1000,
			Total:        15000,
		},
		Financing: project.Financing{Mode: energy.FinancingCash},
	}
}

// ReferenceModels returns one price evolution model per energy type.
func ReferenceModels() StaticModels {
	return StaticModels{
		energy.Gas:         {Energy: energy.Gas, RecentRate: 6.5, EquilibriumRate: 3.0, TransitionYears: 5, CurrentPrice: 0.11},
		energy.Electricity: {Energy: energy.Electricity, RecentRate: 4.8, EquilibriumRate: 3.1, TransitionYears: 5, CurrentPrice: 0.25},
		energy.FuelOil:     {Energy: energy.FuelOil, RecentRate: 5.2, EquilibriumRate: 3.4, TransitionYears: 5, CurrentPrice: 1.15},
		energy.Wood:        {Energy: energy.Wood, RecentRate: 3.0, EquilibriumRate: 2.5, TransitionYears: 5, CurrentPrice: 0.08},
	}
}

// StaticModels is a fixed set of price models.
type StaticModels map[energy.Type]energyprice.Model

// Get returns the model of an energy type or an error wrapping
// energyprice.ErrModelMissing.
func (m StaticModels) Get(e energy.Type) (energyprice.Model, error) {
	model, ok := m[e]
	if !ok {
		return energyprice.Model{}, fmt.Errorf("%w: %s", energyprice.ErrModelMissing, e)
	}
	return model, nil
}

// Without returns a copy of the models lacking the given energy types.
func (m StaticModels) Without(types ...energy.Type) StaticModels {
	out := make(StaticModels, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, t := range types {
		delete(out, t)
	}
	return out
}

// FindSnapshot finds a snapshot by project id.
// Returns a pointer to the snapshot if found, nil otherwise.
func FindSnapshot(snapshots []project.Snapshot, projectID string) *project.Snapshot {
	for i := range snapshots {
		if snapshots[i].ProjectID == projectID {
			return &snapshots[i]
		}
	}
	return nil
}
