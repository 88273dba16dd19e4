package project

import (
	"errors"
	"strings"
	"testing"

	"github.com/thermogain/thermogain/pkg/energy"
)

func baseSnapshot() Snapshot {
	return Snapshot{
		ProjectID: "p-1",
		Housing: Housing{
			Surface:          100,
			ConstructionYear: 1980,
			Insulation:       "moyenne",
			Occupants:        3,
			PostalCode:       "75001",
		},
		CurrentHeating: CurrentHeating{
			Type:            "gaz",
			Consumption:     15000,
			Price:           0.10,
			InstallationAge: 15,
			Condition:       "Moyen",
		},
		HeatPump: &HeatPump{
			Type:             "air/eau",
			NominalCOP:       4,
			Emitter:          "Radiateurs basse température",
			ElectricityPrice: 0.25,
		},
		Costs: Costs{Equipment: 10000, Installation: 4000, Ancillary: 1000},
	}
}

func TestNormalizeFillsDefaults(t *testing.T) {
	s := baseSnapshot()
	n, err := s.Normalize(DefaultDefaults())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if n.Housing.Insulation != energy.InsulationAverage {
		t.Errorf("Insulation = %q, expected %q", n.Housing.Insulation, energy.InsulationAverage)
	}
	if n.CurrentHeating.Type != energy.HeatingGas {
		t.Errorf("heating type = %q, expected %q", n.CurrentHeating.Type, energy.HeatingGas)
	}
	if n.CurrentHeating.SubscribedPowerKVA != 6 {
		t.Errorf("current subscribed power = %d, expected 6", n.CurrentHeating.SubscribedPowerKVA)
	}
	if n.Financing.Mode != energy.FinancingCash {
		t.Errorf("financing mode = %q, expected cash", n.Financing.Mode)
	}
	if n.Costs.Total != 15000 {
		t.Errorf("total cost = %v, expected 15000", n.Costs.Total)
	}

	hp := n.HeatPump
	if hp.Type != energy.AirWater {
		t.Errorf("heat pump type = %q, expected %q", hp.Type, energy.AirWater)
	}
	if hp.Emitter != energy.EmitterLowTempRadiator {
		t.Errorf("emitter = %q, expected %q", hp.Emitter, energy.EmitterLowTempRadiator)
	}
	if hp.Maintenance != 120 {
		t.Errorf("maintenance = %v, expected 120", hp.Maintenance)
	}
	if hp.LifetimeYears != 17 {
		t.Errorf("lifetime = %d, expected 17", hp.LifetimeYears)
	}
	if hp.SubscribedPowerKVA != 6 {
		t.Errorf("heat pump subscribed power = %d, expected current tier 6", hp.SubscribedPowerKVA)
	}
	if hp.OutletTemperature != DefaultOutletTemperature {
		t.Errorf("outlet temperature = %v, expected %v", hp.OutletTemperature, DefaultOutletTemperature)
	}
}

func TestNormalizeDoesNotModifyReceiver(t *testing.T) {
	s := baseSnapshot()
	if _, err := s.Normalize(DefaultDefaults()); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if s.HeatPump.Maintenance != 0 || s.HeatPump.Type != "air/eau" {
		t.Errorf("Normalize() modified the original heat pump: %+v", *s.HeatPump)
	}
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	s := baseSnapshot()
	s.Costs.Total = 14000
	s.HeatPump.Maintenance = 180
	s.HeatPump.LifetimeYears = 20
	s.HeatPump.SubscribedPowerKVA = 9
	s.CurrentHeating.SubscribedPowerKVA = 12

	n, err := s.Normalize(DefaultDefaults())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if n.Costs.Total != 14000 || n.HeatPump.Maintenance != 180 || n.HeatPump.LifetimeYears != 20 ||
		n.HeatPump.SubscribedPowerKVA != 9 || n.CurrentHeating.SubscribedPowerKVA != 12 {
		t.Errorf("Normalize() overrode explicit values: %+v %+v", n.Costs, *n.HeatPump)
	}
}

func TestNormalizeUnknownHeatingTypeKept(t *testing.T) {
	s := baseSnapshot()
	s.CurrentHeating.Type = "Charbon"
	n, err := s.Normalize(DefaultDefaults())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if n.CurrentHeating.Type != "Charbon" {
		t.Errorf("heating type = %q, expected it kept", n.CurrentHeating.Type)
	}
}

func TestNormalizeCashClearsLoanFields(t *testing.T) {
	s := baseSnapshot()
	s.Financing = Financing{Mode: "comptant", LoanAmount: 5000, DurationMonths: 60, InterestRate: 3}
	n, err := s.Normalize(DefaultDefaults())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if n.Financing.LoanAmount != 0 || n.Financing.DurationMonths != 0 || n.Financing.InterestRate != 0 {
		t.Errorf("cash financing kept loan fields: %+v", n.Financing)
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
		field  string
	}{
		{"Negative surface", func(s *Snapshot) { s.Housing.Surface = -1 }, "housing.surface"},
		{"Negative price", func(s *Snapshot) { s.CurrentHeating.Price = -0.1 }, "currentHeating.price"},
		{"Negative electricity price", func(s *Snapshot) { s.HeatPump.ElectricityPrice = -0.2 }, "heatPump.electricityPrice"},
		{"Unknown heat pump type", func(s *Snapshot) { s.HeatPump.Type = "Air/Sol" }, "heatPump.type"},
		{"Unknown financing mode", func(s *Snapshot) { s.Financing.Mode = "leasing" }, "financing.mode"},
		{"Loan without duration", func(s *Snapshot) { s.Financing.Mode = energy.FinancingCredit }, "financing.durationMonths"},
		{"Lifetime above bound", func(s *Snapshot) { s.HeatPump.LifetimeYears = 51 }, "heatPump.lifetimeYears"},
		{"Huge lifetime", func(s *Snapshot) { s.HeatPump.LifetimeYears = 1 << 60 }, "heatPump.lifetimeYears"},
		{"Loan duration above bound", func(s *Snapshot) {
			s.Financing = Financing{Mode: energy.FinancingCredit, LoanAmount: 10000, InterestRate: 3, DurationMonths: 601}
		}, "financing.durationMonths"},
		{"Huge loan duration", func(s *Snapshot) {
			s.Financing = Financing{Mode: energy.FinancingCredit, LoanAmount: 10000, InterestRate: 3, DurationMonths: 1 << 60}
		}, "financing.durationMonths"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseSnapshot()
			tt.mutate(&s)
			_, err := s.Normalize(DefaultDefaults())
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrInvalidSnapshot) {
				t.Errorf("error %v does not wrap ErrInvalidSnapshot", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name field %s", err, tt.field)
			}
		})
	}
}

func TestRequireHeatPump(t *testing.T) {
	s := baseSnapshot()
	if _, err := s.RequireHeatPump(); err != nil {
		t.Errorf("RequireHeatPump() error = %v", err)
	}
	s.HeatPump = nil
	if _, err := s.Normalize(DefaultDefaults()); err != nil {
		t.Errorf("Normalize() without a heat pump error = %v", err)
	}
	if _, err := s.RequireHeatPump(); !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("RequireHeatPump() error = %v, expected ErrInvalidSnapshot", err)
	}
}
