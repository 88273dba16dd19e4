package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thermogain/thermogain/pkg/constants"
	"github.com/thermogain/thermogain/pkg/energy"
)

const sampleConfig = `
startDate: "2025-01"
logging:
  level: debug
  format: console
output:
  format: csv
engine:
  longTermWeight: 0
  crisisThreshold: 12
  structuralRates:
    gaz: 2.8
priceHistory:
  file: prices.yaml
  timeout: 5s
energyModels:
  - energy: electricite
    recentRate: 4.8
    equilibriumRate: 3.1
    currentPrice: 0.25
    updatedAt: "2025-01"
projects:
  - projectId: paris
    name: Maison Paris
    housing:
      surface: 100
      constructionYear: 1990
      insulation: Moyenne
      occupants: 3
      postalCode: "75015"
    currentHeating:
      type: Gaz
      price: 0.10
      subscribedPowerKva: 6
      maintenance: 150
      installationAge: 15
      condition: Moyen
    heatPump:
      type: Air/Eau
      nominalCop: 4
      subscribedPowerKva: 9
      emitter: Radiateurs basse température
      maintenance: 120
      electricityPrice: 0.25
      handlesDhw: true
    costs:
      total: 15000
      subsidies: 3000
    financing:
      mode: Comptant
    breakeven:
      - field: Investment
        targetYears: 10
        min: 5000
        max: 30000
  - name: Skipped
    skip: true
`

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if len(conf.Projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(conf.Projects))
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if conf.Logging.Level != "debug" || conf.Output.Format != constants.OutputFormatCSV {
		t.Errorf("unexpected logging/output: %+v %+v", conf.Logging, conf.Output)
	}
	if conf.PriceHistory.File != "prices.yaml" || conf.PriceHistory.Timeout != 5*time.Second {
		t.Errorf("unexpected price history: %+v", conf.PriceHistory)
	}

	if conf.Engine.LongTermWeight == nil || *conf.Engine.LongTermWeight != 0 {
		t.Errorf("explicit zero longTermWeight lost: %v", conf.Engine.LongTermWeight)
	}
	if *conf.Engine.TheoreticalWeight != constants.DefaultTheoreticalWeight {
		t.Errorf("theoreticalWeight default not applied")
	}
	if conf.Engine.CrisisThreshold != 12 {
		t.Errorf("crisisThreshold = %v, want 12", conf.Engine.CrisisThreshold)
	}

	p := conf.Projects[0]
	if p.ProjectID != "paris" || p.Name != "Maison Paris" {
		t.Errorf("unexpected project identity: %q %q", p.ProjectID, p.Name)
	}
	if p.Housing.PostalCode != "75015" || p.Housing.Surface != 100 || p.Housing.Occupants != 3 {
		t.Errorf("unexpected housing: %+v", p.Housing)
	}
	if p.CurrentHeating.Type != energy.HeatingType("Gaz") || p.CurrentHeating.SubscribedPowerKVA != 6 {
		t.Errorf("unexpected current heating: %+v", p.CurrentHeating)
	}
	if p.HeatPump == nil {
		t.Fatalf("heat pump not decoded")
	}
	if p.HeatPump.NominalCOP != 4 || !p.HeatPump.HandlesDHW || p.HeatPump.SubscribedPowerKVA != 9 {
		t.Errorf("unexpected heat pump: %+v", *p.HeatPump)
	}
	if math.Abs(p.Costs.Subsidies-3000) > 0.001 {
		t.Errorf("subsidies = %v, want 3000", p.Costs.Subsidies)
	}
	if len(p.Breakeven) != 1 || p.Breakeven[0].Field != BreakevenFieldInvestment {
		t.Fatalf("breakeven not normalized: %+v", p.Breakeven)
	}
	if p.Breakeven[0].Tolerance != defaultToleranceInvestment {
		t.Errorf("breakeven tolerance default not applied")
	}

	active := conf.ActiveProjects()
	if len(active) != 1 || active[0].ProjectID != "paris" {
		t.Errorf("unexpected active projects: %+v", active)
	}

	fixed, err := conf.FixedTime(time.Now())
	if err != nil {
		t.Fatalf("FixedTime() error = %v", err)
	}
	if fixed.Year() != 2025 || fixed.Month() != time.January {
		t.Errorf("FixedTime() = %v", fixed)
	}

	warnings, err := conf.ValidateConfiguration()
	if err != nil {
		t.Fatalf("ValidateConfiguration() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	conf := Configuration{
		Projects: []Project{
			{},
			{Skip: true},
		},
	}
	conf.Projects[0].ProjectID = "a"

	warnings, err := conf.ValidateConfiguration()
	if err != nil {
		t.Fatalf("ValidateConfiguration() error = %v", err)
	}

	expected := []string{"no price history", "no heat pump", "no postal code"}
	for _, snippet := range expected {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, snippet) {
				found = true
			}
		}
		if !found {
			t.Errorf("expected warning containing %q, got %v", snippet, warnings)
		}
	}

	empty := Configuration{}
	warnings, err = empty.ValidateConfiguration()
	if err != nil {
		t.Fatalf("ValidateConfiguration() error = %v", err)
	}
	if !strings.Contains(strings.Join(warnings, ";"), "no active projects") {
		t.Errorf("expected no active projects warning, got %v", warnings)
	}
}

func TestValidateConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		conf Configuration
	}{
		{"Bad start date", Configuration{StartDate: "someday"}},
		{"Bad weight", Configuration{Engine: EngineConfig{LongTermWeight: floatPtr(1.5)}}},
		{"Bad seeded model", Configuration{EnergyModels: []ModelConfig{{Energy: "charbon"}}}},
		{"Bad breakeven", Configuration{Projects: []Project{{Breakeven: []BreakevenConfig{{Field: "occupants"}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.conf.ValidateConfiguration(); err == nil {
				t.Errorf("ValidateConfiguration() expected error but got none")
			}
		})
	}
}

func TestFixedTimeDefaultsToNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	conf := Configuration{}
	got, err := conf.FixedTime(now)
	if err != nil || !got.Equal(now) {
		t.Errorf("FixedTime() = %v, %v", got, err)
	}
}
