package config

import (
	"fmt"
	"strings"
)

const (
	BreakevenFieldInvestment       = "investment"
	BreakevenFieldElectricityPrice = "electricityPrice"

	defaultToleranceInvestment = 1.0
	defaultTolerancePrice      = 0.0001
	defaultMaxIterations       = 50
)

// BreakevenConfig defines a single-field break-even search: the largest value
// of Field for which the project still pays back within TargetYears.
type BreakevenConfig struct {
	Field         string   `json:"field,omitempty" yaml:"field,omitempty" mapstructure:"field"`
	TargetYears   float64  `json:"targetYears,omitempty" yaml:"targetYears,omitempty" mapstructure:"targetYears"`
	Min           *float64 `json:"min,omitempty" yaml:"min,omitempty" mapstructure:"min"`
	Max           *float64 `json:"max,omitempty" yaml:"max,omitempty" mapstructure:"max"`
	Tolerance     float64  `json:"tolerance,omitempty" yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `json:"maxIterations,omitempty" yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// CanonicalBreakevenField returns the canonical identifier for a break-even field.
func CanonicalBreakevenField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return BreakevenFieldInvestment
	}
	switch strings.ToLower(trimmed) {
	case "investment", "total", "cost", "costs.total":
		return BreakevenFieldInvestment
	case "electricityprice", "electricity_price", "electricity-price", "prix_electricite":
		return BreakevenFieldElectricityPrice
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (b *BreakevenConfig) Normalize() {
	if b == nil {
		return
	}
	b.Field = CanonicalBreakevenField(b.Field)

	switch b.Field {
	case BreakevenFieldElectricityPrice:
		if b.Tolerance <= 0 {
			b.Tolerance = defaultTolerancePrice
		}
	default:
		if b.Tolerance <= 0 {
			b.Tolerance = defaultToleranceInvestment
		}
	}
	if b.MaxIterations <= 0 {
		b.MaxIterations = defaultMaxIterations
	}
}

// Validate returns an error when the break-even configuration is unsupported.
// An unset TargetYears means the heat pump lifetime.
func (b *BreakevenConfig) Validate() error {
	if b == nil {
		return fmt.Errorf("breakeven configuration cannot be nil")
	}

	b.Normalize()

	switch b.Field {
	case BreakevenFieldInvestment, BreakevenFieldElectricityPrice:
		// supported fields
	default:
		return fmt.Errorf("breakeven field %q is not supported", b.Field)
	}
	if b.TargetYears < 0 {
		return fmt.Errorf("breakeven target %.1f years must not be negative", b.TargetYears)
	}
	if b.Min == nil {
		return fmt.Errorf("breakeven requires a minimum bound")
	}
	if b.Max == nil {
		return fmt.Errorf("breakeven requires a maximum bound")
	}
	if *b.Min < 0 {
		return fmt.Errorf("breakeven minimum %.2f must not be negative", *b.Min)
	}
	if b.Field == BreakevenFieldElectricityPrice && *b.Min <= 0 {
		return fmt.Errorf("breakeven electricity price minimum must be positive")
	}
	if *b.Min >= *b.Max {
		return fmt.Errorf("breakeven minimum %.2f must be less than maximum %.2f", *b.Min, *b.Max)
	}
	return nil
}
