package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Loan payment", 10000.0 / 24.0, 416.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		decimals int
		expected float64
	}{
		{"One decimal", 3.46, 1, 3.5},
		{"Zero decimals", 2.5, 0, 3},
		{"Two decimals", 3.14159, 2, 3.14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundTo(tt.input, tt.decimals)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("RoundTo(%v, %d) = %v, expected %v", tt.input, tt.decimals, result, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, 0, 1); got != 1 {
		t.Errorf("Clamp above range = %v, expected 1", got)
	}
	if got := Clamp(-1, 0, 1); got != 0 {
		t.Errorf("Clamp below range = %v, expected 0", got)
	}
	if got := Clamp(0.4, 0, 1); got != 0.4 {
		t.Errorf("Clamp inside range = %v, expected 0.4", got)
	}
}

func TestCAGR(t *testing.T) {
	tests := []struct {
		name     string
		first    float64
		last     float64
		years    int
		expected float64
	}{
		{"Doubling over one year", 1, 2, 1, 100},
		{"Flat", 5, 5, 10, 0},
		{"Ten percent over two years", 100, 121, 2, 10},
		{"Zero years", 1, 2, 0, 0},
		{"Non-positive start", 0, 2, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CAGR(tt.first, tt.last, tt.years)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("CAGR() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestSumAndPercent(t *testing.T) {
	if got := Sum([]float64{1, 2, 3.5}); got != 6.5 {
		t.Errorf("Sum() = %v, expected 6.5", got)
	}
	if got := PercentToRatio(5); math.Abs(got-0.05) > 1e-12 {
		t.Errorf("PercentToRatio(5) = %v, expected 0.05", got)
	}
}
