package format

import "testing"

func TestEuro(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{0, "0,00 €"},
		{12.5, "12,50 €"},
		{1234.567, "1 234,57 €"},
		{-15000, "-15 000,00 €"},
		{1234567.891, "1 234 567,89 €"},
		{-0.001, "0,00 €"},
	}
	for _, tt := range tests {
		if got := Euro(tt.amount); got != tt.expected {
			t.Errorf("Euro(%v) = %q, want %q", tt.amount, got, tt.expected)
		}
	}
}

func TestNumericEuro(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{0, "0.00"},
		{1234.5, "1,234.50"},
		{-987654.321, "-987,654.32"},
	}
	for _, tt := range tests {
		if got := NumericEuro(tt.amount); got != tt.expected {
			t.Errorf("NumericEuro(%v) = %q, want %q", tt.amount, got, tt.expected)
		}
	}
}

func TestSmallFormats(t *testing.T) {
	if got := PricePerKWh(0.25); got != "0,2500 €/kWh" {
		t.Errorf("PricePerKWh() = %q", got)
	}
	if got := Percent(4.8); got != "4,80 %" {
		t.Errorf("Percent() = %q", got)
	}
	if got := Years(nil); got != "-" {
		t.Errorf("Years(nil) = %q", got)
	}
	v := 12.4
	if got := Years(&v); got != "12,4 ans" {
		t.Errorf("Years() = %q", got)
	}
}
