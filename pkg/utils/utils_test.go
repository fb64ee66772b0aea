package utils

import (
	"math"
	"testing"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"aapl", "AAPL"},
		{" ko ", "KO"},
		{"$PG", "PG"},
		{"apple", "AAPL"},
		{"Coca-Cola", "KO"},
		{"brk.b", "BRK-B"},
		{"UNKNOWNCO", "UNKNOWNCO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeTicker(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseTicker(t *testing.T) {
	valid := []string{"AAPL", "brk-b", "RELIANCE.NS", "^GSPC"}
	for _, v := range valid {
		if _, err := ParseTicker(v); err != nil {
			t.Errorf("ParseTicker(%q) unexpected error: %v", v, err)
		}
	}

	invalid := []string{"", "   ", "AA PL", "DROP;TABLE", "A/B"}
	for _, v := range invalid {
		if _, err := ParseTicker(v); err == nil {
			t.Errorf("ParseTicker(%q) expected error", v)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		want     string
	}{
		{1234.5, "USD", "$1,234.50"},
		{0, "", "$0.00"},
		{999.999, "USD", "$1,000.00"},
		{-1595.6946, "USD", "-$1,595.69"},
		{1234567.891, "EUR", "€1,234,567.89"},
		{12, "CHF", "CHF 12.00"},
		{math.NaN(), "USD", "n/a"},
		{math.Inf(1), "USD", "n/a"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.amount, tt.currency); got != tt.want {
			t.Errorf("FormatMoney(%v, %q) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{2.5e12, "2.50T"},
		{3.1e9, "3.10B"},
		{-4.2e6, "-4.20M"},
		{1500, "1.50K"},
		{12.345, "12.35"},
		{math.Inf(1), "n/a"},
		{math.NaN(), "n/a"},
	}
	for _, tt := range tests {
		if got := FormatCompact(tt.amount); got != tt.want {
			t.Errorf("FormatCompact(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatPct(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.3, "+30.00%"},
		{-0.125, "-12.50%"},
		{0, "0.00%"},
		{math.NaN(), "n/a"},
		{math.Inf(-1), "n/a"},
	}
	for _, tt := range tests {
		if got := FormatPct(tt.in); got != tt.want {
			t.Errorf("FormatPct(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRatio(t *testing.T) {
	v := 1.234
	if got := FormatRatio(&v); got != "1.23" {
		t.Errorf("FormatRatio = %q, want 1.23", got)
	}
	if got := FormatRatio(nil); got != "n/a" {
		t.Errorf("FormatRatio(nil) = %q, want n/a", got)
	}
}
