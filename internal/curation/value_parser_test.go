package curation

import (
	"math"
	"testing"
)

func TestParseValueEstimate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{name: "plain pounds with separators", input: "£400,000", expected: 400000, ok: true},
		{name: "k suffix", input: "400k", expected: 400000, ok: true},
		{name: "m suffix", input: "£1.2m", expected: 1200000, ok: true},
		{name: "million word", input: "£1.2 million", expected: 1200000, ok: true},
		{name: "billion suffix", input: "£2bn", expected: 2000000000, ok: true},
		{name: "range collapses to upper bound", input: "between £100k and £500k", expected: 500000, ok: true},
		{name: "upper bound phrasing", input: "Phase 1 worth up to £750,000", expected: 750000, ok: true},
		{name: "empty", input: "", ok: false},
		{name: "no numbers", input: "TBC", ok: false},
		{name: "small bare number is noise", input: "500", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseValueEstimate(tt.input)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v (value %.0f)", tt.ok, ok, got)
			}
			if ok && math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("expected %.0f, got %.0f", tt.expected, got)
			}
		})
	}
}

func TestFormatValueGBP(t *testing.T) {
	tests := []struct {
		name     string
		value    *float64
		expected string
	}{
		{name: "nil", value: nil, expected: "TBD"},
		{name: "zero", value: floatPtr(0), expected: "TBD"},
		{name: "hundreds", value: floatPtr(950), expected: "£950"},
		{name: "thousands", value: floatPtr(400000), expected: "£400,000"},
		{name: "millions", value: floatPtr(1234567), expected: "£1,234,567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValueGBP(tt.value); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
