package curation

import (
	"reflect"
	"testing"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "strips tags", input: "<p>Radar <b>upgrade</b></p>", expected: "Radar upgrade"},
		{name: "collapses whitespace", input: "  Radar \n\n upgrade  ", expected: "Radar upgrade"},
		{name: "plain text untouched", input: "Radar upgrade", expected: "Radar upgrade"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLToText(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{name: "short untouched", input: "radar", maxLen: 10, expected: "radar"},
		{name: "long gets ellipsis", input: "radar upgrade programme", maxLen: 10, expected: "radar u..."},
		{name: "tiny max", input: "radar", maxLen: 3, expected: "rad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateText(tt.input, tt.maxLen); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTitleWordSet(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]struct{}
	}{
		{
			name:  "punctuation stripped",
			input: "Maritime Radar-Detection System!",
			expected: map[string]struct{}{
				"maritime": {}, "radar": {}, "detection": {}, "system": {},
			},
		},
		{
			name:  "stop words and plurals folded",
			input: "Advanced Radar Systems for the Royal Navy",
			expected: map[string]struct{}{
				"advanced": {}, "radar": {}, "system": {}, "royal": {}, "navy": {},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titleWordSet(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestMergeUniqueFold(t *testing.T) {
	got := mergeUniqueFold([]string{"DASA", "cyber"}, []string{"dasa", "Cyber", "radar", "", "radar"})
	expected := []string{"DASA", "cyber", "radar"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}
