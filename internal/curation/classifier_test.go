package curation

import (
	"reflect"
	"testing"
)

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	profile, err := DefaultProfile()
	if err != nil {
		t.Fatalf("loading default profile: %v", err)
	}
	c, err := NewClassifier(profile.TechAreas)
	if err != nil {
		t.Fatalf("building classifier: %v", err)
	}
	return c
}

func TestClassify(t *testing.T) {
	c := defaultClassifier(t)

	tests := []struct {
		name     string
		opp      Opportunity
		expected []string
	}{
		{
			name: "single area",
			opp: Opportunity{
				Title:           "Zero trust encryption platform",
				Summary:         "Protective monitoring for classified networks.",
				ContractingBody: "Dstl",
			},
			expected: []string{"Cybersecurity"},
		},
		{
			name: "multiple non-exclusive areas",
			opp: Opportunity{
				Title:           "Autonomous uncrewed submarine sonar survey",
				ContractingBody: "Royal Navy",
			},
			expected: []string{"AI & Autonomy", "Uncrewed Systems", "Sensors & Electronic Warfare", "Maritime"},
		},
		{
			name: "no area clears threshold",
			opp: Opportunity{
				Title:           "General logistics support contract",
				ContractingBody: "Supply Ltd",
			},
			expected: []string{DefaultTechTag},
		},
		{
			name: "repeated mentions accumulate",
			opp: Opportunity{
				Title:           "Drone detection trial",
				Summary:         "Counter-drone sensors for airfield protection.",
				ContractingBody: "Ministry of Defence",
			},
			expected: []string{"Uncrewed Systems"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.opp)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected tags %v, got %v", tt.expected, got)
			}
		})
	}
}
