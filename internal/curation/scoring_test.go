package curation

import (
	"math"
	"testing"
	"time"
)

func defaultScorer(t *testing.T) *Scorer {
	t.Helper()
	profile, err := DefaultProfile()
	if err != nil {
		t.Fatalf("loading default profile: %v", err)
	}
	s, err := NewScorer(profile.Scoring)
	if err != nil {
		t.Fatalf("building scorer: %v", err)
	}
	return s
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func TestSMEScore_ValueBands(t *testing.T) {
	s := defaultScorer(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	base := Opportunity{
		Title:           "Portable radar detection unit",
		ContractingBody: "Dstl",
		Deadline:        now.AddDate(0, 0, 90),
	}

	small := base
	small.ValueEstimate = floatPtr(50000)
	large := base
	large.ValueEstimate = floatPtr(5000000)

	smallScore := s.smeScore(small, now)
	largeScore := s.smeScore(large, now)

	if smallScore <= largeScore {
		t.Fatalf("expected small contract to score higher: %.2f vs %.2f", smallScore, largeScore)
	}
	// 0.30 band vs 0.05 band, everything else identical
	if diff := smallScore - largeScore; math.Abs(diff-0.25) > 1e-9 {
		t.Errorf("expected band difference 0.25, got %.4f", diff)
	}
}

func TestSMEScore_DeadlineBands(t *testing.T) {
	s := defaultScorer(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	base := Opportunity{
		Title:           "Portable radar detection unit",
		ContractingBody: "Dstl",
		ValueEstimate:   floatPtr(50000),
	}

	long := base
	long.Deadline = now.AddDate(0, 0, 90)
	short := base
	short.Deadline = now.AddDate(0, 0, 2)

	longScore := s.smeScore(long, now)
	shortScore := s.smeScore(short, now)

	if longScore <= shortScore {
		t.Fatalf("expected long runway to score higher: %.2f vs %.2f", longScore, shortScore)
	}
	// +0.10 bonus vs -0.05 penalty
	if diff := longScore - shortScore; math.Abs(diff-0.15) > 1e-9 {
		t.Errorf("expected deadline difference 0.15, got %.4f", diff)
	}
}

func TestSMEScore_ClampedToOne(t *testing.T) {
	s := defaultScorer(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	opp := Opportunity{
		Title:           "SBRI phase 1 innovation competition",
		Summary:         "Open to any sme, small business and start-up supplier.",
		ContractingBody: "Defence and Security Accelerator",
		ValueEstimate:   floatPtr(50000),
		Deadline:        now.AddDate(0, 0, 90),
		TRL:             intPtr(4),
		TechTags:        []string{"Cybersecurity", "AI & Autonomy", "Uncrewed Systems", "Sensors & Electronic Warfare"},
	}

	if got := s.smeScore(opp, now); got != 1.0 {
		t.Errorf("expected score clamped to 1.0, got %.4f", got)
	}
}

func TestConfidenceScore(t *testing.T) {
	s := defaultScorer(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		opp      Opportunity
		expected float64
	}{
		{
			name: "complete record from official source caps at 1",
			opp: Opportunity{
				Title:           "Maritime autonomous mine countermeasures demonstrator",
				Summary:         "Full competition brief with scope, assessment criteria, eligibility rules and submission instructions published.",
				SourceType:      SourceUKOfficial,
				ValueEstimate:   floatPtr(250000),
				Deadline:        now.AddDate(0, 0, 45),
				KeywordsMatched: []string{"defence", "maritime", "autonomous", "mine countermeasures", "DASA", "innovation", "sbri", "unmanned"},
			},
			expected: 1.0,
		},
		{
			name: "sparse record from news source",
			opp: Opportunity{
				Title:      "Contract notice",
				SourceType: SourceIndustryNews,
				Deadline:   now.AddDate(0, 0, -5),
			},
			expected: 0.20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.confidenceScore(tt.opp, now)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected confidence %.2f, got %.4f", tt.expected, got)
			}
		})
	}
}

func TestPriorityScore(t *testing.T) {
	s := defaultScorer(t)

	tests := []struct {
		name     string
		opp      Opportunity
		expected float64
	}{
		{
			name: "positive keywords sum",
			opp: Opportunity{
				Title:           "Urgent capability: defence cyber systems",
				ContractingBody: "Strategic Command HQ",
			},
			expected: 6.0, // urgent capability 2.5 + defence 2.0 + cyber 1.5
		},
		{
			name: "negative sum floored at zero",
			opp: Opportunity{
				Title:           "Catering, cleaning and furniture supply",
				ContractingBody: "Estates Office",
			},
			expected: 0,
		},
		{
			name: "no keywords",
			opp: Opportunity{
				Title:           "Bridge inspection works",
				ContractingBody: "Highways Agency",
			},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.priorityScore(tt.opp)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected priority %.2f, got %.4f", tt.expected, got)
			}
		})
	}
}

func TestComposite(t *testing.T) {
	s := defaultScorer(t)

	tests := []struct {
		name     string
		opp      Opportunity
		expected float64
	}{
		{
			name:     "blend of three scores",
			opp:      Opportunity{SMEScore: 0.5, ConfidenceScore: 0.5, PriorityScore: 5},
			expected: 0.5, // 0.4*0.5 + 0.4*0.5 + 0.2*0.5
		},
		{
			name:     "priority squashed at norm ceiling",
			opp:      Opportunity{SMEScore: 0.5, ConfidenceScore: 0.5, PriorityScore: 25},
			expected: 0.7, // priority term saturates at 0.4
		},
		{
			name:     "all zero",
			opp:      Opportunity{},
			expected: 0,
		},
		{
			name:     "all maximal",
			opp:      Opportunity{SMEScore: 1, ConfidenceScore: 1, PriorityScore: 10},
			expected: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Composite(tt.opp)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected composite %.2f, got %.4f", tt.expected, got)
			}
		})
	}
}

func TestScore_BoundsHold(t *testing.T) {
	s := defaultScorer(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	opp := Opportunity{
		Title:           "Electronic warfare countermeasure research for military radar and hypersonic defence",
		Summary:         "SBRI innovation competition for defence, cyber and autonomous prototype demonstrators run by DASA for sme suppliers.",
		ContractingBody: "Defence and Security Accelerator",
		SourceType:      SourceAccelerator,
		ValueEstimate:   floatPtr(75000),
		Deadline:        now.AddDate(0, 0, 120),
		TRL:             intPtr(4),
		TechTags:        []string{"Sensors & Electronic Warfare", "Cybersecurity"},
		KeywordsMatched: []string{"defence", "cyber", "radar", "electronic warfare", "DASA", "sbri"},
	}

	s.Score(&opp, now)

	if opp.SMEScore < 0 || opp.SMEScore > 1 {
		t.Errorf("SME score out of range: %.4f", opp.SMEScore)
	}
	if opp.ConfidenceScore < 0 || opp.ConfidenceScore > 1 {
		t.Errorf("confidence score out of range: %.4f", opp.ConfidenceScore)
	}
	if opp.PriorityScore < 0 {
		t.Errorf("priority score negative: %.4f", opp.PriorityScore)
	}
	if c := s.Composite(opp); c < 0 || c > 1 {
		t.Errorf("composite out of range: %.4f", c)
	}
}
