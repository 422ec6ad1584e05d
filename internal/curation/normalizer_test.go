package curation

import (
	"errors"
	"testing"
	"time"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(NormalizerConfig{
		MinTitleLen:               10,
		DefaultDeadlineOffsetDays: 30,
		DefaultCountry:            "UK",
	})
}

func TestNormalize_RejectsInvalidRecords(t *testing.T) {
	n := testNormalizer()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  RawCandidate
	}{
		{
			name: "title below minimum length",
			raw:  RawCandidate{Title: "Radar", ContractingBody: "MOD"},
		},
		{
			name: "title empty after HTML stripping",
			raw:  RawCandidate{Title: "<p>  </p>", ContractingBody: "MOD"},
		},
		{
			name: "missing contracting body",
			raw:  RawCandidate{Title: "Portable radar detection unit"},
		},
		{
			name: "whitespace-only contracting body",
			raw:  RawCandidate{Title: "Portable radar detection unit", ContractingBody: "   "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(tt.raw, now)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("expected ErrInvalidRecord, got %v", err)
			}
		})
	}
}

func TestNormalize_ContentHashStable(t *testing.T) {
	n := testNormalizer()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	raw := RawCandidate{
		Title:           "Uncrewed surface vessel demonstrator",
		ContractingBody: "Dstl",
		RawDeadline:     "2026-06-15",
	}

	a, err := n.Normalize(raw, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := n.Normalize(raw, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.ContentHash != b.ContentHash {
		t.Errorf("same input produced different hashes: %s vs %s", a.ContentHash, b.ContentHash)
	}
	if len(a.ContentHash) != 32 {
		t.Errorf("expected 32-char hash, got %d chars", len(a.ContentHash))
	}
	if a.ID != a.ContentHash {
		t.Errorf("expected ID to equal content hash, got %s", a.ID)
	}

	// Casing differences must not change the fingerprint.
	upper := raw
	upper.Title = "UNCREWED SURFACE VESSEL DEMONSTRATOR"
	upper.ContractingBody = "DSTL"
	c, err := n.Normalize(upper, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ContentHash != a.ContentHash {
		t.Errorf("case-varied input changed the hash: %s vs %s", c.ContentHash, a.ContentHash)
	}

	// A different deadline date is a different opportunity.
	later := raw
	later.RawDeadline = "2026-07-15"
	d, err := n.Normalize(later, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ContentHash == a.ContentHash {
		t.Error("different deadline produced the same hash")
	}
}

func TestNormalize_DeadlineFallbacks(t *testing.T) {
	n := testNormalizer()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		raw      RawCandidate
		expected time.Time
	}{
		{
			name: "parseable raw deadline wins",
			raw: RawCandidate{
				Title:           "Portable radar detection unit",
				ContractingBody: "Dstl",
				RawDeadline:     "2026-10-01",
			},
			expected: time.Date(2026, 10, 1, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "first parseable guess used when raw fails",
			raw: RawCandidate{
				Title:           "Portable radar detection unit",
				ContractingBody: "Dstl",
				RawDeadline:     "TBC",
				DeadlineGuesses: []string{"not a date", "2026-11-15"},
			},
			expected: time.Date(2026, 11, 15, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "default offset when nothing parses",
			raw: RawCandidate{
				Title:           "Portable radar detection unit",
				ContractingBody: "Dstl",
			},
			expected: now.AddDate(0, 0, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opp, err := n.Normalize(tt.raw, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !opp.Deadline.Equal(tt.expected) {
				t.Errorf("expected deadline %v, got %v", tt.expected, opp.Deadline)
			}
		})
	}
}

func TestNormalize_AppliesDefaults(t *testing.T) {
	n := testNormalizer()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	raw := RawCandidate{
		Title:           "<b>Hypersonic propulsion demonstrator</b> TRL 4",
		Summary:         "<p>Feasibility study for a reusable test vehicle.</p>",
		ContractingBody: "Dstl",
		RawValue:        "up to £500,000",
	}

	opp, err := n.Normalize(raw, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if opp.Title != "Hypersonic propulsion demonstrator TRL 4" {
		t.Errorf("expected HTML stripped from title, got %q", opp.Title)
	}
	if opp.Summary != "Feasibility study for a reusable test vehicle." {
		t.Errorf("expected HTML stripped from summary, got %q", opp.Summary)
	}
	if opp.Country != "UK" {
		t.Errorf("expected default country UK, got %q", opp.Country)
	}
	if opp.TRL == nil || *opp.TRL != 4 {
		t.Errorf("expected TRL 4 extracted from title, got %v", opp.TRL)
	}
	if opp.ValueEstimate == nil || *opp.ValueEstimate != 500000 {
		t.Errorf("expected value estimate 500000, got %v", opp.ValueEstimate)
	}
	if opp.DateScraped != now {
		t.Errorf("expected DateScraped %v, got %v", now, opp.DateScraped)
	}
}

func TestParseTRL(t *testing.T) {
	tests := []struct {
		name     string
		raw      RawCandidate
		expected int
		ok       bool
	}{
		{name: "bare digit", raw: RawCandidate{TRL: "4"}, expected: 4, ok: true},
		{name: "labelled", raw: RawCandidate{TRL: "TRL 6"}, expected: 6, ok: true},
		{name: "labelled with colon", raw: RawCandidate{Title: "Demonstrator at TRL: 5"}, expected: 5, ok: true},
		{name: "from extra map", raw: RawCandidate{Extra: map[string]string{"trl": "3"}}, expected: 3, ok: true},
		{name: "out of range", raw: RawCandidate{TRL: "12"}, ok: false},
		{name: "absent", raw: RawCandidate{Title: "Naval sonar maintenance"}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTRL(tt.raw)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got != tt.expected {
				t.Errorf("expected TRL %d, got %d", tt.expected, got)
			}
		})
	}
}
