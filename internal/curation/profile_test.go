package curation

import (
	"math"
	"testing"
)

func TestDefaultProfile(t *testing.T) {
	p, err := DefaultProfile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Normalizer.MinTitleLen != 10 {
		t.Errorf("expected min_title_len 10, got %d", p.Normalizer.MinTitleLen)
	}
	if p.Filter.RejectThreshold != 5 {
		t.Errorf("expected reject_threshold 5, got %.1f", p.Filter.RejectThreshold)
	}
	if len(p.TechAreas) != 10 {
		t.Errorf("expected 10 tech areas, got %d", len(p.TechAreas))
	}
	if p.Dedup.MergeThreshold != 0.85 {
		t.Errorf("expected merge_threshold 0.85, got %.2f", p.Dedup.MergeThreshold)
	}

	blendSum := p.Scoring.Blend.Priority + p.Scoring.Blend.SME + p.Scoring.Blend.Confidence
	if math.Abs(blendSum-1.0) > 1e-9 {
		t.Errorf("expected blend weights to sum to 1, got %.4f", blendSum)
	}
}

func TestProfileValidate(t *testing.T) {
	valid, err := DefaultProfile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(p *Profile)
	}{
		{name: "zero min title len", mutate: func(p *Profile) { p.Normalizer.MinTitleLen = 0 }},
		{name: "zero deadline offset", mutate: func(p *Profile) { p.Normalizer.DefaultDeadlineOffsetDays = 0 }},
		{name: "zero reject threshold", mutate: func(p *Profile) { p.Filter.RejectThreshold = 0 }},
		{name: "merge threshold above one", mutate: func(p *Profile) { p.Dedup.MergeThreshold = 1.5 }},
		{name: "zero priority norm", mutate: func(p *Profile) { p.Scoring.Blend.PriorityNorm = 0 }},
		{name: "unnamed tech area", mutate: func(p *Profile) { p.TechAreas[0].Name = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			p.TechAreas = append([]TechArea(nil), valid.TechAreas...)
			tt.mutate(&p)
			if err := p.validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadProfile_MissingFile(t *testing.T) {
	if _, err := LoadProfile("/nonexistent/profile.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
