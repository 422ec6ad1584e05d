package curation

import (
	"strings"
	"time"
)

// Scorer computes the three heuristic scores. Each score is an additive sum
// of small weighted contributions, clamped to its valid range at the end;
// individual contributions are tuned in the profile, not here.
type Scorer struct {
	cfg           ScoringConfig
	smeIndicators []compiledPattern
}

func NewScorer(cfg ScoringConfig) (*Scorer, error) {
	indicators, err := compilePatterns(cfg.SMEIndicators)
	if err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg, smeIndicators: indicators}, nil
}

// Score fills SMEScore, ConfidenceScore and PriorityScore on the
// opportunity. The classifier must have run first: the SME tech-density
// bonus reads the assigned tags.
func (s *Scorer) Score(opp *Opportunity, now time.Time) {
	opp.SMEScore = s.smeScore(*opp, now)
	opp.ConfidenceScore = s.confidenceScore(*opp, now)
	opp.PriorityScore = s.priorityScore(*opp)
}

// smeScore estimates how winnable the opportunity is for a small supplier.
func (s *Scorer) smeScore(opp Opportunity, now time.Time) float64 {
	score := 0.0
	text := searchText(opp)

	// Value band: smaller contracts favour SMEs; unknown value is neutral.
	if opp.ValueEstimate == nil {
		score += s.cfg.UnknownValueBonus
	} else {
		v := *opp.ValueEstimate
		for _, band := range s.cfg.ValueBands {
			if band.MaxGBP == 0 || v <= band.MaxGBP {
				score += band.Bonus
				break
			}
		}
	}

	// Contracting-body friendliness: the longest matching entry wins so
	// "defence and security accelerator" beats a bare "defence" hit.
	bodyLower := strings.ToLower(opp.ContractingBody)
	bestLen := 0
	bestBonus := 0.0
	for name, bonus := range s.cfg.SMEFriendlyBodies {
		if strings.Contains(bodyLower, name) && len(name) > bestLen {
			bestLen = len(name)
			bestBonus = bonus
		}
	}
	score += bestBonus

	// SME indicator phrases, capped
	indicator := 0.0
	for _, p := range s.smeIndicators {
		if p.matches(text) {
			indicator += p.weight
		}
	}
	if indicator > s.cfg.SMEIndicatorCap {
		indicator = s.cfg.SMEIndicatorCap
	}
	score += indicator

	// Technology relevance density, capped
	techTags := 0
	for _, tag := range opp.TechTags {
		if tag != DefaultTechTag {
			techTags++
		}
	}
	density := s.cfg.TechDensityWeight * float64(techTags)
	if density > s.cfg.TechDensityCap {
		density = s.cfg.TechDensityCap
	}
	score += density

	// Deadline distance: a long runway helps a small bid team; under a week
	// is a penalty.
	days := int(opp.Deadline.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	for _, band := range s.cfg.DeadlineBands {
		if days >= band.MinDays {
			score += band.Bonus
			break
		}
	}

	// TRL sweet spot: mature enough to demonstrate, early enough to shape
	if opp.TRL != nil && *opp.TRL >= s.cfg.TRLSweetSpotMin && *opp.TRL <= s.cfg.TRLSweetSpotMax {
		score += s.cfg.TRLSweetSpotBonus
	}

	return clamp01(score)
}

// confidenceScore estimates how much we trust the record itself.
func (s *Scorer) confidenceScore(opp Opportunity, now time.Time) float64 {
	score := s.cfg.SourceReliability[opp.SourceType]

	if len(opp.Title) >= s.cfg.MinTitleLen {
		score += s.cfg.TitleBonus
	}
	if len(opp.Summary) >= s.cfg.MinSummaryLen {
		score += s.cfg.SummaryBonus
	}
	if opp.ValueEstimate != nil {
		score += s.cfg.ValuePresentBonus
	}
	if opp.Deadline.After(now) {
		score += s.cfg.FutureDeadlineBonus
	}

	keywordBonus := s.cfg.KeywordBonus * float64(len(opp.KeywordsMatched))
	if keywordBonus > s.cfg.KeywordBonusCap {
		keywordBonus = s.cfg.KeywordBonusCap
	}
	score += keywordBonus

	return clamp01(score)
}

// priorityScore is the signed keyword sum: defence and innovation terms add,
// administrative terms subtract. Floor at zero, no ceiling.
func (s *Scorer) priorityScore(opp Opportunity) float64 {
	text := searchText(opp)

	score := 0.0
	for keyword, weight := range s.cfg.PriorityKeywords {
		if strings.Contains(text, keyword) {
			score += weight
		}
	}

	if score < 0 {
		return 0
	}
	return score
}

// Composite is the ranking key: a configurable blend of the three scores
// with priority squashed into [0,1] first.
func (s *Scorer) Composite(opp Opportunity) float64 {
	priorityNorm := opp.PriorityScore / s.cfg.Blend.PriorityNorm
	if priorityNorm > 1 {
		priorityNorm = 1
	}
	return s.cfg.Blend.Priority*priorityNorm +
		s.cfg.Blend.SME*opp.SMEScore +
		s.cfg.Blend.Confidence*opp.ConfidenceScore
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
