package curation

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/profile.yaml
var profileYAML embed.FS

// WeightedPattern is one entry in a keyword table. Pattern is matched as a
// case-folded substring unless Regex is set.
type WeightedPattern struct {
	Pattern string  `yaml:"pattern"`
	Regex   bool    `yaml:"regex,omitempty"`
	Weight  float64 `yaml:"weight"`
}

// NormalizerConfig controls validation and defaulting at the ingestion boundary.
type NormalizerConfig struct {
	MinTitleLen               int    `yaml:"min_title_len"`
	DefaultDeadlineOffsetDays int    `yaml:"default_deadline_offset_days"`
	DefaultCountry            string `yaml:"default_country"`
}

// FilterConfig holds the relevance tables. Blacklist weights are positive
// numbers here; the filter treats them as rejection evidence.
type FilterConfig struct {
	Blacklist       []WeightedPattern `yaml:"blacklist"`
	RejectThreshold float64           `yaml:"reject_threshold"`
	Whitelist       []WeightedPattern `yaml:"whitelist"`
	AcceptThreshold float64           `yaml:"accept_threshold"`
	Agencies        []string          `yaml:"agencies"`
	CategoryPhrases []string          `yaml:"category_phrases"`
}

// TechArea defines one technology classification area.
type TechArea struct {
	Name      string            `yaml:"name"`
	Threshold float64           `yaml:"threshold"`
	Patterns  []WeightedPattern `yaml:"patterns"`
}

// ValueBand maps a contract value ceiling (GBP) to an SME-fit contribution.
// Bands are evaluated in order; the first band with MaxGBP >= value wins.
// MaxGBP of 0 means unbounded (catch-all, must be last).
type ValueBand struct {
	MaxGBP float64 `yaml:"max_gbp"`
	Bonus  float64 `yaml:"bonus"`
}

// DeadlineBand maps a minimum days-until-deadline to a contribution.
// Bands are evaluated in order; the first band with MinDays <= days wins.
type DeadlineBand struct {
	MinDays int     `yaml:"min_days"`
	Bonus   float64 `yaml:"bonus"`
}

// ScoringConfig parameterizes the three heuristics and the composite blend.
type ScoringConfig struct {
	// sme_score
	ValueBands        []ValueBand        `yaml:"value_bands"`
	UnknownValueBonus float64            `yaml:"unknown_value_bonus"`
	SMEFriendlyBodies map[string]float64 `yaml:"sme_friendly_bodies"`
	SMEIndicators     []WeightedPattern  `yaml:"sme_indicators"`
	SMEIndicatorCap   float64            `yaml:"sme_indicator_cap"`
	TechDensityWeight float64            `yaml:"tech_density_weight"`
	TechDensityCap    float64            `yaml:"tech_density_cap"`
	DeadlineBands     []DeadlineBand     `yaml:"deadline_bands"`
	TRLSweetSpotMin   int                `yaml:"trl_sweet_spot_min"`
	TRLSweetSpotMax   int                `yaml:"trl_sweet_spot_max"`
	TRLSweetSpotBonus float64            `yaml:"trl_sweet_spot_bonus"`

	// confidence_score
	SourceReliability   map[SourceType]float64 `yaml:"source_reliability"`
	MinTitleLen         int                    `yaml:"min_title_len"`
	MinSummaryLen       int                    `yaml:"min_summary_len"`
	TitleBonus          float64                `yaml:"title_bonus"`
	SummaryBonus        float64                `yaml:"summary_bonus"`
	ValuePresentBonus   float64                `yaml:"value_present_bonus"`
	FutureDeadlineBonus float64                `yaml:"future_deadline_bonus"`
	KeywordBonus        float64                `yaml:"keyword_bonus"`
	KeywordBonusCap     float64                `yaml:"keyword_bonus_cap"`

	// priority_score
	PriorityKeywords map[string]float64 `yaml:"priority_keywords"`

	// composite blend
	Blend BlendConfig `yaml:"blend"`
}

// BlendConfig is the composite ranking key. PriorityNorm is the divisor used
// to squash the unbounded priority score into [0,1] before blending.
type BlendConfig struct {
	Priority     float64 `yaml:"priority"`
	SME          float64 `yaml:"sme"`
	Confidence   float64 `yaml:"confidence"`
	PriorityNorm float64 `yaml:"priority_norm"`
}

// DedupConfig parameterizes the fuzzy merge stage.
type DedupConfig struct {
	TitleWeight        float64 `yaml:"title_weight"`
	DeadlineWeight     float64 `yaml:"deadline_weight"`
	DeadlineWindowDays float64 `yaml:"deadline_window_days"`
	MergeThreshold     float64 `yaml:"merge_threshold"`
}

// FeedConfig controls output serialization policy.
type FeedConfig struct {
	ProTierMinComposite float64 `yaml:"pro_tier_min_composite"`
}

// Profile is the full rule set for one pipeline configuration. It is loaded
// once and passed by value into the engines; nothing mutates it after load.
type Profile struct {
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Filter     FilterConfig     `yaml:"filter"`
	TechAreas  []TechArea       `yaml:"tech_areas"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Dedup      DedupConfig      `yaml:"dedup"`
	Feed       FeedConfig       `yaml:"feed"`
}

// DefaultProfile loads the embedded default rule profile.
func DefaultProfile() (Profile, error) {
	data, err := profileYAML.ReadFile("config/profile.yaml")
	if err != nil {
		return Profile{}, fmt.Errorf("reading embedded profile: %w", err)
	}
	return parseProfile(data)
}

// LoadProfile reads a rule profile from disk, for tuned deployments.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile %s: %w", path, err)
	}
	return parseProfile(data)
}

func parseProfile(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing profile: %w", err)
	}
	if err := p.validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p Profile) validate() error {
	if p.Normalizer.MinTitleLen <= 0 {
		return fmt.Errorf("profile: normalizer.min_title_len must be positive")
	}
	if p.Normalizer.DefaultDeadlineOffsetDays <= 0 {
		return fmt.Errorf("profile: normalizer.default_deadline_offset_days must be positive")
	}
	if p.Filter.RejectThreshold <= 0 {
		return fmt.Errorf("profile: filter.reject_threshold must be positive")
	}
	if p.Dedup.MergeThreshold <= 0 || p.Dedup.MergeThreshold > 1 {
		return fmt.Errorf("profile: dedup.merge_threshold must be in (0,1]")
	}
	if p.Scoring.Blend.PriorityNorm <= 0 {
		return fmt.Errorf("profile: scoring.blend.priority_norm must be positive")
	}
	for _, area := range p.TechAreas {
		if area.Name == "" {
			return fmt.Errorf("profile: tech area with empty name")
		}
		if area.Threshold <= 0 {
			return fmt.Errorf("profile: tech area %q threshold must be positive", area.Name)
		}
	}
	return nil
}
