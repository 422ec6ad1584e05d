package curation

// DefaultTechTag is assigned when no technology area clears its threshold.
const DefaultTechTag = "General Defence"

// Classifier maps opportunity text to technology-area tags. Areas are
// non-exclusive: a record about an autonomous maritime sensor can carry
// three tags.
type Classifier struct {
	areas []compiledArea
}

type compiledArea struct {
	name      string
	threshold float64
	patterns  []compiledPattern
}

func NewClassifier(areas []TechArea) (*Classifier, error) {
	compiled := make([]compiledArea, 0, len(areas))
	for _, area := range areas {
		patterns, err := compilePatterns(area.Patterns)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledArea{
			name:      area.Name,
			threshold: area.Threshold,
			patterns:  patterns,
		})
	}
	return &Classifier{areas: compiled}, nil
}

// Classify returns every technology area whose weighted pattern-count score
// clears its threshold, or the default tag when none do.
func (c *Classifier) Classify(opp Opportunity) []string {
	text := searchText(opp)

	var tags []string
	for _, area := range c.areas {
		score := 0.0
		for _, p := range area.patterns {
			score += p.weight * float64(p.count(text))
		}
		if score >= area.threshold {
			tags = append(tags, area.name)
		}
	}

	if len(tags) == 0 {
		return []string{DefaultTechTag}
	}
	return tags
}
