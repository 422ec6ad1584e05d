package curation

import (
	"log"
	"time"
)

// Curator runs the full curation pipeline over a batch of raw candidates:
// normalize, filter, classify, score, deduplicate, rank. It is
// single-threaded and deterministic for a fixed input order; every record
// ends in exactly one terminal state (rejected, duplicate, or emitted).
type Curator struct {
	profile    Profile
	normalizer *Normalizer
	filter     *Filter
	classifier *Classifier
	scorer     *Scorer
	dedup      *Deduplicator
}

func NewCurator(profile Profile) (*Curator, error) {
	filter, err := NewFilter(profile.Filter)
	if err != nil {
		return nil, err
	}
	classifier, err := NewClassifier(profile.TechAreas)
	if err != nil {
		return nil, err
	}
	scorer, err := NewScorer(profile.Scoring)
	if err != nil {
		return nil, err
	}

	return &Curator{
		profile:    profile,
		normalizer: NewNormalizer(profile.Normalizer),
		filter:     filter,
		classifier: classifier,
		scorer:     scorer,
		dedup:      NewDeduplicator(profile.Dedup, scorer),
	}, nil
}

// Profile returns the rule profile the curator was built with.
func (c *Curator) Profile() Profile { return c.profile }

// Scorer exposes the scoring engine for composite ranking keys.
func (c *Curator) Scorer() *Scorer { return c.scorer }

// Run processes the whole batch in memory and returns the ranked unique
// opportunities. Invalid records are skipped with a warning; an empty result
// is not an error, it just means nothing met the criteria.
func (c *Curator) Run(raws []RawCandidate, now time.Time) ([]Opportunity, Stats) {
	stats := Stats{RawCount: len(raws)}

	kept := make([]Opportunity, 0, len(raws))
	for _, raw := range raws {
		opp, err := c.normalizer.Normalize(raw, now)
		if err != nil {
			stats.Invalid++
			log.Printf("[curation] skipping record from %s: %v", raw.Source, err)
			continue
		}

		res := c.filter.Evaluate(opp)
		if !res.Accepted {
			stats.Rejected++
			continue
		}
		opp.KeywordsMatched = res.Matched

		opp.TechTags = c.classifier.Classify(opp)
		c.scorer.Score(&opp, now)

		kept = append(kept, opp)
	}

	unique, duplicates := c.dedup.Dedup(kept)
	stats.Duplicates = duplicates

	Rank(unique, c.scorer)
	stats.Emitted = len(unique)

	log.Printf("[curation] run complete: raw=%d invalid=%d rejected=%d duplicates=%d emitted=%d",
		stats.RawCount, stats.Invalid, stats.Rejected, stats.Duplicates, stats.Emitted)

	return unique, stats
}

// Aggregate is the pure-function entry point: build a curator from the
// default profile and run one batch.
func Aggregate(raws []RawCandidate, now time.Time) ([]Opportunity, Stats, error) {
	profile, err := DefaultProfile()
	if err != nil {
		return nil, Stats{}, err
	}
	curator, err := NewCurator(profile)
	if err != nil {
		return nil, Stats{}, err
	}
	opps, stats := curator.Run(raws, now)
	return opps, stats, nil
}
