package curation

import (
	"math"
)

// Deduplicator merges records describing the same real-world opportunity.
// Stage one catches exact fingerprint repeats across searches; stage two
// catches near-identical titles published by different portals.
//
// The fuzzy stage scans the growing unique set per candidate, and rescans
// when a merge chain collapses. Fine for batches in the low thousands; it is
// not built to stream.
type Deduplicator struct {
	cfg    DedupConfig
	scorer *Scorer
}

func NewDeduplicator(cfg DedupConfig, scorer *Scorer) *Deduplicator {
	return &Deduplicator{cfg: cfg, scorer: scorer}
}

// Dedup returns the unique subset of opps in first-seen order. Discarded
// members are dropped and counted; when a fuzzy pair merges, the member with
// the higher composite score survives (tie-break: longer summary, then the
// already-accepted one, to keep results stable).
//
// A candidate can bridge two accepted records that were not similar to each
// other, so every merge restarts the scan with the surviving record: chains
// of near-duplicates collapse into one, and no emitted pair ever sits above
// the merge threshold.
func (d *Deduplicator) Dedup(opps []Opportunity) (unique []Opportunity, duplicates int) {
	seen := make(map[string]struct{}, len(opps))

	for _, cand := range opps {
		if _, ok := seen[cand.ContentHash]; ok {
			duplicates++
			continue
		}
		seen[cand.ContentHash] = struct{}{}

		survivor := cand
		pos := -1
		for {
			merged := false
			for i := range unique {
				if d.Similarity(unique[i], survivor) <= d.cfg.MergeThreshold {
					continue
				}
				if d.betterOf(unique[i], survivor) {
					survivor = unique[i]
				}
				unique = append(unique[:i], unique[i+1:]...)
				if pos == -1 || i < pos {
					pos = i
				}
				duplicates++
				merged = true
				break
			}
			if !merged {
				break
			}
		}

		if pos == -1 {
			unique = append(unique, survivor)
			continue
		}
		// Reinsert at the earliest collapsed slot to keep first-seen order.
		unique = append(unique, Opportunity{})
		copy(unique[pos+1:], unique[pos:])
		unique[pos] = survivor
	}

	return unique, duplicates
}

// Similarity is the combined title/deadline similarity used for fuzzy
// matching: 0.8·Jaccard(title words) + 0.2·max(0, 1 − |Δdays|/window).
func (d *Deduplicator) Similarity(a, b Opportunity) float64 {
	title := jaccard(titleWordSet(a.Title), titleWordSet(b.Title))

	deltaDays := math.Abs(a.Deadline.Sub(b.Deadline).Hours()) / 24
	deadline := 1 - deltaDays/d.cfg.DeadlineWindowDays
	if deadline < 0 {
		deadline = 0
	}

	return d.cfg.TitleWeight*title + d.cfg.DeadlineWeight*deadline
}

// betterOf reports whether the already-accepted record should be retained
// over the candidate.
func (d *Deduplicator) betterOf(accepted, cand Opportunity) bool {
	ca, cb := d.scorer.Composite(accepted), d.scorer.Composite(cand)
	if ca != cb {
		return ca > cb
	}
	if len(accepted.Summary) != len(cand.Summary) {
		return len(accepted.Summary) > len(cand.Summary)
	}
	return true
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
