package curation

import "sort"

// Rank orders opportunities by composite score, best first. The sort is
// stable so equally-scored records keep their original relative order;
// among exact score ties the nearer deadline comes first.
func Rank(opps []Opportunity, scorer *Scorer) {
	sort.SliceStable(opps, func(i, j int) bool {
		ci, cj := scorer.Composite(opps[i]), scorer.Composite(opps[j])
		if ci != cj {
			return ci > cj
		}
		return opps[i].Deadline.Before(opps[j].Deadline)
	})
}
