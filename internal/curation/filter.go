package curation

import (
	"strings"
)

// Filter decides whether an opportunity is relevant to the defence feed.
// The blacklist has absolute precedence: enough rejection evidence excludes
// a record no matter how much whitelist evidence it carries.
type Filter struct {
	cfg       FilterConfig
	blacklist []compiledPattern
	whitelist []compiledPattern
}

// FilterResult explains a filter decision.
type FilterResult struct {
	Accepted       bool
	BlacklistScore float64
	WhitelistScore float64
	Matched        []string // whitelist keywords, agencies and phrases found
}

func NewFilter(cfg FilterConfig) (*Filter, error) {
	blacklist, err := compilePatterns(cfg.Blacklist)
	if err != nil {
		return nil, err
	}
	whitelist, err := compilePatterns(cfg.Whitelist)
	if err != nil {
		return nil, err
	}
	return &Filter{cfg: cfg, blacklist: blacklist, whitelist: whitelist}, nil
}

// Evaluate scores an opportunity against the blacklist and whitelist tables.
// A record matching neither list is rejected: ambiguous content stays out.
func (f *Filter) Evaluate(opp Opportunity) FilterResult {
	text := searchText(opp)
	res := FilterResult{}

	for _, p := range f.blacklist {
		if p.matches(text) {
			res.BlacklistScore += p.weight
		}
	}
	if res.BlacklistScore >= f.cfg.RejectThreshold {
		return res
	}

	for _, p := range f.whitelist {
		if p.matches(text) {
			res.WhitelistScore += p.weight
			res.Matched = append(res.Matched, p.pattern)
		}
	}

	// Known agencies and category phrases are strong acceptance evidence on
	// their own, regardless of keyword weight sums.
	for _, agency := range f.cfg.Agencies {
		if strings.Contains(text, strings.ToLower(agency)) {
			res.WhitelistScore += f.cfg.AcceptThreshold
			res.Matched = append(res.Matched, agency)
		}
	}
	for _, phrase := range f.cfg.CategoryPhrases {
		if strings.Contains(text, strings.ToLower(phrase)) {
			res.WhitelistScore += f.cfg.AcceptThreshold
			res.Matched = append(res.Matched, phrase)
		}
	}

	res.Matched = mergeUniqueFold(nil, res.Matched)
	res.Accepted = res.WhitelistScore >= f.cfg.AcceptThreshold
	return res
}
