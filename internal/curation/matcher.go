package curation

import (
	"fmt"
	"regexp"
	"strings"
)

// compiledPattern is a WeightedPattern ready for matching. Substring patterns
// match case-insensitively against pre-folded text; regex patterns are
// compiled once with (?i).
type compiledPattern struct {
	pattern string
	weight  float64
	re      *regexp.Regexp
	needle  string
}

func compilePatterns(patterns []WeightedPattern) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		cp := compiledPattern{pattern: p.Pattern, weight: p.Weight}
		if p.Regex {
			re, err := regexp.Compile("(?i)" + p.Pattern)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern %q: %w", p.Pattern, err)
			}
			cp.re = re
		} else {
			cp.needle = strings.ToLower(p.Pattern)
		}
		out = append(out, cp)
	}
	return out, nil
}

// count returns the number of occurrences in text. text must be lower-cased
// already for substring patterns.
func (p compiledPattern) count(text string) int {
	if p.re != nil {
		return len(p.re.FindAllStringIndex(text, -1))
	}
	return strings.Count(text, p.needle)
}

func (p compiledPattern) matches(text string) bool {
	if p.re != nil {
		return p.re.MatchString(text)
	}
	return strings.Contains(text, p.needle)
}
