package curation

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// normalizeSpace collapses multiple spaces into one and trims the string.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanText normalizes whitespace (alias for normalizeSpace)
func cleanText(s string) string {
	return normalizeSpace(s)
}

// TruncateText cuts a string to max length, appending ellipsis if truncated.
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen > 3 {
		return text[:maxLen-3] + "..."
	}
	return text[:maxLen]
}

// HTMLToText converts HTML to plain text, collapsing whitespace.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html // Fallback to original if parsing fails
	}
	return cleanText(doc.Text())
}

// mergeUniqueFold appends items to dst, skipping case-insensitive duplicates.
func mergeUniqueFold(dst []string, items []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, v := range dst {
		k := strings.ToLower(strings.TrimSpace(v))
		if k != "" {
			seen[k] = struct{}{}
		}
	}

	for _, v := range items {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		dst = append(dst, v)
		seen[k] = struct{}{}
	}

	return dst
}

// searchText builds the case-folded haystack the filter, classifier and
// scorer all match against: title + summary + contracting body.
func searchText(opp Opportunity) string {
	return strings.ToLower(strings.Join([]string{
		opp.Title,
		opp.Summary,
		opp.ContractingBody,
	}, " \n "))
}

var titleStopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "for": {}, "in": {}, "of": {},
	"on": {}, "the": {}, "to": {}, "with": {},
}

// titleWordSet lower-cases a title, strips punctuation, drops stop words and
// trailing plurals, and returns the set of remaining words. Used for Jaccard
// title similarity, where "Radar Systems for the Navy" and "Radar System for
// Navy" must count as the same title.
func titleWordSet(title string) map[string]struct{} {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	set := make(map[string]struct{})
	for _, w := range strings.Fields(b.String()) {
		if _, stop := titleStopWords[w]; stop {
			continue
		}
		if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
			w = w[:len(w)-1]
		}
		set[w] = struct{}{}
	}
	return set
}
