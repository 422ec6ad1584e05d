package curation

import (
	"regexp"
	"strconv"
	"strings"
)

var valueTokenRegex = regexp.MustCompile(`(?i)[£$€]?\s*([\d][\d,\.]*)\s*(million|mn|m|k|bn|billion)?\b`)

// ParseValueEstimate extracts an estimated contract value in GBP from free
// text. Sources publish values as "£1.2m", "400k", "up to £500,000", or a
// range; ranges collapse to their upper bound since that is what the tender
// is worth at most. Returns false when no usable number is present.
func ParseValueEstimate(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	var amounts []float64
	for _, m := range valueTokenRegex.FindAllStringSubmatch(text, -1) {
		numPart := strings.ReplaceAll(m[1], ",", "")
		val, err := strconv.ParseFloat(numPart, 64)
		if err != nil || val <= 0 {
			continue
		}
		switch strings.ToLower(m[2]) {
		case "k":
			val *= 1_000
		case "m", "mn", "million":
			val *= 1_000_000
		case "bn", "billion":
			val *= 1_000_000_000
		}
		amounts = append(amounts, val)
	}

	if len(amounts) == 0 {
		return 0, false
	}

	// Years and TRL digits sneak through the regex; anything under 1000 with
	// no multiplier is almost never a contract value.
	max := 0.0
	for _, a := range amounts {
		if a > max {
			max = a
		}
	}
	if max < 1000 {
		return 0, false
	}

	return max, true
}

// FormatValueGBP renders a value estimate the way the feed publishes it.
func FormatValueGBP(value *float64) string {
	if value == nil || *value <= 0 {
		return "TBD"
	}

	v := *value
	whole := strconv.FormatFloat(v, 'f', 0, 64)

	// Insert thousands separators
	var b strings.Builder
	n := len(whole)
	for i, r := range whole {
		b.WriteRune(r)
		rem := n - i - 1
		if rem > 0 && rem%3 == 0 {
			b.WriteByte(',')
		}
	}
	return "£" + b.String()
}
