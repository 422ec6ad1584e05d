package curation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDeadline attempts to parse a deadline in the formats UK and allied
// tender portals actually publish. Failure is expected and common; callers
// fall back to a default offset rather than treating it as an error.
func ParseDeadline(text string) (time.Time, error) {
	text = cleanDateString(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	text = strings.ReplaceAll(text, "a.m.", "AM")
	text = strings.ReplaceAll(text, "p.m.", "PM")
	text = strings.ReplaceAll(text, " am", " AM")
	text = strings.ReplaceAll(text, " pm", " PM")

	// ISO first (most reliable)
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", text); err == nil {
		return toEndOfDay(t), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", text); err == nil {
		return t.UTC(), nil
	}

	// Common UK/EU tender portal formats
	layouts := []string{
		"2 January 2006",
		"02 January 2006",
		"2 January 2006 3:04 PM",
		"2 January 2006 15:04",
		"Monday 2 January 2006",
		"January 2, 2006",
		"January 2, 2006 3:04 PM",
		"Jan 2, 2006",
		"2 Jan 2006",
		"02 Jan 2006",
		"02/01/2006", // UK day-first
		"02/01/2006 15:04",
		"2/1/2006",
		"02-01-2006",
		"2006-01-02 15:04:05",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			if strings.Contains(layout, ":") {
				return t.UTC(), nil
			}
			return toEndOfDay(t), nil
		}
	}

	if t := parseDateWithRegex(text); !t.IsZero() {
		return toEndOfDay(t), nil
	}

	// Last resort: permissive parse. RetryAmbiguousDateWithSwap handles the
	// day-first convention of UK sources.
	if t, err := dateparse.ParseAny(text, dateparse.RetryAmbiguousDateWithSwap(true)); err == nil {
		if t.Hour() == 0 && t.Minute() == 0 {
			return toEndOfDay(t), nil
		}
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", text)
}

// toEndOfDay sets the time to 23:59:59 UTC. A deadline published as a bare
// date means submissions close at the end of that day.
func toEndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

var (
	isoDateRegex    = regexp.MustCompile(`\b(20\d{2})-(\d{2})-(\d{2})\b`)
	ukSlashRegex    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(20\d{2})\b`)
	monthNameRegex  = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(20\d{2})\b`)
	monthFirstRegex = regexp.MustCompile(`\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+(\d{1,2}),?\s+(20\d{2})\b`)
)

// parseDateWithRegex extracts a date embedded in surrounding text.
func parseDateWithRegex(text string) time.Time {
	if matches := isoDateRegex.FindStringSubmatch(text); len(matches) == 4 {
		if t, err := time.Parse("2006-01-02", matches[0]); err == nil {
			return t
		}
	}

	// Day-first: 15/03/2026
	if matches := ukSlashRegex.FindStringSubmatch(text); len(matches) == 4 {
		dateStr := fmt.Sprintf("%s/%s/%s", matches[1], matches[2], matches[3])
		if t, err := time.Parse("2/1/2006", dateStr); err == nil {
			return t
		}
		// Month-first fallback for US-hosted allied portals
		if t, err := time.Parse("1/2/2006", dateStr); err == nil {
			return t
		}
	}

	// 15 March 2026, 15th March 2026
	if matches := monthNameRegex.FindStringSubmatch(text); len(matches) == 4 {
		dateStr := fmt.Sprintf("%s %s %s", matches[1], matches[2], matches[3])
		for _, layout := range []string{"2 January 2006", "2 Jan 2006"} {
			if t, err := time.Parse(layout, dateStr); err == nil {
				return t
			}
		}
	}

	// March 15, 2026
	if matches := monthFirstRegex.FindStringSubmatch(text); len(matches) == 4 {
		dateStr := fmt.Sprintf("%s %s %s", matches[1], matches[2], matches[3])
		for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
			if t, err := time.Parse(layout, dateStr); err == nil {
				return t
			}
		}
	}

	return time.Time{}
}

// cleanDateString strips the label prefixes sources put in front of dates.
func cleanDateString(s string) string {
	prefixes := []string{
		"Closing date:", "Closing:", "Deadline:", "Deadline for submissions:",
		"Closes:", "Due date:", "Expires:", "Ends:", "Submission deadline:",
		"Tender deadline:", "Response by:",
	}
	sLower := strings.ToLower(s)
	for _, p := range prefixes {
		if idx := strings.Index(sLower, strings.ToLower(p)); idx != -1 {
			s = s[idx+len(p):]
			sLower = sLower[idx+len(p):]
		}
	}
	return strings.TrimSpace(s)
}

// ParseDateCandidates scans free text (e.g. extracted from a tender
// attachment) and returns every parseable date found, earliest first.
func ParseDateCandidates(text string) []time.Time {
	var found []time.Time
	seen := make(map[string]bool)

	for _, re := range []*regexp.Regexp{isoDateRegex, ukSlashRegex, monthNameRegex, monthFirstRegex} {
		for _, m := range re.FindAllString(text, -1) {
			t, err := ParseDeadline(m)
			if err != nil {
				continue
			}
			key := t.Format("2006-01-02")
			if seen[key] {
				continue
			}
			seen[key] = true
			found = append(found, t)
		}
	}

	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].Before(found[j-1]); j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}
	return found
}
