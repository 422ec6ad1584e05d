package curation

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Normalizer maps loosely-typed connector records into canonical
// Opportunities and rejects malformed input at the boundary. Everything
// downstream can assume its invariants hold.
type Normalizer struct {
	cfg NormalizerConfig
}

func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	if cfg.DefaultCountry == "" {
		cfg.DefaultCountry = "UK"
	}
	return &Normalizer{cfg: cfg}
}

var trlRegex = regexp.MustCompile(`(?i)\btrl\s*[:\-]?\s*(\d)\b`)

// Normalize validates a raw candidate and produces an Opportunity with
// defaults applied. The content hash is computed after defaulting so that
// normalizing the same input twice yields the same hash.
func (n *Normalizer) Normalize(raw RawCandidate, now time.Time) (Opportunity, error) {
	title := cleanText(HTMLToText(raw.Title))
	if len(title) < n.cfg.MinTitleLen {
		return Opportunity{}, fmt.Errorf("%w: title %q below minimum length %d", ErrInvalidRecord, title, n.cfg.MinTitleLen)
	}
	if strings.TrimSpace(raw.ContractingBody) == "" {
		return Opportunity{}, fmt.Errorf("%w: missing contracting body", ErrInvalidRecord)
	}

	opp := Opportunity{
		Title:           title,
		Summary:         cleanText(HTMLToText(raw.Summary)),
		ContractingBody: cleanText(raw.ContractingBody),
		URL:             strings.TrimSpace(raw.URL),
		Source:          raw.Source,
		SourceType:      raw.SourceType,
		Country:         cleanText(raw.Country),
		Location:        cleanText(raw.Location),
		ProcurementType: cleanText(raw.ProcurementType),
		DateScraped:     now,
		TechTags:        []string{},
		KeywordsMatched: []string{},
	}

	if opp.Country == "" {
		opp.Country = n.cfg.DefaultCountry
	}

	// Deadline: parsed value, first parseable guess, else default offset.
	// An unparsable deadline is expected input, not an error.
	deadline, err := ParseDeadline(raw.RawDeadline)
	if err != nil {
		deadline = time.Time{}
		for _, guess := range raw.DeadlineGuesses {
			if t, gErr := ParseDeadline(guess); gErr == nil {
				deadline = t
				break
			}
		}
	}
	if deadline.IsZero() {
		deadline = now.UTC().AddDate(0, 0, n.cfg.DefaultDeadlineOffsetDays)
	}
	opp.Deadline = deadline

	if val, ok := ParseValueEstimate(raw.RawValue); ok {
		opp.ValueEstimate = &val
	}

	if trl, ok := parseTRL(raw); ok {
		opp.TRL = &trl
	}

	opp.ContentHash = contentHash(opp.Title, opp.Deadline, opp.ContractingBody)
	opp.ID = opp.ContentHash

	return opp, nil
}

// contentHash is the exact-duplicate fingerprint: same title, deadline date
// and contracting body always produce the same hash.
func contentHash(title string, deadline time.Time, body string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(title)))
	h.Write([]byte{'|'})
	h.Write([]byte(deadline.UTC().Format("2006-01-02")))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.ToLower(body)))
	return hex.EncodeToString(h.Sum(nil))[:32]
}

func parseTRL(raw RawCandidate) (int, bool) {
	candidates := []string{raw.TRL}
	if v, ok := raw.Extra["trl"]; ok {
		candidates = append(candidates, v)
	}
	candidates = append(candidates, raw.Title, raw.Summary)

	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if v, err := strconv.Atoi(c); err == nil {
			if v >= 1 && v <= 9 {
				return v, true
			}
			continue
		}
		if m := trlRegex.FindStringSubmatch(c); len(m) == 2 {
			if v, err := strconv.Atoi(m[1]); err == nil && v >= 1 && v <= 9 {
				return v, true
			}
		}
	}
	return 0, false
}
