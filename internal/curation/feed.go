package curation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jturner/defence-radar/internal/models"
	"github.com/microcosm-cc/bluemonday"
)

var descriptionPolicy = bluemonday.UGCPolicy()

// FeedItems serializes the ranked batch for the persistence and API layers.
// Descriptions are sanitized here so nothing downstream has to trust
// connector HTML.
func (c *Curator) FeedItems(opps []Opportunity, now time.Time) []models.Opportunity {
	items := make([]models.Opportunity, 0, len(opps))
	for _, opp := range opps {
		items = append(items, c.feedItem(opp, now))
	}
	return items
}

func (c *Curator) feedItem(opp Opportunity, now time.Time) models.Opportunity {
	status := "open"
	if !opp.Deadline.After(now) {
		status = "closed"
	}

	composite := c.scorer.Composite(opp)
	tier := models.TierFree
	if composite >= c.profile.Feed.ProTierMinComposite {
		tier = models.TierPro
	}

	return models.Opportunity{
		ID:            opp.ID,
		Title:         sanitizeUTF8(opp.Title),
		FundingBody:   sanitizeUTF8(opp.ContractingBody),
		Description:   descriptionPolicy.Sanitize(sanitizeUTF8(opp.Summary)),
		ClosingDate:   opp.Deadline.UTC(),
		FundingAmount: FormatValueGBP(opp.ValueEstimate),
		TechAreas:     opp.TechTags,
		ContractType:  opp.ProcurementType,
		OfficialLink:  opp.URL,
		Source:        opp.Source,
		SourceType:    string(opp.SourceType),
		Country:       opp.Country,
		Location:      opp.Location,
		Status:        status,
		CreatedAt:     opp.DateScraped.UTC(),
		TierRequired:  tier,
		Metadata: models.EnhancedMetadata{
			SMEScore:        opp.SMEScore,
			ConfidenceScore: opp.ConfidenceScore,
			PriorityScore:   opp.PriorityScore,
			CompositeScore:  composite,
			TechTags:        opp.TechTags,
			KeywordsMatched: opp.KeywordsMatched,
			TRL:             opp.TRL,
		},
	}
}

// sanitizeUTF8 removes invalid UTF-8 byte sequences that cause PostgreSQL errors.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}
