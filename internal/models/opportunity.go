package models

import "time"

// Subscription tiers a feed item can require.
const (
	TierFree = "free"
	TierPro  = "pro"
)

// Opportunity is the serialized record the persistence and API layers
// consume: one entry of the ranked feed.
type Opportunity struct {
	ID            string           `json:"id"` // content hash
	Title         string           `json:"title"`
	FundingBody   string           `json:"funding_body"`
	Description   string           `json:"description"`
	ClosingDate   time.Time        `json:"closing_date"`
	FundingAmount string           `json:"funding_amount"` // "£400,000" or "TBD"
	TechAreas     []string         `json:"tech_areas"`
	ContractType  string           `json:"contract_type"`
	OfficialLink  string           `json:"official_link"`
	Source        string           `json:"source"`
	SourceType    string           `json:"source_type"`
	Country       string           `json:"country"`
	Location      string           `json:"location,omitempty"`
	Status        string           `json:"status"` // open, closed
	CreatedAt     time.Time        `json:"created_at"`
	TierRequired  string           `json:"tier_required"` // free, pro
	Metadata      EnhancedMetadata `json:"enhanced_metadata"`
}

// EnhancedMetadata carries the enrichment the curation pipeline computed.
type EnhancedMetadata struct {
	SMEScore        float64  `json:"sme_score"`
	ConfidenceScore float64  `json:"confidence_score"`
	PriorityScore   float64  `json:"priority_score"`
	CompositeScore  float64  `json:"composite_score"`
	TechTags        []string `json:"tech_tags"`
	KeywordsMatched []string `json:"keywords_matched"`
	TRL             *int     `json:"trl,omitempty"`
}

// AggregationRun records one execution of the pipeline.
type AggregationRun struct {
	RunID         string     `json:"run_id"`
	Status        string     `json:"status"` // running, completed, failed
	SourcesTotal  int        `json:"sources_total"`
	SourcesFailed int        `json:"sources_failed"`
	RawCount      int        `json:"raw_count"`
	EmittedCount  int        `json:"emitted_count"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}
