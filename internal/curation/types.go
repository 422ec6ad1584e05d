package curation

import (
	"errors"
	"time"
)

// ErrInvalidRecord is returned by the normalizer when a raw candidate is
// missing required fields. The record is skipped; the batch continues.
var ErrInvalidRecord = errors.New("invalid record")

// SourceType buckets connectors by how much we trust what they publish.
type SourceType string

const (
	SourceUKOfficial       SourceType = "uk_official"
	SourceEUNATO           SourceType = "eu_nato"
	SourceGlobalAllies     SourceType = "global_allies"
	SourcePrimeContractors SourceType = "prime_contractors"
	SourceIndustryNews     SourceType = "industry_news"
	SourceAccelerator      SourceType = "accelerator"
)

// RawCandidate is the untrusted, loosely-typed record a connector hands to
// the pipeline. Field naming varies wildly across sources, so connectors map
// whatever they scraped into this shape and stash leftovers in Extra.
type RawCandidate struct {
	Title           string
	Summary         string
	ContractingBody string
	URL             string
	Source          string // connector name
	SourceType      SourceType
	Country         string
	Location        string
	RawDeadline     string // any of several date text formats
	RawValue        string // "£1.2m", "400000", "up to £50,000"...
	ProcurementType string
	TRL             string   // raw text, e.g. "TRL 4" or "4"
	DeadlineGuesses []string // extra candidates, e.g. from attachment PDFs
	Extra           map[string]string
}

// Opportunity is the canonical entity the pipeline operates on. Enrichment
// fields (tech tags, scores, keywords) are filled by the classifier and the
// scoring engine, never supplied by a connector.
type Opportunity struct {
	// identity
	ContentHash string
	ID          string // = ContentHash

	// descriptive
	Title           string
	Summary         string
	ContractingBody string
	URL             string

	// provenance
	Source      string
	SourceType  SourceType
	Country     string
	Location    string
	DateScraped time.Time

	// commercial
	ValueEstimate   *float64 // GBP, non-negative when present
	ProcurementType string

	// temporal
	Deadline time.Time

	// enrichment
	TechTags        []string
	TRL             *int // 1..9 when present
	SMEScore        float64
	ConfidenceScore float64
	PriorityScore   float64
	KeywordsMatched []string
}

// Stats summarizes a single pipeline run. Nothing here is fatal: an empty
// emitted list just means no opportunities met the criteria.
type Stats struct {
	RawCount   int
	Invalid    int
	Rejected   int
	Duplicates int
	Emitted    int
}
