package sources

import (
	"context"
	"io"
	"time"

	"github.com/jturner/defence-radar/internal/curation"
)

// Connector produces raw candidate records from one external source. The
// pipeline treats connector output as untrusted: validation happens at the
// normalizer boundary, not here.
type Connector interface {
	Name() string
	SourceType() curation.SourceType
	Fetch(ctx context.Context) ([]curation.RawCandidate, error)
}

// FetchedDocument represents the raw result of a fetch operation.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
	Headers     map[string][]string
}

// Fetcher retrieves raw content from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedDocument, error)
}
