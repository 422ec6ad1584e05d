package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/jturner/defence-radar/internal/curation"
)

type fakeConnector struct {
	name       string
	sourceType curation.SourceType
	raws       []curation.RawCandidate
	err        error
}

func (f fakeConnector) Name() string                    { return f.name }
func (f fakeConnector) SourceType() curation.SourceType { return f.sourceType }
func (f fakeConnector) Fetch(ctx context.Context) ([]curation.RawCandidate, error) {
	return f.raws, f.err
}

func TestRunnerRun(t *testing.T) {
	connectors := []Connector{
		fakeConnector{
			name:       "alpha",
			sourceType: curation.SourceUKOfficial,
			raws: []curation.RawCandidate{
				{Title: "First notice", Source: "alpha"},
				{Title: "Second notice", Source: "alpha"},
			},
		},
		fakeConnector{
			name:       "beta",
			sourceType: curation.SourceAccelerator,
			raws: []curation.RawCandidate{
				{Title: "Third notice", Source: "beta"},
			},
		},
		fakeConnector{
			name:       "broken",
			sourceType: curation.SourceIndustryNews,
			err:        errors.New("connection refused"),
		},
	}

	result := NewRunner(connectors).Run(context.Background())

	if len(result.Raws) != 3 {
		t.Errorf("expected 3 raws merged, got %d", len(result.Raws))
	}
	if len(result.Results) != 3 {
		t.Fatalf("expected 3 source results, got %d", len(result.Results))
	}
	if result.Failed() != 1 {
		t.Errorf("expected 1 failed source, got %d", result.Failed())
	}

	byID := make(map[string]SourceResult)
	for _, res := range result.Results {
		byID[res.SourceID] = res
	}
	if byID["alpha"].Count != 2 {
		t.Errorf("expected alpha count 2, got %d", byID["alpha"].Count)
	}
	if byID["alpha"].Err != nil {
		t.Errorf("expected alpha success, got %v", byID["alpha"].Err)
	}
	if byID["broken"].Err == nil {
		t.Error("expected broken source to carry its error")
	}
	if byID["broken"].Count != 0 {
		t.Errorf("expected broken count 0, got %d", byID["broken"].Count)
	}
}

func TestRunnerRun_NoConnectors(t *testing.T) {
	result := NewRunner(nil).Run(context.Background())
	if len(result.Raws) != 0 || len(result.Results) != 0 {
		t.Errorf("expected empty result, got %d raws, %d results", len(result.Raws), len(result.Results))
	}
	if result.Failed() != 0 {
		t.Errorf("expected 0 failed, got %d", result.Failed())
	}
}
