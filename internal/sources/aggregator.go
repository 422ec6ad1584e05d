package sources

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jturner/defence-radar/internal/curation"
	"github.com/jturner/defence-radar/internal/db"
	"github.com/jturner/defence-radar/internal/models"
)

// Aggregator runs one full pass: fetch every active source, curate the raw
// candidates, and replace the stored feed with the ranked result.
type Aggregator struct {
	Runner  *Runner
	Curator *curation.Curator
	Store   *db.Store
}

func NewAggregator(runner *Runner, curator *curation.Curator, store *db.Store) *Aggregator {
	return &Aggregator{Runner: runner, Curator: curator, Store: store}
}

// NewAggregatorFromRegistry wires connectors from the source registry with a
// shared rate-limited fetcher.
func NewAggregatorFromRegistry(reg *Registry, curator *curation.Curator, store *db.Store) (*Aggregator, error) {
	fetcher := NewRateLimitedFetcher(FetchConfig{
		TimeoutSeconds: 30,
		MaxRetries:     3,
		RateLimitRPS:   1.0,
	})
	connectors, err := BuildConnectors(reg, fetcher)
	if err != nil {
		return nil, err
	}
	return NewAggregator(NewRunner(connectors), curator, store), nil
}

// AggregateResult is what one completed run produced.
type AggregateResult struct {
	Run   models.AggregationRun
	Stats curation.Stats
	Feed  []models.Opportunity
}

// Aggregate executes a run end to end and records it. A run with some failed
// sources still completes with whatever the healthy sources produced; only a
// run where persistence fails is marked failed.
func (a *Aggregator) Aggregate(ctx context.Context) (AggregateResult, error) {
	run := models.AggregationRun{
		RunID:        uuid.NewString(),
		Status:       "running",
		SourcesTotal: len(a.Runner.connectors),
		StartedAt:    time.Now().UTC(),
	}
	if a.Store != nil {
		if err := a.Store.CreateRun(ctx, run); err != nil {
			log.Printf("[aggregate] could not record run %s: %v", run.RunID, err)
		}
	}

	fetched := a.Runner.Run(ctx)
	run.SourcesFailed = fetched.Failed()
	run.RawCount = len(fetched.Raws)

	opps, stats := a.Curator.Run(fetched.Raws, time.Now().UTC())
	run.EmittedCount = stats.Emitted

	feed := a.Curator.FeedItems(opps, time.Now().UTC())

	var saveErr error
	if a.Store != nil {
		saveErr = a.Store.ReplaceBatch(ctx, feed)
	}

	run.Status = "completed"
	if saveErr != nil {
		run.Status = "failed"
	}
	if a.Store != nil {
		if err := a.Store.CompleteRun(ctx, run); err != nil {
			log.Printf("[aggregate] could not finalize run %s: %v", run.RunID, err)
		}
	}

	result := AggregateResult{Run: run, Stats: stats, Feed: feed}
	if saveErr != nil {
		return result, fmt.Errorf("persisting feed: %w", saveErr)
	}

	log.Printf("[aggregate] run %s: %d sources (%d failed), %d raw, %d emitted",
		run.RunID, run.SourcesTotal, run.SourcesFailed, run.RawCount, run.EmittedCount)
	return result, nil
}
