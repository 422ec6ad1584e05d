package sources

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jturner/defence-radar/internal/curation"
)

// SourceResult records the outcome of one connector's fetch.
type SourceResult struct {
	SourceID   string
	SourceType curation.SourceType
	Count      int
	Duration   time.Duration
	Err        error
}

// RunResult collects everything a concurrent fetch pass produced.
type RunResult struct {
	Raws    []curation.RawCandidate
	Results []SourceResult
}

// Failed returns how many connectors errored out.
func (r RunResult) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Runner executes connectors concurrently. One broken source never blocks
// the rest: each connector's failure is captured in its SourceResult and the
// run carries on.
type Runner struct {
	connectors []Connector
}

func NewRunner(connectors []Connector) *Runner {
	return &Runner{connectors: connectors}
}

func (r *Runner) Run(ctx context.Context) RunResult {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result RunResult
	)
	result.Results = make([]SourceResult, 0, len(r.connectors))

	for _, conn := range r.connectors {
		wg.Add(1)
		go func(conn Connector) {
			defer wg.Done()

			start := time.Now()
			raws, err := conn.Fetch(ctx)
			res := SourceResult{
				SourceID:   conn.Name(),
				SourceType: conn.SourceType(),
				Count:      len(raws),
				Duration:   time.Since(start),
				Err:        err,
			}
			if err != nil {
				log.Printf("[%s] fetch failed after %s: %v", conn.Name(), res.Duration.Round(time.Millisecond), err)
			}

			mu.Lock()
			result.Raws = append(result.Raws, raws...)
			result.Results = append(result.Results, res)
			mu.Unlock()
		}(conn)
	}

	wg.Wait()
	return result
}
