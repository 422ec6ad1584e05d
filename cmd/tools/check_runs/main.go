package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jturner/defence-radar/internal/db"
)

func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Run", "Status", "Sources", "Failed", "Raw", "Emitted", "Duration", "Started At"})

	for _, run := range runs {
		duration := "Running..."
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Second).String()
		}

		t.AppendRow(table.Row{run.RunID[:8], run.Status, run.SourcesTotal, run.SourcesFailed,
			run.RawCount, run.EmittedCount, duration, run.StartedAt.Format("15:04:05")})
	}
	t.Render()
}
