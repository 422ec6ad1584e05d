package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"github.com/jturner/defence-radar/internal/curation"
	"github.com/jturner/defence-radar/internal/db"
	"github.com/jturner/defence-radar/internal/models"
	"github.com/jturner/defence-radar/internal/sources"
)

func main() {
	profilePath := flag.String("profile", "", "path to a curation profile yaml (default: embedded)")
	sourcesPath := flag.String("sources", "", "path to a source registry yaml (default: embedded)")
	dryRun := flag.Bool("dry-run", false, "fetch and curate without writing to the database")
	top := flag.Int("top", 15, "how many ranked opportunities to print")
	timeout := flag.Duration("timeout", 20*time.Minute, "overall run timeout")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found, using environment")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	profile, err := curation.DefaultProfile()
	if *profilePath != "" {
		profile, err = curation.LoadProfile(*profilePath)
	}
	if err != nil {
		log.Fatalf("profile: %v", err)
	}

	curator, err := curation.NewCurator(profile)
	if err != nil {
		log.Fatalf("curator: %v", err)
	}

	reg, err := sources.LoadRegistry(*sourcesPath)
	if err != nil {
		log.Fatalf("registry: %v", err)
	}

	var store *db.Store
	if !*dryRun {
		pool, err := db.Connect(ctx)
		if err != nil {
			log.Fatalf("db connect failed: %v", err)
		}
		defer pool.Close()

		if err := db.ApplyMigrations(ctx, pool); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
		store = db.NewStore(pool)
	}

	aggregator, err := sources.NewAggregatorFromRegistry(reg, curator, store)
	if err != nil {
		log.Fatalf("aggregator: %v", err)
	}

	result, err := aggregator.Aggregate(ctx)
	if err != nil {
		log.Fatalf("aggregation failed: %v", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Run", "Sources", "Failed", "Raw", "Invalid", "Rejected", "Duplicates", "Emitted"})
	t.AppendRow(table.Row{result.Run.RunID[:8], result.Run.SourcesTotal, result.Run.SourcesFailed,
		result.Stats.RawCount, result.Stats.Invalid, result.Stats.Rejected, result.Stats.Duplicates, result.Stats.Emitted})
	t.Render()

	if *top > 0 {
		printTopFeed(result.Feed, *top)
	}
}

func printTopFeed(feed []models.Opportunity, top int) {
	if len(feed) == 0 {
		return
	}
	if len(feed) > top {
		feed = feed[:top]
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Title", "Body", "Closes", "Score", "Tier", "Tech Areas"})
	for i, opp := range feed {
		t.AppendRow(table.Row{
			i + 1,
			curation.TruncateText(opp.Title, 60),
			curation.TruncateText(opp.FundingBody, 30),
			opp.ClosingDate.Format("2006-01-02"),
			strconv.FormatFloat(opp.Metadata.CompositeScore, 'f', 3, 64),
			opp.TierRequired,
			curation.TruncateText(strings.Join(opp.TechAreas, ", "), 40),
		})
	}
	t.Render()
}
