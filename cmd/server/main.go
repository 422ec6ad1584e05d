package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/jturner/defence-radar/internal/api"
	"github.com/jturner/defence-radar/internal/curation"
	"github.com/jturner/defence-radar/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found, using environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	store := db.NewStore(pool)
	if failed, err := store.FailStaleRuns(ctx); err != nil {
		log.Printf("Stale run cleanup failed: %v", err)
	} else if failed > 0 {
		log.Printf("Marked %d stale aggregation runs as failed", failed)
	}

	profile, err := curation.DefaultProfile()
	if path := os.Getenv("CURATION_PROFILE"); path != "" {
		profile, err = curation.LoadProfile(path)
	}
	if err != nil {
		log.Fatalf("Failed to load curation profile: %v", err)
	}
	curator, err := curation.NewCurator(profile)
	if err != nil {
		log.Fatalf("Failed to build curator: %v", err)
	}

	srv := api.NewServer(pool, curator)
	log.Printf("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
