// Command archive-migrate copies the legacy Mongo post archive into the
// generated_posts table. Reruns are safe: copied documents are flagged in
// Mongo and rows that already exist are skipped.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/nevisai/platform/internal/archive"
	"github.com/nevisai/platform/internal/config"
	"github.com/nevisai/platform/internal/db"
	"github.com/nevisai/platform/internal/posts"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "preview the first batch without writing anything")
	batch := flag.Int("batch", 200, "documents per batch")
	flag.Parse()

	config.Load()
	db.Connect()
	db.ConnectMongo()

	mongoDB := db.GetMongoDB()
	if mongoDB == nil {
		log.Fatal("MONGO_URI is not configured or the archive is unreachable")
	}

	store := archive.NewStore(mongoDB)
	total, migrated, err := store.Counts()
	if err != nil {
		log.Fatalf("Could not inspect archive: %v", err)
	}
	log.Printf("Archive holds %d posts, %d already migrated", total, migrated)

	migrator := archive.NewMigrator(store, posts.NewRepo(db.GetDB()), *batch, *dryRun)
	stats, err := migrator.Run(context.Background())
	if err != nil {
		log.Fatalf("Migration failed after importing %d posts: %v", stats.Imported, err)
	}

	if *dryRun {
		log.Printf("Dry run: previewed %d documents, nothing written", stats.Scanned)
		return
	}
	log.Printf("Migration finished: %d scanned, %d imported, %d skipped, %d failed",
		stats.Scanned, stats.Imported, stats.Skipped, stats.Failed)
}
