package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mrowan/gamedex/gamedex-lib/blobstore"
	"github.com/mrowan/gamedex/gamedex-lib/catalog"
	"github.com/mrowan/gamedex/gamedex-lib/db"
)

// catalogStack is the wired acquisition pipeline. Close drains any
// in-flight artwork ingestion before the process exits.
type catalogStack struct {
	resolver  *catalog.Resolver
	scheduler *catalog.Scheduler
}

func (c *catalogStack) Close() {
	if c.scheduler != nil {
		c.scheduler.Close()
	}
}

func newCatalogStack(database *db.DB) (*catalogStack, error) {
	key := cfg.SteamGridDBKey
	if key == "" {
		return nil, fmt.Errorf("STEAMGRIDDB_KEY environment variable required")
	}

	source, err := catalog.NewSGDBClient(key, cfg.GetHTTPTimeout())
	if err != nil {
		return nil, err
	}

	blobs, err := blobstore.New(cfg.GetBlobDir())
	if err != nil {
		return nil, err
	}

	scheduler := catalog.NewScheduler(cfg.GetWorkers())
	ingestor := catalog.NewIngestor(database, blobs, source, cfg.GetHTTPTimeout())
	resolver := catalog.NewResolver(database, source, scheduler, ingestor)

	return &catalogStack{resolver: resolver, scheduler: scheduler}, nil
}

func handleAddCommand(ctx context.Context, args []string) {
	database, err := openDB(ctx)
	if err != nil {
		PrintError("Error: failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	stack, err := newCatalogStack(database)
	if err != nil {
		PrintError("Error: %v\n", err)
		os.Exit(1)
	}

	PrintInfo("Adding %d game(s)...\n", len(args))
	start := time.Now()

	added := stack.resolver.ResolveMany(ctx, args)

	// Wait for artwork downloads before exiting.
	stack.Close()

	if outputCfg.JSON {
		PrintResult(map[string]interface{}{
			"requested": len(args),
			"added":     len(added),
			"ids":       added,
		})
		return
	}

	PrintInfo("✓ Added %d of %d in %s\n", len(added), len(args), time.Since(start).Round(time.Millisecond))
	if len(added) < len(args) {
		PrintInfo("  (skipped names were already present or had no metadata)\n")
	}
}
