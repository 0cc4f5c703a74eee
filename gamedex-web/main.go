package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/mrowan/gamedex/gamedex-lib/blobstore"
	"github.com/mrowan/gamedex/gamedex-lib/catalog"
	"github.com/mrowan/gamedex/gamedex-lib/config"
	"github.com/mrowan/gamedex/gamedex-lib/db"
	"github.com/mrowan/gamedex/gamedex-lib/logging"
	"github.com/mrowan/gamedex/gamedex-lib/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: failed to load config: %v", err)
		cfg = config.DefaultConfig()
	}

	logging.Setup(logging.Config{
		Format: cfg.Logging.Format,
		Level:  cfg.Logging.Level,
	})

	ctx := context.Background()

	shutdown, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		log.Printf("Warning: failed to set up tracing: %v", err)
	} else {
		defer func() { _ = shutdown(ctx) }()
	}

	database, err := db.Open(ctx, cfg.GetDBPath())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = database.Close() }()

	blobs, err := blobstore.New(cfg.GetBlobDir())
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	// The external catalog is optional: without an API key the server
	// still serves the local library, it just can't acquire new games.
	var resolver *catalog.Resolver
	var scheduler *catalog.Scheduler
	if cfg.SteamGridDBKey != "" {
		source, err := catalog.NewSGDBClient(cfg.SteamGridDBKey, cfg.GetHTTPTimeout())
		if err != nil {
			log.Fatalf("Failed to create SteamGridDB client: %v", err)
		}
		scheduler = catalog.NewScheduler(cfg.GetWorkers())
		defer scheduler.Close()
		ingestor := catalog.NewIngestor(database, blobs, source, cfg.GetHTTPTimeout())
		resolver = catalog.NewResolver(database, source, scheduler, ingestor)
	} else {
		logging.Warn("no SteamGridDB key configured, catalog acquisition disabled")
	}

	svc := catalog.NewService(database, resolver)
	server := NewServer(database, svc, blobs)

	fmt.Printf("🎮 gamedex\n")
	fmt.Printf("   http://localhost:%s\n\n", cfg.Port)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
