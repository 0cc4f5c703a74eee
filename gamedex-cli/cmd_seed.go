package main

import (
	"context"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mrowan/gamedex/gamedex-lib/db"
	"github.com/mrowan/gamedex/gamedex-lib/steam"
)

const seedPageSize = 10000

// handleSeedCommand downloads the Steam app list into the suggestion
// index. Safe to re-run: entries are upserted by appid.
func handleSeedCommand(ctx context.Context, _ []string) {
	key := cfg.SteamAPIKey
	if key == "" {
		PrintError("Error: STEAM_API_KEY environment variable required\n")
		os.Exit(1)
	}

	client, err := steam.NewClient(key, cfg.GetHTTPTimeout())
	if err != nil {
		PrintError("Error: failed to create Steam client: %v\n", err)
		os.Exit(1)
	}

	database, err := openDB(ctx)
	if err != nil {
		PrintError("Error: failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	PrintInfo("Seeding suggestion index from Steam...\n")

	var bar *progressbar.ProgressBar
	if !outputCfg.Quiet && !outputCfg.JSON {
		bar = progressbar.Default(-1, "Seeding")
	}

	start := time.Now()
	total := 0
	err = client.AllApps(ctx, seedPageSize, func(apps []steam.App) error {
		batch := make([]db.SteamApp, 0, len(apps))
		for _, a := range apps {
			if a.Name == "" {
				continue
			}
			batch = append(batch, db.SteamApp{
				AppID:        a.AppID,
				Name:         a.Name,
				LastModified: a.LastModified,
			})
		}
		if err := database.UpsertSteamApps(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		if bar != nil {
			_ = bar.Add(len(batch))
		}
		return nil
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		PrintError("Error: seeding failed: %v\n", err)
		os.Exit(1)
	}

	if outputCfg.JSON {
		PrintResult(map[string]interface{}{"seeded": total})
		return
	}
	PrintInfo("✓ Seeded %d entries in %s\n", total, time.Since(start).Round(time.Second))
}
