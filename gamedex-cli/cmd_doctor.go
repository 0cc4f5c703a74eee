package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mrowan/gamedex/gamedex-lib/blobstore"
)

func handleDoctorCommand(ctx context.Context, _ []string) {
	fmt.Println("Running library health checks...")
	database, err := openDB(ctx)
	if err != nil {
		PrintError("Error: failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	issues := []string{}
	checks := []map[string]interface{}{}

	// Check 1: Database integrity
	var integrity string
	err = database.Conn().QueryRow("PRAGMA integrity_check").Scan(&integrity)
	dbCheck := map[string]interface{}{
		"name":   "database_integrity",
		"status": "pass",
	}
	if err != nil || integrity != "ok" {
		dbCheck["status"] = "fail"
		dbCheck["error"] = integrity
		issues = append(issues, fmt.Sprintf("Database integrity check failed: %s", integrity))
	}
	checks = append(checks, dbCheck)

	// Check 2: Games with partially assigned artwork. The assignment is a
	// single atomic update, so a partial row means manual tampering.
	var partial int
	err = database.Conn().QueryRow(`
		SELECT COUNT(*) FROM games
		WHERE (grid_digest IS NULL) != (icon_digest IS NULL)
		   OR (grid_digest IS NULL) != (hero_digest IS NULL)
	`).Scan(&partial)
	partialCheck := map[string]interface{}{
		"name":   "partial_artwork",
		"status": "pass",
		"count":  partial,
	}
	if err != nil {
		partialCheck["status"] = "error"
		partialCheck["error"] = err.Error()
	} else if partial > 0 {
		partialCheck["status"] = "fail"
		issues = append(issues, fmt.Sprintf("Found %d game(s) with partial artwork", partial))
	}
	checks = append(checks, partialCheck)

	// Check 3: Indexed blobs missing from the on-disk store
	blobs, blobErr := blobstore.New(cfg.GetBlobDir())
	blobCheck := map[string]interface{}{
		"name":   "blob_store",
		"status": "pass",
	}
	if blobErr != nil {
		blobCheck["status"] = "error"
		blobCheck["error"] = blobErr.Error()
	} else {
		digests, err := database.ListBlobDigests(ctx)
		if err != nil {
			blobCheck["status"] = "error"
			blobCheck["error"] = err.Error()
		} else {
			var missing []string
			for _, d := range digests {
				if !blobs.Has(d) {
					missing = append(missing, d)
				}
			}
			blobCheck["indexed"] = len(digests)
			if len(missing) > 0 {
				blobCheck["status"] = "warn"
				blobCheck["missing"] = len(missing)
				issues = append(issues, fmt.Sprintf("%d indexed blob(s) missing from disk", len(missing)))
			}
		}
	}
	checks = append(checks, blobCheck)

	// Check 4: Artwork digests not present in the blob index
	var dangling int
	err = database.Conn().QueryRow(`
		SELECT COUNT(*) FROM games g
		WHERE g.grid_digest IS NOT NULL
		  AND (g.grid_digest NOT IN (SELECT digest FROM blobs)
		    OR g.icon_digest NOT IN (SELECT digest FROM blobs)
		    OR g.hero_digest NOT IN (SELECT digest FROM blobs))
	`).Scan(&dangling)
	danglingCheck := map[string]interface{}{
		"name":   "dangling_artwork",
		"status": "pass",
		"count":  dangling,
	}
	if err != nil {
		danglingCheck["status"] = "error"
		danglingCheck["error"] = err.Error()
	} else if dangling > 0 {
		danglingCheck["status"] = "warn"
		issues = append(issues, fmt.Sprintf("Found %d game(s) referencing unindexed blobs", dangling))
	}
	checks = append(checks, danglingCheck)

	result := map[string]interface{}{
		"checks": checks,
		"issues": len(issues),
		"status": "healthy",
	}
	if len(issues) > 0 {
		result["status"] = "issues_found"
	}

	if outputCfg.JSON {
		PrintResult(result)
		return
	}

	fmt.Println("Library Health Check")
	fmt.Println("====================")
	fmt.Println()

	for _, check := range checks {
		status := check["status"].(string)
		icon := "✓"
		switch status {
		case "fail":
			icon = "✗"
		case "warn":
			icon = "⚠"
		}
		fmt.Printf("%s %s: %s\n", icon, check["name"], status)
	}

	fmt.Println()
	if len(issues) == 0 {
		fmt.Println("All checks passed!")
	} else {
		fmt.Printf("Found %d issue(s):\n", len(issues))
		for _, issue := range issues {
			fmt.Printf("  - %s\n", issue)
		}
	}
}
