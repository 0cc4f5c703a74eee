package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mrowan/gamedex/gamedex-lib/catalog"
)

func handleSearchCommand(ctx context.Context, args []string) {
	query := strings.Join(args, " ")

	database, err := openDB(ctx)
	if err != nil {
		PrintError("Error: failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	// Without an API key searches are local-only; with one a miss is
	// resolved against the external catalog.
	var svc *catalog.Service
	stack, err := newCatalogStack(database)
	if err != nil {
		svc = catalog.NewService(database, nil)
	} else {
		defer stack.Close()
		svc = catalog.NewService(database, stack.resolver)
	}

	results, err := svc.Search(ctx, query, catalog.DefaultSearchLimit)
	if err != nil {
		PrintError("Error: search failed: %v\n", err)
		os.Exit(1)
	}

	if outputCfg.JSON {
		PrintResult(map[string]interface{}{"results": results})
		return
	}

	if len(results) == 0 {
		fmt.Printf("No results for '%s'\n", query)
		return
	}

	rows := make([][]string, 0, len(results))
	for _, g := range results {
		released := "-"
		if g.ReleaseDate > 0 {
			released = time.UnixMilli(g.ReleaseDate).Format("2006-01-02")
		}
		artwork := "pending"
		if g.GridURL != "" {
			artwork = "✓"
		}
		rows = append(rows, []string{g.Name, g.SortName, released, artwork})
	}
	PrintTable([]string{"Name", "Sort Name", "Released", "Artwork"}, rows)
}
