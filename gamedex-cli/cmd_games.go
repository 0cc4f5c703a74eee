package main

import (
	"context"
	"fmt"
	"os"
	"time"
)

func handleGamesCommand(ctx context.Context, _ []string) {
	database, err := openDB(ctx)
	if err != nil {
		PrintError("Error: failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	games, err := database.ListGames(ctx)
	if err != nil {
		PrintError("Error: failed to list games: %v\n", err)
		os.Exit(1)
	}

	if outputCfg.JSON {
		PrintResult(map[string]interface{}{"games": games, "total": len(games)})
		return
	}

	if len(games) == 0 {
		fmt.Println("Library is empty. Add games with: gamedex add <name>")
		return
	}

	rows := make([][]string, 0, len(games))
	for _, g := range games {
		released := "-"
		if g.ReleaseDate > 0 {
			released = time.UnixMilli(g.ReleaseDate).Format("2006-01-02")
		}
		artwork := "pending"
		if g.HasArtwork() {
			artwork = "✓"
		}
		state, _ := database.GetPlayState(ctx, g.ID)
		if state == "" {
			state = "-"
		}
		rows = append(rows, []string{g.Name, g.SortName, released, artwork, state})
	}
	PrintTable([]string{"Name", "Sort Name", "Released", "Artwork", "Shelf"}, rows)
	PrintInfo("\n%d game(s)\n", len(games))
}
