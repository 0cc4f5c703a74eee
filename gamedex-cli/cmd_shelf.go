package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mrowan/gamedex/gamedex-lib/db"
)

func handleShelfCommand(ctx context.Context, args []string) {
	switch args[0] {
	case "set":
		if len(args) < 3 {
			fmt.Println("Usage: gamedex shelf set <sort_name> <state>")
			fmt.Printf("States: %s, %s, %s, %s\n",
				db.StateWantToBuy, db.StateWantToPlay, db.StatePlaying, db.StateCompleted)
			os.Exit(1)
		}
		shelfSet(ctx, args[1], args[2])
	case "list":
		if len(args) < 2 {
			fmt.Println("Usage: gamedex shelf list <state>")
			os.Exit(1)
		}
		shelfList(ctx, args[1])
	default:
		fmt.Printf("Unknown shelf command: %s\n", args[0])
		os.Exit(1)
	}
}

func shelfSet(ctx context.Context, sortName, state string) {
	if !db.ValidPlayState(state) {
		PrintError("Error: invalid state '%s'\n", state)
		os.Exit(1)
	}

	database, err := openDB(ctx)
	if err != nil {
		PrintError("Error: failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	game, err := database.GetGameBySortName(ctx, sortName)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			PrintError("Error: no game with sort name '%s'\n", sortName)
		} else {
			PrintError("Error: %v\n", err)
		}
		os.Exit(1)
	}

	if err := database.SetPlayState(ctx, game.ID, state); err != nil {
		PrintError("Error: failed to set state: %v\n", err)
		os.Exit(1)
	}

	if outputCfg.JSON {
		PrintResult(map[string]interface{}{"game": game.Name, "state": state})
		return
	}
	PrintInfo("✓ %s → %s\n", game.Name, state)
}

func shelfList(ctx context.Context, state string) {
	database, err := openDB(ctx)
	if err != nil {
		PrintError("Error: failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = database.Close() }()

	games, err := database.ListGamesByPlayState(ctx, state)
	if err != nil {
		PrintError("Error: %v\n", err)
		os.Exit(1)
	}

	if outputCfg.JSON {
		PrintResult(map[string]interface{}{"state": state, "games": games})
		return
	}

	if len(games) == 0 {
		fmt.Printf("No games shelved as '%s'\n", state)
		return
	}
	for _, g := range games {
		fmt.Println(g.Name)
	}
}
