package main

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/baggage"

	"github.com/mrowan/gamedex/gamedex-lib/config"
	"github.com/mrowan/gamedex/gamedex-lib/db"
	"github.com/mrowan/gamedex/gamedex-lib/logging"
	"github.com/mrowan/gamedex/gamedex-lib/tracing"
)

var cfg *config.Config

func main() {
	ctx := context.Background()

	// Set global baggage
	m, _ := baggage.NewMember("app.version", "1.0.0")
	b, _ := baggage.New(m)
	ctx = baggage.ContextWithBaggage(ctx, b)

	// Load config
	var err error
	cfg, err = config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// Setup Logging
	logging.Setup(logging.Config{
		Format: cfg.Logging.Format,
		Level:  cfg.Logging.Level,
	})

	// Setup Tracing
	shutdown, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		logging.Error("failed to setup tracing", "error", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			logging.Error("failed to shutdown tracing", "error", err)
		}
	}()

	// Parse global flags (--json, --quiet)
	args := parseGlobalFlags(os.Args[1:])

	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "add":
		if len(args) < 2 {
			fmt.Println("Usage: gamedex add <name> [name...]")
			os.Exit(1)
		}
		handleAddCommand(ctx, args[1:])
	case "search":
		if len(args) < 2 {
			fmt.Println("Usage: gamedex search <query>")
			os.Exit(1)
		}
		handleSearchCommand(ctx, args[1:])
	case "games":
		handleGamesCommand(ctx, args[1:])
	case "shelf":
		if len(args) < 2 {
			fmt.Println("Usage: gamedex shelf <command>")
			fmt.Println("Commands: set, list")
			os.Exit(1)
		}
		handleShelfCommand(ctx, args[1:])
	case "seed":
		handleSeedCommand(ctx, args[1:])
	case "doctor":
		handleDoctorCommand(ctx, args[1:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("gamedex - Game Library Manager")
	fmt.Println()
	fmt.Println("Usage: gamedex [global options] <command> [options]")
	fmt.Println()
	fmt.Println("Global Options:")
	fmt.Println("  --json                              Output in JSON format")
	fmt.Println("  --quiet, -q                         Suppress non-error output")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  add <name> [name...]                Add games to the library")
	fmt.Println("  search <query>                      Search the library (adds on miss)")
	fmt.Println("  games                               List all games")
	fmt.Println("  shelf set <sort_name> <state>       Shelve a game")
	fmt.Println("  shelf list <state>                  List games by shelf state")
	fmt.Println("  seed                                Seed the suggestion index from Steam")
	fmt.Println("  doctor                              Run library health checks")
	fmt.Println("  help                                Show this help")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  GAMEDEX_DB                          Database path (default: gamedex.db)")
	fmt.Println("  GAMEDEX_BLOB_DIR                    Artwork store (default: blobs)")
	fmt.Println("  STEAMGRIDDB_KEY                     SteamGridDB API key")
	fmt.Println("  STEAM_API_KEY                       Steam Web API key (for seed)")
}

func openDB(ctx context.Context) (*db.DB, error) {
	return db.Open(ctx, cfg.GetDBPath())
}
