// Package db implements the gamedex record store on SQLite.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection with game library functionality.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens or creates a SQLite database at the given path.
func Open(ctx context.Context, path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{conn: conn, path: path}
	if err := db.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// migrate runs database migrations up to the current schema version.
func (db *DB) migrate(ctx context.Context) error {
	// Create schema version table if not exists
	if _, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Get current version
	var version int
	err := db.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Run migrations
	if version < 1 {
		if err := db.migrateV1(ctx); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := db.migrateV2(ctx); err != nil {
			return err
		}
	}
	if version < 3 {
		if err := db.migrateV3(ctx); err != nil {
			return err
		}
	}
	if version < 4 {
		if err := db.migrateV4(ctx); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the games table and its full-text index.
func (db *DB) migrateV1(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			sort_name TEXT UNIQUE NOT NULL,
			release_date INTEGER NOT NULL,
			grid_digest TEXT,
			icon_digest TEXT,
			hero_digest TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		CREATE VIRTUAL TABLE IF NOT EXISTS games_fts USING fts5(
			name,
			content='games',
			content_rowid='id'
		);

		CREATE TRIGGER IF NOT EXISTS games_fts_insert AFTER INSERT ON games BEGIN
			INSERT INTO games_fts(rowid, name) VALUES (new.id, new.name);
		END;

		CREATE TRIGGER IF NOT EXISTS games_fts_delete AFTER DELETE ON games BEGIN
			INSERT INTO games_fts(games_fts, rowid, name) VALUES ('delete', old.id, old.name);
		END;

		INSERT INTO schema_version (version) VALUES (1);
	`
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migration v1 failed: %w", err)
	}
	return nil
}

// migrateV2 creates the blob index for the content-addressed store.
func (db *DB) migrateV2(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS blobs (
			digest TEXT PRIMARY KEY,
			mime TEXT NOT NULL,
			size INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		INSERT INTO schema_version (version) VALUES (2);
	`
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migration v2 failed: %w", err)
	}
	return nil
}

// migrateV3 creates the Steam catalog seed table.
func (db *DB) migrateV3(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS steam_apps (
			appid INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			last_modified INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_steam_apps_name ON steam_apps(name);

		INSERT INTO schema_version (version) VALUES (3);
	`
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migration v3 failed: %w", err)
	}
	return nil
}

// migrateV4 creates the play state shelf.
func (db *DB) migrateV4(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS play_states (
			game_id INTEGER PRIMARY KEY REFERENCES games(id) ON DELETE CASCADE,
			state TEXT NOT NULL CHECK(state IN ('want_to_buy', 'want_to_play', 'playing', 'completed')),
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);

		INSERT INTO schema_version (version) VALUES (4);
	`
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migration v4 failed: %w", err)
	}
	return nil
}
