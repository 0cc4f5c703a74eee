package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Game represents a single entry in the library.
//
// The three digest fields reference blobs in the content-addressed store.
// They are empty until artwork ingestion completes, and are always set
// together in a single update.
type Game struct {
	ID          int64
	Name        string
	SortName    string
	ReleaseDate int64 // unix millis
	GridDigest  string
	IconDigest  string
	HeroDigest  string
}

// HasArtwork reports whether the game's asset slots have been populated.
func (g *Game) HasArtwork() bool {
	return g.GridDigest != "" && g.IconDigest != "" && g.HeroDigest != ""
}

const gameColumns = `id, name, sort_name, release_date,
	COALESCE(grid_digest, ''), COALESCE(icon_digest, ''), COALESCE(hero_digest, '')`

func scanGame(row interface{ Scan(...any) error }) (*Game, error) {
	var g Game
	err := row.Scan(&g.ID, &g.Name, &g.SortName, &g.ReleaseDate,
		&g.GridDigest, &g.IconDigest, &g.HeroDigest)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// InsertGame creates a new game record with empty asset slots.
// Fails with ErrDuplicate if the sort name is already taken.
func (db *DB) InsertGame(ctx context.Context, name, sortName string, releaseDate int64) (int64, error) {
	if name == "" || sortName == "" {
		return 0, &StoreError{Op: "insert game", Key: sortName, Err: ErrInvalidArg}
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO games (name, sort_name, release_date) VALUES (?, ?, ?)`,
		name, sortName, releaseDate)
	if err != nil {
		return 0, WrapDBError(err, "insert game", sortName)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, WrapDBError(err, "insert game", sortName)
	}
	return id, nil
}

// GetGameBySortName looks up a game by its unique sort name.
func (db *DB) GetGameBySortName(ctx context.Context, sortName string) (*Game, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE sort_name = ?`, sortName)

	g, err := scanGame(row)
	if err != nil {
		return nil, WrapDBError(err, "get game by sort name", sortName)
	}
	return g, nil
}

// GetGameByID looks up a game by id.
func (db *DB) GetGameByID(ctx context.Context, id int64) (*Game, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = ?`, id)

	g, err := scanGame(row)
	if err != nil {
		return nil, WrapDBError(err, "get game", fmt.Sprintf("%d", id))
	}
	return g, nil
}

// ListGames returns every game ordered by sort name.
func (db *DB) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games ORDER BY sort_name`)
	if err != nil {
		return nil, WrapDBError(err, "list games", "")
	}
	defer func() { _ = rows.Close() }()

	return collectGames(rows)
}

// SearchGames returns games whose name matches the query text, best match
// first, up to limit.
func (db *DB) SearchGames(ctx context.Context, text string, limit int) ([]Game, error) {
	match := ftsQuery(text)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		JOIN (
			SELECT rowid, rank FROM games_fts WHERE games_fts MATCH ? ORDER BY rank LIMIT ?
		) AS hits ON hits.rowid = games.id
		ORDER BY hits.rank
	`, match, limit)
	if err != nil {
		return nil, WrapDBError(err, "search games", text)
	}
	defer func() { _ = rows.Close() }()

	return collectGames(rows)
}

// SetGameArtwork assigns all three asset digests in one atomic update.
// A record's artwork is set at most once; re-assignment fails with
// ErrArtworkSet so a partially repeated ingestion cannot clobber slots.
func (db *DB) SetGameArtwork(ctx context.Context, id int64, grid, icon, hero string) error {
	if grid == "" || icon == "" || hero == "" {
		return &StoreError{Op: "set artwork", Key: fmt.Sprintf("%d", id), Err: ErrInvalidArg}
	}

	res, err := db.conn.ExecContext(ctx, `
		UPDATE games SET grid_digest = ?, icon_digest = ?, hero_digest = ?
		WHERE id = ? AND grid_digest IS NULL AND icon_digest IS NULL AND hero_digest IS NULL
	`, grid, icon, hero, id)
	if err != nil {
		return WrapDBError(err, "set artwork", fmt.Sprintf("%d", id))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return WrapDBError(err, "set artwork", fmt.Sprintf("%d", id))
	}
	if affected == 0 {
		// Either the game is missing or its slots are already populated.
		if _, err := db.GetGameByID(ctx, id); err != nil {
			return err
		}
		return &StoreError{Op: "set artwork", Key: fmt.Sprintf("%d", id), Err: ErrArtworkSet}
	}
	return nil
}

// CountGames returns the total number of games.
func (db *DB) CountGames(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM games").Scan(&n); err != nil {
		return 0, WrapDBError(err, "count games", "")
	}
	return n, nil
}

func collectGames(rows *sql.Rows) ([]Game, error) {
	var games []Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, WrapDBError(err, "scan game", "")
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapDBError(err, "scan games", "")
	}
	return games, nil
}

// ftsQuery converts free text into an FTS5 match expression. Each token is
// quoted so user input cannot inject FTS operators, and the last token is
// treated as a prefix to make incremental search useful.
func ftsQuery(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, `""`)
		quoted = append(quoted, `"`+f+`"`)
	}
	quoted[len(quoted)-1] += "*"

	return strings.Join(quoted, " ")
}
