package db

import (
	"context"
	"errors"
	"fmt"
)

// Play states a game can be shelved under.
const (
	StateWantToBuy  = "want_to_buy"
	StateWantToPlay = "want_to_play"
	StatePlaying    = "playing"
	StateCompleted  = "completed"
)

// ValidPlayState reports whether s is a recognized play state.
func ValidPlayState(s string) bool {
	switch s {
	case StateWantToBuy, StateWantToPlay, StatePlaying, StateCompleted:
		return true
	}
	return false
}

// SetPlayState shelves a game under the given state, replacing any
// previous state.
func (db *DB) SetPlayState(ctx context.Context, gameID int64, state string) error {
	if !ValidPlayState(state) {
		return &StoreError{Op: "set play state", Key: state, Err: ErrInvalidArg}
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO play_states (game_id, state, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(game_id) DO UPDATE SET
			state = excluded.state,
			updated_at = CURRENT_TIMESTAMP
	`, gameID, state)
	if err != nil {
		return WrapDBError(err, "set play state", fmt.Sprintf("%d", gameID))
	}
	return nil
}

// GetPlayState returns a game's shelf state, or "" when unshelved.
func (db *DB) GetPlayState(ctx context.Context, gameID int64) (string, error) {
	var state string
	err := db.conn.QueryRowContext(ctx,
		`SELECT state FROM play_states WHERE game_id = ?`, gameID).Scan(&state)
	if err != nil {
		wrapped := WrapDBError(err, "get play state", fmt.Sprintf("%d", gameID))
		if errors.Is(wrapped, ErrNotFound) {
			return "", nil
		}
		return "", wrapped
	}
	return state, nil
}

// ListGamesByPlayState returns every game shelved under the given state,
// ordered by sort name.
func (db *DB) ListGamesByPlayState(ctx context.Context, state string) ([]Game, error) {
	if !ValidPlayState(state) {
		return nil, &StoreError{Op: "list by play state", Key: state, Err: ErrInvalidArg}
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE id IN (SELECT game_id FROM play_states WHERE state = ?)
		ORDER BY sort_name
	`, state)
	if err != nil {
		return nil, WrapDBError(err, "list by play state", state)
	}
	defer func() { _ = rows.Close() }()

	return collectGames(rows)
}
