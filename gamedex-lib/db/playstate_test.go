package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPlayState(t *testing.T) {
	for _, s := range []string{StateWantToBuy, StateWantToPlay, StatePlaying, StateCompleted} {
		assert.True(t, ValidPlayState(s), s)
	}
	assert.False(t, ValidPlayState("abandoned"))
	assert.False(t, ValidPlayState(""))
}

func TestSetAndGetPlayState(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.InsertGame(ctx, "Portal", "portal", 0)
	require.NoError(t, err)

	state, err := db.GetPlayState(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, state, "unshelved game has no state")

	require.NoError(t, db.SetPlayState(ctx, id, StatePlaying))

	state, err = db.GetPlayState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatePlaying, state)

	// Replacing the state keeps one row per game.
	require.NoError(t, db.SetPlayState(ctx, id, StateCompleted))

	state, err = db.GetPlayState(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, state)
}

func TestSetPlayState_InvalidState(t *testing.T) {
	db := openTestDB(t)

	err := db.SetPlayState(context.Background(), 1, "abandoned")
	assert.ErrorIs(t, err, ErrInvalidArg)
}

func TestSetPlayState_MissingGame(t *testing.T) {
	db := openTestDB(t)

	err := db.SetPlayState(context.Background(), 9999, StatePlaying)
	assert.Error(t, err, "foreign key should reject unknown game")
}

func TestListGamesByPlayState(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	portal, err := db.InsertGame(ctx, "Portal", "portal", 0)
	require.NoError(t, err)
	doom, err := db.InsertGame(ctx, "Doom", "doom", 0)
	require.NoError(t, err)

	require.NoError(t, db.SetPlayState(ctx, portal, StateCompleted))
	require.NoError(t, db.SetPlayState(ctx, doom, StateCompleted))

	games, err := db.ListGamesByPlayState(ctx, StateCompleted)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "doom", games[0].SortName)

	games, err = db.ListGamesByPlayState(ctx, StatePlaying)
	require.NoError(t, err)
	assert.Empty(t, games)

	_, err = db.ListGamesByPlayState(ctx, "bogus")
	assert.ErrorIs(t, err, ErrInvalidArg)
}
