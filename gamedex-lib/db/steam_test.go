package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSteamApps(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	apps := []SteamApp{
		{AppID: 400, Name: "Portal", LastModified: 100},
		{AppID: 620, Name: "Portal 2", LastModified: 200},
	}
	require.NoError(t, db.UpsertSteamApps(ctx, apps))

	n, err := db.CountSteamApps(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-upsert updates in place instead of duplicating.
	apps[0].Name = "Portal (updated)"
	require.NoError(t, db.UpsertSteamApps(ctx, apps))

	n, err = db.CountSteamApps(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	found, err := db.SearchSteamApps(ctx, "Portal (", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(400), found[0].AppID)
}

func TestUpsertSteamApps_EmptyBatch(t *testing.T) {
	db := openTestDB(t)

	assert.NoError(t, db.UpsertSteamApps(context.Background(), nil))
}

func TestSearchSteamApps(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	apps := []SteamApp{
		{AppID: 400, Name: "Portal"},
		{AppID: 620, Name: "Portal 2"},
		{AppID: 70, Name: "Half-Life"},
	}
	require.NoError(t, db.UpsertSteamApps(ctx, apps))

	tests := []struct {
		name     string
		prefix   string
		limit    int
		expected int
	}{
		{"prefix match", "Portal", 10, 2},
		{"limit respected", "Portal", 1, 1},
		{"no match", "Doom", 10, 0},
		{"empty prefix", "", 10, 0},
		{"wildcard escaped", "%", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := db.SearchSteamApps(ctx, tt.prefix, tt.limit)
			require.NoError(t, err)
			assert.Len(t, found, tt.expected)
		})
	}
}

func TestLikePrefix(t *testing.T) {
	assert.Equal(t, "Portal%", likePrefix("Portal"))
	assert.Equal(t, `\%\_\\%`, likePrefix(`%_\`))
}
