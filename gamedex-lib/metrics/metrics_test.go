package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrowan/gamedex/gamedex-lib/db"
)

func TestRecordIngestDuration(t *testing.T) {
	start := time.Now().Add(-100 * time.Millisecond)

	// Recorded successfully if no panic.
	RecordIngestDuration(start)
}

func TestResolveTotal_Counter(t *testing.T) {
	ResolveTotal.WithLabelValues(OutcomeAdded).Inc()
	ResolveTotal.WithLabelValues(OutcomeExists).Inc()
	ResolveTotal.WithLabelValues(OutcomeNoMetadata).Inc()

	added := testutil.ToFloat64(ResolveTotal.WithLabelValues(OutcomeAdded))
	assert.GreaterOrEqual(t, added, float64(1))

	exists := testutil.ToFloat64(ResolveTotal.WithLabelValues(OutcomeExists))
	assert.GreaterOrEqual(t, exists, float64(1))
}

func TestGauges_Exist(t *testing.T) {
	GamesTotal.Set(10)
	assert.Equal(t, float64(10), testutil.ToFloat64(GamesTotal))

	BlobsTotal.Set(5)
	assert.Equal(t, float64(5), testutil.ToFloat64(BlobsTotal))

	SteamAppsTotal.Set(1000)
	assert.Equal(t, float64(1000), testutil.ToFloat64(SteamAppsTotal))
}

func TestUpdateDBMetrics(t *testing.T) {
	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	_, err = database.InsertGame(ctx, "Portal", "portal", 0)
	require.NoError(t, err)
	require.NoError(t, database.InsertBlob(ctx, "digest", "image/png", 1))

	require.NoError(t, UpdateDBMetrics(database.Conn()))

	assert.Equal(t, float64(1), testutil.ToFloat64(GamesTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(BlobsTotal))
	assert.Equal(t, float64(0), testutil.ToFloat64(SteamAppsTotal))
}
