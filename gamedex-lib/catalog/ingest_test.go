package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrowan/gamedex/gamedex-lib/blobstore"
	"github.com/mrowan/gamedex/gamedex-lib/db"
)

// newAssetServer serves fixed bytes per path and counts hits.
func newAssetServer(t *testing.T, assets map[string][]byte) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		data, ok := assets[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestIngestor(t *testing.T) (*Ingestor, *db.DB, *blobstore.Store) {
	t.Helper()
	database := openTestDB(t)
	blobs, err := blobstore.New(t.TempDir())
	require.NoError(t, err)
	ing := NewIngestor(database, blobs, &fakeSource{}, 0)
	return ing, database, blobs
}

func insertTestGame(t *testing.T, database *db.DB, name, sortName string) int64 {
	t.Helper()
	id, err := database.InsertGame(context.Background(), name, sortName, 0)
	require.NoError(t, err)
	return id
}

func TestIngestAssets_StoresAllThree(t *testing.T) {
	ing, database, blobs := newTestIngestor(t)
	srv, _ := newAssetServer(t, map[string][]byte{
		"/grid.png": []byte("grid-bytes"),
		"/icon.png": []byte("icon-bytes"),
		"/hero.png": []byte("hero-bytes"),
	})
	id := insertTestGame(t, database, "Portal", "portal")

	ok := ing.IngestAssets(context.Background(), id,
		srv.URL+"/grid.png", srv.URL+"/icon.png", srv.URL+"/hero.png")
	require.True(t, ok)

	game, err := database.GetGameByID(context.Background(), id)
	require.NoError(t, err)
	require.True(t, game.HasArtwork())

	assert.Equal(t, blobstore.Digest([]byte("grid-bytes")), game.GridDigest)
	assert.Equal(t, blobstore.Digest([]byte("icon-bytes")), game.IconDigest)
	assert.Equal(t, blobstore.Digest([]byte("hero-bytes")), game.HeroDigest)

	// Bytes landed in the store and the index agrees.
	for _, digest := range []string{game.GridDigest, game.IconDigest, game.HeroDigest} {
		assert.True(t, blobs.Has(digest))
		has, err := database.HasBlob(context.Background(), digest)
		require.NoError(t, err)
		assert.True(t, has)
	}
}

func TestIngestAssets_AllOrNone(t *testing.T) {
	ing, database, _ := newTestIngestor(t)
	srv, _ := newAssetServer(t, map[string][]byte{
		"/grid.png": []byte("grid-bytes"),
		"/icon.png": []byte("icon-bytes"),
		// hero.png missing: that download 404s
	})
	id := insertTestGame(t, database, "Portal", "portal")

	ok := ing.IngestAssets(context.Background(), id,
		srv.URL+"/grid.png", srv.URL+"/icon.png", srv.URL+"/hero.png")
	assert.False(t, ok)

	// No slot was assigned.
	game, err := database.GetGameByID(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, game.GridDigest)
	assert.Empty(t, game.IconDigest)
	assert.Empty(t, game.HeroDigest)
}

func TestIngestAssets_OversizeAssetFails(t *testing.T) {
	ing, database, _ := newTestIngestor(t)

	// Streams one chunk past the size cap.
	chunk := make([]byte, 1<<20)
	big := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		for sent := 0; sent <= maxAssetSize; sent += len(chunk) {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	t.Cleanup(big.Close)

	srv, _ := newAssetServer(t, map[string][]byte{
		"/icon.png": []byte("icon-bytes"),
		"/hero.png": []byte("hero-bytes"),
	})
	id := insertTestGame(t, database, "Portal", "portal")

	// The oversize grid must fail the ingestion outright; a truncated
	// prefix of it must never be hashed and assigned.
	ok := ing.IngestAssets(context.Background(), id,
		big.URL+"/grid.png", srv.URL+"/icon.png", srv.URL+"/hero.png")
	assert.False(t, ok)

	game, err := database.GetGameByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, game.HasArtwork())

	count, err := database.CountBlobs(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngestAssets_DedupReusesBlobs(t *testing.T) {
	ing, database, blobs := newTestIngestor(t)
	srv, _ := newAssetServer(t, map[string][]byte{
		"/grid.png": []byte("grid-bytes"),
		"/icon.png": []byte("icon-bytes"),
		"/hero.png": []byte("hero-bytes"),
	})

	first := insertTestGame(t, database, "Portal", "portal")
	require.True(t, ing.IngestAssets(context.Background(), first,
		srv.URL+"/grid.png", srv.URL+"/icon.png", srv.URL+"/hero.png"))

	blobsBefore, err := database.CountBlobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, blobsBefore)

	// A second game with byte-identical artwork still gets its slots
	// assigned, but not a single new blob is stored.
	second := insertTestGame(t, database, "Portal RTX", "portal_rtx")
	require.True(t, ing.IngestAssets(context.Background(), second,
		srv.URL+"/grid.png", srv.URL+"/icon.png", srv.URL+"/hero.png"))

	blobsAfter, err := database.CountBlobs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, blobsBefore, blobsAfter)

	g1, err := database.GetGameByID(context.Background(), first)
	require.NoError(t, err)
	g2, err := database.GetGameByID(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, g1.GridDigest, g2.GridDigest)
	assert.True(t, blobs.Has(g2.GridDigest))
}

func TestIngestAssets_SecondRunDoesNotClobber(t *testing.T) {
	ing, database, _ := newTestIngestor(t)
	srv, _ := newAssetServer(t, map[string][]byte{
		"/grid.png":  []byte("grid-bytes"),
		"/icon.png":  []byte("icon-bytes"),
		"/hero.png":  []byte("hero-bytes"),
		"/grid2.png": []byte("other-grid"),
		"/icon2.png": []byte("other-icon"),
		"/hero2.png": []byte("other-hero"),
	})
	id := insertTestGame(t, database, "Portal", "portal")

	require.True(t, ing.IngestAssets(context.Background(), id,
		srv.URL+"/grid.png", srv.URL+"/icon.png", srv.URL+"/hero.png"))

	// Artwork is assigned at most once; a repeat with different bytes
	// reports failure and leaves the original digests in place.
	ok := ing.IngestAssets(context.Background(), id,
		srv.URL+"/grid2.png", srv.URL+"/icon2.png", srv.URL+"/hero2.png")
	assert.False(t, ok)

	game, err := database.GetGameByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, blobstore.Digest([]byte("grid-bytes")), game.GridDigest)
}

func TestIngestAssets_MissingGame(t *testing.T) {
	ing, _, _ := newTestIngestor(t)
	srv, _ := newAssetServer(t, map[string][]byte{
		"/grid.png": []byte("grid-bytes"),
		"/icon.png": []byte("icon-bytes"),
		"/hero.png": []byte("hero-bytes"),
	})

	ok := ing.IngestAssets(context.Background(), 9999,
		srv.URL+"/grid.png", srv.URL+"/icon.png", srv.URL+"/hero.png")
	assert.False(t, ok)
}

func TestIngestFor_FullFlow(t *testing.T) {
	database := openTestDB(t)
	blobs, err := blobstore.New(t.TempDir())
	require.NoError(t, err)
	srv, _ := newAssetServer(t, map[string][]byte{
		"/grid.png": []byte("grid-bytes"),
		"/icon.png": []byte("icon-bytes"),
		"/hero.png": []byte("hero-bytes"),
	})
	source := &fakeSource{
		artwork: map[int64]*Artwork{
			42: {
				Grids:  []string{srv.URL + "/grid.png"},
				Icons:  []string{srv.URL + "/icon.png"},
				Heroes: []string{srv.URL + "/hero.png"},
			},
		},
	}
	ing := NewIngestor(database, blobs, source, 0)
	id := insertTestGame(t, database, "Portal", "portal")

	require.True(t, ing.IngestFor(context.Background(), id, 42))

	game, err := database.GetGameByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, game.HasArtwork())
}

func TestIngestFor_NoArtwork(t *testing.T) {
	database := openTestDB(t)
	blobs, err := blobstore.New(t.TempDir())
	require.NoError(t, err)
	source := &fakeSource{
		artwork: map[int64]*Artwork{
			// Icons list empty: one missing kind fails the whole candidate.
			42: {Grids: []string{"http://example/grid"}, Heroes: []string{"http://example/hero"}},
		},
	}
	ing := NewIngestor(database, blobs, source, 0)
	id := insertTestGame(t, database, "Portal", "portal")

	assert.False(t, ing.IngestFor(context.Background(), id, 42))

	game, err := database.GetGameByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, game.HasArtwork())
}
