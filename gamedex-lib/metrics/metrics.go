package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Library gauges
	GamesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gamedex_games_total",
		Help: "Total number of games in the library.",
	})
	BlobsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gamedex_blobs_total",
		Help: "Total number of stored artwork blobs.",
	})
	SteamAppsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gamedex_steam_apps_total",
		Help: "Total number of Steam catalog seed entries.",
	})

	// Acquisition workflow
	ResolveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamedex_resolve_total",
		Help: "Total resolve attempts by outcome.",
	}, []string{"outcome"}) // outcome: added, exists, no_metadata, network_error

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gamedex_ingest_duration_seconds",
		Help:    "Duration of artwork ingestion in seconds.",
		Buckets: prometheus.DefBuckets,
	})

	IngestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamedex_ingest_total",
		Help: "Total artwork ingestions by outcome.",
	}, []string{"outcome"}) // outcome: ok, failed, no_artwork

	BlobDedupHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gamedex_blob_dedup_hits_total",
		Help: "Artwork downloads that matched an already-stored blob.",
	})
)

// Resolve outcome labels.
const (
	OutcomeAdded      = "added"
	OutcomeExists     = "exists"
	OutcomeNoMetadata = "no_metadata"
	OutcomeNetwork    = "network_error"
)

// Ingest outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
	OutcomeNoArtwork = "no_artwork"
)

// UpdateDBMetrics refreshes gauges that reflect the current state of the database.
func UpdateDBMetrics(db *sql.DB) error {
	var games, blobs, steamApps int

	if err := db.QueryRow("SELECT COUNT(*) FROM games").Scan(&games); err != nil {
		return err
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM blobs").Scan(&blobs); err != nil {
		return err
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM steam_apps").Scan(&steamApps); err != nil {
		return err
	}

	GamesTotal.Set(float64(games))
	BlobsTotal.Set(float64(blobs))
	SteamAppsTotal.Set(float64(steamApps))

	return nil
}

// RecordIngestDuration records the time taken for one artwork ingestion.
func RecordIngestDuration(start time.Time) {
	IngestDuration.Observe(time.Since(start).Seconds())
}
