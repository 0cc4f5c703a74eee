package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mrowan/gamedex/gamedex-lib/blobstore"
	"github.com/mrowan/gamedex/gamedex-lib/db"
	"github.com/mrowan/gamedex/gamedex-lib/logging"
	"github.com/mrowan/gamedex/gamedex-lib/metrics"
	"github.com/mrowan/gamedex/gamedex-lib/tracing"
)

// maxAssetSize caps a single artwork download. SteamGridDB heroes top out
// well below this; anything larger is a broken or hostile response.
const maxAssetSize = 32 << 20

// Ingestor populates a game's three asset slots from remote artwork URLs,
// deduplicating by content digest before storing.
type Ingestor struct {
	db     *db.DB
	blobs  *blobstore.Store
	source MetadataSource
	client *http.Client
	log    *slog.Logger
}

// NewIngestor creates an ingestor. The timeout bounds each artwork
// download.
func NewIngestor(d *db.DB, blobs *blobstore.Store, source MetadataSource, timeout time.Duration) *Ingestor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Ingestor{
		db:     d,
		blobs:  blobs,
		source: source,
		client: &http.Client{Timeout: timeout},
		log:    logging.Component("ingestor"),
	}
}

// IngestFor looks up artwork URLs for an external candidate and ingests
// the first of each kind. Reports false when the candidate has no usable
// artwork or any step fails; the game's asset slots are left unset in
// that case.
func (ing *Ingestor) IngestFor(ctx context.Context, gameID, sourceID int64) bool {
	ctx, span := tracing.StartSpan(ctx, "ingest.for",
		tracing.WithAttributes(
			attribute.Int64("game.id", gameID),
			attribute.Int64("source.id", sourceID),
		))
	defer span.End()

	art, err := ing.source.ArtworkURLs(ctx, sourceID)
	if err != nil {
		nerr := &NetworkError{Stage: "artwork lookup", Err: err}
		tracing.RecordError(span, nerr)
		ing.log.Warn("artwork lookup failed", "source_id", sourceID, "error", nerr)
		metrics.IngestTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return false
	}

	if len(art.Grids) == 0 || len(art.Icons) == 0 || len(art.Heroes) == 0 {
		aerr := &NoArtworkError{SourceID: sourceID}
		tracing.RecordError(span, aerr)
		ing.log.Warn("no usable artwork", "source_id", sourceID)
		metrics.IngestTotal.WithLabelValues(metrics.OutcomeNoArtwork).Inc()
		return false
	}

	return ing.IngestAssets(ctx, gameID, art.Grids[0], art.Icons[0], art.Heroes[0])
}

// IngestAssets downloads grid, icon and hero artwork, stores each payload
// content-addressed (skipping uploads whose digest is already indexed),
// and assigns all three digests to the game in one atomic update. Returns
// true only if the final assignment committed; on any failure the record
// is untouched and false is returned.
func (ing *Ingestor) IngestAssets(ctx context.Context, gameID int64, gridURL, iconURL, heroURL string) bool {
	ctx, span := tracing.StartSpan(ctx, "ingest.assets",
		tracing.WithAttributes(attribute.Int64("game.id", gameID)))
	defer span.End()

	start := time.Now()
	defer metrics.RecordIngestDuration(start)

	payloads, err := ing.downloadAll(ctx, [3]string{gridURL, iconURL, heroURL})
	if err != nil {
		tracing.RecordError(span, err)
		ing.log.Warn("artwork download failed", "game_id", gameID, "error", err)
		metrics.IngestTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return false
	}

	var digests [3]string
	for i, p := range payloads {
		digest, err := ing.storeDeduped(ctx, p)
		if err != nil {
			tracing.RecordError(span, err)
			ing.log.Warn("artwork store failed", "game_id", gameID, "error", err)
			metrics.IngestTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
			return false
		}
		digests[i] = digest
	}

	if err := ing.db.SetGameArtwork(ctx, gameID, digests[0], digests[1], digests[2]); err != nil {
		tracing.RecordError(span, err)
		ing.log.Warn("artwork assignment failed", "game_id", gameID, "error", err)
		metrics.IngestTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return false
	}

	tracing.SetSpanOK(span)
	ing.log.Info("artwork ingested", "game_id", gameID, "duration", time.Since(start))
	metrics.IngestTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	return true
}

// payload is one downloaded asset.
type payload struct {
	data []byte
	mime string
}

// downloadAll fetches the three artwork URLs concurrently. All three must
// succeed; the slots are assigned together or not at all, so a single
// failed download fails the whole step.
func (ing *Ingestor) downloadAll(ctx context.Context, urls [3]string) ([3]payload, error) {
	var (
		wg       sync.WaitGroup
		payloads [3]payload
		errs     [3]error
	)

	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			payloads[i], errs[i] = ing.download(ctx, u)
		}(i, u)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return payloads, &NetworkError{Stage: "download", Err: err}
		}
	}
	return payloads, nil
}

func (ing *Ingestor) download(ctx context.Context, rawURL string) (payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return payload{}, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}

	resp, err := ing.client.Do(req)
	if err != nil {
		return payload{}, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return payload{}, fmt.Errorf("http error for %s: %s", rawURL, resp.Status)
	}

	// Read one byte past the cap so an oversize payload is detected
	// instead of silently stored truncated.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return payload{}, fmt.Errorf("failed to read %s: %w", rawURL, err)
	}
	if len(data) > maxAssetSize {
		return payload{}, fmt.Errorf("asset %s exceeds %d bytes", rawURL, maxAssetSize)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}
	return payload{data: data, mime: mime}, nil
}

// storeDeduped stores one payload content-addressed. A digest already in
// the blob index is reused without touching the disk store; artwork is
// frequently byte-identical across games, so this saves both storage and
// upload cost. Two concurrent ingestions of the same unseen digest may
// both write; the second write is a no-op on the content-addressed store,
// so the race is harmless.
func (ing *Ingestor) storeDeduped(ctx context.Context, p payload) (string, error) {
	digest := blobstore.Digest(p.data)

	has, err := ing.db.HasBlob(ctx, digest)
	if err != nil {
		return "", &NetworkError{Stage: "blob lookup", Err: err}
	}
	if has {
		metrics.BlobDedupHits.Inc()
		ing.log.Debug("blob already stored", "digest", digest)
		return digest, nil
	}

	if _, err := ing.blobs.Put(p.data); err != nil {
		return "", &NetworkError{Stage: "upload", Err: err}
	}
	if err := ing.db.InsertBlob(ctx, digest, p.mime, int64(len(p.data))); err != nil {
		return "", &NetworkError{Stage: "blob index", Err: err}
	}
	return digest, nil
}
