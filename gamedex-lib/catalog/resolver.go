package catalog

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mrowan/gamedex/gamedex-lib/db"
	"github.com/mrowan/gamedex/gamedex-lib/logging"
	"github.com/mrowan/gamedex/gamedex-lib/metrics"
	"github.com/mrowan/gamedex/gamedex-lib/tracing"
)

// Resolver implements the find-or-fetch workflow: look a name up locally
// by sort name, and on a miss consult the external catalog, persist the
// best candidate, and schedule its artwork for background ingestion.
type Resolver struct {
	db        *db.DB
	source    MetadataSource
	scheduler *Scheduler
	ingestor  *Ingestor
	log       *slog.Logger
}

// NewResolver wires a resolver. The scheduler may be nil, in which case
// artwork ingestion runs inline on the resolve path.
func NewResolver(d *db.DB, source MetadataSource, scheduler *Scheduler, ingestor *Ingestor) *Resolver {
	return &Resolver{
		db:        d,
		source:    source,
		scheduler: scheduler,
		ingestor:  ingestor,
		log:       logging.Component("resolver"),
	}
}

// Resolve finds or creates the library record for a name. On a local hit
// it returns *AlreadyExistsError; on a miss it searches the external
// source, stores the best candidate under the sort name computed from the
// candidate's canonical name, schedules artwork ingestion, and returns
// the new record's id. The record is immediately visible with empty asset
// slots; artwork arrives asynchronously.
func (r *Resolver) Resolve(ctx context.Context, name string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.resolve",
		tracing.WithAttributes(attribute.String("game.name", name)))
	defer span.End()

	sortName := SortName(name)
	if existing, err := r.db.GetGameBySortName(ctx, sortName); err == nil {
		tracing.AddSpanAttributes(span, attribute.Int64("game.id", existing.ID))
		metrics.ResolveTotal.WithLabelValues(metrics.OutcomeExists).Inc()
		return 0, &AlreadyExistsError{SortName: sortName}
	} else if !errors.Is(err, db.ErrNotFound) {
		nerr := &NetworkError{Stage: "local lookup", Err: err}
		tracing.RecordError(span, nerr)
		metrics.ResolveTotal.WithLabelValues(metrics.OutcomeNetwork).Inc()
		return 0, nerr
	}

	candidates, err := r.source.SearchGame(ctx, name)
	if err != nil {
		nerr := &NetworkError{Stage: "catalog search", Err: err}
		tracing.RecordError(span, nerr)
		metrics.ResolveTotal.WithLabelValues(metrics.OutcomeNetwork).Inc()
		return 0, nerr
	}
	if len(candidates) == 0 {
		merr := &NoMetadataError{Name: name}
		tracing.RecordError(span, merr)
		metrics.ResolveTotal.WithLabelValues(metrics.OutcomeNoMetadata).Inc()
		return 0, merr
	}

	// The stored sort name comes from the candidate's canonical name, not
	// the query. "portal 2" and "Portal 2" converge on the same record.
	best := candidates[0]
	canonicalSort := SortName(best.Name)

	id, err := r.db.InsertGame(ctx, best.Name, canonicalSort, best.ReleaseDate)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			// Lost the insert race, or the canonical sort name collides
			// with an existing record under a different query spelling.
			tracing.AddSpanAttributes(span, attribute.String("game.sort_name", canonicalSort))
			metrics.ResolveTotal.WithLabelValues(metrics.OutcomeExists).Inc()
			return 0, &AlreadyExistsError{SortName: canonicalSort}
		}
		nerr := &NetworkError{Stage: "store", Err: err}
		tracing.RecordError(span, nerr)
		metrics.ResolveTotal.WithLabelValues(metrics.OutcomeNetwork).Inc()
		return 0, nerr
	}

	r.scheduleIngest(ctx, id, best.ID)

	tracing.SetSpanOK(span)
	tracing.AddSpanAttributes(span, attribute.Int64("game.id", id))
	metrics.ResolveTotal.WithLabelValues(metrics.OutcomeAdded).Inc()
	r.log.Info("game added",
		"name", best.Name, "sort_name", canonicalSort,
		"id", id, "source_id", best.ID, "source", r.source.Name())
	return id, nil
}

// scheduleIngest hands artwork ingestion to the scheduler, or runs it
// inline when no scheduler is configured.
func (r *Resolver) scheduleIngest(ctx context.Context, gameID, sourceID int64) {
	if r.ingestor == nil {
		return
	}
	if r.scheduler == nil {
		r.ingestor.IngestFor(ctx, gameID, sourceID)
		return
	}
	r.scheduler.Schedule(func(taskCtx context.Context) {
		r.ingestor.IngestFor(taskCtx, gameID, sourceID)
	})
}

// ResolveMany resolves each name independently and returns the ids of the
// records actually added. Expected failures (already present, no
// metadata, network trouble) are logged and skipped; one bad name never
// aborts the rest of the batch.
func (r *Resolver) ResolveMany(ctx context.Context, names []string) []int64 {
	var added []int64
	for _, name := range names {
		id, err := r.Resolve(ctx, name)
		if err != nil {
			r.log.Info("name skipped", "name", name, "reason", err)
			continue
		}
		added = append(added, id)
	}
	return added
}
