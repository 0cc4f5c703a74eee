package catalog

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mrowan/gamedex/gamedex-lib/db"
	"github.com/mrowan/gamedex/gamedex-lib/logging"
	"github.com/mrowan/gamedex/gamedex-lib/tracing"
)

// DefaultSearchLimit bounds a search when the caller passes no limit.
const DefaultSearchLimit = 10

// GameView is a library record shaped for presentation: asset digests are
// resolved to servable blob URLs.
type GameView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	SortName    string `json:"sortName"`
	ReleaseDate int64  `json:"releaseDate"`
	GridURL     string `json:"gridUrl,omitempty"`
	IconURL     string `json:"iconUrl,omitempty"`
	HeroURL     string `json:"heroUrl,omitempty"`
	PlayState   string `json:"playState,omitempty"`
}

// Service is the search front door: ranked local search that falls
// through to the acquisition workflow when the library has no match.
type Service struct {
	db       *db.DB
	resolver *Resolver
	log      *slog.Logger
}

// NewService wires the search service. The resolver may be nil, in which
// case a miss simply returns no results.
func NewService(d *db.DB, resolver *Resolver) *Service {
	return &Service{
		db:       d,
		resolver: resolver,
		log:      logging.Component("search"),
	}
}

// Search runs a ranked name search over the library. An empty or
// whitespace query returns nil without touching the external source. If
// the library has no match, the query is resolved against the external
// catalog; a newly added game comes back as the single result (its
// artwork still ingesting), and an expected resolve failure yields nil.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]GameView, error) {
	ctx, span := tracing.StartSpan(ctx, "catalog.search",
		tracing.WithAttributes(attribute.String("query", query)))
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	games, err := s.db.SearchGames(ctx, query, limit)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if len(games) > 0 {
		tracing.AddSpanAttributes(span, attribute.Int("results", len(games)))
		return s.views(ctx, games), nil
	}

	if s.resolver == nil {
		return nil, nil
	}

	id, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		// Expected outcomes of the acquisition path surface as "no
		// results", not as search errors.
		s.log.Info("search miss not resolved", "query", query, "reason", err)
		return nil, nil
	}

	game, err := s.db.GetGameByID(ctx, id)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return s.views(ctx, []db.Game{*game}), nil
}

// Add resolves each name against the external catalog and returns the
// ids of the records actually added. A nil resolver makes this a no-op.
func (s *Service) Add(ctx context.Context, names []string) []int64 {
	if s.resolver == nil {
		return nil
	}
	return s.resolver.ResolveMany(ctx, names)
}

// Get returns the presentation view of a single game by sort name.
func (s *Service) Get(ctx context.Context, sortName string) (*GameView, error) {
	game, err := s.db.GetGameBySortName(ctx, sortName)
	if err != nil {
		return nil, err
	}
	v := s.view(ctx, *game)
	return &v, nil
}

// List returns the whole library ordered by sort name.
func (s *Service) List(ctx context.Context) ([]GameView, error) {
	games, err := s.db.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, games), nil
}

func (s *Service) views(ctx context.Context, games []db.Game) []GameView {
	out := make([]GameView, 0, len(games))
	for _, g := range games {
		out = append(out, s.view(ctx, g))
	}
	return out
}

func (s *Service) view(ctx context.Context, g db.Game) GameView {
	v := GameView{
		ID:          g.ID,
		Name:        g.Name,
		SortName:    g.SortName,
		ReleaseDate: g.ReleaseDate,
		GridURL:     blobURL(g.GridDigest),
		IconURL:     blobURL(g.IconDigest),
		HeroURL:     blobURL(g.HeroDigest),
	}
	if state, err := s.db.GetPlayState(ctx, g.ID); err == nil {
		v.PlayState = state
	}
	return v
}

// blobURL maps a stored digest to the path the web server serves it
// under. Empty digests (artwork not yet ingested) map to empty URLs.
func blobURL(digest string) string {
	if digest == "" {
		return ""
	}
	return "/blob/" + digest
}
