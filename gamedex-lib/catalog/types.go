package catalog

import "context"

// Candidate is a metadata record returned by the external catalog search,
// not yet persisted locally.
type Candidate struct {
	ID          int64  // external source's game identifier
	Name        string // canonical name as known to the source
	ReleaseDate int64  // unix millis
}

// Artwork holds candidate artwork URLs by kind. The first of each list is
// used; an empty list of any kind means the candidate has no usable
// artwork.
type Artwork struct {
	Grids  []string
	Icons  []string
	Heroes []string
}

// MetadataSource is the external catalog the resolver consults on a local
// miss. Implemented by the SteamGridDB client; test doubles substitute it.
type MetadataSource interface {
	// Name returns the source name (e.g., "steamgriddb").
	Name() string
	// SearchGame finds candidates matching the query, best match first.
	SearchGame(ctx context.Context, name string) ([]Candidate, error)
	// ArtworkURLs fetches artwork URL lists for a candidate.
	ArtworkURLs(ctx context.Context, sourceID int64) (*Artwork, error)
}
