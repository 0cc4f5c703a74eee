package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const sgdbBaseURL = "https://www.steamgriddb.com/api/v2"

// SGDBClient implements the MetadataSource interface for SteamGridDB.
type SGDBClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// SGDBOption customizes a client; used by tests to point at a local server.
type SGDBOption func(*SGDBClient)

// WithSGDBBaseURL overrides the API base URL.
func WithSGDBBaseURL(base string) SGDBOption {
	return func(c *SGDBClient) { c.baseURL = base }
}

// WithSGDBHTTPClient overrides the HTTP client.
func WithSGDBHTTPClient(hc *http.Client) SGDBOption {
	return func(c *SGDBClient) { c.client = hc }
}

// NewSGDBClient creates a SteamGridDB client. Every request carries the
// given timeout so a stalled API cannot suspend a resolve indefinitely.
func NewSGDBClient(apiKey string, timeout time.Duration, opts ...SGDBOption) (*SGDBClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("SteamGridDB API key is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &SGDBClient{
		apiKey:  apiKey,
		baseURL: sgdbBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *SGDBClient) Name() string {
	return "steamgriddb"
}

// sgdbGame mirrors the wire shape of a search result.
type sgdbGame struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ReleaseDate int64  `json:"release_date"` // unix seconds
}

// sgdbAsset mirrors the wire shape of a grid/icon/hero entry.
type sgdbAsset struct {
	ID   int64  `json:"id"`
	URL  string `json:"url"`
	Mime string `json:"mime"`
}

// SearchGame finds candidates matching the query, best match first.
func (c *SGDBClient) SearchGame(ctx context.Context, name string) ([]Candidate, error) {
	endpoint := fmt.Sprintf("%s/search/autocomplete/%s", c.baseURL, url.PathEscape(name))

	var games []sgdbGame
	if err := c.get(ctx, endpoint, &games); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(games))
	for _, g := range games {
		candidates = append(candidates, Candidate{
			ID:          g.ID,
			Name:        g.Name,
			ReleaseDate: g.ReleaseDate * 1000, // API reports seconds, records store millis
		})
	}
	return candidates, nil
}

// ArtworkURLs fetches static PNG artwork for a candidate, one list per kind.
func (c *SGDBClient) ArtworkURLs(ctx context.Context, sourceID int64) (*Artwork, error) {
	art := &Artwork{}

	kinds := []struct {
		path string
		dest *[]string
	}{
		{"grids", &art.Grids},
		{"icons", &art.Icons},
		{"heroes", &art.Heroes},
	}

	for _, k := range kinds {
		endpoint := fmt.Sprintf("%s/%s/game/%d?mimes=image/png&types=static", c.baseURL, k.path, sourceID)

		var assets []sgdbAsset
		if err := c.get(ctx, endpoint, &assets); err != nil {
			return nil, err
		}
		for _, a := range assets {
			*k.dest = append(*k.dest, a.URL)
		}
	}

	return art, nil
}

// get issues an authenticated GET and decodes the standard SteamGridDB
// response envelope into out.
func (c *SGDBClient) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Errors  []string        `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !envelope.Success {
		return fmt.Errorf("API error: %v", envelope.Errors)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}
