// Package steam fetches the public Steam app list, used to seed the
// suggestion index with real game names.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.steampowered.com"

// App is one entry in the Steam catalog.
type App struct {
	AppID        int64  `json:"appid"`
	Name         string `json:"name"`
	LastModified int64  `json:"last_modified"`
}

// Page is one page of the app list plus the cursor for the next one.
type Page struct {
	Apps          []App
	HaveMoreApps  bool
	LastAppID     int64
}

// Client talks to the Steam Web API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option customizes a client; used by tests to point at a local server.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a Steam Web API client.
func NewClient(apiKey string, timeout time.Duration, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Steam API key is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AppList fetches one page of the app list starting after lastAppID.
func (c *Client) AppList(ctx context.Context, lastAppID int64, maxResults int) (*Page, error) {
	if maxResults <= 0 {
		maxResults = 10000
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("include_games", "true")
	q.Set("max_results", fmt.Sprintf("%d", maxResults))
	if lastAppID > 0 {
		q.Set("last_appid", fmt.Sprintf("%d", lastAppID))
	}
	endpoint := fmt.Sprintf("%s/IStoreService/GetAppList/v1/?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var envelope struct {
		Response struct {
			Apps         []App `json:"apps"`
			HaveMoreApps bool  `json:"have_more_results"`
			LastAppID    int64 `json:"last_appid"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &Page{
		Apps:         envelope.Response.Apps,
		HaveMoreApps: envelope.Response.HaveMoreApps,
		LastAppID:    envelope.Response.LastAppID,
	}, nil
}

// AllApps walks every page of the app list, calling fn with each page's
// apps. Walking stops at the first error or when the API reports no more
// results.
func (c *Client) AllApps(ctx context.Context, pageSize int, fn func(apps []App) error) error {
	var lastAppID int64
	for {
		page, err := c.AppList(ctx, lastAppID, pageSize)
		if err != nil {
			return err
		}
		if len(page.Apps) > 0 {
			if err := fn(page.Apps); err != nil {
				return err
			}
		}
		if !page.HaveMoreApps {
			return nil
		}
		lastAppID = page.LastAppID
	}
}
