package juno

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Track is a single tracklist entry on a release.
type Track struct {
	Position string `json:"position"`
	Title    string `json:"title"`
}

// Release is the normalized metadata shape consumed by the row builder.
// Instances are produced fresh per lookup and never mutated afterwards.
type Release struct {
	JunoCat     string
	Artist      string
	Title       string
	Label       string
	Genre       string
	Style       string
	Format      string
	ReleaseDate string
	Image       string
	Tracks      []Track
}

// Source identifies which provider supplied a release. It is recorded
// verbatim in the research log.
type Source string

const (
	SourceRemote   Source = "Juno API"
	SourceFallback Source = "Juno API (fallback)"
)

// Client looks up releases against a Juno catalog endpoint.
// An empty base URL puts the client in fallback-only mode.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default 10s lookup timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New creates a catalog client. baseURL and apiKey may both be empty;
// the client then serves only fallback releases.
func New(baseURL, apiKey string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Resolve returns metadata for the given catalog id. It never fails: any
// remote problem is swallowed and the deterministic fallback release is
// returned instead. Exactly one outbound request is made per call when a
// remote endpoint is configured, with no retries.
func (c *Client) Resolve(ctx context.Context, junoCat string) (Release, Source) {
	if c.baseURL == "" {
		return Fallback(junoCat), SourceFallback
	}

	release, err := c.fetchRelease(ctx, junoCat)
	if err != nil {
		slog.Debug("catalog lookup failed, using fallback",
			"juno_cat", junoCat,
			"error", err,
		)
		return Fallback(junoCat), SourceFallback
	}
	return release, SourceRemote
}

// releasePayload mirrors the catalog API response. Pointer fields
// distinguish absent keys (which get defaults) from present-but-empty
// values, and RawMessage fields absorb the string-or-list variance of
// genre and style before anything downstream sees them.
type releasePayload struct {
	Artist      *string         `json:"artist"`
	Title       *string         `json:"title"`
	Label       *string         `json:"label"`
	Genre       json.RawMessage `json:"genre"`
	Genres      json.RawMessage `json:"genres"`
	Style       json.RawMessage `json:"style"`
	Styles      json.RawMessage `json:"styles"`
	Format      *string         `json:"format"`
	ReleaseDate string          `json:"release_date"`
	Image       string          `json:"image"`
	Tracks      []Track         `json:"tracks"`
}

func (c *Client) fetchRelease(ctx context.Context, junoCat string) (Release, error) {
	endpoint := c.baseURL + "/releases/" + url.PathEscape(junoCat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Release{}, fmt.Errorf("build request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Release{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Release{}, fmt.Errorf("catalog returned %d", resp.StatusCode)
	}

	var payload releasePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Release{}, fmt.Errorf("decode catalog response: %w", err)
	}

	return normalize(payload, junoCat), nil
}

// normalize maps a raw catalog payload onto the fixed Release shape,
// applying defaults only for keys the payload omits entirely.
func normalize(p releasePayload, junoCat string) Release {
	genre := stringOrList(p.Genres)
	if genre == "" {
		genre = stringOrList(p.Genre)
	}
	style := stringOrList(p.Styles)
	if style == "" {
		style = stringOrList(p.Style)
	}

	return Release{
		JunoCat:     junoCat,
		Artist:      orDefault(p.Artist, "Unknown Artist"),
		Title:       orDefault(p.Title, "Catalog "+junoCat),
		Label:       orDefault(p.Label, "Independent"),
		Genre:       genre,
		Style:       style,
		Format:      orDefault(p.Format, "Vinyl"),
		ReleaseDate: p.ReleaseDate,
		Image:       p.Image,
		Tracks:      p.Tracks,
	}
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

// stringOrList decodes a JSON value that may be either a string or a
// list of strings; lists are joined with ", ".
func stringOrList(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ", ")
	}
	return ""
}

// Fallback returns the synthetic release used when no remote source is
// available. It is a pure function of the catalog id.
func Fallback(junoCat string) Release {
	return Release{
		JunoCat:     junoCat,
		Artist:      "Juno Artist",
		Title:       "Release " + junoCat,
		Label:       "Juno Records",
		Genre:       "Electronic",
		Style:       "House",
		Format:      "Vinyl",
		ReleaseDate: "",
		Image:       "https://placehold.co/600x600/png",
		Tracks: []Track{
			{Position: "A1", Title: "Opening Track"},
			{Position: "A2", Title: "Second Cut"},
		},
	}
}
