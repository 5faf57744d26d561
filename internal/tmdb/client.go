package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reelsync/internal/services"
)

// DefaultBaseURL is the TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// DefaultImageBaseURL is the root for poster and backdrop paths.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p"

const defaultTimeout = 15 * time.Second

// SearchOptions refine a search request.
type SearchOptions struct {
	// Year constrains results to a release/first-air year when positive.
	Year int
	// Language is a BCP-47 tag forwarded to TMDB; empty means the client default.
	Language string
}

// CacheKey returns a stable string identifying a search request, suitable as a
// resolve-cache key.
func (o SearchOptions) CacheKey(endpoint, query string) string {
	var b strings.Builder
	b.WriteString(endpoint)
	b.WriteString("|")
	b.WriteString(strings.ToLower(strings.TrimSpace(query)))
	if o.Year > 0 {
		b.WriteString("|y=")
		b.WriteString(strconv.Itoa(o.Year))
	}
	if o.Language != "" {
		b.WriteString("|l=")
		b.WriteString(strings.ToLower(o.Language))
	}
	return b.String()
}

// Searcher is the TMDB surface the resolver depends on. The concrete Client
// satisfies it; tests substitute fakes.
type Searcher interface {
	SearchMovie(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error)
	SearchTV(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error)
	SearchMulti(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error)
	GetMovieDetails(ctx context.Context, movieID int64, language string) (*MovieDetails, error)
	GetTVDetails(ctx context.Context, showID int64, language string) (*TVDetails, error)
	GetSeasonDetails(ctx context.Context, showID int64, seasonNumber int, language string) (*SeasonDetails, error)
	GetEpisodeDetails(ctx context.Context, showID int64, seasonNumber, episodeNumber int, language string) (*EpisodeDetails, error)
}

// Client is an HTTP client for the TMDB v3 API.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, primarily for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLanguage sets the default language for all requests.
func WithLanguage(language string) Option {
	return func(c *Client) {
		c.language = language
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a TMDB client. The API key must be non-empty.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new_client",
			"TMDB API key is required", nil)
	}
	c := &Client{
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		language: "en-US",
		http:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchMovie queries the movie search endpoint.
func (c *Client) SearchMovie(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	if opts.Year > 0 {
		params.Set("year", strconv.Itoa(opts.Year))
	}
	var resp SearchResponse
	if err := c.get(ctx, "/search/movie", opts.Language, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchTV queries the TV search endpoint.
func (c *Client) SearchTV(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	if opts.Year > 0 {
		params.Set("first_air_date_year", strconv.Itoa(opts.Year))
	}
	var resp SearchResponse
	if err := c.get(ctx, "/search/tv", opts.Language, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchMulti queries the combined movie and TV search endpoint. TMDB returns
// person results here too; callers filter on MediaType.
func (c *Client) SearchMulti(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	var resp SearchResponse
	if err := c.get(ctx, "/search/multi", opts.Language, params, &resp); err != nil {
		return nil, err
	}
	if opts.Year > 0 {
		resp.Results = filterByYear(resp.Results, opts.Year)
	}
	return &resp, nil
}

// filterByYear keeps results whose release or first-air year matches. Multi
// search has no server-side year parameter.
func filterByYear(results []SearchResult, year int) []SearchResult {
	prefix := strconv.Itoa(year) + "-"
	filtered := make([]SearchResult, 0, len(results))
	for _, r := range results {
		date := r.ReleaseDate
		if date == "" {
			date = r.FirstAirDate
		}
		if strings.HasPrefix(date, prefix) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// GetMovieDetails fetches a movie with credits and videos embedded.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64, language string) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits,videos")
	var resp MovieDetails
	path := fmt.Sprintf("/movie/%d", movieID)
	if err := c.get(ctx, path, language, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTVDetails fetches a show with credits and videos embedded.
func (c *Client) GetTVDetails(ctx context.Context, showID int64, language string) (*TVDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits,videos")
	var resp TVDetails
	path := fmt.Sprintf("/tv/%d", showID)
	if err := c.get(ctx, path, language, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSeasonDetails fetches a season with credits and videos embedded.
func (c *Client) GetSeasonDetails(ctx context.Context, showID int64, seasonNumber int, language string) (*SeasonDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits,videos")
	var resp SeasonDetails
	path := fmt.Sprintf("/tv/%d/season/%d", showID, seasonNumber)
	if err := c.get(ctx, path, language, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetEpisodeDetails fetches an episode with credits and videos embedded.
func (c *Client) GetEpisodeDetails(ctx context.Context, showID int64, seasonNumber, episodeNumber int, language string) (*EpisodeDetails, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits,videos")
	var resp EpisodeDetails
	path := fmt.Sprintf("/tv/%d/season/%d/episode/%d", showID, seasonNumber, episodeNumber)
	if err := c.get(ctx, path, language, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path, language string, params url.Values, out any) error {
	if language == "" {
		language = c.language
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", language)

	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create TMDB request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrResolution, "tmdb", "request",
			fmt.Sprintf("TMDB request %s failed", path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return services.Wrap(services.ErrNotFound, "tmdb", "request",
			fmt.Sprintf("TMDB resource %s not found", path), nil)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.Wrap(services.ErrResolution, "tmdb", "request",
			fmt.Sprintf("TMDB request %s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrResolution, "tmdb", "decode",
			fmt.Sprintf("decode TMDB response for %s", path), err)
	}
	return nil
}
