package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"reelsync/internal/logging"
	"reelsync/internal/metadata"
	"reelsync/internal/query"
	"reelsync/internal/services"
	"reelsync/internal/tmdb"
)

// Cache memoizes search results keyed by the normalized search request.
// Implementations may expire entries; a miss is never an error.
type Cache interface {
	Lookup(key string) (id int64, kind string, ok bool)
	Store(key string, id int64, kind string)
}

// Options configures a Resolver.
type Options struct {
	// ImageBaseURL is the root for poster/backdrop URLs. Defaults to the TMDB
	// image CDN.
	ImageBaseURL string
	// Language is the default BCP-47 tag when a query has no language filter.
	Language string
	// Cache is the optional search memo. Nil disables caching.
	Cache Cache
	Logger *slog.Logger
}

// Resolver resolves queries against TMDB into normalized record trees.
type Resolver struct {
	client   tmdb.Searcher
	imageURL string
	language string
	cache    Cache
	logger   *slog.Logger
}

// New creates a Resolver around the given TMDB client.
func New(client tmdb.Searcher, opts Options) *Resolver {
	if opts.ImageBaseURL == "" {
		opts.ImageBaseURL = tmdb.DefaultImageBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Resolver{
		client:   client,
		imageURL: opts.ImageBaseURL,
		language: opts.Language,
		cache:    opts.Cache,
		logger:   opts.Logger.With(logging.String(logging.FieldComponent, "resolve")),
	}
}

// Resolve resolves a parsed query end to end: search, first-result selection,
// detail fetch, and any season/episode expansion the filters ask for.
func (r *Resolver) Resolve(ctx context.Context, q query.Query) (*metadata.Record, error) {
	id, kind, err := r.search(ctx, q)
	if err != nil {
		return nil, err
	}

	language := r.queryLanguage(q)
	switch kind {
	case query.KindMovie:
		return r.FetchMovie(ctx, id, language)
	case query.KindTV:
		req := FetchRequest{ShowID: id, Language: language}
		if season, ok := q.Season(); ok {
			req.SeasonNumber = season
			if episode, ok := q.Episode(); ok {
				req.EpisodeNumber = episode
			}
		} else {
			req.AllSeasons = q.AllSeasons()
			req.AllEpisodes = q.AllEpisodes()
		}
		return r.FetchShow(ctx, req)
	default:
		return nil, services.Wrap(services.ErrNotFound, "resolve", "search", "No results found", nil)
	}
}

// search issues the type-scoped search and returns the first result's id and
// media kind. The resolve cache short-circuits repeat searches for the same
// normalized request.
func (r *Resolver) search(ctx context.Context, q query.Query) (int64, query.MediaKind, error) {
	opts := tmdb.SearchOptions{Language: r.queryLanguage(q)}
	if year, ok := q.Year(); ok {
		opts.Year = year
	}

	kind, pinned := q.Kind()
	endpoint := "multi"
	if pinned {
		endpoint = string(kind)
	}
	key := opts.CacheKey(endpoint, q.Main)
	if r.cache != nil {
		if id, cachedKind, ok := r.cache.Lookup(key); ok {
			r.logger.Debug("search cache hit", logging.String(logging.FieldQuery, q.Main))
			return id, query.MediaKind(cachedKind), nil
		}
	}

	var (
		resp *tmdb.SearchResponse
		err  error
	)
	switch {
	case pinned && kind == query.KindMovie:
		resp, err = r.client.SearchMovie(ctx, q.Main, opts)
	case pinned && kind == query.KindTV:
		resp, err = r.client.SearchTV(ctx, q.Main, opts)
	default:
		resp, err = r.client.SearchMulti(ctx, q.Main, opts)
	}
	if err != nil {
		return 0, "", services.Wrap(services.ErrResolution, "resolve", "search",
			fmt.Sprintf("search for %q failed", q.Main), err)
	}

	result, resultKind, ok := firstUsableResult(resp.Results, kind, pinned)
	if !ok {
		return 0, "", services.Wrap(services.ErrNotFound, "resolve", "search", "No results found", nil)
	}

	if r.cache != nil {
		r.cache.Store(key, result.ID, string(resultKind))
	}
	return result.ID, resultKind, nil
}

// firstUsableResult picks the first search result. A pinned type filter is
// trusted outright; otherwise the result's own media kind decides, and person
// hits from multi search are skipped.
func firstUsableResult(results []tmdb.SearchResult, pinned query.MediaKind, hasPin bool) (tmdb.SearchResult, query.MediaKind, bool) {
	for _, result := range results {
		if hasPin {
			return result, pinned, true
		}
		switch result.MediaType {
		case "movie":
			return result, query.KindMovie, true
		case "tv":
			return result, query.KindTV, true
		}
	}
	return tmdb.SearchResult{}, "", false
}

func (r *Resolver) queryLanguage(q query.Query) string {
	if lang, ok := q.Language(); ok {
		return lang
	}
	return r.language
}

// FetchMovie fetches and normalizes a movie by id.
func (r *Resolver) FetchMovie(ctx context.Context, movieID int64, language string) (*metadata.Record, error) {
	details, err := r.client.GetMovieDetails(ctx, movieID, language)
	if err != nil {
		return nil, services.Wrap(services.ErrResolution, "resolve", "movie",
			fmt.Sprintf("movie %d detail fetch failed", movieID), err)
	}
	rec := metadata.NormalizeMovie(details, r.imageURL)
	return &rec, nil
}

// UserFacingMessage converts a resolution error into the short message
// attached to the page annotation.
func UserFacingMessage(err error) string {
	msg := services.UserMessage(err)
	if strings.Contains(msg, "season") || strings.Contains(msg, "episode") {
		return msg + "; ensure season/episode numbers are valid"
	}
	return msg
}
