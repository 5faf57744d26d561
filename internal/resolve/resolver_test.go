package resolve_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"reelsync/internal/query"
	"reelsync/internal/resolve"
	"reelsync/internal/services"
	"reelsync/internal/tmdb"
)

// fakeSearcher records calls and serves canned payloads. Season and episode
// fetches may run concurrently, so every recording path locks.
type fakeSearcher struct {
	mu sync.Mutex

	searchMovieCalls int
	searchTVCalls    int
	searchMultiCalls int
	lastSearchOpts   tmdb.SearchOptions

	seasonsFetched  []int
	episodesFetched []int

	searchResults []tmdb.SearchResult
	movie         *tmdb.MovieDetails
	show          *tmdb.TVDetails
	seasons       map[int]*tmdb.SeasonDetails
	episodeErr    error
}

func (f *fakeSearcher) SearchMovie(_ context.Context, _ string, opts tmdb.SearchOptions) (*tmdb.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchMovieCalls++
	f.lastSearchOpts = opts
	return &tmdb.SearchResponse{Results: f.searchResults}, nil
}

func (f *fakeSearcher) SearchTV(_ context.Context, _ string, opts tmdb.SearchOptions) (*tmdb.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchTVCalls++
	f.lastSearchOpts = opts
	return &tmdb.SearchResponse{Results: f.searchResults}, nil
}

func (f *fakeSearcher) SearchMulti(_ context.Context, _ string, opts tmdb.SearchOptions) (*tmdb.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchMultiCalls++
	f.lastSearchOpts = opts
	return &tmdb.SearchResponse{Results: f.searchResults}, nil
}

func (f *fakeSearcher) GetMovieDetails(_ context.Context, movieID int64, _ string) (*tmdb.MovieDetails, error) {
	if f.movie == nil || f.movie.ID != movieID {
		return nil, errors.New("unknown movie")
	}
	return f.movie, nil
}

func (f *fakeSearcher) GetTVDetails(_ context.Context, showID int64, _ string) (*tmdb.TVDetails, error) {
	if f.show == nil || f.show.ID != showID {
		return nil, errors.New("unknown show")
	}
	return f.show, nil
}

func (f *fakeSearcher) GetSeasonDetails(_ context.Context, _ int64, seasonNumber int, _ string) (*tmdb.SeasonDetails, error) {
	f.mu.Lock()
	f.seasonsFetched = append(f.seasonsFetched, seasonNumber)
	f.mu.Unlock()
	season, ok := f.seasons[seasonNumber]
	if !ok {
		return nil, errors.New("unknown season")
	}
	return season, nil
}

func (f *fakeSearcher) GetEpisodeDetails(_ context.Context, _ int64, seasonNumber, episodeNumber int, _ string) (*tmdb.EpisodeDetails, error) {
	f.mu.Lock()
	f.episodesFetched = append(f.episodesFetched, episodeNumber)
	f.mu.Unlock()
	if f.episodeErr != nil {
		return nil, f.episodeErr
	}
	return &tmdb.EpisodeDetails{ID: int64(seasonNumber*100 + episodeNumber), SeasonNumber: seasonNumber, EpisodeNumber: episodeNumber, AirDate: "1999-01-01"}, nil
}

type mapCache struct {
	entries map[string]struct {
		id   int64
		kind string
	}
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]struct {
		id   int64
		kind string
	})}
}

func (c *mapCache) Lookup(key string) (int64, string, bool) {
	e, ok := c.entries[key]
	return e.id, e.kind, ok
}

func (c *mapCache) Store(key string, id int64, kind string) {
	c.entries[key] = struct {
		id   int64
		kind string
	}{id, kind}
}

func mustParse(t *testing.T, raw string) query.Query {
	t.Helper()
	q, err := query.Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", raw, err)
	}
	return q
}

func TestResolveMovieEndToEnd(t *testing.T) {
	fake := &fakeSearcher{
		searchResults: []tmdb.SearchResult{{ID: 348, Title: "Alien", ReleaseDate: "1979-05-25"}},
		movie: &tmdb.MovieDetails{
			ID:    348,
			Title: "Alien",
			Credits: tmdb.Credits{
				Crew: []tmdb.CrewMember{{Name: "Ridley Scott", Job: "Director"}},
			},
		},
	}
	r := resolve.New(fake, resolve.Options{})

	rec, err := r.Resolve(context.Background(), mustParse(t, "Alien[type=movie, year=1979];"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if rec.Type != "Movie" {
		t.Fatalf("unexpected type %q", rec.Type)
	}
	if rec.Director == "" {
		t.Fatal("expected a director")
	}
	if rec.SeasonNumber != 0 {
		t.Fatalf("movie must not carry a season number: %d", rec.SeasonNumber)
	}
	if fake.searchMovieCalls != 1 || fake.searchMultiCalls != 0 {
		t.Fatalf("type filter should pin movie search: movie=%d multi=%d", fake.searchMovieCalls, fake.searchMultiCalls)
	}
	if fake.lastSearchOpts.Year != 1979 {
		t.Fatalf("year filter not forwarded: %+v", fake.lastSearchOpts)
	}
}

func TestResolveNoResults(t *testing.T) {
	r := resolve.New(&fakeSearcher{}, resolve.Options{})
	_, err := r.Resolve(context.Background(), mustParse(t, "Nonexistent;"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := services.UserMessage(err); got != "No results found" {
		t.Fatalf("unexpected user message %q", got)
	}
}

func TestResolveMultiSkipsPersonResults(t *testing.T) {
	fake := &fakeSearcher{
		searchResults: []tmdb.SearchResult{
			{ID: 5, Name: "Some Actor", MediaType: "person"},
			{ID: 1396, Name: "Breaking Bad", MediaType: "tv"},
		},
		show: &tmdb.TVDetails{ID: 1396, Name: "Breaking Bad", Status: "Ended"},
	}
	r := resolve.New(fake, resolve.Options{})

	rec, err := r.Resolve(context.Background(), mustParse(t, "Breaking Bad;"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if rec.TMDBID != 1396 || rec.Type != "Television" {
		t.Fatalf("person result should be skipped: %+v", rec)
	}
	if fake.searchMultiCalls != 1 {
		t.Fatalf("expected multi search without a type filter, got %d", fake.searchMultiCalls)
	}
}

func showWithSeasons(numbers ...int) *tmdb.TVDetails {
	show := &tmdb.TVDetails{ID: 100, Name: "Show", Status: "Ended"}
	for _, n := range numbers {
		show.Seasons = append(show.Seasons, tmdb.SeasonSummary{SeasonNumber: n})
	}
	return show
}

func TestFetchShowIncrementalSkipsKnownSeasons(t *testing.T) {
	fake := &fakeSearcher{
		show: showWithSeasons(1, 2, 3),
		seasons: map[int]*tmdb.SeasonDetails{
			3: {ID: 103, SeasonNumber: 3, Name: "Season 3"},
		},
	}
	r := resolve.New(fake, resolve.Options{})

	rec, err := r.FetchShow(context.Background(), resolve.FetchRequest{
		ShowID:       100,
		AllSeasons:   true,
		KnownSeasons: map[int]bool{1: true, 2: true},
	})
	if err != nil {
		t.Fatalf("FetchShow failed: %v", err)
	}
	if len(fake.seasonsFetched) != 1 || fake.seasonsFetched[0] != 3 {
		t.Fatalf("expected only season 3 to be fetched, got %v", fake.seasonsFetched)
	}
	if len(rec.Seasons) != 1 || rec.Seasons[0].SeasonNumber != 3 {
		t.Fatalf("unexpected seasons in record: %+v", rec.Seasons)
	}
}

func TestFetchShowExcludesSpecials(t *testing.T) {
	fake := &fakeSearcher{
		show: showWithSeasons(0, 1),
		seasons: map[int]*tmdb.SeasonDetails{
			0: {ID: 100, SeasonNumber: 0},
			1: {ID: 101, SeasonNumber: 1},
		},
	}
	r := resolve.New(fake, resolve.Options{})

	rec, err := r.FetchShow(context.Background(), resolve.FetchRequest{ShowID: 100, AllSeasons: true})
	if err != nil {
		t.Fatalf("FetchShow failed: %v", err)
	}
	for _, n := range fake.seasonsFetched {
		if n == 0 {
			t.Fatal("season 0 must never be fetched")
		}
	}
	if len(rec.Seasons) != 1 || rec.Seasons[0].SeasonNumber != 1 {
		t.Fatalf("unexpected seasons: %+v", rec.Seasons)
	}
}

func TestFetchShowSingleSeasonAndEpisode(t *testing.T) {
	fake := &fakeSearcher{
		show: showWithSeasons(1, 2),
		seasons: map[int]*tmdb.SeasonDetails{
			2: {ID: 102, SeasonNumber: 2, Episodes: []tmdb.EpisodeSummary{{EpisodeNumber: 1}, {EpisodeNumber: 2}}},
		},
	}
	r := resolve.New(fake, resolve.Options{})

	rec, err := r.FetchShow(context.Background(), resolve.FetchRequest{ShowID: 100, SeasonNumber: 2, EpisodeNumber: 2})
	if err != nil {
		t.Fatalf("FetchShow failed: %v", err)
	}
	if len(rec.Seasons) != 1 || rec.Seasons[0].SeasonNumber != 2 {
		t.Fatalf("unexpected seasons: %+v", rec.Seasons)
	}
	if len(rec.Seasons[0].Episodes) != 1 || rec.Seasons[0].Episodes[0].EpisodeNumber != 2 {
		t.Fatalf("unexpected episodes: %+v", rec.Seasons[0].Episodes)
	}
	if len(fake.episodesFetched) != 1 {
		t.Fatalf("expected exactly one episode fetch, got %v", fake.episodesFetched)
	}
}

func TestFetchShowRequestedSeasonFailureIsTerminal(t *testing.T) {
	fake := &fakeSearcher{show: showWithSeasons(1), seasons: map[int]*tmdb.SeasonDetails{}}
	r := resolve.New(fake, resolve.Options{})

	_, err := r.FetchShow(context.Background(), resolve.FetchRequest{ShowID: 100, SeasonNumber: 7})
	if !errors.Is(err, services.ErrResolution) {
		t.Fatalf("expected ErrResolution for missing requested season, got %v", err)
	}
}

func TestFetchShowBranchFailureKeepsSiblings(t *testing.T) {
	fake := &fakeSearcher{
		show: showWithSeasons(1, 2),
		seasons: map[int]*tmdb.SeasonDetails{
			// Season 2 is missing, so its branch fails.
			1: {ID: 101, SeasonNumber: 1, Name: "Season 1"},
		},
	}
	r := resolve.New(fake, resolve.Options{})

	rec, err := r.FetchShow(context.Background(), resolve.FetchRequest{ShowID: 100, AllSeasons: true})
	if err != nil {
		t.Fatalf("branch failure must not fail the fetch: %v", err)
	}
	if len(rec.Seasons) != 1 || rec.Seasons[0].SeasonNumber != 1 {
		t.Fatalf("surviving sibling lost: %+v", rec.Seasons)
	}
}

func TestFetchShowIncrementalEpisodes(t *testing.T) {
	fake := &fakeSearcher{
		show: showWithSeasons(1),
		seasons: map[int]*tmdb.SeasonDetails{
			1: {ID: 101, SeasonNumber: 1, Episodes: []tmdb.EpisodeSummary{
				{EpisodeNumber: 1}, {EpisodeNumber: 2}, {EpisodeNumber: 3},
			}},
		},
	}
	r := resolve.New(fake, resolve.Options{})

	rec, err := r.FetchShow(context.Background(), resolve.FetchRequest{
		ShowID:        100,
		AllSeasons:    true,
		AllEpisodes:   true,
		KnownSeasons:  map[int]bool{1: true},
		KnownEpisodes: map[int]map[int]bool{1: {1: true, 2: true}},
	})
	if err != nil {
		t.Fatalf("FetchShow failed: %v", err)
	}
	if len(fake.episodesFetched) != 1 || fake.episodesFetched[0] != 3 {
		t.Fatalf("expected only episode 3 to be fetched, got %v", fake.episodesFetched)
	}
	if len(rec.Seasons) != 1 || len(rec.Seasons[0].Episodes) != 1 {
		t.Fatalf("unexpected tree: %+v", rec.Seasons)
	}
}

func TestResolveUsesSearchCache(t *testing.T) {
	fake := &fakeSearcher{
		searchResults: []tmdb.SearchResult{{ID: 348, Title: "Alien"}},
		movie:         &tmdb.MovieDetails{ID: 348, Title: "Alien"},
	}
	cache := newMapCache()
	r := resolve.New(fake, resolve.Options{Cache: cache})
	q := mustParse(t, "Alien[type=movie];")

	if _, err := r.Resolve(context.Background(), q); err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}
	if _, err := r.Resolve(context.Background(), q); err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if fake.searchMovieCalls != 1 {
		t.Fatalf("second resolve should hit the cache, search called %d times", fake.searchMovieCalls)
	}
}
