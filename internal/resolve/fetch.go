package resolve

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"reelsync/internal/logging"
	"reelsync/internal/metadata"
	"reelsync/internal/services"
	"reelsync/internal/tmdb"
)

// FetchRequest describes one show fetch, including how far down the hierarchy
// to descend and which children are already known locally. Known children are
// skipped, which bounds request volume on refresh cycles.
//
// When SeasonNumber is positive only that season is fetched (and only
// EpisodeNumber within it, when positive); AllSeasons/AllEpisodes and the
// known sets are ignored in that mode.
type FetchRequest struct {
	ShowID   int64
	Language string

	SeasonNumber  int
	EpisodeNumber int

	AllSeasons  bool
	AllEpisodes bool
	// KnownSeasons holds season numbers already present locally.
	KnownSeasons map[int]bool
	// KnownEpisodes maps season number to the episode numbers already present.
	KnownEpisodes map[int]map[int]bool
}

// FetchShow fetches a show and the requested slice of its hierarchy, returning
// the normalized record tree. Sibling season and episode fetches run
// concurrently; a failed branch is logged and skipped without corrupting its
// siblings. A season or episode the request names explicitly fails the whole
// fetch instead, since there is nothing else to return.
func (r *Resolver) FetchShow(ctx context.Context, req FetchRequest) (*metadata.Record, error) {
	show, err := r.client.GetTVDetails(ctx, req.ShowID, req.Language)
	if err != nil {
		return nil, services.Wrap(services.ErrResolution, "resolve", "show",
			fmt.Sprintf("show %d detail fetch failed", req.ShowID), err)
	}
	rec := metadata.NormalizeShow(show, r.imageURL)

	if req.SeasonNumber > 0 {
		season, err := r.fetchSeason(ctx, show, req.SeasonNumber, req.EpisodeNumber, req.Language)
		if err != nil {
			return nil, err
		}
		rec.Seasons = []metadata.Record{*season}
		return &rec, nil
	}

	if !req.AllSeasons {
		return &rec, nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		seasons []metadata.Record
	)
	for _, summary := range show.Seasons {
		if summary.SeasonNumber == 0 {
			// Season zero is the "Specials" bucket; never synced.
			continue
		}
		if req.KnownSeasons[summary.SeasonNumber] && !req.AllEpisodes {
			continue
		}
		known := req.KnownSeasons[summary.SeasonNumber]
		number := summary.SeasonNumber
		wg.Add(1)
		go func() {
			defer wg.Done()
			season, err := r.expandSeason(ctx, show, number, req, known)
			if err != nil {
				r.logger.Warn("season fetch failed, skipping branch",
					logging.Int64(logging.FieldTMDBID, req.ShowID),
					logging.Int("season", number),
					logging.Error(err))
				return
			}
			if season == nil {
				return
			}
			mu.Lock()
			seasons = append(seasons, *season)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(seasons, func(i, j int) bool { return seasons[i].SeasonNumber < seasons[j].SeasonNumber })
	rec.Seasons = seasons
	return &rec, nil
}

// expandSeason fetches one season branch during a full expansion. An
// already-known season is re-fetched only to discover new episodes; it returns
// nil when nothing new exists.
func (r *Resolver) expandSeason(ctx context.Context, show *tmdb.TVDetails, number int, req FetchRequest, known bool) (*metadata.Record, error) {
	details, err := r.client.GetSeasonDetails(ctx, show.ID, number, req.Language)
	if err != nil {
		return nil, err
	}
	rec := metadata.NormalizeSeason(details, show, r.imageURL)

	if req.AllEpisodes {
		episodes, err := r.fetchEpisodes(ctx, show, details, req.KnownEpisodes[number], req.Language)
		if err != nil {
			return nil, err
		}
		rec.Episodes = episodes
		if known && len(episodes) == 0 {
			return nil, nil
		}
	}
	return &rec, nil
}

// fetchSeason fetches an explicitly requested season, optionally narrowing to
// one episode. Failures here are terminal for the whole fetch.
func (r *Resolver) fetchSeason(ctx context.Context, show *tmdb.TVDetails, seasonNumber, episodeNumber int, language string) (*metadata.Record, error) {
	details, err := r.client.GetSeasonDetails(ctx, show.ID, seasonNumber, language)
	if err != nil {
		return nil, services.Wrap(services.ErrResolution, "resolve", "season",
			fmt.Sprintf("season %d data invalid; ensure season/episode numbers are valid", seasonNumber), err)
	}
	rec := metadata.NormalizeSeason(details, show, r.imageURL)

	if episodeNumber > 0 {
		episode, err := r.client.GetEpisodeDetails(ctx, show.ID, seasonNumber, episodeNumber, language)
		if err != nil {
			return nil, services.Wrap(services.ErrResolution, "resolve", "episode",
				fmt.Sprintf("episode S%02dE%02d data invalid; ensure season/episode numbers are valid", seasonNumber, episodeNumber), err)
		}
		rec.Episodes = []metadata.Record{metadata.NormalizeEpisode(episode, details, show, r.imageURL)}
	}
	return &rec, nil
}

// fetchEpisodes fetches all episodes of a season concurrently, skipping
// episode numbers already known locally.
func (r *Resolver) fetchEpisodes(ctx context.Context, show *tmdb.TVDetails, season *tmdb.SeasonDetails, known map[int]bool, language string) ([]metadata.Record, error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		episodes []metadata.Record
	)
	for _, summary := range season.Episodes {
		if known[summary.EpisodeNumber] {
			continue
		}
		number := summary.EpisodeNumber
		wg.Add(1)
		go func() {
			defer wg.Done()
			details, err := r.client.GetEpisodeDetails(ctx, show.ID, season.SeasonNumber, number, language)
			if err != nil {
				r.logger.Warn("episode fetch failed, skipping branch",
					logging.Int64(logging.FieldTMDBID, show.ID),
					logging.Int("season", season.SeasonNumber),
					logging.Int("episode", number),
					logging.Error(err))
				return
			}
			rec := metadata.NormalizeEpisode(details, season, show, r.imageURL)
			mu.Lock()
			episodes = append(episodes, rec)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Slice(episodes, func(i, j int) bool { return episodes[i].EpisodeNumber < episodes[j].EpisodeNumber })
	return episodes, nil
}
