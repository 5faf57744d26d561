package metadata

import (
	"sort"
	"time"

	"reelsync/internal/tmdb"
)

const (
	posterSize   = "w500"
	backdropSize = "original"

	castLimitMovie   = 10
	castLimitShow    = 20
	castLimitSeason  = 15
	castLimitEpisode = 10

	jobDirector = "Director"
	jobComposer = "Original Music Composer"

	statusCanceled = "Canceled"
	statusReleased = "Released"

	dateLayout = "2006-01-02"
)

// NormalizeMovie produces the movie-variant record.
func NormalizeMovie(d *tmdb.MovieDetails, imageBaseURL string) Record {
	return Record{
		Type:        TypeMovie,
		TMDBID:      d.ID,
		Title:       d.Title,
		Tagline:     d.Tagline,
		Genres:      genreNames(d.Genres),
		Runtime:     d.Runtime,
		Status:      d.Status,
		ReleaseDate: d.ReleaseDate,
		Synopsis:    d.Overview,
		Director:    crewByJob(d.Credits, jobDirector),
		Composer:    crewByJob(d.Credits, jobComposer),
		Cast:        castNames(d.Credits.Cast, castLimitMovie),
		PosterURL:   imageURL(imageBaseURL, posterSize, d.PosterPath),
		BackdropURL: imageURL(imageBaseURL, backdropSize, d.BackdropPath),
		TrailerURL:  trailerURL(d.Videos),
		Rating:      d.VoteAverage,
	}
}

// NormalizeShow produces the show-variant record. TMDB flags miniseries via
// the show type field; the record's tag reflects it.
func NormalizeShow(d *tmdb.TVDetails, imageBaseURL string) Record {
	showType := TypeTelevision
	if d.Type == "Miniseries" {
		showType = TypeMiniseries
	}
	runtime := 0
	if len(d.EpisodeRunTime) > 0 {
		runtime = d.EpisodeRunTime[0]
	}
	return Record{
		Type:        showType,
		TMDBID:      d.ID,
		Title:       d.Name,
		Tagline:     d.Tagline,
		Genres:      genreNames(d.Genres),
		Runtime:     runtime,
		Status:      d.Status,
		ReleaseDate: d.FirstAirDate,
		Synopsis:    d.Overview,
		Composer:    crewByJob(d.Credits, jobComposer),
		Cast:        castNames(d.Credits.Cast, castLimitShow),
		PosterURL:   imageURL(imageBaseURL, posterSize, d.PosterPath),
		BackdropURL: imageURL(imageBaseURL, backdropSize, d.BackdropPath),
		TrailerURL:  trailerURL(d.Videos),
		Rating:      d.VoteAverage,
	}
}

// NormalizeSeason produces the season-variant record. The show record supplies
// the composer fallback, derived status, backdrop inheritance and, for season
// one only, the synopsis fallback.
func NormalizeSeason(d *tmdb.SeasonDetails, show *tmdb.TVDetails, imageBaseURL string) Record {
	synopsis := d.Overview
	if synopsis == "" && d.SeasonNumber == 1 {
		synopsis = show.Overview
	}
	poster := imageURL(imageBaseURL, posterSize, d.PosterPath)
	if poster == "" {
		poster = imageURL(imageBaseURL, posterSize, show.PosterPath)
	}
	return Record{
		Type:         TypeSeason,
		TMDBID:       d.ID,
		Title:        d.Name,
		Status:       derivedStatus(show.Status, d.AirDate, time.Now().UTC()),
		ReleaseDate:  d.AirDate,
		Synopsis:     synopsis,
		Composer:     crewByJob(d.Credits, jobComposer, show.Credits),
		Cast:         castNames(d.Credits.Cast, castLimitSeason),
		PosterURL:    poster,
		BackdropURL:  imageURL(imageBaseURL, backdropSize, show.BackdropPath),
		TrailerURL:   trailerURL(d.Videos),
		Rating:       d.VoteAverage,
		SeasonNumber: d.SeasonNumber,
	}
}

// NormalizeEpisode produces the episode-variant record. The season and show
// supply the composer fallback chain; the episode still stands in for a
// poster, falling back to the season poster.
func NormalizeEpisode(d *tmdb.EpisodeDetails, season *tmdb.SeasonDetails, show *tmdb.TVDetails, imageBaseURL string) Record {
	poster := imageURL(imageBaseURL, posterSize, d.StillPath)
	if poster == "" {
		poster = imageURL(imageBaseURL, posterSize, season.PosterPath)
	}
	return Record{
		Type:          TypeEpisode,
		TMDBID:        d.ID,
		Title:         d.Name,
		Runtime:       d.Runtime,
		Status:        derivedStatus(show.Status, d.AirDate, time.Now().UTC()),
		ReleaseDate:   d.AirDate,
		Synopsis:      d.Overview,
		Director:      crewByJob(d.Credits, jobDirector),
		Composer:      crewByJob(d.Credits, jobComposer, season.Credits, show.Credits),
		Cast:          castNames(d.Credits.Cast, castLimitEpisode),
		PosterURL:     poster,
		BackdropURL:   imageURL(imageBaseURL, backdropSize, show.BackdropPath),
		TrailerURL:    trailerURL(d.Videos),
		Rating:        d.VoteAverage,
		SeasonNumber:  d.SeasonNumber,
		EpisodeNumber: d.EpisodeNumber,
	}
}

// crewByJob returns the first crew member holding job in credits, falling back
// through the given parent credit sets in order.
func crewByJob(credits tmdb.Credits, job string, fallbacks ...tmdb.Credits) string {
	for _, member := range credits.Crew {
		if member.Job == job {
			return member.Name
		}
	}
	for _, parent := range fallbacks {
		for _, member := range parent.Crew {
			if member.Job == job {
				return member.Name
			}
		}
	}
	return ""
}

// castNames returns up to limit cast names in billing order.
func castNames(cast []tmdb.CastMember, limit int) []string {
	ordered := make([]tmdb.CastMember, len(cast))
	copy(ordered, cast)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	names := make([]string, 0, len(ordered))
	for _, member := range ordered {
		names = append(names, member.Name)
	}
	return names
}

// trailerURL picks the earliest-published official YouTube trailer. The
// earliest official trailer is treated as canonical; later uploads tend to be
// re-cuts and TV spots.
func trailerURL(videos tmdb.Videos) string {
	var best *tmdb.Video
	for i := range videos.Results {
		v := &videos.Results[i]
		if v.Type != "Trailer" || v.Site != "YouTube" || !v.Official {
			continue
		}
		if best == nil || v.PublishedAt < best.PublishedAt {
			best = v
		}
	}
	if best == nil {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + best.Key
}

// derivedStatus computes the status of a season or episode. A canceled show
// pins its children to Canceled; otherwise the child counts as Released once
// its air date has passed in UTC, and inherits the show status until then.
func derivedStatus(showStatus, airDate string, now time.Time) string {
	if showStatus == statusCanceled {
		return showStatus
	}
	aired, err := time.Parse(dateLayout, airDate)
	if err != nil {
		return showStatus
	}
	today := now.Truncate(24 * time.Hour)
	if aired.Before(today) {
		return statusReleased
	}
	return showStatus
}

func genreNames(genres []tmdb.Genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}

func imageURL(baseURL, size, path string) string {
	if path == "" {
		return ""
	}
	return baseURL + "/" + size + path
}
