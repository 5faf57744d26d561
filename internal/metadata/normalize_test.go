package metadata_test

import (
	"fmt"
	"reflect"
	"testing"

	"reelsync/internal/metadata"
	"reelsync/internal/tmdb"
)

const imageBase = "https://image.tmdb.org/t/p"

func TestNormalizeMovie(t *testing.T) {
	cast := make([]tmdb.CastMember, 12)
	for i := range cast {
		cast[i] = tmdb.CastMember{Name: fmt.Sprintf("Actor %d", i), Order: i}
	}
	d := &tmdb.MovieDetails{
		ID:           348,
		Title:        "Alien",
		Tagline:      "In space no one can hear you scream.",
		Runtime:      117,
		Status:       "Released",
		ReleaseDate:  "1979-05-25",
		Genres:       []tmdb.Genre{{Name: "Horror"}, {Name: "Science Fiction"}},
		PosterPath:   "/poster.jpg",
		BackdropPath: "/backdrop.jpg",
		VoteAverage:  8.1,
		Credits: tmdb.Credits{
			Cast: cast,
			Crew: []tmdb.CrewMember{
				{Name: "Ridley Scott", Job: "Director"},
				{Name: "Jerry Goldsmith", Job: "Original Music Composer"},
			},
		},
	}

	rec := metadata.NormalizeMovie(d, imageBase)
	if rec.Type != metadata.TypeMovie {
		t.Fatalf("unexpected type %q", rec.Type)
	}
	if rec.Director != "Ridley Scott" || rec.Composer != "Jerry Goldsmith" {
		t.Fatalf("unexpected crew: director=%q composer=%q", rec.Director, rec.Composer)
	}
	if len(rec.Cast) != 10 || rec.Cast[0] != "Actor 0" || rec.Cast[9] != "Actor 9" {
		t.Fatalf("cast should truncate to top 10 in billing order, got %v", rec.Cast)
	}
	if rec.PosterURL != imageBase+"/w500/poster.jpg" {
		t.Fatalf("unexpected poster URL %q", rec.PosterURL)
	}
	if rec.BackdropURL != imageBase+"/original/backdrop.jpg" {
		t.Fatalf("unexpected backdrop URL %q", rec.BackdropURL)
	}
	if !reflect.DeepEqual(rec.Genres, []string{"Horror", "Science Fiction"}) {
		t.Fatalf("unexpected genres %v", rec.Genres)
	}
	if rec.SeasonNumber != 0 || rec.EpisodeNumber != 0 {
		t.Fatalf("movie must carry no season or episode number: %+v", rec)
	}
}

func TestNormalizeShowMiniseriesTag(t *testing.T) {
	d := &tmdb.TVDetails{ID: 87108, Name: "Chernobyl", Type: "Miniseries", EpisodeRunTime: []int{65}}
	rec := metadata.NormalizeShow(d, imageBase)
	if rec.Type != metadata.TypeMiniseries {
		t.Fatalf("expected miniseries tag, got %q", rec.Type)
	}
	if rec.Runtime != 65 {
		t.Fatalf("expected episode runtime 65, got %d", rec.Runtime)
	}

	plain := metadata.NormalizeShow(&tmdb.TVDetails{ID: 1396, Name: "Breaking Bad", Type: "Scripted"}, imageBase)
	if plain.Type != metadata.TypeTelevision {
		t.Fatalf("expected television tag, got %q", plain.Type)
	}
}

func TestTrailerPicksEarliestOfficialYouTube(t *testing.T) {
	d := &tmdb.MovieDetails{
		ID: 1,
		Videos: tmdb.Videos{Results: []tmdb.Video{
			{Key: "later", Site: "YouTube", Type: "Trailer", Official: true, PublishedAt: "2021-06-01T00:00:00.000Z"},
			{Key: "teaser", Site: "YouTube", Type: "Teaser", Official: true, PublishedAt: "2019-01-01T00:00:00.000Z"},
			{Key: "fan-cut", Site: "YouTube", Type: "Trailer", Official: false, PublishedAt: "2018-01-01T00:00:00.000Z"},
			{Key: "vimeo", Site: "Vimeo", Type: "Trailer", Official: true, PublishedAt: "2019-06-01T00:00:00.000Z"},
			{Key: "earliest", Site: "YouTube", Type: "Trailer", Official: true, PublishedAt: "2020-01-01T00:00:00.000Z"},
		}},
	}
	rec := metadata.NormalizeMovie(d, imageBase)
	if rec.TrailerURL != "https://www.youtube.com/watch?v=earliest" {
		t.Fatalf("expected earliest official trailer, got %q", rec.TrailerURL)
	}
}

func TestTrailerAbsentWhenNoOfficialYouTubeTrailer(t *testing.T) {
	d := &tmdb.MovieDetails{
		Videos: tmdb.Videos{Results: []tmdb.Video{
			{Key: "x", Site: "YouTube", Type: "Clip", Official: true},
		}},
	}
	if rec := metadata.NormalizeMovie(d, imageBase); rec.TrailerURL != "" {
		t.Fatalf("expected no trailer, got %q", rec.TrailerURL)
	}
}

func TestComposerFallbackChain(t *testing.T) {
	show := &tmdb.TVDetails{
		Status:  "Returning Series",
		Credits: tmdb.Credits{Crew: []tmdb.CrewMember{{Name: "X", Job: "Original Music Composer"}}},
	}
	season := &tmdb.SeasonDetails{SeasonNumber: 2}
	episode := &tmdb.EpisodeDetails{SeasonNumber: 2, EpisodeNumber: 3, AirDate: "1999-01-01"}

	rec := metadata.NormalizeEpisode(episode, season, show, imageBase)
	if rec.Composer != "X" {
		t.Fatalf("expected composer fallback to show, got %q", rec.Composer)
	}

	season.Credits = tmdb.Credits{Crew: []tmdb.CrewMember{{Name: "Y", Job: "Original Music Composer"}}}
	if rec := metadata.NormalizeEpisode(episode, season, show, imageBase); rec.Composer != "Y" {
		t.Fatalf("season composer should win over show, got %q", rec.Composer)
	}
}

func TestDerivedStatus(t *testing.T) {
	cases := []struct {
		name       string
		showStatus string
		airDate    string
		want       string
	}{
		{"canceled show wins", "Canceled", "1999-01-01", "Canceled"},
		{"aired in the past", "Returning Series", "1999-01-01", "Released"},
		{"airs in the future", "Returning Series", "2999-01-01", "Returning Series"},
		{"no air date", "In Production", "", "In Production"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			show := &tmdb.TVDetails{Status: tc.showStatus}
			rec := metadata.NormalizeSeason(&tmdb.SeasonDetails{SeasonNumber: 1, AirDate: tc.airDate}, show, imageBase)
			if rec.Status != tc.want {
				t.Fatalf("got status %q, want %q", rec.Status, tc.want)
			}
		})
	}
}

func TestSeasonSynopsisFallbackOnlyForSeasonOne(t *testing.T) {
	show := &tmdb.TVDetails{Status: "Ended", Overview: "Show synopsis."}

	s1 := metadata.NormalizeSeason(&tmdb.SeasonDetails{SeasonNumber: 1}, show, imageBase)
	if s1.Synopsis != "Show synopsis." {
		t.Fatalf("season 1 should fall back to the show synopsis, got %q", s1.Synopsis)
	}

	s2 := metadata.NormalizeSeason(&tmdb.SeasonDetails{SeasonNumber: 2}, show, imageBase)
	if s2.Synopsis != "" {
		t.Fatalf("season 2 must not inherit the show synopsis, got %q", s2.Synopsis)
	}

	own := metadata.NormalizeSeason(&tmdb.SeasonDetails{SeasonNumber: 1, Overview: "Own."}, show, imageBase)
	if own.Synopsis != "Own." {
		t.Fatalf("own synopsis should win, got %q", own.Synopsis)
	}
}

func TestImageInheritance(t *testing.T) {
	show := &tmdb.TVDetails{Status: "Ended", PosterPath: "/show-poster.jpg", BackdropPath: "/show-backdrop.jpg"}
	season := &tmdb.SeasonDetails{SeasonNumber: 1}

	sRec := metadata.NormalizeSeason(season, show, imageBase)
	if sRec.PosterURL != imageBase+"/w500/show-poster.jpg" {
		t.Fatalf("season without poster should inherit the show poster, got %q", sRec.PosterURL)
	}
	if sRec.BackdropURL != imageBase+"/original/show-backdrop.jpg" {
		t.Fatalf("season should inherit the show backdrop, got %q", sRec.BackdropURL)
	}

	season.PosterPath = "/season-poster.jpg"
	episode := &tmdb.EpisodeDetails{SeasonNumber: 1, EpisodeNumber: 1, AirDate: "1999-01-01"}
	eRec := metadata.NormalizeEpisode(episode, season, show, imageBase)
	if eRec.PosterURL != imageBase+"/w500/season-poster.jpg" {
		t.Fatalf("episode without still should inherit the season poster, got %q", eRec.PosterURL)
	}
	if eRec.Status != "Released" {
		t.Fatalf("aired episode should derive Released, got %q", eRec.Status)
	}

	episode.StillPath = "/still.jpg"
	if rec := metadata.NormalizeEpisode(episode, season, show, imageBase); rec.PosterURL != imageBase+"/w500/still.jpg" {
		t.Fatalf("episode still should win over inherited poster, got %q", rec.PosterURL)
	}
}
