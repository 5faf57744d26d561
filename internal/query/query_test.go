package query_test

import (
	"errors"
	"testing"

	"reelsync/internal/query"
	"reelsync/internal/services"
)

func TestParseMainQueryOnly(t *testing.T) {
	q, err := query.Parse("The Thing;")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if q.Main != "The Thing" {
		t.Fatalf("unexpected main query: %q", q.Main)
	}
	if len(q.Filters) != 0 {
		t.Fatalf("expected no filters, got %v", q.Filters)
	}
}

func TestParseFiltersAndAliases(t *testing.T) {
	q, err := query.Parse("Alien[t=movie, y:1979, lang=en];")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if q.Main != "Alien" {
		t.Fatalf("unexpected main query: %q", q.Main)
	}
	if kind, ok := q.Kind(); !ok || kind != query.KindMovie {
		t.Fatalf("expected movie kind, got %v %v", kind, ok)
	}
	if year, ok := q.Year(); !ok || year != 1979 {
		t.Fatalf("expected year 1979, got %d %v", year, ok)
	}
	if lang, ok := q.Language(); !ok || lang != "en" {
		t.Fatalf("expected language en, got %q %v", lang, ok)
	}
}

func TestParseCaseInsensitive(t *testing.T) {
	q, err := query.Parse("Severance[TYPE=Show, S=2];")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if kind, ok := q.Kind(); !ok || kind != query.KindTV {
		t.Fatalf("expected tv kind, got %v %v", kind, ok)
	}
	if season, ok := q.Season(); !ok || season != 2 {
		t.Fatalf("expected season 2, got %d %v", season, ok)
	}
}

func TestParseDropsUnknownKey(t *testing.T) {
	q, err := query.Parse("Dune[director=lynch, year=1984];")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, ok := q.Filters["director"]; ok {
		t.Fatal("unknown key should have been dropped")
	}
	if year, ok := q.Year(); !ok || year != 1984 {
		t.Fatalf("valid filter lost alongside dropped one: %d %v", year, ok)
	}
	if len(q.Dropped) != 1 {
		t.Fatalf("expected one diagnostic, got %v", q.Dropped)
	}
}

func TestParseDropsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"bad year", "X[year=79];"},
		{"bad season", "X[season=two];"},
		{"bad type", "X[type=documentary];"},
		{"bad flag", "X[all_seasons=maybe];"},
		{"bad language", "X[lang=not-a-language-tag-at-all];"},
		{"no separator", "X[year1979];"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := query.Parse(tc.raw)
			if err != nil {
				t.Fatalf("Parse should not fail on droppable filters: %v", err)
			}
			if len(q.Filters) != 0 {
				t.Fatalf("expected all filters dropped, got %v", q.Filters)
			}
			if len(q.Dropped) == 0 {
				t.Fatal("expected a diagnostic for the dropped filter")
			}
		})
	}
}

func TestParseEpisodeRequiresSeason(t *testing.T) {
	_, err := query.Parse("Lost[episode=4];")
	if err == nil {
		t.Fatal("expected validation error for episode without season")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	if _, err := query.Parse("Lost[season=1, episode=4];"); err != nil {
		t.Fatalf("episode with season should parse: %v", err)
	}
}

func TestParseEmptyMainQuery(t *testing.T) {
	for _, raw := range []string{";", "   ;", "[year=1999];"} {
		if _, err := query.Parse(raw); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Parse(%q): expected ErrValidation, got %v", raw, err)
		}
	}
}

func TestParseMissingDelimiter(t *testing.T) {
	if _, err := query.Parse("Alien"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing delimiter, got %v", err)
	}
}

func TestAllEpisodesImpliesAllSeasons(t *testing.T) {
	q, err := query.Parse("The Wire[all=yes];")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !q.AllEpisodes() || !q.AllSeasons() {
		t.Fatalf("all alias should enable episode and season expansion: %+v", q)
	}
}

func TestLanguageNormalization(t *testing.T) {
	q, err := query.Parse("Amelie[language=fr-fr];")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if lang, ok := q.Language(); !ok || lang != "fr-FR" {
		t.Fatalf("expected normalized fr-FR, got %q %v", lang, ok)
	}
}
