package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"reelsync/internal/services"
)

// Delimiter is the trailing marker that flags a page title as pending
// resolution. Its removal signals completion.
const Delimiter = ";"

// Key identifies a validated filter.
type Key string

const (
	KeyYear        Key = "year"
	KeyType        Key = "type"
	KeySeason      Key = "season"
	KeyEpisode     Key = "episode"
	KeyLanguage    Key = "language"
	KeyAllSeasons  Key = "all_seasons"
	KeyAllEpisodes Key = "all_episodes"
)

// MediaKind is the media type a query may pin via the type filter.
type MediaKind string

const (
	KindMovie MediaKind = "movie"
	KindTV    MediaKind = "tv"
)

var keyAliases = map[string]Key{
	"year":         KeyYear,
	"y":            KeyYear,
	"type":         KeyType,
	"t":            KeyType,
	"season":       KeySeason,
	"s":            KeySeason,
	"episode":      KeyEpisode,
	"e":            KeyEpisode,
	"language":     KeyLanguage,
	"lang":         KeyLanguage,
	"l":            KeyLanguage,
	"all_seasons":  KeyAllSeasons,
	"all_episodes": KeyAllEpisodes,
	"all":          KeyAllEpisodes,
}

var movieTypeValues = map[string]struct{}{
	"movie": {},
	"film":  {},
}

var tvTypeValues = map[string]struct{}{
	"tv":         {},
	"television": {},
	"series":     {},
	"show":       {},
}

var (
	yearPattern    = regexp.MustCompile(`^\d{4}$`)
	integerPattern = regexp.MustCompile(`^\d+$`)
)

// Query is a parsed title query: the free-text main query plus the validated
// filter map. Dropped records diagnostics for filters discarded during
// parsing; they are informational only.
type Query struct {
	Main    string
	Filters map[Key]string
	Dropped []string
}

// Parse parses a raw title string into a Query. The trailing delimiter is
// mandatory. Unknown keys and values failing validation are dropped and noted
// in Dropped. The only terminal errors are an empty main query and an episode
// filter without a season filter; both carry services.ErrValidation.
func Parse(raw string) (Query, error) {
	q := Query{Filters: make(map[Key]string)}

	trimmed := strings.TrimSpace(raw)
	if !strings.HasSuffix(trimmed, Delimiter) {
		return q, services.Wrap(services.ErrValidation, "query", "parse",
			fmt.Sprintf("query %q must end with %q", raw, Delimiter), nil)
	}
	trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, Delimiter))

	main := trimmed
	if open := strings.Index(trimmed, "["); open >= 0 {
		closing := strings.LastIndex(trimmed, "]")
		if closing > open {
			main = trimmed[:open]
			q.parseFilters(trimmed[open+1 : closing])
		} else {
			// Unterminated bracket: treat the bracket contents as filters
			// anyway rather than polluting the main query.
			main = trimmed[:open]
			q.parseFilters(trimmed[open+1:])
		}
	}

	q.Main = strings.TrimSpace(main)
	if q.Main == "" {
		return q, services.Wrap(services.ErrValidation, "query", "parse", "main query is empty", nil)
	}

	if _, ok := q.Filters[KeyEpisode]; ok {
		if _, ok := q.Filters[KeySeason]; !ok {
			return q, services.Wrap(services.ErrValidation, "query", "parse",
				"episode filter requires a season filter", nil)
		}
	}

	return q, nil
}

func (q *Query) parseFilters(segment string) {
	for _, part := range strings.Split(segment, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		sep := strings.IndexAny(part, ":=")
		if sep < 0 {
			q.drop(part, "missing key/value separator")
			continue
		}
		rawKey := strings.ToLower(strings.TrimSpace(part[:sep]))
		rawValue := strings.ToLower(strings.TrimSpace(part[sep+1:]))

		key, ok := keyAliases[rawKey]
		if !ok {
			q.drop(part, fmt.Sprintf("unknown key %q", rawKey))
			continue
		}

		value, ok := validateValue(key, rawValue)
		if !ok {
			q.drop(part, fmt.Sprintf("invalid value %q for %s", rawValue, key))
			continue
		}
		q.Filters[key] = value
	}
}

func (q *Query) drop(filter, reason string) {
	q.Dropped = append(q.Dropped, fmt.Sprintf("dropped filter %q: %s", filter, reason))
}

func validateValue(key Key, value string) (string, bool) {
	if value == "" {
		return "", false
	}
	switch key {
	case KeyYear:
		return value, yearPattern.MatchString(value)
	case KeySeason, KeyEpisode:
		return value, integerPattern.MatchString(value)
	case KeyType:
		if _, ok := movieTypeValues[value]; ok {
			return value, true
		}
		_, ok := tvTypeValues[value]
		return value, ok
	case KeyAllSeasons, KeyAllEpisodes:
		switch value {
		case "true", "false", "yes", "no":
			return value, true
		}
		return "", false
	case KeyLanguage:
		tag, err := language.Parse(value)
		if err != nil {
			return "", false
		}
		return tag.String(), true
	default:
		return "", false
	}
}

// Year returns the year filter when present.
func (q Query) Year() (int, bool) {
	value, ok := q.Filters[KeyYear]
	if !ok {
		return 0, false
	}
	year, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return year, true
}

// Season returns the season filter when present.
func (q Query) Season() (int, bool) {
	return q.intFilter(KeySeason)
}

// Episode returns the episode filter when present.
func (q Query) Episode() (int, bool) {
	return q.intFilter(KeyEpisode)
}

func (q Query) intFilter(key Key) (int, bool) {
	value, ok := q.Filters[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Kind returns the media kind pinned by the type filter when present.
func (q Query) Kind() (MediaKind, bool) {
	value, ok := q.Filters[KeyType]
	if !ok {
		return "", false
	}
	if _, ok := movieTypeValues[value]; ok {
		return KindMovie, true
	}
	if _, ok := tvTypeValues[value]; ok {
		return KindTV, true
	}
	return "", false
}

// Language returns the normalized BCP-47 language filter when present.
func (q Query) Language() (string, bool) {
	value, ok := q.Filters[KeyLanguage]
	return value, ok
}

// AllSeasons reports whether the query asks for the full season catalog.
func (q Query) AllSeasons() bool {
	return boolValue(q.Filters[KeyAllSeasons]) || q.AllEpisodes()
}

// AllEpisodes reports whether the query asks for episodes within each season.
func (q Query) AllEpisodes() bool {
	return boolValue(q.Filters[KeyAllEpisodes])
}

func boolValue(value string) bool {
	switch value {
	case "true", "yes":
		return true
	default:
		return false
	}
}
