package catalog

import "reelsync/internal/metadata"

// Properties is the fixed property schema shared by every page in the
// database. Relation fields hold page ids; empty means unset.
type Properties struct {
	Tagline       string   `json:"tagline,omitempty"`
	Genres        []string `json:"genres,omitempty"`
	Runtime       int      `json:"runtime,omitempty"`
	ReleaseStatus string   `json:"release_status,omitempty"`
	ReleaseDate   string   `json:"release_date,omitempty"`
	Synopsis      string   `json:"synopsis,omitempty"`
	Director      string   `json:"director,omitempty"`
	Composer      string   `json:"composer,omitempty"`
	Cast          []string `json:"cast,omitempty"`
	Rating        float64  `json:"rating,omitempty"`
	Type          string   `json:"type,omitempty"`
	TMDBID        int64    `json:"tmdb_id,omitempty"`
	SeasonNumber  int      `json:"season_number,omitempty"`
	EpisodeNumber int      `json:"episode_number,omitempty"`
	ShowPageID    string   `json:"show_page_id,omitempty"`
	SeasonPageID  string   `json:"season_page_id,omitempty"`
	Refresh       bool     `json:"refresh,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
	IconURL       string   `json:"icon_url,omitempty"`
	TrailerURL    string   `json:"trailer_url,omitempty"`
}

// Page is a destination store page. Identity is the store-assigned id.
type Page struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Archived   bool       `json:"archived,omitempty"`
	Properties Properties `json:"properties"`
}

// Update is a partial page update. Nil fields are left untouched.
type Update struct {
	Title      *string     `json:"title,omitempty"`
	Properties *Properties `json:"properties,omitempty"`
	Archived   *bool       `json:"archived,omitempty"`
}

// Filter selects pages by property predicates. Zero-valued predicates are
// omitted from the query; set predicates are conjoined.
type Filter struct {
	TitleEndsWith        string   `json:"title_ends_with,omitempty"`
	RefreshEquals        *bool    `json:"refresh_equals,omitempty"`
	ReleaseDateOnOrAfter string   `json:"release_date_on_or_after,omitempty"`
	StatusNotIn          []string `json:"status_not_in,omitempty"`
	TypeIn               []string `json:"type_in,omitempty"`
	ShowRelationEquals   string   `json:"show_relation_equals,omitempty"`
	SeasonRelationEquals string   `json:"season_relation_equals,omitempty"`
	TMDBIDEquals         *int64   `json:"tmdb_id_equals,omitempty"`
}

// Block is a page child block. Only the two annotation shapes the engine
// writes are modeled: callout notices and cross-page links.
type Block struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	LinkPageID string `json:"link_page_id,omitempty"`
}

// Block types used for annotations.
const (
	BlockCallout    = "callout"
	BlockLinkToPage = "link_to_page"
)

// PropertiesFromRecord maps a normalized record onto the page property
// schema. Relations are left for the reconciliation engine to fill in, since
// only it knows the parent page ids.
func PropertiesFromRecord(rec metadata.Record) Properties {
	return Properties{
		Tagline:       rec.Tagline,
		Genres:        rec.Genres,
		Runtime:       rec.Runtime,
		ReleaseStatus: rec.Status,
		ReleaseDate:   rec.ReleaseDate,
		Synopsis:      rec.Synopsis,
		Director:      rec.Director,
		Composer:      rec.Composer,
		Cast:          rec.Cast,
		Rating:        rec.Rating,
		Type:          string(rec.Type),
		TMDBID:        rec.TMDBID,
		SeasonNumber:  rec.SeasonNumber,
		EpisodeNumber: rec.EpisodeNumber,
		CoverURL:      rec.BackdropURL,
		IconURL:       rec.PosterURL,
		TrailerURL:    rec.TrailerURL,
	}
}
