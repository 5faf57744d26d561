package metadata

// Type tags a Record with its media variant. Consumers branch on the tag
// rather than sniffing field presence.
type Type string

const (
	TypeMovie      Type = "Movie"
	TypeTelevision Type = "Television"
	TypeMiniseries Type = "Miniseries"
	TypeSeason     Type = "Television Season"
	TypeEpisode    Type = "Television Episode"
)

// Record is the flat normalized record consumed by the reconciliation engine.
// Show records nest their resolved seasons, and season records their resolved
// episodes; the nesting mirrors the catalog hierarchy.
//
// SeasonNumber and EpisodeNumber are zero when the variant has no such field.
// Season zero ("Specials") is excluded during resolution, so zero is safe as
// the absent value.
type Record struct {
	Type   Type
	TMDBID int64

	Title       string
	Tagline     string
	Genres      []string
	Runtime     int
	Status      string
	ReleaseDate string
	Synopsis    string
	Director    string
	Composer    string
	Cast        []string
	PosterURL   string
	BackdropURL string
	TrailerURL  string
	Rating      float64

	SeasonNumber  int
	EpisodeNumber int

	Seasons  []Record
	Episodes []Record
}

// IsShow reports whether the record is a top-level show variant.
func (r Record) IsShow() bool {
	return r.Type == TypeTelevision || r.Type == TypeMiniseries
}
