package tmdb

// SearchResult represents a single TMDB search match.
type SearchResult struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	MediaType    string  `json:"media_type"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
}

// SearchResponse models the TMDB paginated search response.
type SearchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// Genre is a TMDB genre tag.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CastMember is a single billed cast credit, ordered by billing.
type CastMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// CrewMember is a role-tagged crew credit.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits bundles the cast and crew embedded in a detail response.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Video is a trailer/teaser/clip entry embedded in a detail response.
type Video struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	Site        string `json:"site"`
	Type        string `json:"type"`
	Official    bool   `json:"official"`
	PublishedAt string `json:"published_at"`
}

// Videos wraps the embedded video list.
type Videos struct {
	Results []Video `json:"results"`
}

// MovieDetails is the full TMDB movie payload with embedded credits and videos.
type MovieDetails struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Tagline      string  `json:"tagline"`
	Overview     string  `json:"overview"`
	Runtime      int     `json:"runtime"`
	Status       string  `json:"status"`
	ReleaseDate  string  `json:"release_date"`
	Genres       []Genre `json:"genres"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	Credits      Credits `json:"credits"`
	Videos       Videos  `json:"videos"`
}

// SeasonSummary is the per-season stub embedded in a TV detail payload.
type SeasonSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
}

// TVDetails is the full TMDB show payload with embedded credits and videos.
type TVDetails struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Tagline         string          `json:"tagline"`
	Overview        string          `json:"overview"`
	Status          string          `json:"status"`
	Type            string          `json:"type"`
	FirstAirDate    string          `json:"first_air_date"`
	Genres          []Genre         `json:"genres"`
	EpisodeRunTime  []int           `json:"episode_run_time"`
	NumberOfSeasons int             `json:"number_of_seasons"`
	Seasons         []SeasonSummary `json:"seasons"`
	PosterPath      string          `json:"poster_path"`
	BackdropPath    string          `json:"backdrop_path"`
	VoteAverage     float64         `json:"vote_average"`
	Credits         Credits         `json:"credits"`
	Videos          Videos          `json:"videos"`
}

// EpisodeSummary is the per-episode stub embedded in a season payload.
type EpisodeSummary struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	AirDate       string `json:"air_date"`
}

// SeasonDetails is the full TMDB season payload with embedded credits and videos.
type SeasonDetails struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Overview     string           `json:"overview"`
	AirDate      string           `json:"air_date"`
	SeasonNumber int              `json:"season_number"`
	PosterPath   string           `json:"poster_path"`
	VoteAverage  float64          `json:"vote_average"`
	Episodes     []EpisodeSummary `json:"episodes"`
	Credits      Credits          `json:"credits"`
	Videos       Videos           `json:"videos"`
}

// EpisodeDetails is the full TMDB episode payload with embedded credits and videos.
type EpisodeDetails struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	AirDate       string  `json:"air_date"`
	SeasonNumber  int     `json:"season_number"`
	EpisodeNumber int     `json:"episode_number"`
	Runtime       int     `json:"runtime"`
	StillPath     string  `json:"still_path"`
	VoteAverage   float64 `json:"vote_average"`
	Credits       Credits `json:"credits"`
	Videos        Videos  `json:"videos"`
}
