package models

// Provider response shapes consumed by the discovery client. Field names follow
// the metadata provider's JSON so bodies can be decoded straight from the proxy.

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type GenreList struct {
	Genres []Genre `json:"genres"`
}

// ListItem is a single row entry from trending, discover or recommendation lists.
type ListItem struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	PosterPath   *string   `json:"poster_path"`
	BackdropPath *string   `json:"backdrop_path"`
	MediaType    MediaType `json:"media_type,omitempty"`
}

// DisplayTitle prefers the movie title, then the series name.
func (i ListItem) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	if i.Name != "" {
		return i.Name
	}
	return "Untitled"
}

// Ref converts the row entry into a MediaRef of the given type.
func (i ListItem) Ref(mediaType MediaType) MediaRef {
	if i.MediaType.Valid() {
		mediaType = i.MediaType
	}
	return MediaRef{
		ID:           i.ID,
		MediaType:    mediaType,
		Title:        i.DisplayTitle(),
		PosterPath:   i.PosterPath,
		BackdropPath: i.BackdropPath,
	}
}

type PagedResults struct {
	Results      []ListItem `json:"results"`
	Page         int        `json:"page,omitempty"`
	TotalPages   int        `json:"total_pages,omitempty"`
	TotalResults int        `json:"total_results,omitempty"`
}

type MovieDetail struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	Runtime      *int    `json:"runtime"`
	Genres       []Genre `json:"genres"`
	IMDBID       string  `json:"imdb_id"`
	IMDBRating   *string `json:"imdb_rating"`
}

// Ref returns the MediaRef snapshot of the movie.
func (m MovieDetail) Ref() MediaRef {
	return MediaRef{ID: m.ID, MediaType: MediaTypeMovie, Title: m.Title, PosterPath: m.PosterPath, BackdropPath: m.BackdropPath}
}

type Creator struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type TvDetail struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	CreatedBy        []Creator `json:"created_by"`
	PosterPath       *string   `json:"poster_path"`
	BackdropPath     *string   `json:"backdrop_path"`
	Overview         string    `json:"overview"`
	FirstAirDate     string    `json:"first_air_date"`
	LastAirDate      string    `json:"last_air_date"`
	Genres           []Genre   `json:"genres"`
	NumberOfSeasons  int       `json:"number_of_seasons"`
	NumberOfEpisodes int       `json:"number_of_episodes"`
	ExternalIDs      struct {
		IMDBID string `json:"imdb_id"`
	} `json:"external_ids"`
	IMDBRating *string `json:"imdb_rating"`
}

// Ref returns the MediaRef snapshot of the series.
func (t TvDetail) Ref() MediaRef {
	return MediaRef{ID: t.ID, MediaType: MediaTypeTV, Title: t.Name, PosterPath: t.PosterPath, BackdropPath: t.BackdropPath}
}

// CreditPerson is a cast or crew member on a title's credits list.
type CreditPerson struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job,omitempty"`
	Character   string  `json:"character,omitempty"`
	ProfilePath *string `json:"profile_path"`
}

type CreditsResponse struct {
	ID   int64          `json:"id"`
	Cast []CreditPerson `json:"cast"`
	Crew []CreditPerson `json:"crew"`
}

type VideosResponse struct {
	ID      int64      `json:"id"`
	Results []VideoRef `json:"results"`
}

type Person struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ProfilePath  *string `json:"profile_path"`
	Birthday     *string `json:"birthday"`
	PlaceOfBirth *string `json:"place_of_birth"`
	Biography    *string `json:"biography"`
}

type PersonCredits struct {
	Cast []Credit `json:"cast"`
}

// SearchResult is one entry of a multi search; people carry a profile path.
type SearchResult struct {
	ID          int64   `json:"id"`
	MediaType   string  `json:"media_type"`
	Title       string  `json:"title,omitempty"`
	Name        string  `json:"name,omitempty"`
	PosterPath  *string `json:"poster_path"`
	ProfilePath *string `json:"profile_path"`
}

type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// DetailsBundle is the assembled view model for a title detail page.
type DetailsBundle struct {
	Ref             MediaRef       `json:"ref"`
	Movie           *MovieDetail   `json:"movie,omitempty"`
	Tv              *TvDetail      `json:"tv,omitempty"`
	Cast            []CreditPerson `json:"cast"`
	Trailer         *VideoRef      `json:"trailer,omitempty"`
	TrailerEmbedURL string         `json:"trailerEmbedUrl,omitempty"`
	Recommendations []ListItem     `json:"recommendations"`
	Favorited       *bool          `json:"favorited,omitempty"`
}
