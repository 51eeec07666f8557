package models

import (
	"strconv"
	"strings"
	"time"
)

// MediaType distinguishes movies from TV series. The values match the
// metadata provider's path segments ("movie", "tv").
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// ParseMediaType normalises user input; anything that is not "tv" is a movie.
func ParseMediaType(raw string) MediaType {
	if strings.EqualFold(strings.TrimSpace(raw), string(MediaTypeTV)) {
		return MediaTypeTV
	}
	return MediaTypeMovie
}

// Valid reports whether t is one of the known media types.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// MediaRef is the minimal identifying and displayable record for a title.
// It is rebuilt on every fetch and never mutated in place.
type MediaRef struct {
	ID           int64     `json:"movie_id"`
	MediaType    MediaType `json:"media_type"`
	Title        string    `json:"title"`
	PosterPath   *string   `json:"poster_path"`
	BackdropPath *string   `json:"backdrop_path"`
}

// Key returns the composite identity of the title.
func (m MediaRef) Key() string {
	return string(m.MediaType) + ":" + strconv.FormatInt(m.ID, 10)
}

// RecentEntry is a recently viewed title. Recency is its position in the list.
type RecentEntry = MediaRef

// FavoriteRecord is a persisted favorite owned by one user.
type FavoriteRecord struct {
	ID           int64     `json:"movie_id"`
	MediaType    MediaType `json:"media_type"`
	Title        string    `json:"title"`
	PosterPath   *string   `json:"poster_path"`
	BackdropPath *string   `json:"backdrop_path"`
	CreatedAt    time.Time `json:"created_at"`
}

// Ref returns the media snapshot carried by the favorite.
func (f FavoriteRecord) Ref() MediaRef {
	return MediaRef{
		ID:           f.ID,
		MediaType:    f.MediaType,
		Title:        f.Title,
		PosterPath:   f.PosterPath,
		BackdropPath: f.BackdropPath,
	}
}

// Credit is one appearance of a person in a movie or series.
type Credit struct {
	CreditID     string    `json:"credit_id,omitempty"`
	ID           int64     `json:"id"`
	MediaType    MediaType `json:"media_type"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	PosterPath   *string   `json:"poster_path"`
	BackdropPath *string   `json:"backdrop_path,omitempty"`
	Character    string    `json:"character,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
}

// EffectiveDate is the release date for movies and the first air date for tv.
func (c Credit) EffectiveDate() string {
	if c.MediaType == MediaTypeTV {
		return c.FirstAirDate
	}
	return c.ReleaseDate
}

// VideoRef is a video attached to a title, as listed by the provider.
type VideoRef struct {
	ID       string `json:"id,omitempty"`
	Key      string `json:"key"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Official *bool  `json:"official,omitempty"`
}

// StrPtr returns nil for blank strings so optional paths round-trip as null.
func StrPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
