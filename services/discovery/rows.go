package discovery

import (
	"context"
	"net/url"
	"strconv"

	"reelhouse/models"
)

// Row is one horizontal list on the home screen: either a fixed endpoint or a
// genre filter over movie discovery.
type Row struct {
	Key        string
	Title      string
	Endpoint   string
	WithGenres int
}

// DefaultRows are the home screen rows in display order.
var DefaultRows = []Row{
	{Key: "trending", Title: "Trending", Endpoint: "/trending/movie/day"},
	{Key: "action", Title: "Action", WithGenres: 28},
	{Key: "drama", Title: "Drama", WithGenres: 18},
	{Key: "comedy", Title: "Comedy", WithGenres: 35},
	{Key: "thriller", Title: "Thriller", WithGenres: 53},
	{Key: "horror", Title: "Horror", WithGenres: 27},
	{Key: "science-fiction", Title: "Science Fiction", WithGenres: 878},
	{Key: "animation", Title: "Animation", WithGenres: 16},
}

// RowByKey looks up a default row.
func RowByKey(key string) (Row, bool) {
	for _, r := range DefaultRows {
		if r.Key == key {
			return r, true
		}
	}
	return Row{}, false
}

// FetchRow loads the titles of a row.
func (c *Client) FetchRow(ctx context.Context, row Row) (models.PagedResults, error) {
	if row.Endpoint != "" {
		return c.List(ctx, row.Endpoint, nil)
	}
	params := url.Values{}
	if row.WithGenres != 0 {
		params.Set("with_genres", strconv.Itoa(row.WithGenres))
	}
	return c.Discover(ctx, models.MediaTypeMovie, params)
}
