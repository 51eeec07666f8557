// Package discovery is the typed client for the metadata and ratings proxies.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reelhouse/models"
	"reelhouse/services/sampling"
)

const (
	tmdbProxyPath = "/api/tmdb"
	omdbProxyPath = "/api/omdb"

	// RecommendationSample is how many recommendations a detail page shows.
	RecommendationSample = 4
	// recommendationPages bounds the random recommendations page.
	recommendationPages = 2
)

// UpstreamError reports a non-2xx answer from a proxy.
type UpstreamError struct {
	Path   string
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request %s failed: status %d", e.Path, e.Status)
}

// Client issues requests against the proxy endpoints served by this backend.
type Client struct {
	baseURL string
	httpc   *http.Client
	random  sampling.Source
}

// NewClient builds a client rooted at baseURL (scheme and host of the proxies).
func NewClient(baseURL string, httpc *http.Client, random sampling.Source) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if random == nil {
		random = sampling.NewSource()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		random:  random,
	}
}

// discoveryParams are the list parameters added to discovery style requests:
// popularity ordering and a random page. Caller params override them.
func (c *Client) discoveryParams(params url.Values) url.Values {
	merged := url.Values{}
	merged.Set("sort_by", "popularity.desc")
	merged.Set("page", strconv.Itoa(sampling.RandomPage(c.random, sampling.DiscoverPageCeiling)))
	for k, vs := range params {
		if len(vs) == 0 {
			continue
		}
		merged.Set(k, vs[len(vs)-1])
	}
	return merged
}

func (c *Client) tmdbURL(endpoint string, params url.Values) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("path", endpoint)
	return c.baseURL + tmdbProxyPath + "?" + q.Encode()
}

func (c *Client) getJSON(ctx context.Context, endpoint, label string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", label, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &UpstreamError{Path: label, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", label, err)
	}
	return nil
}

// List fetches any list endpoint with discovery params applied.
func (c *Client) List(ctx context.Context, endpoint string, params url.Values) (models.PagedResults, error) {
	var out models.PagedResults
	err := c.getJSON(ctx, c.tmdbURL(endpoint, c.discoveryParams(params)), endpoint, &out)
	return out, err
}

// Discover lists titles of a media type ordered by popularity from a random page.
func (c *Client) Discover(ctx context.Context, mediaType models.MediaType, params url.Values) (models.PagedResults, error) {
	return c.List(ctx, "/discover/"+string(mediaType), params)
}

// Trending lists the day's trending titles of a media type.
func (c *Client) Trending(ctx context.Context, mediaType models.MediaType) (models.PagedResults, error) {
	return c.List(ctx, "/trending/"+string(mediaType)+"/day", nil)
}

// Genres lists the genre catalogue for a media type.
func (c *Client) Genres(ctx context.Context, mediaType models.MediaType) ([]models.Genre, error) {
	endpoint := "/genre/" + string(mediaType) + "/list"
	var out models.GenreList
	if err := c.getJSON(ctx, c.tmdbURL(endpoint, c.discoveryParams(nil)), endpoint, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

// MovieDetail fetches a movie and, when it carries an IMDb id, its rating.
// A missing rating never fails the call.
func (c *Client) MovieDetail(ctx context.Context, id int64) (*models.MovieDetail, error) {
	endpoint := "/movie/" + strconv.FormatInt(id, 10)
	var out models.MovieDetail
	if err := c.getJSON(ctx, c.tmdbURL(endpoint, nil), endpoint, &out); err != nil {
		return nil, err
	}
	out.IMDBRating = c.Rating(ctx, out.IMDBID)
	return &out, nil
}

// TvDetail fetches a series with its external ids and, when known, its rating.
func (c *Client) TvDetail(ctx context.Context, id int64) (*models.TvDetail, error) {
	endpoint := "/tv/" + strconv.FormatInt(id, 10)
	params := url.Values{"append_to_response": {"external_ids"}}
	var out models.TvDetail
	if err := c.getJSON(ctx, c.tmdbURL(endpoint, params), endpoint, &out); err != nil {
		return nil, err
	}
	out.IMDBRating = c.Rating(ctx, out.ExternalIDs.IMDBID)
	return &out, nil
}

// Rating returns the IMDb rating via the ratings proxy, or nil on any failure.
func (c *Client) Rating(ctx context.Context, imdbID string) *string {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil
	}

	endpoint := c.baseURL + omdbProxyPath + "?" + url.Values{"i": {imdbID}}.Encode()
	var payload struct {
		IMDBRating string `json:"imdbRating"`
	}
	if err := c.getJSON(ctx, endpoint, "omdb", &payload); err != nil {
		log.Printf("[discovery] rating lookup for %s failed: %v", imdbID, err)
		return nil
	}
	if payload.IMDBRating == "" || payload.IMDBRating == "N/A" {
		return nil
	}
	return &payload.IMDBRating
}

// Credits fetches the cast and crew of a title.
func (c *Client) Credits(ctx context.Context, mediaType models.MediaType, id int64) (models.CreditsResponse, error) {
	endpoint := fmt.Sprintf("/%s/%d/credits", mediaType, id)
	var out models.CreditsResponse
	err := c.getJSON(ctx, c.tmdbURL(endpoint, nil), endpoint, &out)
	return out, err
}

// Videos fetches the videos attached to a title.
func (c *Client) Videos(ctx context.Context, mediaType models.MediaType, id int64) ([]models.VideoRef, error) {
	endpoint := fmt.Sprintf("/%s/%d/videos", mediaType, id)
	var out models.VideosResponse
	if err := c.getJSON(ctx, c.tmdbURL(endpoint, nil), endpoint, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Recommendations fetches page 1 or 2 of a title's recommendations at random
// and returns a random sample of up to four of them. Titles that only appear
// on other pages are never offered.
func (c *Client) Recommendations(ctx context.Context, mediaType models.MediaType, id int64) ([]models.ListItem, error) {
	endpoint := fmt.Sprintf("/%s/%d/recommendations", mediaType, id)
	params := url.Values{"page": {strconv.Itoa(sampling.RandomPage(c.random, recommendationPages))}}
	var out models.PagedResults
	if err := c.getJSON(ctx, c.tmdbURL(endpoint, params), endpoint, &out); err != nil {
		return nil, err
	}
	return sampling.ShuffleSample(c.random, out.Results, RecommendationSample), nil
}

// Person fetches a person's profile.
func (c *Client) Person(ctx context.Context, id int64) (*models.Person, error) {
	endpoint := "/person/" + strconv.FormatInt(id, 10)
	var out models.Person
	if err := c.getJSON(ctx, c.tmdbURL(endpoint, nil), endpoint, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PersonCredits fetches a person's movie and tv appearances.
func (c *Client) PersonCredits(ctx context.Context, id int64) ([]models.Credit, error) {
	endpoint := fmt.Sprintf("/person/%d/combined_credits", id)
	var out models.PersonCredits
	if err := c.getJSON(ctx, c.tmdbURL(endpoint, nil), endpoint, &out); err != nil {
		return nil, err
	}
	return out.Cast, nil
}

// Search runs a multi search across movies, series and people.
func (c *Client) Search(ctx context.Context, query string, page int) (models.SearchResponse, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{"query": {query}, "page": {strconv.Itoa(page)}}
	var out models.SearchResponse
	err := c.getJSON(ctx, c.tmdbURL("/search/multi", params), "/search/multi", &out)
	return out, err
}
