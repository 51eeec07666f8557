// Package proxy forwards metadata and ratings requests to the upstream
// providers, injecting the server-held API keys.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/time/rate"
)

const (
	DefaultTMDBBaseURL = "https://api.themoviedb.org/3"
	DefaultOMDBBaseURL = "https://www.omdbapi.com/"
	DefaultLanguage    = "en-US"

	// CacheControl is attached to every proxied response.
	CacheControl = "public, s-maxage=600, stale-while-revalidate=300"

	// DefaultMaxBodyBytes bounds how much of an upstream body is buffered.
	DefaultMaxBodyBytes = 8 << 20
)

var (
	ErrMissingTMDBKey = errors.New("tmdb api key not configured")
	ErrMissingOMDBKey = errors.New("omdb api key not configured")
	ErrInvalidPath    = errors.New("invalid metadata path")
	ErrMissingIMDBID  = errors.New("imdb id is required")
	ErrUpstream       = errors.New("upstream request failed")
	ErrBodyTooLarge   = errors.New("upstream body exceeds limit")
)

// Config holds the upstream credentials and endpoints.
type Config struct {
	TMDBAPIKey  string
	OMDBAPIKey  string
	TMDBBaseURL string
	OMDBBaseURL string
	Language    string
	// RequestsPerSecond paces outbound calls; 0 disables pacing.
	RequestsPerSecond float64
	Burst             int
	// MaxBodyBytes rejects larger upstream bodies; 0 means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Response is an upstream answer passed through verbatim.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

type Service struct {
	cfg     Config
	httpc   *http.Client
	limiter *rate.Limiter
}

func NewService(cfg Config, httpc *http.Client) *Service {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if strings.TrimSpace(cfg.TMDBBaseURL) == "" {
		cfg.TMDBBaseURL = DefaultTMDBBaseURL
	}
	if strings.TrimSpace(cfg.OMDBBaseURL) == "" {
		cfg.OMDBBaseURL = DefaultOMDBBaseURL
	}
	if strings.TrimSpace(cfg.Language) == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	cfg.TMDBAPIKey = strings.TrimSpace(cfg.TMDBAPIKey)
	cfg.OMDBAPIKey = strings.TrimSpace(cfg.OMDBAPIKey)

	svc := &Service{cfg: cfg, httpc: httpc}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		svc.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return svc
}

// ValidPath reports whether a metadata path may be forwarded: it must be
// absolute and contain neither ".." nor "://".
func ValidPath(p string) bool {
	if !strings.HasPrefix(p, "/") {
		return false
	}
	if strings.Contains(p, "..") || strings.Contains(p, "://") {
		return false
	}
	return true
}

// TMDB forwards a metadata request. query is the caller's query string; its
// "path" parameter selects the upstream endpoint and every other parameter is
// passed on unchanged.
func (s *Service) TMDB(ctx context.Context, query url.Values) (*Response, error) {
	if s.cfg.TMDBAPIKey == "" {
		return nil, ErrMissingTMDBKey
	}

	rawPath := query.Get("path")
	if !ValidPath(rawPath) {
		return nil, ErrInvalidPath
	}

	outbound, err := url.Parse(strings.TrimRight(s.cfg.TMDBBaseURL, "/") + rawPath)
	if err != nil {
		return nil, ErrInvalidPath
	}

	params := outbound.Query()
	for key, values := range query {
		if key == "path" {
			continue
		}
		for _, v := range values {
			params.Add(key, v)
		}
	}
	params.Set("api_key", s.cfg.TMDBAPIKey)
	if !params.Has("language") {
		params.Set("language", s.cfg.Language)
	}
	outbound.RawQuery = params.Encode()

	return s.forward(ctx, outbound.String(), "tmdb "+rawPath)
}

// OMDB forwards a ratings lookup for an IMDb id.
func (s *Service) OMDB(ctx context.Context, imdbID string) (*Response, error) {
	if s.cfg.OMDBAPIKey == "" {
		return nil, ErrMissingOMDBKey
	}
	if strings.TrimSpace(imdbID) == "" {
		return nil, ErrMissingIMDBID
	}

	outbound, err := url.Parse(s.cfg.OMDBBaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse omdb base url: %w", err)
	}
	params := outbound.Query()
	params.Set("i", imdbID)
	params.Set("apikey", s.cfg.OMDBAPIKey)
	outbound.RawQuery = params.Encode()

	return s.forward(ctx, outbound.String(), "omdb "+imdbID)
}

func (s *Service) forward(ctx context.Context, target, label string) (*Response, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		log.Printf("[proxy] %s failed: %v", label, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		log.Printf("[proxy] %s read failed: %v", label, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if int64(len(body)) > s.cfg.MaxBodyBytes {
		log.Printf("[proxy] %s body larger than %d bytes", label, s.cfg.MaxBodyBytes)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, ErrBodyTooLarge)
	}

	if resp.StatusCode >= 400 {
		log.Printf("[proxy] %s upstream status %d", label, resp.StatusCode)
	}

	return &Response{
		Status:      resp.StatusCode,
		ContentType: contentType(resp.Header.Get("Content-Type"), body),
		Body:        body,
	}, nil
}

// contentType keeps the upstream header, otherwise sniffs the body and
// falls back to JSON when sniffing is inconclusive.
func contentType(header string, body []byte) string {
	if strings.TrimSpace(header) != "" {
		return header
	}
	if len(body) > 0 {
		if detected := mimetype.Detect(body); detected != nil && !detected.Is("application/octet-stream") {
			return detected.String()
		}
	}
	return "application/json"
}
