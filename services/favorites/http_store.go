package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reelhouse/models"
)

// uniqueViolationCode is the error code the backend returns for a duplicate favorite.
const uniqueViolationCode = "23505"

// HTTPStore talks to the favorites API with a bearer session token. The
// backend derives the owning user from the token; userID arguments are only
// checked for presence.
type HTTPStore struct {
	baseURL    string
	httpClient *http.Client
	token      func() string
}

// NewHTTPStore builds a store rooted at baseURL (e.g. "http://localhost:7777").
// token is consulted on every request so a re-login takes effect immediately.
func NewHTTPStore(baseURL string, httpClient *http.Client, token func() string) *HTTPStore {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		token:      token,
	}
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *HTTPStore) Add(ctx context.Context, userID string, ref models.MediaRef) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthorized
	}
	body, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("encode favorite: %w", err)
	}
	resp, err := s.do(ctx, http.MethodPost, "/api/favorites", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkResponse(resp)
}

func (s *HTTPStore) Remove(ctx context.Context, userID string, mediaID int64) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthorized
	}
	resp, err := s.do(ctx, http.MethodDelete, "/api/favorites/"+strconv.FormatInt(mediaID, 10), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return checkResponse(resp)
}

func (s *HTTPStore) Exists(ctx context.Context, userID string, mediaID int64) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrUnauthorized
	}
	resp, err := s.do(ctx, http.MethodGet, "/api/favorites/"+strconv.FormatInt(mediaID, 10), nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return false, err
	}

	var payload struct {
		Favorited bool `json:"favorited"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode favorite status: %w", err)
	}
	return payload.Favorited, nil
}

func (s *HTTPStore) List(ctx context.Context, userID string) ([]models.FavoriteRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthorized
	}
	resp, err := s.do(ctx, http.MethodGet, "/api/favorites", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var items []models.FavoriteRecord
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	if items == nil {
		items = []models.FavoriteRecord{}
	}
	return items, nil
}

func (s *HTTPStore) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != nil {
		if token := strings.TrimSpace(s.token()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("favorites request: %w", err)
	}
	return resp, nil
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var payload apiError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload)

	switch {
	case resp.StatusCode == http.StatusConflict || payload.Code == uniqueViolationCode:
		return ErrConflict
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	}

	if payload.Error != "" {
		return fmt.Errorf("favorites api: %s (status %d)", payload.Error, resp.StatusCode)
	}
	return fmt.Errorf("favorites api: unexpected status %d", resp.StatusCode)
}
