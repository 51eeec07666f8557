package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelhouse/handlers"
	"reelhouse/services/proxy"
)

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body["error"]
}

func TestProxyTMDBPassesThroughStatusAndBody(t *testing.T) {
	upstream := newUpstream(t)
	h := handlers.NewProxyHandler(proxy.NewService(proxy.Config{TMDBAPIKey: "k", TMDBBaseURL: upstream.URL}, upstream.Client()))

	req := httptest.NewRequest(http.MethodGet, "/api/tmdb?path=/movie/550", nil)
	rec := httptest.NewRecorder()
	h.TMDB(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected upstream status 418, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"path":"/movie/550"}` {
		t.Fatalf("unexpected body %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != proxy.CacheControl {
		t.Fatalf("unexpected cache-control %q", got)
	}
}

func TestProxyTMDBErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     proxy.Config
		target  string
		status  int
		message string
	}{
		{"missing key", proxy.Config{}, "/api/tmdb?path=/movie/1", http.StatusInternalServerError, "Missing TMDB_API_KEY"},
		{"relative path", proxy.Config{TMDBAPIKey: "k"}, "/api/tmdb?path=movie/1", http.StatusBadRequest, "Invalid path"},
		{"traversal", proxy.Config{TMDBAPIKey: "k"}, "/api/tmdb?path=/movie/../x", http.StatusBadRequest, "Invalid path"},
		{"absolute url", proxy.Config{TMDBAPIKey: "k"}, "/api/tmdb?path=/http://x", http.StatusBadRequest, "Invalid path"},
		{"no path", proxy.Config{TMDBAPIKey: "k"}, "/api/tmdb", http.StatusBadRequest, "Invalid path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewProxyHandler(proxy.NewService(tt.cfg, nil))
			rec := httptest.NewRecorder()
			h.TMDB(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			if got := decodeError(t, rec); got != tt.message {
				t.Fatalf("expected error %q, got %q", tt.message, got)
			}
		})
	}
}

func TestProxyUpstreamUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := upstream.URL
	upstream.Close()

	h := handlers.NewProxyHandler(proxy.NewService(proxy.Config{OMDBAPIKey: "k", OMDBBaseURL: base}, nil))
	rec := httptest.NewRecorder()
	h.OMDB(rec, httptest.NewRequest(http.MethodGet, "/api/omdb?i=tt1", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "Upstream request failed" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestProxyOMDBMissingID(t *testing.T) {
	h := handlers.NewProxyHandler(proxy.NewService(proxy.Config{OMDBAPIKey: "k"}, nil))
	rec := httptest.NewRecorder()
	h.OMDB(rec, httptest.NewRequest(http.MethodGet, "/api/omdb", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "Missing i (imdb id)" {
		t.Fatalf("unexpected error %q", got)
	}
}
