package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"reelhouse/services/proxy"
)

type proxyService interface {
	TMDB(ctx context.Context, query url.Values) (*proxy.Response, error)
	OMDB(ctx context.Context, imdbID string) (*proxy.Response, error)
}

var _ proxyService = (*proxy.Service)(nil)

// ProxyHandler exposes the metadata and ratings proxies.
type ProxyHandler struct {
	Service proxyService
}

func NewProxyHandler(service proxyService) *ProxyHandler {
	return &ProxyHandler{Service: service}
}

// TMDB handles GET /api/tmdb?path=/movie/550&...
func (h *ProxyHandler) TMDB(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.TMDB(r.Context(), r.URL.Query())
	if err != nil {
		writeProxyError(w, err)
		return
	}
	writeProxyResponse(w, resp)
}

// OMDB handles GET /api/omdb?i=tt0137523
func (h *ProxyHandler) OMDB(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.OMDB(r.Context(), r.URL.Query().Get("i"))
	if err != nil {
		writeProxyError(w, err)
		return
	}
	writeProxyResponse(w, resp)
}

func writeProxyResponse(w http.ResponseWriter, resp *proxy.Response) {
	w.Header().Set("Cache-Control", proxy.CacheControl)
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

func writeProxyError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Upstream request failed"
	switch {
	case errors.Is(err, proxy.ErrMissingTMDBKey):
		message = "Missing TMDB_API_KEY"
	case errors.Is(err, proxy.ErrMissingOMDBKey):
		message = "Missing OMDB_API_KEY"
	case errors.Is(err, proxy.ErrInvalidPath):
		status = http.StatusBadRequest
		message = "Invalid path"
	case errors.Is(err, proxy.ErrMissingIMDBID):
		status = http.StatusBadRequest
		message = "Missing i (imdb id)"
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", proxy.CacheControl)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
