package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"reelhouse/handlers"
)

func TestVersionHandler(t *testing.T) {
	h := handlers.NewVersionHandler()

	rec := httptest.NewRecorder()
	h.GetVersion(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp handlers.VersionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Version != handlers.Version {
		t.Errorf("expected version %q, got %q", handlers.Version, resp.Version)
	}
	if resp.GoVersion != runtime.Version() {
		t.Errorf("unexpected go version %q", resp.GoVersion)
	}
}
