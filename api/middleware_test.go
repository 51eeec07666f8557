package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelhouse/internal/auth"
	"reelhouse/models"
	"reelhouse/services/sessions"
)

type staticValidator struct {
	session models.Session
	err     error
	seen    string
}

func (v *staticValidator) Validate(token string) (models.Session, error) {
	v.seen = token
	return v.session, v.err
}

func accountEcho() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(auth.GetAccountID(r)))
	}
}

func TestRequireSession(t *testing.T) {
	valid := &staticValidator{session: models.Session{Token: "tok", AccountID: "acct-1", ExpiresAt: time.Now().Add(time.Hour)}}

	tests := []struct {
		name      string
		validator sessionValidator
		method    string
		target    string
		header    string
		status    int
		body      string
	}{
		{"bearer header", valid, http.MethodGet, "/api/favorites", "Bearer tok", http.StatusOK, "acct-1"},
		{"query token", valid, http.MethodGet, "/api/favorites?token=tok", "", http.StatusOK, "acct-1"},
		{"missing token", valid, http.MethodGet, "/api/favorites", "", http.StatusUnauthorized, ""},
		{"expired", &staticValidator{err: sessions.ErrSessionExpired}, http.MethodGet, "/api/favorites", "Bearer old", http.StatusUnauthorized, ""},
		{"no validator", nil, http.MethodGet, "/api/favorites", "Bearer tok", http.StatusInternalServerError, ""},
		{"preflight", nil, http.MethodOptions, "/api/favorites", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireSession(tt.validator)(accountEcho())

			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}
