package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"reelhouse/internal/auth"
	"reelhouse/models"
	"reelhouse/services/sessions"
	"reelhouse/utils"
)

type sessionValidator interface {
	Validate(token string) (models.Session, error)
}

var _ sessionValidator = (*sessions.Service)(nil)

// RequireSession rejects requests without a valid bearer token and injects
// the session's account into the request context.
func RequireSession(validator sessionValidator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if validator == nil {
				writeJSONError(w, http.StatusInternalServerError, "session service unavailable")
				return
			}

			session, err := validator.Validate(token)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}

// extractToken prefers the Authorization header and falls back to ?token=.
func extractToken(r *http.Request) string {
	if token := utils.BearerToken(r); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
