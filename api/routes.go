package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"reelhouse/handlers"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Favorites *handlers.FavoritesHandler
	Proxy     *handlers.ProxyHandler
	Version   *handlers.VersionHandler
	Sessions  sessionValidator
	// LoginLimiter guards signup and login; nil disables limiting.
	LoginLimiter *IPRateLimiter
}

// Register mounts the API under /api on r.
func Register(r *mux.Router, h Handlers) {
	apiRouter := r.PathPrefix("/api").Subrouter()

	if h.Version != nil {
		apiRouter.HandleFunc("/version", h.Version.GetVersion).Methods(http.MethodGet, http.MethodOptions)
	}

	if h.Proxy != nil {
		apiRouter.HandleFunc("/tmdb", h.Proxy.TMDB).Methods(http.MethodGet, http.MethodOptions)
		apiRouter.HandleFunc("/omdb", h.Proxy.OMDB).Methods(http.MethodGet, http.MethodOptions)
	}

	if h.Auth != nil {
		authRouter := apiRouter.PathPrefix("/auth").Subrouter()
		signup, login := http.HandlerFunc(h.Auth.Signup), http.HandlerFunc(h.Auth.Login)
		if h.LoginLimiter != nil {
			signup = RateLimitHandlerFunc(h.LoginLimiter, signup)
			login = RateLimitHandlerFunc(h.LoginLimiter, login)
		}
		authRouter.HandleFunc("/signup", signup).Methods(http.MethodPost, http.MethodOptions)
		authRouter.HandleFunc("/login", login).Methods(http.MethodPost, http.MethodOptions)
		authRouter.HandleFunc("/logout", h.Auth.Logout).Methods(http.MethodPost, http.MethodOptions)
		authRouter.HandleFunc("/refresh", h.Auth.Refresh).Methods(http.MethodPost, http.MethodOptions)
		authRouter.HandleFunc("/me", h.Auth.Me).Methods(http.MethodGet, http.MethodOptions)
		authRouter.HandleFunc("/password", h.Auth.ChangePassword).Methods(http.MethodPost, http.MethodOptions)
	}

	if h.Favorites != nil {
		favRouter := apiRouter.PathPrefix("/favorites").Subrouter()
		favRouter.Use(RequireSession(h.Sessions))
		favRouter.HandleFunc("", h.Favorites.List).Methods(http.MethodGet, http.MethodOptions)
		favRouter.HandleFunc("", h.Favorites.Add).Methods(http.MethodPost)
		favRouter.HandleFunc("/{mediaID:[0-9]+}", h.Favorites.Status).Methods(http.MethodGet, http.MethodOptions)
		favRouter.HandleFunc("/{mediaID:[0-9]+}", h.Favorites.Remove).Methods(http.MethodDelete)
	}
}
