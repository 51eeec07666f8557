package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"reelhouse/api"
	"reelhouse/handlers"
	"reelhouse/internal/database"
	"reelhouse/models"
	"reelhouse/services/accounts"
	"reelhouse/services/favorites"
	"reelhouse/services/sessions"
	"reelhouse/utils"
)

func newTestServer(t *testing.T, limiter *api.IPRateLimiter) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(dir, "reelhouse.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	accountsSvc, err := accounts.NewService(dir)
	require.NoError(t, err)
	sessionsSvc, err := sessions.NewService(dir, time.Hour)
	require.NoError(t, err)

	r := utils.NewRouter(nil)
	api.Register(r, api.Handlers{
		Auth:         handlers.NewAuthHandler(accountsSvc, sessionsSvc),
		Favorites:    handlers.NewFavoritesHandler(db.Favorites),
		Sessions:     sessionsSvc,
		LoginLimiter: limiter,
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func signup(t *testing.T, srv *httptest.Server, email string) handlers.SessionResponse {
	t.Helper()
	body, _ := json.Marshal(handlers.CredentialsRequest{Email: email, Password: "password123"})
	resp, err := srv.Client().Post(srv.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session handlers.SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))
	return session
}

func TestFavoritesRequireSession(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := srv.Client().Get(srv.URL + "/api/favorites")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSyncerAgainstBackend(t *testing.T) {
	srv := newTestServer(t, nil)
	session := signup(t, srv, "viewer@example.com")

	store := favorites.NewHTTPStore(srv.URL, srv.Client(), func() string { return session.Token })
	syncer := favorites.NewSyncer(store, favorites.WithCache(64, time.Minute))
	ctx := context.Background()
	movie := &models.MediaRef{ID: 550, MediaType: models.MediaTypeMovie, Title: "Fight Club", PosterPath: models.StrPtr("/p.jpg")}

	out := syncer.Toggle(ctx, session.AccountID, false, movie)
	require.Equal(t, favorites.OutcomeDone, out.Result)
	require.Equal(t, favorites.NoticeAdded, out.Notice.Kind)

	fav, err := syncer.IsFavorited(ctx, session.AccountID, 550)
	require.NoError(t, err)
	assert.True(t, fav)

	// A stale "not favorited" view surfaces the backend's unique violation.
	out = syncer.Toggle(ctx, session.AccountID, false, movie)
	require.Equal(t, favorites.NoticeAlreadyFavorite, out.Notice.Kind)

	list, err := syncer.List(ctx, session.AccountID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Fight Club", list[0].Title)
	assert.Equal(t, "/p.jpg", models.Deref(list[0].PosterPath))

	out = syncer.Toggle(ctx, session.AccountID, true, movie)
	require.Equal(t, favorites.NoticeRemoved, out.Notice.Kind)

	fav, err = syncer.IsFavorited(ctx, session.AccountID, 550)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestFavoritesAreScopedPerAccount(t *testing.T) {
	srv := newTestServer(t, nil)
	alice := signup(t, srv, "alice@example.com")
	bob := signup(t, srv, "bob@example.com")
	ctx := context.Background()

	aliceStore := favorites.NewHTTPStore(srv.URL, srv.Client(), func() string { return alice.Token })
	bobStore := favorites.NewHTTPStore(srv.URL, srv.Client(), func() string { return bob.Token })

	require.NoError(t, aliceStore.Add(ctx, alice.AccountID, models.MediaRef{ID: 1, MediaType: models.MediaTypeTV, Title: "Show"}))
	// The same title for a different account is not a conflict.
	require.NoError(t, bobStore.Add(ctx, bob.AccountID, models.MediaRef{ID: 1, MediaType: models.MediaTypeTV, Title: "Show"}))

	require.NoError(t, bobStore.Remove(ctx, bob.AccountID, 1))
	exists, err := aliceStore.Exists(ctx, alice.AccountID, 1)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoginIsRateLimited(t *testing.T) {
	limiter := api.NewIPRateLimiter(rate.Every(time.Minute), 2)
	t.Cleanup(limiter.Close)
	srv := newTestServer(t, limiter)

	body, _ := json.Marshal(handlers.CredentialsRequest{Email: "x@example.com", Password: "wrong-password"})
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := srv.Client().Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}

	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)
}
