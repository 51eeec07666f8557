package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"reelhouse/services/details"
	"reelhouse/services/discovery"
	"reelhouse/services/favorites"
	"reelhouse/services/recent"
	"reelhouse/services/sampling"
)

// sessionKey is where the signed-in session lives in the local store.
const sessionKey = "session"

// localSession is the signed-in identity kept between invocations.
type localSession struct {
	Token     string `json:"token"`
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
}

type app struct {
	out       io.Writer
	serverURL string
	httpc     *http.Client
	store     recent.Store

	discovery *discovery.Client
	recent    *recent.Cache
	favorites *favorites.Syncer
	details   *details.Service
}

type appOptions struct {
	serverURL string
	statePath string
	fs        afero.Fs
	random    sampling.Source
	httpc     *http.Client
}

func defaultStatePath() string {
	return filepath.Join("cache", "browse.json")
}

func newApp(out io.Writer, opts appOptions) (*app, error) {
	if opts.fs == nil {
		opts.fs = afero.NewOsFs()
	}
	if opts.random == nil {
		opts.random = sampling.NewSource()
	}
	if opts.httpc == nil {
		opts.httpc = &http.Client{Timeout: 15 * time.Second}
	}

	store, err := recent.NewFileStore(opts.fs, opts.statePath)
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}

	a := &app{
		out:       out,
		serverURL: strings.TrimRight(opts.serverURL, "/"),
		httpc:     opts.httpc,
		store:     store,
	}
	a.discovery = discovery.NewClient(a.serverURL, opts.httpc, opts.random)
	a.recent = recent.NewCache(store)
	a.favorites = favorites.NewSyncer(
		favorites.NewHTTPStore(a.serverURL, opts.httpc, a.token),
		favorites.WithCache(256, 5*time.Minute),
	)
	a.details = details.NewService(a.discovery, a.favorites, a.recent)
	return a, nil
}

// session returns the stored session; ok is false when signed out.
func (a *app) session() (localSession, bool) {
	raw, ok, err := a.store.Get(sessionKey)
	if err != nil || !ok || raw == "" {
		return localSession{}, false
	}
	var s localSession
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.Token == "" {
		return localSession{}, false
	}
	return s, true
}

func (a *app) saveSession(s localSession) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return a.store.Set(sessionKey, string(raw))
}

func (a *app) clearSession() error {
	return a.store.Set(sessionKey, "")
}

func (a *app) token() string {
	s, _ := a.session()
	return s.Token
}

// userID is empty when signed out, which makes favorite writes no-ops.
func (a *app) userID() string {
	s, _ := a.session()
	return s.AccountID
}
