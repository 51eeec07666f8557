package favorites

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"reelhouse/models"
)

const (
	defaultCacheSize = 512
	defaultCacheTTL  = 5 * time.Minute
)

// Result classifies what a Toggle call did.
type Result int

const (
	// OutcomeSkipped means the request was rejected locally (no user or no target).
	OutcomeSkipped Result = iota
	// OutcomeBusy means a toggle for the same title was already in flight.
	OutcomeBusy
	// OutcomeDone means the backend answered and a notice was produced.
	OutcomeDone
	// OutcomeDiscarded means the caller went away before the backend answered.
	OutcomeDiscarded
)

// NoticeKind identifies the user-facing message of a finished toggle.
type NoticeKind string

const (
	NoticeAdded           NoticeKind = "added"
	NoticeRemoved         NoticeKind = "removed"
	NoticeAlreadyFavorite NoticeKind = "already_favorite"
	NoticeFailed          NoticeKind = "failed"
)

// Notice is the message shown once a toggle resolves.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	Title   string     `json:"title,omitempty"`
}

// Outcome is the result of a Toggle call.
type Outcome struct {
	Result Result
	Notice *Notice
}

// Syncer issues favorite writes against a Store, guards against duplicate
// in-flight toggles and caches the per-title favorite status.
//
// The known status of a title lives only in the bounded status cache and the
// in-flight set only holds titles with a pending toggle, so neither grows
// with the number of titles ever seen.
type Syncer struct {
	store Store
	cache *expirable.LRU[string, bool]

	mu      sync.Mutex
	pending map[string]struct{}
	// toggled records the sequence number of the last toggle per title.
	// Reads that started before a newer toggle do not write their answer.
	toggled *lru.Cache[string, uint64]
	seq     uint64
}

// SyncerOption customises a Syncer.
type SyncerOption func(*syncerOptions)

type syncerOptions struct {
	cacheSize int
	cacheTTL  time.Duration
}

// WithCache overrides the size and TTL of the favorite status cache.
func WithCache(size int, ttl time.Duration) SyncerOption {
	return func(o *syncerOptions) {
		if size > 0 {
			o.cacheSize = size
		}
		if ttl > 0 {
			o.cacheTTL = ttl
		}
	}
}

func NewSyncer(store Store, opts ...SyncerOption) *Syncer {
	o := syncerOptions{cacheSize: defaultCacheSize, cacheTTL: defaultCacheTTL}
	for _, opt := range opts {
		opt(&o)
	}
	// Size is always positive here, which is the only failure case of lru.New.
	toggled, _ := lru.New[string, uint64](o.cacheSize)
	return &Syncer{
		store:   store,
		cache:   expirable.NewLRU[string, bool](o.cacheSize, nil, o.cacheTTL),
		pending: make(map[string]struct{}),
		toggled: toggled,
	}
}

func stateKey(userID string, mediaID int64) string {
	return userID + ":" + strconv.FormatInt(mediaID, 10)
}

// Status returns the current toggle state of a title for a user.
func (s *Syncer) Status(userID string, mediaID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(stateKey(userID, mediaID))
}

func (s *Syncer) stateLocked(key string) State {
	st := State{Known: Unknown, Phase: Idle}
	if v, ok := s.cache.Peek(key); ok {
		st = Resolve(st, v)
	}
	if _, ok := s.pending[key]; ok {
		st.Phase = Pending
	}
	return st
}

// applyLocked stores st as the state of key. Must be called with mu held.
func (s *Syncer) applyLocked(key string, st State) {
	switch st.Known {
	case Favorited:
		s.cache.Add(key, true)
	case NotFavorited:
		s.cache.Add(key, false)
	default:
		s.cache.Remove(key)
	}
	if st.Phase == Pending {
		s.pending[key] = struct{}{}
	} else {
		delete(s.pending, key)
	}
}

// markToggledLocked invalidates reads that started before now. Must be
// called with mu held.
func (s *Syncer) markToggledLocked(key string) {
	s.seq++
	s.toggled.Add(key, s.seq)
}

// IsFavorited reports whether the title is a favorite, using the cached
// answer when one is fresh.
func (s *Syncer) IsFavorited(ctx context.Context, userID string, mediaID int64) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || mediaID == 0 {
		return false, nil
	}

	if v, ok := s.cache.Get(stateKey(userID, mediaID)); ok {
		return v, nil
	}
	return s.refresh(ctx, userID, mediaID)
}

// refresh asks the store and records the answer unless a toggle of the same
// title started or finished while the question was in flight.
func (s *Syncer) refresh(ctx context.Context, userID string, mediaID int64) (bool, error) {
	key := stateKey(userID, mediaID)

	s.mu.Lock()
	startSeq, _ := s.toggled.Peek(key)
	s.mu.Unlock()

	favorited, err := s.store.Exists(ctx, userID, mediaID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq, _ := s.toggled.Peek(key)
	if _, busy := s.pending[key]; busy || seq != startSeq {
		return favorited, nil
	}
	s.applyLocked(key, Resolve(s.stateLocked(key), favorited))
	return favorited, nil
}

// Toggle removes the title when current is true and adds it otherwise. The
// call is rejected locally without a user or a target, and returns
// OutcomeBusy while another toggle of the same title is in flight. If ctx is
// cancelled before the backend answers, the answer is dropped and the status
// is left unknown.
func (s *Syncer) Toggle(ctx context.Context, userID string, current bool, target *models.MediaRef) Outcome {
	userID = strings.TrimSpace(userID)
	if userID == "" || target == nil || target.ID == 0 {
		return Outcome{Result: OutcomeSkipped}
	}

	key := stateKey(userID, target.ID)

	s.mu.Lock()
	next, ok := Begin(s.stateLocked(key))
	if !ok {
		s.mu.Unlock()
		return Outcome{Result: OutcomeBusy}
	}
	s.applyLocked(key, next)
	s.markToggledLocked(key)
	s.mu.Unlock()

	var err error
	if current {
		err = s.store.Remove(ctx, userID, target.ID)
	} else {
		err = s.store.Add(ctx, userID, *target)
	}

	s.mu.Lock()
	s.markToggledLocked(key)
	if ctx.Err() != nil {
		s.applyLocked(key, Fail(s.stateLocked(key)))
		s.mu.Unlock()
		return Outcome{Result: OutcomeDiscarded}
	}

	var notice *Notice
	switch {
	case err == nil:
		s.applyLocked(key, Succeed(s.stateLocked(key), !current))
		if current {
			notice = &Notice{Kind: NoticeRemoved, Message: "Successfully Removed", Title: target.Title}
		} else {
			notice = &Notice{Kind: NoticeAdded, Message: "Successfully Added", Title: target.Title}
		}
	case errors.Is(err, ErrConflict):
		s.applyLocked(key, Fail(s.stateLocked(key)))
		notice = &Notice{Kind: NoticeAlreadyFavorite, Message: "Already in favorites"}
	default:
		log.Printf("[favorites] toggle failed user=%s media=%d: %v", userID, target.ID, err)
		s.applyLocked(key, Fail(s.stateLocked(key)))
		notice = &Notice{Kind: NoticeFailed, Message: "Something went wrong"}
	}
	s.mu.Unlock()

	if _, refreshErr := s.refresh(ctx, userID, target.ID); refreshErr != nil {
		log.Printf("[favorites] refresh failed user=%s media=%d: %v", userID, target.ID, refreshErr)
	}

	return Outcome{Result: OutcomeDone, Notice: notice}
}

// pendingCount reports how many toggles are in flight.
func (s *Syncer) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// List returns the user's favorites, newest first as stored by the backend.
func (s *Syncer) List(ctx context.Context, userID string) ([]models.FavoriteRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []models.FavoriteRecord{}, nil
	}
	return s.store.List(ctx, userID)
}
