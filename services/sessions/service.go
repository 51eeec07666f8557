package sessions

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"reelhouse/internal/jsonfile"
	"reelhouse/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidToken    = errors.New("invalid token")
)

const (
	// DefaultSessionDuration is the default lifetime of a session.
	DefaultSessionDuration = 7 * 24 * time.Hour

	// TokenLength is the number of random bytes used for session tokens.
	TokenLength = 32
)

// Service manages session tokens for authenticated accounts.
type Service struct {
	mu              sync.RWMutex
	fs              afero.Fs
	path            string
	sessions        map[string]models.Session
	sessionDuration time.Duration
	now             func() time.Time
}

// NewService creates a sessions service persisting sessions.json in
// storageDir. An empty storageDir keeps sessions in memory only.
func NewService(storageDir string, sessionDuration time.Duration) (*Service, error) {
	return NewServiceFs(afero.NewOsFs(), storageDir, sessionDuration)
}

// NewServiceFs is NewService on an explicit filesystem.
func NewServiceFs(fs afero.Fs, storageDir string, sessionDuration time.Duration) (*Service, error) {
	if sessionDuration <= 0 {
		sessionDuration = DefaultSessionDuration
	}

	svc := &Service{
		fs:              fs,
		sessions:        make(map[string]models.Session),
		sessionDuration: sessionDuration,
		now:             time.Now,
	}

	if strings.TrimSpace(storageDir) != "" {
		if err := fs.MkdirAll(storageDir, 0o755); err != nil {
			return nil, fmt.Errorf("create sessions dir: %w", err)
		}
		svc.path = filepath.Join(storageDir, "sessions.json")

		if err := svc.load(); err != nil {
			return nil, err
		}
	}

	return svc, nil
}

// Create issues a new session for the account.
func (s *Service) Create(accountID, userAgent, ipAddress string) (models.Session, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return models.Session{}, ErrInvalidToken
	}

	token, err := generateToken()
	if err != nil {
		return models.Session{}, err
	}

	now := s.now().UTC()
	session := models.Session{
		Token:     token,
		AccountID: accountID,
		ExpiresAt: now.Add(s.sessionDuration),
		CreatedAt: now,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[token] = session
	if err := s.saveLocked(); err != nil {
		delete(s.sessions, token)
		return models.Session{}, err
	}

	return session, nil
}

// Validate checks if a token is valid and returns the associated session.
// Expired sessions are dropped on sight.
func (s *Service) Validate(token string) (models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Session{}, ErrInvalidToken
	}

	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return models.Session{}, ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		_ = s.saveLocked()
		s.mu.Unlock()
		return models.Session{}, ErrSessionExpired
	}

	return session, nil
}

// Revoke invalidates a session by its token.
func (s *Service) Revoke(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return ErrSessionNotFound
	}

	delete(s.sessions, token)
	return s.saveLocked()
}

// RevokeAllForAccount invalidates every session of an account.
func (s *Service) RevokeAllForAccount(accountID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for token, session := range s.sessions {
		if session.AccountID == accountID {
			delete(s.sessions, token)
			count++
		}
	}
	if count > 0 {
		if err := s.saveLocked(); err != nil {
			log.Printf("[sessions] failed to persist revocation for %s: %v", accountID, err)
		}
	}
	return count
}

// Refresh extends a session's expiration time.
func (s *Service) Refresh(token string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) {
		delete(s.sessions, token)
		_ = s.saveLocked()
		return models.Session{}, ErrSessionExpired
	}

	session.ExpiresAt = s.now().UTC().Add(s.sessionDuration)
	s.sessions[token] = session
	if err := s.saveLocked(); err != nil {
		return models.Session{}, err
	}

	return session, nil
}

// Cleanup removes all expired sessions and returns how many were dropped.
func (s *Service) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	now := s.now()
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			count++
		}
	}
	if count > 0 {
		_ = s.saveLocked()
	}
	return count
}

// RunCleanup removes expired sessions every interval until stop is closed.
func (s *Service) RunCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if n := s.Cleanup(); n > 0 {
				log.Printf("[sessions] removed %d expired sessions", n)
			}
		}
	}
}

// Count returns the number of stored sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func generateToken() (string, error) {
	buf := make([]byte, TokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

func (s *Service) load() error {
	var stored []models.Session
	ok, err := jsonfile.Read(s.fs, s.path, &stored)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	if !ok {
		return nil
	}

	now := s.now()
	for _, session := range stored {
		if strings.TrimSpace(session.Token) == "" || now.After(session.ExpiresAt) {
			continue
		}
		s.sessions[session.Token] = session
	}
	return nil
}

// saveLocked writes sessions to disk. Must be called with mu held.
func (s *Service) saveLocked() error {
	if s.path == "" {
		return nil
	}

	sessions := make([]models.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}

	if err := jsonfile.Write(s.fs, s.path, sessions); err != nil {
		return fmt.Errorf("save sessions: %w", err)
	}
	return nil
}
