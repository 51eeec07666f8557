package sessions

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// setupTestService creates a sessions service on an in-memory filesystem.
func setupTestService(t *testing.T, duration time.Duration) (*Service, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	svc, err := NewServiceFs(fs, "/state", duration)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc, fs
}

func TestNewService_DefaultDuration(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Hour} {
		svc, _ := setupTestService(t, d)
		if svc.sessionDuration != DefaultSessionDuration {
			t.Errorf("duration %v: expected default %v, got %v", d, DefaultSessionDuration, svc.sessionDuration)
		}
	}
}

func TestNewService_InMemoryOnly(t *testing.T) {
	svc, err := NewService("", DefaultSessionDuration)
	if err != nil {
		t.Fatalf("NewService with empty dir failed: %v", err)
	}
	if svc.path != "" {
		t.Error("expected empty path for in-memory service")
	}
	if _, err := svc.Create("acct", "", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func TestCreate_StoresSessionMetadata(t *testing.T) {
	svc, _ := setupTestService(t, time.Hour)

	session, err := svc.Create("account-123", "Mozilla/5.0", "192.168.1.1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(session.Token) < 40 {
		t.Errorf("expected token length >= 40, got %d", len(session.Token))
	}
	if session.AccountID != "account-123" {
		t.Errorf("expected account id, got %q", session.AccountID)
	}
	if session.UserAgent != "Mozilla/5.0" || session.IPAddress != "192.168.1.1" {
		t.Errorf("unexpected client metadata %+v", session)
	}
	if got := session.ExpiresAt.Sub(session.CreatedAt); got != time.Hour {
		t.Errorf("expected 1h lifetime, got %v", got)
	}

	if _, err := svc.Create(" ", "", ""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for blank account, got %v", err)
	}
}

func TestCreate_UniqueTokens(t *testing.T) {
	svc, _ := setupTestService(t, time.Hour)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		session, err := svc.Create("acct", "", "")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[session.Token] {
			t.Fatalf("duplicate token generated")
		}
		seen[session.Token] = true
	}
	if svc.Count() != 50 {
		t.Errorf("expected 50 sessions, got %d", svc.Count())
	}
}

func TestValidate(t *testing.T) {
	svc, _ := setupTestService(t, time.Hour)
	session, _ := svc.Create("acct", "", "")

	got, err := svc.Validate(session.Token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got.AccountID != "acct" {
		t.Errorf("expected account acct, got %q", got.AccountID)
	}

	if _, err := svc.Validate(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Validate("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestValidate_ExpiredToken(t *testing.T) {
	svc, _ := setupTestService(t, time.Hour)
	session, _ := svc.Create("acct", "", "")

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := svc.Validate(session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if svc.Count() != 0 {
		t.Errorf("expected expired session to be dropped, got %d", svc.Count())
	}
}

func TestRevoke(t *testing.T) {
	svc, _ := setupTestService(t, time.Hour)
	session, _ := svc.Create("acct", "", "")

	if err := svc.Revoke(session.Token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := svc.Validate(session.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected revoked token to be unknown, got %v", err)
	}
	if err := svc.Revoke(session.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRevokeAllForAccount(t *testing.T) {
	svc, _ := setupTestService(t, time.Hour)
	svc.Create("a", "", "")
	svc.Create("a", "", "")
	svc.Create("b", "", "")

	if n := svc.RevokeAllForAccount("a"); n != 2 {
		t.Errorf("expected 2 revoked, got %d", n)
	}
	if svc.Count() != 1 {
		t.Errorf("expected 1 remaining, got %d", svc.Count())
	}
}

func TestRefresh(t *testing.T) {
	svc, _ := setupTestService(t, time.Hour)
	session, _ := svc.Create("acct", "", "")

	svc.now = func() time.Time { return time.Now().Add(30 * time.Minute) }
	refreshed, err := svc.Refresh(session.Token)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if !refreshed.ExpiresAt.After(session.ExpiresAt) {
		t.Errorf("expected expiry to move forward")
	}

	svc.now = func() time.Time { return time.Now().Add(5 * time.Hour) }
	if _, err := svc.Refresh(session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if _, err := svc.Refresh("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCleanup(t *testing.T) {
	svc, _ := setupTestService(t, time.Hour)
	svc.Create("a", "", "")
	svc.Create("b", "", "")

	if n := svc.Cleanup(); n != 0 {
		t.Errorf("expected nothing to clean, got %d", n)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if n := svc.Cleanup(); n != 2 {
		t.Errorf("expected 2 cleaned, got %d", n)
	}
}

func TestPersistence_ReloadsLiveSessionsOnly(t *testing.T) {
	svc, fs := setupTestService(t, time.Hour)
	live, _ := svc.Create("live", "", "")

	short, err := NewServiceFs(fs, "/state", time.Nanosecond)
	if err != nil {
		t.Fatalf("NewServiceFs failed: %v", err)
	}
	if _, err := short.Create("stale", "", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	reloaded, err := NewServiceFs(fs, "/state", time.Hour)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Count() != 1 {
		t.Fatalf("expected only the live session to load, got %d", reloaded.Count())
	}
	if _, err := reloaded.Validate(live.Token); err != nil {
		t.Errorf("expected live session to validate, got %v", err)
	}
}
