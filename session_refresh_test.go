package goSession

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/fraudlens/goSession/keystore"
	"github.com/golang-jwt/jwt/v5"
)

func TestRefreshSingleFlight(t *testing.T) {
	backend := newStubBackend(t)
	release := make(chan struct{})
	backend.setRefreshResult(func() (int, any) {
		<-release
		return http.StatusOK, map[string]any{"access": "T2"}
	})
	session := newTestSession(t, backend, nil)
	mustLogin(t, session, "alice")

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	var armed sync.WaitGroup
	armed.Add(n)

	tokens := make(chan string, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			armed.Done()
			token, err := session.RefreshAccessToken(context.Background())
			if err != nil {
				t.Errorf("refresh failed: %v", err)
				return
			}
			tokens <- token
		}()
	}

	// Let every caller pile onto the in-flight refresh before it completes.
	armed.Wait()
	waitUntil(t, func() bool { return session.IsRefreshing() })
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(tokens)

	if calls := backend.refreshCalls.Load(); calls != 1 {
		t.Fatalf("refresh endpoint called %d times, want 1", calls)
	}
	count := 0
	for token := range tokens {
		count++
		if token != "T2" {
			t.Fatalf("caller observed token %q, want T2", token)
		}
	}
	if count != n {
		t.Fatalf("%d callers succeeded, want %d", count, n)
	}
	if got := session.AccessToken(); got != "T2" {
		t.Fatalf("session token = %q, want T2", got)
	}
}

func TestRefreshSendsStoredRefreshToken(t *testing.T) {
	backend := newStubBackend(t)
	session := newTestSession(t, backend, nil)
	mustLogin(t, session, "alice")

	if _, err := session.RefreshAccessToken(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if session.RefreshToken() != "R1" {
		t.Fatalf("refresh token changed without rotation: %q", session.RefreshToken())
	}
}

func TestRefreshAcceptsRotatedRefreshToken(t *testing.T) {
	backend := newStubBackend(t)
	backend.setRefreshResult(func() (int, any) {
		return http.StatusOK, map[string]any{"access": "T2", "refresh": "R2"}
	})
	store := keystore.NewMemory()
	session := newTestSession(t, backend, store)
	mustLogin(t, session, "alice")

	if _, err := session.RefreshAccessToken(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if got := session.RefreshToken(); got != "R2" {
		t.Fatalf("rotated refresh token not stored: %q", got)
	}
	persisted, err := store.Get(context.Background(), DefaultConfig().Storage.RefreshTokenKey)
	if err != nil || persisted != "R2" {
		t.Fatalf("rotated refresh token not persisted: %q, %v", persisted, err)
	}
}

func TestRefreshRejectsEmptyAccessToken(t *testing.T) {
	backend := newStubBackend(t)
	backend.setRefreshResult(func() (int, any) {
		return http.StatusOK, map[string]any{"access": ""}
	})
	store := keystore.NewMemory()
	session := newTestSession(t, backend, store)
	mustLogin(t, session, "alice")

	_, err := session.RefreshAccessToken(context.Background())
	if !errors.Is(err, ErrMissingAccessToken) {
		t.Fatalf("expected ErrMissingAccessToken, got %v", err)
	}

	if session.IsAuthenticated() || session.AccessToken() != "" {
		t.Fatal("session authenticated with no access token")
	}
	cfg := DefaultConfig()
	if _, err := store.Get(context.Background(), cfg.Storage.AccessTokenKey); !errors.Is(err, keystore.ErrNotFound) {
		t.Fatalf("durable access token survived empty-token refresh: %v", err)
	}
	if _, err := store.Get(context.Background(), cfg.Storage.RefreshTokenKey); !errors.Is(err, keystore.ErrNotFound) {
		t.Fatalf("durable refresh token survived empty-token refresh: %v", err)
	}
}

func TestRefreshFailureForcesCleanLogout(t *testing.T) {
	backend := newStubBackend(t)
	backend.setRefreshResult(func() (int, any) {
		return http.StatusUnauthorized, map[string]string{"detail": "token blacklisted"}
	})
	store := keystore.NewMemory()
	session := newTestSession(t, backend, store)
	mustLogin(t, session, "alice")

	_, err := session.RefreshAccessToken(context.Background())
	if err == nil {
		t.Fatal("expected refresh error")
	}

	if session.IsAuthenticated() || session.AccessToken() != "" || session.RefreshToken() != "" {
		t.Fatal("credentials survived failed refresh")
	}
	if session.CurrentUser() != nil {
		t.Fatal("user survived failed refresh")
	}
	cfg := DefaultConfig()
	for _, key := range []string{cfg.Storage.AccessTokenKey, cfg.Storage.RefreshTokenKey, cfg.Storage.UserKey} {
		if _, err := store.Get(context.Background(), key); !errors.Is(err, keystore.ErrNotFound) {
			t.Fatalf("durable key %s survived failed refresh", key)
		}
	}
	if session.IsRefreshing() {
		t.Fatal("refresh flag wedged after failure")
	}
}

func TestRefreshWithoutTokenFails(t *testing.T) {
	backend := newStubBackend(t)
	session := newTestSession(t, backend, nil)

	_, err := session.RefreshAccessToken(context.Background())
	if !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}
	if calls := backend.refreshCalls.Load(); calls != 0 {
		t.Fatalf("refresh endpoint called %d times, want 0", calls)
	}
}

func TestTokenExpiryPeek(t *testing.T) {
	expiry := time.Now().Add(10 * time.Second).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiry),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	backend := newStubBackend(t)
	backend.setLoginResponse(func() (int, any) {
		return http.StatusOK, map[string]any{
			"access":  token,
			"refresh": "R1",
			"user":    map[string]any{"id": 1, "username": "alice"},
		}
	})
	session := newTestSession(t, backend, nil)
	mustLogin(t, session, "alice")

	got, ok := session.TokenExpiry()
	if !ok || !got.Equal(expiry) {
		t.Fatalf("TokenExpiry = %v, %v; want %v", got, ok, expiry)
	}
	if !session.ShouldRefresh() {
		t.Fatal("expected ShouldRefresh with 10s left and 30s leeway")
	}
}

func TestShouldRefreshOpaqueToken(t *testing.T) {
	backend := newStubBackend(t)
	session := newTestSession(t, backend, nil)
	mustLogin(t, session, "alice")

	// T1 is not a JWT; expiry must be discovered reactively via 401.
	if session.ShouldRefresh() {
		t.Fatal("opaque token must not report ShouldRefresh")
	}
	if _, ok := session.TokenExpiry(); ok {
		t.Fatal("opaque token has no readable expiry")
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
