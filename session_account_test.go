package goSession

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestChangePassword(t *testing.T) {
	backend := newStubBackend(t)

	var method string
	var payload map[string]string
	backend.handle("/users/change-password/", func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&payload)
		writeStubJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
	})
	session := newTestSession(t, backend, nil)
	mustLogin(t, session, "alice")

	if err := session.ChangePassword(context.Background(), "old-pw", "new-pw"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if method != http.MethodPut {
		t.Fatalf("method = %s, want PUT", method)
	}
	if payload["old_password"] != "old-pw" || payload["new_password"] != "new-pw" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if !session.IsAuthenticated() || session.AccessToken() != "T1" {
		t.Fatal("session state changed by password change")
	}
}

func TestChangePasswordRequiresAuth(t *testing.T) {
	backend := newStubBackend(t)
	session := newTestSession(t, backend, nil)

	err := session.ChangePassword(context.Background(), "a", "b")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestDeleteAccountLogsOut(t *testing.T) {
	backend := newStubBackend(t)
	backend.handle("/users/delete-account/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			writeStubJSON(w, http.StatusMethodNotAllowed, nil)
			return
		}
		writeStubJSON(w, http.StatusNoContent, nil)
	})
	session := newTestSession(t, backend, nil)
	mustLogin(t, session, "alice")

	if err := session.DeleteAccount(context.Background()); err != nil {
		t.Fatalf("delete account failed: %v", err)
	}
	if session.IsAuthenticated() || session.AccessToken() != "" {
		t.Fatal("session survived account deletion")
	}
}

func TestServerLogoutBlacklistsRefreshToken(t *testing.T) {
	backend := newStubBackend(t)

	var payload map[string]string
	backend.handle("/users/logout/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		writeStubJSON(w, http.StatusOK, nil)
	})
	session := newTestSession(t, backend, nil)
	mustLogin(t, session, "alice")

	if err := session.ServerLogout(context.Background()); err != nil {
		t.Fatalf("server logout failed: %v", err)
	}
	if payload["refresh"] != "R1" {
		t.Fatalf("blacklist payload = %v, want refresh R1", payload)
	}
	if session.IsAuthenticated() {
		t.Fatal("session survived server logout")
	}
}

func TestServerLogoutClearsLocallyOnServerError(t *testing.T) {
	backend := newStubBackend(t)
	backend.handle("/users/logout/", func(w http.ResponseWriter, r *http.Request) {
		writeStubJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
	})
	session := newTestSession(t, backend, nil)
	mustLogin(t, session, "alice")

	err := session.ServerLogout(context.Background())
	if err == nil {
		t.Fatal("expected server error to surface")
	}
	if session.IsAuthenticated() || session.AccessToken() != "" {
		t.Fatal("local state survived server logout failure")
	}
}

func TestVerifyToken(t *testing.T) {
	backend := newStubBackend(t)

	reject := false
	backend.handle("/users/token/verify/", func(w http.ResponseWriter, r *http.Request) {
		if reject {
			writeStubJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid"})
			return
		}
		writeStubJSON(w, http.StatusOK, map[string]any{})
	})
	session := newTestSession(t, backend, nil)
	mustLogin(t, session, "alice")

	if err := session.VerifyToken(context.Background()); err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	reject = true
	if err := session.VerifyToken(context.Background()); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	// A failed probe must not log the session out.
	if !session.IsAuthenticated() || session.AccessToken() != "T1" {
		t.Fatal("verify probe mutated session state")
	}
	if got := backend.refreshCalls.Load(); got != 0 {
		t.Fatalf("verify triggered %d refreshes, want 0", got)
	}
}

func TestVerifyTokenWithoutToken(t *testing.T) {
	backend := newStubBackend(t)
	session := newTestSession(t, backend, nil)

	if err := session.VerifyToken(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
