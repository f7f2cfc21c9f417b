package goSession

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fraudlens/goSession/keystore"
)

// stubBackend is a scriptable fake of the users API. Handlers for data paths
// can be installed per test via handle.
type stubBackend struct {
	t      *testing.T
	server *httptest.Server

	mu            sync.Mutex
	handlers      map[string]http.HandlerFunc
	loginPayloads []map[string]string
	loginResponse func() (int, any)
	refreshResult func() (int, any)
	validToken    string

	loginCalls   atomic.Int64
	refreshCalls atomic.Int64
	profileCalls atomic.Int64
}

func newStubBackend(t *testing.T) *stubBackend {
	t.Helper()

	b := &stubBackend{
		t:        t,
		handlers: map[string]http.HandlerFunc{},
	}
	b.loginResponse = func() (int, any) {
		return http.StatusOK, map[string]any{
			"access":  "T1",
			"refresh": "R1",
			"user":    map[string]any{"id": 1, "username": "alice", "nickname": "Alice"},
		}
	}
	b.refreshResult = func() (int, any) {
		return http.StatusOK, map[string]any{"access": "T2"}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/users/login/", func(w http.ResponseWriter, r *http.Request) {
		b.loginCalls.Add(1)

		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode login payload: %v", err)
		}
		b.mu.Lock()
		b.loginPayloads = append(b.loginPayloads, payload)
		status, body := b.loginResponse()
		b.mu.Unlock()

		writeStubJSON(w, status, body)
	})
	mux.HandleFunc("/users/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)

		b.mu.Lock()
		status, body := b.refreshResult()
		b.mu.Unlock()

		writeStubJSON(w, status, body)
	})
	mux.HandleFunc("/users/profile/", func(w http.ResponseWriter, r *http.Request) {
		b.profileCalls.Add(1)

		b.mu.Lock()
		valid := b.validToken
		b.mu.Unlock()
		if valid != "" && r.Header.Get("Authorization") != "Bearer "+valid {
			writeStubJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
			return
		}
		writeStubJSON(w, http.StatusOK, map[string]any{"id": 1, "username": "alice", "nickname": "Alice"})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		handler, ok := b.handlers[r.URL.Path]
		b.mu.Unlock()
		if !ok {
			writeStubJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
			return
		}
		handler(w, r)
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *stubBackend) handle(path string, handler http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[path] = handler
}

func (b *stubBackend) setLoginResponse(fn func() (int, any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loginResponse = fn
}

func (b *stubBackend) setRefreshResult(fn func() (int, any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshResult = fn
}

func (b *stubBackend) requireValidToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.validToken = token
}

func (b *stubBackend) lastLoginPayload() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.loginPayloads) == 0 {
		return nil
	}
	return b.loginPayloads[len(b.loginPayloads)-1]
}

func writeStubJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func newTestSession(t *testing.T, backend *stubBackend, store keystore.Store) *Session {
	t.Helper()

	cfg := DefaultConfig()
	cfg.API.BaseURL = backend.server.URL
	cfg.Metrics.Enabled = true

	builder := New().WithConfig(cfg).WithMetricsEnabled(true)
	if store != nil {
		builder = builder.WithStore(store)
	}
	session, err := builder.Build()
	if err != nil {
		t.Fatalf("build session: %v", err)
	}
	t.Cleanup(session.Close)
	return session
}

func mustLogin(t *testing.T, session *Session, identifier string) {
	t.Helper()
	if err := session.Login(context.Background(), identifier, "correct-password-123"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}
