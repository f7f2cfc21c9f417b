package goSession

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/fraudlens/goSession/keystore"
	"golang.org/x/sync/singleflight"
)

// Session is the single source of truth for credentials and identity. Build
// one through [Builder.Build]; the zero value is not usable.
//
// All mutations of the credential fields are confined to Session's own
// operations. Collaborators only read the access token and invoke
// [Session.RefreshAccessToken].
type Session struct {
	config  Config
	store   keystore.Store
	audit   *auditDispatcher
	metrics *Metrics

	httpClient *http.Client

	mu            sync.RWMutex
	accessToken   string
	refreshToken  string
	user          *User
	authenticated bool

	refreshing   atomic.Bool
	refreshGroup singleflight.Group
}

// AccessToken returns the current access token, or "" when unauthenticated.
func (s *Session) AccessToken() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token, or "".
func (s *Session) RefreshToken() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// CurrentUser returns a copy of the stored profile, or nil.
func (s *Session) CurrentUser() *User {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// IsAuthenticated reports whether the session holds a usable credential.
func (s *Session) IsAuthenticated() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// IsRefreshing reports whether a refresh call is in flight. The flag is set
// before the refresh network call is issued and cleared only after the new
// token (or the logout) has been committed.
func (s *Session) IsRefreshing() bool {
	if s == nil {
		return false
	}
	return s.refreshing.Load()
}

// HTTPClient returns the session's retrying HTTP client. Requests issued
// through it carry the bearer header and participate in the 401
// refresh-and-replay contract.
func (s *Session) HTTPClient() *http.Client {
	if s == nil {
		return nil
	}
	return s.httpClient
}

// MetricsSnapshot returns a deep copy of the session counters.
func (s *Session) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return s.metrics.Snapshot()
}

// AuditDropped returns the number of audit events discarded because the
// dispatcher buffer was full.
func (s *Session) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.Dropped()
}

// Close stops the audit dispatcher after draining pending events.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.audit.Close()
}

func (s *Session) metricInc(id MetricID) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.Inc(id)
}

// Hydrate seeds the in-memory state from durable storage. It performs no
// network calls, is idempotent, and is a no-op when the session was built
// without a store. Call it once at startup, before any authenticated request
// is issued.
func (s *Session) Hydrate(ctx context.Context) error {
	if s == nil {
		return ErrSessionNotReady
	}
	if s.store == nil {
		return nil
	}

	access, err := s.storeGet(ctx, s.config.Storage.AccessTokenKey)
	if err != nil {
		return err
	}
	refresh, err := s.storeGet(ctx, s.config.Storage.RefreshTokenKey)
	if err != nil {
		return err
	}

	var user *User
	if raw, err := s.storeGet(ctx, s.config.Storage.UserKey); err != nil {
		return err
	} else if raw != "" {
		user = &User{}
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			// A corrupt cached profile must not block startup; the token is
			// still usable and the profile can be refetched.
			user = nil
		}
	}

	s.mu.Lock()
	s.accessToken = access
	s.refreshToken = refresh
	s.user = user
	s.authenticated = access != ""
	authenticated := s.authenticated
	s.mu.Unlock()

	s.metricInc(MetricHydrate)
	s.audit.Emit(ctx, AuditEvent{
		EventType: EventHydrate,
		Success:   true,
		Metadata:  map[string]string{"authenticated": boolString(authenticated)},
	})
	return nil
}

// storeGet maps a missing key to "". Namespacing is the store's concern
// (see [keystore.Redis]); the session uses the configured key names as-is.
func (s *Session) storeGet(ctx context.Context, key string) (string, error) {
	value, err := s.store.Get(ctx, key)
	if errors.Is(err, keystore.ErrNotFound) {
		return "", nil
	}
	return value, err
}

// setTokens commits both tokens to memory and durable storage. It does not
// touch the authenticated flag; callers decide when the session counts as
// authenticated.
func (s *Session) setTokens(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	s.accessToken = access
	if refresh != "" {
		s.refreshToken = refresh
	}
	refresh = s.refreshToken
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.Set(ctx, s.config.Storage.AccessTokenKey, access); err != nil {
		return err
	}
	if refresh != "" {
		if err := s.store.Set(ctx, s.config.Storage.RefreshTokenKey, refresh); err != nil {
			return err
		}
	}
	return nil
}

// setUser commits the profile to memory and durable storage.
func (s *Session) setUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	if s.store == nil || user == nil {
		return nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.config.Storage.UserKey, string(raw))
}

// Logout clears every credential field and removes the durable copies. It is
// callable from any state, idempotent, and never leaves a partial-logout
// state observable to a new reader: memory is cleared first, then all durable
// keys are removed in one store operation.
func (s *Session) Logout(ctx context.Context) error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	wasAuthenticated := s.authenticated
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()

	if wasAuthenticated {
		s.metricInc(MetricLogout)
	}
	s.audit.Emit(ctx, AuditEvent{EventType: EventLogout, Success: true})

	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx,
		s.config.Storage.AccessTokenKey,
		s.config.Storage.RefreshTokenKey,
		s.config.Storage.UserKey,
	)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
