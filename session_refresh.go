package goSession

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshAccessToken obtains a fresh access token using the stored refresh
// token. At most one refresh call executes per process: concurrent callers
// join the in-flight call and all observe its single outcome instead of
// issuing their own.
//
// On success the new access token (and the rotated refresh token, when the
// backend returns one) is committed to memory and durable storage before any
// waiter is released. On failure the session is fully logged out and the
// error is returned to every waiter.
func (s *Session) RefreshAccessToken(ctx context.Context) (string, error) {
	if s == nil {
		return "", ErrSessionNotReady
	}

	token, err, shared := s.refreshGroup.Do("refresh", func() (any, error) {
		return s.doRefresh(ctx)
	})
	if shared {
		s.metricInc(MetricRefreshCoalesced)
	}
	if err != nil {
		return "", err
	}
	return token.(string), nil
}

func (s *Session) doRefresh(ctx context.Context) (string, error) {
	refresh := s.RefreshToken()
	if refresh == "" {
		_ = s.Logout(ctx)
		return "", ErrNoRefreshToken
	}

	// The in-flight flag brackets the whole operation: set before the network
	// call, cleared only after the store mutation (new token or logout) has
	// been committed. Any observer that sees it transition false also sees
	// the committed outcome.
	s.refreshing.Store(true)
	defer s.refreshing.Store(false)

	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	err := s.doJSON(withoutAuth(ctx), http.MethodPost, "/users/token/refresh/",
		nil, map[string]string{"refresh": refresh}, &out)
	if err != nil {
		_ = s.Logout(ctx)
		s.metricInc(MetricRefreshFailure)
		s.audit.Emit(ctx, AuditEvent{EventType: EventRefreshFailed, Error: err.Error()})
		return "", err
	}

	// A 2xx response without an access token is a protocol error; committing
	// it would leave the session authenticated with nothing to send.
	if out.Access == "" {
		_ = s.Logout(ctx)
		s.metricInc(MetricRefreshFailure)
		s.audit.Emit(ctx, AuditEvent{EventType: EventRefreshFailed, Error: ErrMissingAccessToken.Error()})
		return "", ErrMissingAccessToken
	}

	// out.Refresh is empty unless the backend rotates refresh tokens;
	// setTokens keeps the existing one in that case.
	if err := s.setTokens(ctx, out.Access, out.Refresh); err != nil {
		_ = s.Logout(ctx)
		s.metricInc(MetricRefreshFailure)
		s.audit.Emit(ctx, AuditEvent{EventType: EventRefreshFailed, Error: err.Error()})
		return "", err
	}

	s.metricInc(MetricRefreshSuccess)
	s.audit.Emit(ctx, AuditEvent{
		EventType: EventRefresh,
		Success:   true,
		Metadata:  map[string]string{"rotated": boolString(out.Refresh != "")},
	})
	return out.Access, nil
}

// TokenExpiry returns the exp claim of the held access token. The token is
// parsed without signature verification; the client holds no signing key and
// only uses the claim for scheduling, never for authorization.
func (s *Session) TokenExpiry() (time.Time, bool) {
	token := s.AccessToken()
	if token == "" {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// ShouldRefresh reports whether the access token expires within the
// configured leeway, so callers can refresh ahead of a guaranteed 401.
// Tokens without a readable exp claim never report true; expiry is then
// discovered reactively through the 401 path.
func (s *Session) ShouldRefresh() bool {
	expiry, ok := s.TokenExpiry()
	if !ok {
		return false
	}
	return time.Until(expiry) <= s.config.Refresh.ExpiryLeeway
}
