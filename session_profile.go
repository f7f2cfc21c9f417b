package goSession

import (
	"context"
	"net/http"
)

// FetchUserProfile fetches the profile for the current access token and
// stores it. A no-op when no token is held. A failed fetch forces a full
// logout before the error is returned: an invalid or expired token must not
// leave a half-authenticated session behind.
func (s *Session) FetchUserProfile(ctx context.Context) error {
	if s == nil {
		return ErrSessionNotReady
	}
	if s.AccessToken() == "" {
		return nil
	}

	var user User
	if err := s.doJSON(ctx, http.MethodGet, "/users/profile/", nil, nil, &user); err != nil {
		_ = s.Logout(ctx)
		s.metricInc(MetricProfileFetchFailure)
		s.audit.Emit(ctx, AuditEvent{EventType: EventProfile, Error: err.Error()})
		return err
	}

	if err := s.setUser(ctx, &user); err != nil {
		return err
	}

	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()

	s.metricInc(MetricProfileFetchSuccess)
	s.audit.Emit(ctx, AuditEvent{EventType: EventProfile, UserID: user.ID, Success: true})
	return nil
}
