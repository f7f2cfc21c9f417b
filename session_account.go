package goSession

import (
	"context"
	"net/http"
)

// ChangePassword updates the account password. Requires an authenticated
// session; the tokens remain valid afterwards.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if s == nil {
		return ErrSessionNotReady
	}
	if s.AccessToken() == "" {
		return ErrNotAuthenticated
	}

	body := map[string]string{
		"old_password": oldPassword,
		"new_password": newPassword,
	}
	return s.doJSON(ctx, http.MethodPut, "/users/change-password/", nil, body, nil)
}

// DeleteAccount deletes the account server-side and then logs out locally.
func (s *Session) DeleteAccount(ctx context.Context) error {
	if s == nil {
		return ErrSessionNotReady
	}
	if s.AccessToken() == "" {
		return ErrNotAuthenticated
	}

	if err := s.doJSON(ctx, http.MethodDelete, "/users/delete-account/", nil, nil, nil); err != nil {
		return err
	}
	return s.Logout(ctx)
}

// ServerLogout asks the backend to blacklist the refresh token, then logs
// out locally. The local logout happens regardless of the server call's
// outcome; the server error, if any, is returned for observability.
func (s *Session) ServerLogout(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var serverErr error
	if refresh := s.RefreshToken(); refresh != "" {
		serverErr = s.doJSON(ctx, http.MethodPost, "/users/logout/",
			nil, map[string]string{"refresh": refresh}, nil)
	}
	if err := s.Logout(ctx); err != nil {
		return err
	}
	return serverErr
}

// VerifyToken asks the backend whether the held access token is still valid.
// Returns [ErrNotAuthenticated] when no token is held and [ErrTokenInvalid]
// when the backend rejects it. The session state is left untouched either
// way; this is a probe, not a transition.
func (s *Session) VerifyToken(ctx context.Context) error {
	if s == nil {
		return ErrSessionNotReady
	}
	token := s.AccessToken()
	if token == "" {
		return ErrNotAuthenticated
	}

	err := s.doJSON(withoutAuth(ctx), http.MethodPost, "/users/token/verify/",
		nil, map[string]string{"token": token}, nil)
	if IsUnauthorized(err) {
		return ErrTokenInvalid
	}
	return err
}
