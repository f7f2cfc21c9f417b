package goSession

import (
	"context"
	"net/http"
	"strings"
)

// ClassifyIdentifier maps a login identifier to the credential field the
// backend expects: anything containing '@' is an email, a string of ASCII
// digits is a phone number, everything else is a username.
func ClassifyIdentifier(identifier string) IdentifierKind {
	if strings.Contains(identifier, "@") {
		return IdentifierEmail
	}
	if identifier != "" && isAllDigits(identifier) {
		return IdentifierPhone
	}
	return IdentifierUsername
}

// isAllDigits matches ASCII digits only; non-ASCII digit runes fall through
// to the username classification.
func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Login authenticates with the backend. On success both tokens and the user
// profile from the response are committed to memory and durable storage and
// the session becomes authenticated. On any failure the session is fully
// logged out before the error is returned, so no partial credential state
// survives a rejected login.
func (s *Session) Login(ctx context.Context, identifier, password string) error {
	if s == nil {
		return ErrSessionNotReady
	}

	payload := map[string]string{"password": password}
	switch ClassifyIdentifier(identifier) {
	case IdentifierEmail:
		payload["email"] = identifier
	case IdentifierPhone:
		payload["phone_number"] = identifier
	default:
		payload["username"] = identifier
	}

	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
		User    *User  `json:"user"`
	}
	err := s.doJSON(withoutAuth(ctx), http.MethodPost, "/users/login/", nil, payload, &out)
	if err != nil {
		s.loginFailed(ctx, identifier, err)
		return err
	}
	if out.Access == "" {
		s.loginFailed(ctx, identifier, ErrMissingAccessToken)
		return ErrMissingAccessToken
	}
	if out.User == nil {
		s.loginFailed(ctx, identifier, ErrMissingUser)
		return ErrMissingUser
	}

	if err := s.setTokens(ctx, out.Access, out.Refresh); err != nil {
		s.loginFailed(ctx, identifier, err)
		return err
	}
	if err := s.setUser(ctx, out.User); err != nil {
		s.loginFailed(ctx, identifier, err)
		return err
	}

	// The login response carries the full profile, so the session counts as
	// authenticated only once both tokens and profile are committed.
	s.mu.Lock()
	s.authenticated = true
	s.mu.Unlock()

	s.metricInc(MetricLoginSuccess)
	s.audit.Emit(ctx, AuditEvent{
		EventType:  EventLogin,
		Identifier: identifier,
		UserID:     out.User.ID,
		Success:    true,
	})
	return nil
}

func (s *Session) loginFailed(ctx context.Context, identifier string, cause error) {
	_ = s.Logout(ctx)
	s.metricInc(MetricLoginFailure)
	s.audit.Emit(ctx, AuditEvent{
		EventType:  EventLoginFailed,
		Identifier: identifier,
		Error:      cause.Error(),
	})
}

// Register forwards registration data to the backend and returns its payload
// verbatim. It never mutates session state; a rejected registration surfaces
// as an [APIError] whose Fields carry the server-side validation detail.
//
// When req.Files is non-empty the request is sent as multipart/form-data,
// otherwise as JSON.
func (s *Session) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if s == nil {
		return nil, ErrSessionNotReady
	}

	var result RegisterResult
	var err error
	if len(req.Files) > 0 {
		err = s.doMultipart(withoutAuth(ctx), "/users/register/", registerFields(req), req.Files, &result)
	} else {
		err = s.doJSON(withoutAuth(ctx), http.MethodPost, "/users/register/", nil, req, &result)
	}
	if err != nil {
		s.metricInc(MetricRegisterFailure)
		s.audit.Emit(ctx, AuditEvent{
			EventType:  EventRegister,
			Identifier: req.Username,
			Error:      err.Error(),
		})
		return nil, err
	}

	s.metricInc(MetricRegisterSuccess)
	s.audit.Emit(ctx, AuditEvent{
		EventType:  EventRegister,
		Identifier: req.Username,
		Success:    true,
	})
	return &result, nil
}

func registerFields(req RegisterRequest) map[string]string {
	fields := map[string]string{
		"username":  req.Username,
		"nickname":  req.Nickname,
		"password":  req.Password,
		"password2": req.Password2,
	}
	if req.Email != "" {
		fields["email"] = req.Email
	}
	if req.PhoneNumber != "" {
		fields["phone_number"] = req.PhoneNumber
	}
	return fields
}
