package goSession

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionNotReady is returned by methods on a nil or unbuilt Session.
	ErrSessionNotReady = errors.New("session not initialized")
	// ErrNotAuthenticated is returned when an operation requires an access
	// token and none is held.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoRefreshToken is returned when a refresh is requested but no refresh
	// token is held.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrMissingUser is returned when the login response omits the user
	// payload. The backend contract requires it; its absence is a protocol
	// error, not a credential failure.
	ErrMissingUser = errors.New("login response missing user payload")
	// ErrMissingAccessToken is returned when a successful login or refresh
	// response carries no access token. Committing it would leave an
	// authenticated session holding no credential, so the session is fully
	// logged out instead.
	ErrMissingAccessToken = errors.New("response missing access token")
	// ErrTokenInvalid is returned when the backend rejects the held token on
	// an explicit verify call.
	ErrTokenInvalid = errors.New("invalid token")
)

// APIError carries a non-2xx backend response. Body is the verbatim response
// payload; Fields holds the decoded JSON object when the backend returned
// one, so callers can inspect per-field validation detail.
type APIError struct {
	StatusCode int
	Body       []byte
	Fields     map[string]any
}

func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}
	if len(e.Body) > 0 {
		return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// Unauthorized reports whether the error is a 401 authorization failure.
func (e *APIError) Unauthorized() bool {
	return e != nil && e.StatusCode == http.StatusUnauthorized
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Body: body}
	var fields map[string]any
	if json.Unmarshal(body, &fields) == nil {
		apiErr.Fields = fields
	}
	return apiErr
}

// IsUnauthorized reports whether err is (or wraps) a 401 [APIError].
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}
