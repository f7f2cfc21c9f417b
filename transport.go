package goSession

import (
	"io"
	"net/http"
)

// RetryTransport is the request retry coordinator: an [http.RoundTripper]
// that attaches the bearer header per request from the session handle and
// makes the single-flight refresh transparent to callers.
//
// Given a completed response it passes everything through unchanged except a
// 401 on an authenticated request, which triggers (or joins) one refresh and
// replays the original request exactly once with the new token. A 401 on the
// replayed attempt is surfaced as-is.
type RetryTransport struct {
	base    http.RoundTripper
	session *Session
}

func newRetryTransport(session *Session, base http.RoundTripper) *RetryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &RetryTransport{base: base, session: session}
}

// RoundTrip implements [http.RoundTripper].
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if isAuthExempt(ctx) {
		return t.base.RoundTrip(req)
	}

	sent := t.session.AccessToken()
	authed := req.Clone(ctx)
	if sent != "" {
		authed.Header.Set("Authorization", "Bearer "+sent)
	}

	resp, err := t.base.RoundTrip(authed)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// One retry per original request, and only when a refresh is even
	// possible: a session that never held a refresh token fails fast.
	if t.session.RefreshToken() == "" {
		t.session.metricInc(MetricRetryAbandoned)
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		t.session.metricInc(MetricRetryAbandoned)
		return resp, nil
	}

	// A 401 can race a refresh that another request already completed. When
	// the session token rotated since this request was sent, replay with it
	// instead of asking for another refresh.
	token := t.session.AccessToken()
	if token == "" || token == sent {
		var refreshErr error
		token, refreshErr = t.session.RefreshAccessToken(ctx)
		if refreshErr != nil || token == "" {
			// The refresh failed and the session is already logged out; the
			// caller gets the original 401, not the refresh error.
			t.session.metricInc(MetricRetryAbandoned)
			return resp, nil
		}
	}

	replay := req.Clone(ctx)
	if req.GetBody != nil {
		body, bodyErr := req.GetBody()
		if bodyErr != nil {
			t.session.metricInc(MetricRetryAbandoned)
			return resp, nil
		}
		replay.Body = body
	}
	replay.Header.Set("Authorization", "Bearer "+token)

	drain(resp)
	t.session.metricInc(MetricRetryAttempt)
	t.session.audit.Emit(ctx, AuditEvent{
		EventType: EventRetry,
		Success:   true,
		Metadata:  map[string]string{"path": req.URL.Path},
	})

	return t.base.RoundTrip(replay)
}

// drain releases the abandoned response so the underlying connection can be
// reused.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
