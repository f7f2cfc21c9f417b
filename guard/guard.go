package guard

import (
	"net/http"

	goSession "github.com/fraudlens/goSession"
)

// RequireAuth redirects unauthenticated requests to loginURL and lets
// authenticated ones through.
func RequireAuth(session *goSession.Session, loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !session.IsAuthenticated() {
				http.Redirect(w, r, loginURL, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectAuthenticated is the inverse guard for login and register
// surfaces: an already-authenticated visitor is sent to homeURL instead.
func RedirectAuthenticated(session *goSession.Session, homeURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session.IsAuthenticated() {
				http.Redirect(w, r, homeURL, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
