// Package goSession is the client-side session manager for the fraudlens
// backend: it owns the access/refresh token lifecycle, the current-user
// identity, and the single-flight refresh coordination that makes token
// expiry invisible to ordinary request callers.
//
// The package is designed for concurrent client workloads: Session methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Session], [Builder], [Config],
// sentinel errors, and value types ([User], [RegisterRequest], [AuditEvent]).
// Durable credential storage lives in the keystore subpackage behind the
// [github.com/fraudlens/goSession/keystore.Store] interface; the graph and
// stats subpackages are thin data clients that ride on the session's retrying
// HTTP client.
//
// # What this package must NOT do
//
//   - Mutate shared transport defaults. The Authorization header is attached
//     per request from the session handle.
//   - Start more than one refresh call at a time, no matter how many requests
//     fail with 401 concurrently.
//   - Leave partial credential state behind on any failure path. Login,
//     profile-fetch, and refresh failures all resolve through [Session.Logout]
//     before the error reaches the caller.
//
// # Retry contract
//
// Every authenticated request gets at most one transparent retry: a 401
// triggers (or joins) the single in-flight refresh, the original request is
// replayed once with the new token, and the replay's outcome is returned
// as-is. A 401 on the replay is never retried again.
package goSession
