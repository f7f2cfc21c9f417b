// Package graph is the client for the knowledge-graph exploration API. All
// calls ride on the session's retrying HTTP client, so token expiry during a
// fetch is recovered transparently.
package graph
