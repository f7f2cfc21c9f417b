// Package stats is the client for the statistics API: platform-wide fraud
// statistics (public) and per-user achievement/skill statistics
// (authenticated).
package stats
