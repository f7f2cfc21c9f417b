package internaldefs

import (
	goSession "github.com/fraudlens/goSession"
)

// CounterDef binds a metric ID to its exported name and help text. Both
// exporters iterate these defs so the two surfaces stay in lockstep.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported session counter.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Successful logins."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Failed logins."},
	{ID: goSession.MetricRegisterSuccess, Name: "gosession_register_success_total", Help: "Accepted registrations."},
	{ID: goSession.MetricRegisterFailure, Name: "gosession_register_failure_total", Help: "Rejected registrations."},
	{ID: goSession.MetricRefreshSuccess, Name: "gosession_refresh_success_total", Help: "Refresh calls that produced a new access token."},
	{ID: goSession.MetricRefreshFailure, Name: "gosession_refresh_failure_total", Help: "Refresh calls that ended in logout."},
	{ID: goSession.MetricRefreshCoalesced, Name: "gosession_refresh_coalesced_total", Help: "Callers that joined an in-flight refresh."},
	{ID: goSession.MetricRetryAttempt, Name: "gosession_retry_attempt_total", Help: "401-driven request replays."},
	{ID: goSession.MetricRetryAbandoned, Name: "gosession_retry_abandoned_total", Help: "401 responses returned to the caller without a replay."},
	{ID: goSession.MetricProfileFetchSuccess, Name: "gosession_profile_fetch_success_total", Help: "Profile fetches that stored a user."},
	{ID: goSession.MetricProfileFetchFailure, Name: "gosession_profile_fetch_failure_total", Help: "Profile fetches that forced a logout."},
	{ID: goSession.MetricHydrate, Name: "gosession_hydrate_total", Help: "Store hydrations at startup."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Logout transitions."},
}
