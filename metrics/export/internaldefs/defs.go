package internaldefs

import (
	sessiongate "github.com/awqef/sessiongate"
)

// CounterDef defines a public type used by sessiongate APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   sessiongate.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by sessiongate APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   sessiongate.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session core.
var CounterDefs = []CounterDef{
	{ID: sessiongate.MetricLoginSuccess, Name: "awqef_session_login_success_total", Help: "Successful login attempts."},
	{ID: sessiongate.MetricLoginFailure, Name: "awqef_session_login_failure_total", Help: "Failed login attempts."},
	{ID: sessiongate.MetricRegisterSuccess, Name: "awqef_session_register_success_total", Help: "Successful registrations."},
	{ID: sessiongate.MetricRegisterFailure, Name: "awqef_session_register_failure_total", Help: "Failed registrations."},
	{ID: sessiongate.MetricLogout, Name: "awqef_session_logout_total", Help: "Logout operations."},
	{ID: sessiongate.MetricRefreshSuccess, Name: "awqef_session_refresh_success_total", Help: "Successful token refresh operations."},
	{ID: sessiongate.MetricRefreshFailure, Name: "awqef_session_refresh_failure_total", Help: "Failed token refresh operations."},
	{ID: sessiongate.MetricAuthCheck, Name: "awqef_session_auth_check_total", Help: "Auth checks that reached the backend."},
	{ID: sessiongate.MetricAuthCheckDebounced, Name: "awqef_session_auth_check_debounced_total", Help: "Auth checks answered from the debounce cache."},
	{ID: sessiongate.MetricProfileUpdated, Name: "awqef_session_profile_updated_total", Help: "Profile updates adopted from the backend."},
	{ID: sessiongate.MetricPasswordResetRequested, Name: "awqef_session_password_reset_requested_total", Help: "Password reset requests."},
	{ID: sessiongate.MetricPasswordResetConfirmed, Name: "awqef_session_password_reset_confirmed_total", Help: "Confirmed password resets."},
	{ID: sessiongate.MetricUnauthorizedSignal, Name: "awqef_session_unauthorized_signal_total", Help: "Unauthorized signals raised on 401 responses."},
	{ID: sessiongate.MetricSessionExpired, Name: "awqef_session_expired_total", Help: "Sessions terminally expired."},
}

// HistogramDefs is an exported constant or variable used by the session core.
var HistogramDefs = []HistogramDef{
	{ID: sessiongate.MetricRefreshLatency, Name: "awqef_session_refresh_latency_seconds", Help: "Refresh latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session core.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
