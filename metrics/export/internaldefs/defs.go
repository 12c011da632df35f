package internaldefs

import (
	trackAdmin "github.com/MrEthical07/trackAdmin"
)

// CounterDef names one console counter for exporters.
type CounterDef struct {
	ID   trackAdmin.MetricID
	Name string
	Help string
}

// HistogramDef names one console histogram for exporters.
type HistogramDef struct {
	ID   trackAdmin.MetricID
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: trackAdmin.MetricLoginSuccess, Name: "trackadmin_login_success_total", Help: "Successful operator logins."},
	{ID: trackAdmin.MetricLoginFailure, Name: "trackadmin_login_failure_total", Help: "Failed operator logins."},
	{ID: trackAdmin.MetricRegisterSuccess, Name: "trackadmin_register_success_total", Help: "Successful operator registrations."},
	{ID: trackAdmin.MetricRegisterFailure, Name: "trackadmin_register_failure_total", Help: "Rejected operator registrations."},
	{ID: trackAdmin.MetricLogout, Name: "trackadmin_logout_total", Help: "Operator initiated logouts."},
	{ID: trackAdmin.MetricForcedLogout, Name: "trackadmin_forced_logout_total", Help: "Sessions ended because authorization could not be restored."},
	{ID: trackAdmin.MetricRefreshSuccess, Name: "trackadmin_refresh_success_total", Help: "Token refreshes that rotated the session."},
	{ID: trackAdmin.MetricRefreshFailure, Name: "trackadmin_refresh_failure_total", Help: "Token refreshes that failed."},
	{ID: trackAdmin.MetricRefreshSkipped, Name: "trackadmin_refresh_skipped_total", Help: "Refreshes satisfied by a concurrent rotation."},
	{ID: trackAdmin.MetricRequestSuccess, Name: "trackadmin_request_success_total", Help: "Authorized requests that returned 2xx."},
	{ID: trackAdmin.MetricRequestFailure, Name: "trackadmin_request_failure_total", Help: "Authorized requests that failed."},
	{ID: trackAdmin.MetricRequestRetry, Name: "trackadmin_request_retry_total", Help: "Requests retried after a refresh."},
	{ID: trackAdmin.MetricRequestTransportError, Name: "trackadmin_request_transport_error_total", Help: "Requests that did not reach the backend."},
	{ID: trackAdmin.MetricStaleResponse, Name: "trackadmin_stale_response_total", Help: "Responses discarded because the session ended mid-flight."},
	{ID: trackAdmin.MetricMonitorTick, Name: "trackadmin_monitor_tick_total", Help: "Expiry monitor checks."},
	{ID: trackAdmin.MetricMonitorTickSkipped, Name: "trackadmin_monitor_tick_skipped_total", Help: "Expiry monitor checks skipped while one was running."},
}

var HistogramDefs = []HistogramDef{
	{ID: trackAdmin.MetricRequestLatency, Name: "trackadmin_request_latency_seconds", Help: "Backend round trip latency."},
}

// HistogramBounds are the upper bounds in seconds, matching the console's
// millisecond buckets.
var HistogramBounds = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// HistogramBoundSuffix names each bucket, +Inf last, for exporters that
// need one instrument per bucket.
var HistogramBoundSuffix = []string{
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"inf",
}

// NormalizeBuckets copies raw into a fixed array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
