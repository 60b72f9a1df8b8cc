// Package prometheus renders session-core metrics for Prometheus scraping.
//
// [NewPrometheusExporter] accepts a [sessiongate.Manager] and exposes an
// [net/http.Handler] that renders all counters and histograms in Prometheus
// text exposition format. Counter names are prefixed awqef_session_*_total;
// the single histogram is awqef_session_refresh_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate manager state.
package prometheus
