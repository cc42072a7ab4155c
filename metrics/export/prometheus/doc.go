// Package prometheus renders the engine's metrics in Prometheus text
// exposition format.
//
// [NewExporter] accepts an engine and exposes an [net/http.Handler] that
// serves every counter and histogram. Counter names are prefixed
// authcore_*_total; the single histogram is
// authcore_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
