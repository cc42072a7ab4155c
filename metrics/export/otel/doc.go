// Package otel provides OpenTelemetry metric bindings for the engine's
// counters and histograms.
//
// [NewExporter] registers an Int64ObservableCounter per engine counter and
// an Int64ObservableGauge per histogram bucket. A single callback reads the
// engine's metrics snapshot on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
