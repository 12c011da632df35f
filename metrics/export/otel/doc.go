// Package otel publishes console metrics as OpenTelemetry observable
// instruments.
//
// [NewExporter] registers one Int64ObservableCounter per console counter and
// one Int64ObservableGauge per latency bucket. A single callback reads the
// snapshot on each collection. Callers own the MeterProvider.
package otel
