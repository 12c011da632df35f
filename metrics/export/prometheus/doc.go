// Package prometheus exposes console metrics through client_golang.
//
// [Exporter] is a prometheus.Collector that reads a snapshot on every scrape.
// Counters are published as trackadmin_*_total and request latency as the
// trackadmin_request_latency_seconds histogram. Callers choose the registry;
// [Exporter.Handler] serves a private one.
package prometheus
