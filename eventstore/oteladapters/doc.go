// Package oteladapters provides OpenTelemetry implementations of the observability interfaces
// declared in the eventstore package, so that the engines and the ledger can report to any
// OpenTelemetry backend without depending on the OpenTelemetry SDK themselves.
//
//   - SlogBridgeLogger and OTelLogger implement eventstore.ContextualLogger
//   - MetricsCollector implements eventstore.ContextualMetricsCollector
//   - TracingCollector implements eventstore.TracingCollector
package oteladapters
