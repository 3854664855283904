// Package testdoubles provides test doubles (spies) for the observability interfaces of the eventstore package.
//
//   - MetricsCollectorSpy: captures metrics recording calls for verification
//   - TracingCollectorSpy: captures started and finished spans
//   - ContextualLoggerSpy: captures structured logging with context
//
// The engines and the ledger share these spies, so their instrumentation can be tested without any telemetry backend.
package testdoubles
