package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
)

const (
	metricLoadDuration         = "eventstore_load_duration_seconds"
	metricAppendDuration       = "eventstore_append_duration_seconds"
	metricEventsLoaded         = "eventstore_events_loaded_total"
	metricEventsAppended       = "eventstore_events_appended_total"
	metricConcurrencyConflicts = "eventstore_concurrency_conflicts_total"
	metricDatabaseErrors       = "eventstore_database_errors_total"

	spanNameLoad   = "eventstore.load"
	spanNameAppend = "eventstore.append"

	spanAttrOperation       = "operation"
	spanAttrStreamID        = "stream_id"
	spanAttrEventCount      = "event_count"
	spanAttrEventType       = "event_type"
	spanAttrStreamVersion   = "stream_version"
	spanAttrExpectedVersion = "expected_version"
	spanAttrRowsAffected    = "rows_affected"
	spanAttrDurationMS      = "duration_ms"
	spanAttrErrorType       = "error_type"
	spanAttrConflictSource  = "conflict_source"

	labelStatus       = "status"
	labelConflictType = "conflict_type"

	operationLoad   = "load"
	operationAppend = "append"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBuildQuery          = "build_query"
	errorTypeDatabaseQuery       = "database_query"
	errorTypeRowScan             = "row_scan"
	errorTypeDatabaseExec        = "database_exec"
	errorTypeConcurrencyConflict = "concurrency_conflict"
)

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatMilliseconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", toMilliseconds(d))
}

// === Logging ===
// The contextual logger wins over the plain logger if both are configured.

// logQueryWithDuration logs SQL queries with execution time at debug level.
func (es *EventStore) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	case es.logger != nil:
		es.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (es *EventStore) logOperation(ctx context.Context, action string, args ...any) {
	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	case es.logger != nil:
		es.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical failures at warn level.
func (es *EventStore) logWarn(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.WarnContext(ctx, message, allArgs...)
	case es.logger != nil:
		es.logger.Warn(message, allArgs...)
	}
}

// logError logs error information at the error level.
func (es *EventStore) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case es.contextualLogger != nil:
		es.contextualLogger.ErrorContext(ctx, message, allArgs...)
	case es.logger != nil:
		es.logger.Error(message, allArgs...)
	}
}

// === Metrics ===

func (es *EventStore) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if contextualCollector, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	es.metricsCollector.RecordDuration(metric, duration, labels)
}

func (es *EventStore) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if contextualCollector, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	es.metricsCollector.RecordValue(metric, value, labels)
}

func (es *EventStore) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if contextualCollector, ok := es.metricsCollector.(eventstore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	es.metricsCollector.IncrementCounter(metric, labels)
}

// operationMetricsObserver encapsulates the metrics collection for one load or append operation.
type operationMetricsObserver struct {
	es        *EventStore
	ctx       context.Context
	operation string
}

func (es *EventStore) startLoadMetrics(ctx context.Context) *operationMetricsObserver {
	return &operationMetricsObserver{es: es, ctx: ctx, operation: operationLoad}
}

func (es *EventStore) startAppendMetrics(ctx context.Context) *operationMetricsObserver {
	return &operationMetricsObserver{es: es, ctx: ctx, operation: operationAppend}
}

func (o *operationMetricsObserver) durationMetric() string {
	if o.operation == operationLoad {
		return metricLoadDuration
	}

	return metricAppendDuration
}

func (o *operationMetricsObserver) countMetric() string {
	if o.operation == operationLoad {
		return metricEventsLoaded
	}

	return metricEventsAppended
}

// recordSuccess records duration and event count of a successful operation.
func (o *operationMetricsObserver) recordSuccess(eventCount int, duration time.Duration) {
	if o.es.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: o.operation, labelStatus: statusSuccess}
	o.es.recordDuration(o.ctx, o.durationMetric(), duration, labels)
	o.es.recordValue(o.ctx, o.countMetric(), float64(eventCount), labels)
}

// recordError records duration and error type of a failed operation.
func (o *operationMetricsObserver) recordError(errorType string, duration time.Duration) {
	if o.es.metricsCollector == nil {
		return
	}

	o.es.recordDuration(o.ctx, o.durationMetric(), duration, map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       statusError,
	})
	o.es.incrementCounter(o.ctx, metricDatabaseErrors, map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	})
}

// recordConcurrencyConflict counts a rejected append.
func (o *operationMetricsObserver) recordConcurrencyConflict() {
	if o.es.metricsCollector == nil {
		return
	}

	o.es.incrementCounter(o.ctx, metricConcurrencyConflicts, map[string]string{
		spanAttrOperation: o.operation,
		labelConflictType: "concurrency",
	})
}

// === Tracing ===

// operationTracingObserver encapsulates the span lifecycle of one load or append operation.
// All methods are no-ops when no tracing collector is configured.
type operationTracingObserver struct {
	es   *EventStore
	span eventstore.SpanContext
}

func (es *EventStore) startTraceSpan(ctx context.Context, name string, attrs map[string]string) (*operationTracingObserver, context.Context) {
	if es.tracingCollector == nil {
		return &operationTracingObserver{es: es}, ctx
	}

	newCtx, span := es.tracingCollector.StartSpan(ctx, name, attrs)

	return &operationTracingObserver{es: es, span: span}, newCtx
}

func (es *EventStore) startLoadTracing(ctx context.Context, streamID eventstore.StreamIDString) (*operationTracingObserver, context.Context) {
	return es.startTraceSpan(ctx, spanNameLoad, map[string]string{
		spanAttrOperation: operationLoad,
		spanAttrStreamID:  streamID,
	})
}

func (es *EventStore) startAppendTracing(
	ctx context.Context,
	streamID eventstore.StreamIDString,
	events eventstore.StorableEvents,
	expectedVersion eventstore.StreamVersion,
) (*operationTracingObserver, context.Context) {
	attrs := map[string]string{
		spanAttrOperation:       operationAppend,
		spanAttrStreamID:        streamID,
		spanAttrEventCount:      fmt.Sprintf("%d", len(events)),
		spanAttrExpectedVersion: fmt.Sprintf("%d", expectedVersion),
	}

	if len(events) > 0 {
		attrs[spanAttrEventType] = events[0].EventType
	}

	return es.startTraceSpan(ctx, spanNameAppend, attrs)
}

func (o *operationTracingObserver) finish(status string, attrs map[string]string) {
	if o.span == nil {
		return
	}

	o.span.SetStatus(status)
	for key, value := range attrs {
		o.span.AddAttribute(key, value)
	}

	o.es.tracingCollector.FinishSpan(o.span, status, attrs)
}

// finishSuccess completes a load span. For an append span, use finishAppendSuccess.
func (o *operationTracingObserver) finishSuccess(eventCount int, version eventstore.StreamVersion, duration time.Duration) {
	o.finish(statusSuccess, map[string]string{
		spanAttrEventCount:    fmt.Sprintf("%d", eventCount),
		spanAttrStreamVersion: fmt.Sprintf("%d", version),
		spanAttrDurationMS:    formatMilliseconds(duration),
	})
}

func (o *operationTracingObserver) finishAppendSuccess(rowsAffected int64, duration time.Duration) {
	o.finish(statusSuccess, map[string]string{
		spanAttrRowsAffected: fmt.Sprintf("%d", rowsAffected),
		spanAttrDurationMS:   formatMilliseconds(duration),
	})
}

func (o *operationTracingObserver) finishError(errorType string, duration time.Duration) {
	attrs := map[string]string{spanAttrErrorType: errorType}
	if duration > 0 {
		attrs[spanAttrDurationMS] = formatMilliseconds(duration)
	}

	o.finish(statusError, attrs)
}

func (o *operationTracingObserver) finishErrorWithAttrs(errorType string, additionalAttrs map[string]string) {
	attrs := map[string]string{spanAttrErrorType: errorType}
	for key, value := range additionalAttrs {
		attrs[key] = value
	}

	o.finish(statusError, attrs)
}
