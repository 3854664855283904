package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
)

const (
	// LedgerCommandDurationMetric tracks command execution duration (OpenTelemetry-compatible).
	LedgerCommandDurationMetric = "ledger_command_duration_seconds"

	// LedgerCommandCallsMetric tracks total command calls.
	LedgerCommandCallsMetric = "ledger_command_calls_total"

	// LedgerCanceledMetric tracks canceled commands.
	LedgerCanceledMetric = "ledger_canceled_operations_total"

	// LedgerTimeoutMetric tracks timed out commands.
	LedgerTimeoutMetric = "ledger_timeout_operations_total"

	// LedgerConcurrencyConflictMetric tracks commands that failed after exhausting their retries.
	LedgerConcurrencyConflictMetric = "ledger_concurrency_conflicts_total"

	// LedgerQueryDurationMetric tracks query execution duration.
	LedgerQueryDurationMetric = "ledger_query_duration_seconds"

	// LedgerQueryCallsMetric tracks total query calls.
	LedgerQueryCallsMetric = "ledger_query_calls_total"

	// LedgerRetriesMetric tracks retry attempts.
	//
	// Labels:
	//   - command_type: Type of command being retried (e.g., "DepositFunds")
	//   - attempt_number: Which retry attempt (1, 2)
	//   - error_type: Category of error causing retry (e.g., "concurrency_conflict")
	LedgerRetriesMetric = "ledger_retries_total"

	// LedgerRetryDelayMetric tracks retry delays; only recorded with a positive base delay.
	LedgerRetryDelayMetric = "ledger_retry_delay_seconds"

	// LedgerMaxRetriesReachedMetric tracks when max retries are exhausted.
	LedgerMaxRetriesReachedMetric = "ledger_max_retries_reached_total"

	// LedgerCompensationsMetric tracks transfer compensations by outcome.
	LedgerCompensationsMetric = "ledger_transfer_compensations_total"

	// StatusSuccess indicates successful completion.
	StatusSuccess = "success"

	// StatusError indicates a technical error.
	StatusError = "error"

	// StatusRejected indicates a business rule or validation rejected the command.
	StatusRejected = "rejected"

	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// StatusConcurrencyConflict indicates the operation failed due to optimistic concurrency control.
	StatusConcurrencyConflict = "concurrency_conflict"

	// LogMsgCommandStarted is logged when command processing begins.
	LogMsgCommandStarted = "command started"

	// LogMsgCommandCompleted is logged when command processing succeeds.
	LogMsgCommandCompleted = "command completed"

	// LogMsgCommandRejected is logged when a business rule rejects the command.
	LogMsgCommandRejected = "command rejected"

	// LogMsgCommandFailed is logged when command processing fails.
	LogMsgCommandFailed = "command failed"

	// LogMsgQueryCompleted is logged when query processing succeeds.
	LogMsgQueryCompleted = "query completed"

	// LogMsgQueryFailed is logged when query processing fails.
	LogMsgQueryFailed = "query failed"

	// LogAttrCommandType identifies the command type in logs.
	LogAttrCommandType = "command_type"

	// LogAttrQueryType identifies the query type in logs.
	LogAttrQueryType = "query_type"

	// LogAttrStatus indicates the processing status.
	LogAttrStatus = "status"

	// LogAttrDurationMS indicates the processing duration in milliseconds.
	LogAttrDurationMS = "duration_ms"

	// LogAttrAccountID identifies the account.
	LogAttrAccountID = "account_id"

	// LogAttrAttempt is the attempt number of a retried operation.
	LogAttrAttempt = "attempt_number"

	// LogAttrRetryAttempts is the total number of attempts of a command.
	LogAttrRetryAttempts = "retry_attempts"

	// LogAttrError contains error details.
	LogAttrError = "error"

	// SpanNameCommand is the tracing span name for command handling.
	SpanNameCommand = "ledger.command"

	// SpanNameQuery is the tracing span name for query handling.
	SpanNameQuery = "ledger.query"
)

// Interface aliases for convenience when using the ledger's observability.
// These match the EventStore observability interfaces for consistency.

// MetricsCollector interface for collecting performance metrics.
type MetricsCollector = eventstore.MetricsCollector

// ContextualMetricsCollector extends MetricsCollector with context-aware methods.
type ContextualMetricsCollector = eventstore.ContextualMetricsCollector

// TracingCollector interface for distributed tracing.
type TracingCollector = eventstore.TracingCollector

// SpanContext represents an active tracing span.
type SpanContext = eventstore.SpanContext

// ContextualLogger interface for context-aware logging.
type ContextualLogger = eventstore.ContextualLogger

// Logger interface for basic logging.
type Logger = eventstore.Logger

// BuildCommandLabels creates standard metric labels for command operations.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildQueryLabels creates standard metric labels for query operations.
func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

// BuildRetryLabels creates standard metric labels for retry operations.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrAttempt:     strconv.Itoa(attemptNumber),
		"error_type":       errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds with precision.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// StatusFrom classifies the outcome of a command or query for logs, metrics and spans.
func StatusFrom(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	case IsBusinessRejection(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// RecordCommandMetrics records duration and calls of a command, plus the dedicated counters
// for canceled, timed out and conflicting commands.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	recordDuration(ctx, collector, LedgerCommandDurationMetric, duration, labels)
	incrementCounter(ctx, collector, LedgerCommandCallsMetric, labels)

	switch status {
	case StatusCanceled:
		incrementCounter(ctx, collector, LedgerCanceledMetric, BuildCommandLabels(commandType, status))
	case StatusTimeout:
		incrementCounter(ctx, collector, LedgerTimeoutMetric, BuildCommandLabels(commandType, status))
	case StatusConcurrencyConflict:
		incrementCounter(ctx, collector, LedgerConcurrencyConflictMetric, BuildCommandLabels(commandType, status))
	}
}

// RecordQueryMetrics records duration and calls of a query.
func RecordQueryMetrics(
	ctx context.Context,
	collector MetricsCollector,
	queryType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	recordDuration(ctx, collector, LedgerQueryDurationMetric, duration, labels)
	incrementCounter(ctx, collector, LedgerQueryCallsMetric, labels)
}

// RecordCompensation counts a transfer compensation with its outcome (success or error).
func RecordCompensation(ctx context.Context, collector MetricsCollector, status string) {
	if collector == nil {
		return
	}

	incrementCounter(ctx, collector, LedgerCompensationsMetric, map[string]string{LogAttrStatus: status})
}

func recordDuration(ctx context.Context, collector MetricsCollector, metric string, d time.Duration, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, d, labels)
		return
	}

	collector.RecordDuration(metric, d, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

// StartCommandSpan starts a distributed tracing span for command operations.
// Returns the updated context and span context, or original context and nil if tracing is disabled.
func StartCommandSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	commandType string,
	attrs map[string]string,
) (context.Context, SpanContext) {
	return startSpan(ctx, tracingCollector, SpanNameCommand, LogAttrCommandType, commandType, attrs)
}

// StartQuerySpan starts a distributed tracing span for query operations.
func StartQuerySpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	queryType string,
	attrs map[string]string,
) (context.Context, SpanContext) {
	return startSpan(ctx, tracingCollector, SpanNameQuery, LogAttrQueryType, queryType, attrs)
}

func startSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	spanName string,
	typeKey string,
	typeValue string,
	attrs map[string]string,
) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	spanAttrs := map[string]string{typeKey: typeValue}
	for key, value := range attrs {
		spanAttrs[key] = value
	}

	return tracingCollector.StartSpan(ctx, spanName, spanAttrs)
}

// FinishSpan completes a distributed tracing span with the operation outcome.
func FinishSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: formatDurationMS(duration),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogDebug logs at debug level with the contextual logger if there is one, else with the plain logger.
func LogDebug(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.DebugContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Debug(msg, args...)
	}
}

// LogInfo logs at info level with the contextual logger if there is one, else with the plain logger.
func LogInfo(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Info(msg, args...)
	}
}

// LogWarn logs at warn level with the contextual logger if there is one, else with the plain logger.
func LogWarn(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.WarnContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Warn(msg, args...)
	}
}

// LogError logs at error level with the contextual logger if there is one, else with the plain logger.
func LogError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, msg, args...)
	} else if logger != nil {
		logger.Error(msg, args...)
	}
}

// LogCommandOutcome logs the end of a command: completed, rejected by a business rule or failed.
func LogCommandOutcome(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	status string,
	result HandlerResult,
	duration time.Duration,
	err error,
) {
	args := []any{
		LogAttrCommandType, commandType,
		LogAttrStatus, status,
		LogAttrRetryAttempts, result.RetryAttempts,
		LogAttrDurationMS, ToMilliseconds(duration),
	}

	if err != nil {
		args = append(args, LogAttrError, err.Error())
	}

	switch status {
	case StatusSuccess:
		LogInfo(ctx, logger, contextualLogger, LogMsgCommandCompleted, args...)
	case StatusRejected:
		LogInfo(ctx, logger, contextualLogger, LogMsgCommandRejected, args...)
	default:
		LogError(ctx, logger, contextualLogger, LogMsgCommandFailed, args...)
	}
}

// formatDurationMS formats duration in milliseconds for span attributes.
func formatDurationMS(duration time.Duration) string {
	return fmt.Sprintf("%.2f", ToMilliseconds(duration))
}

// IsCancellationError checks if an error is due to context cancellation.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError checks if an error is due to context deadline exceeded.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConcurrencyConflictError checks if an error is due to optimistic concurrency control failure.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, eventstore.ErrConcurrencyConflict)
}

// IsBusinessRejection checks if an error is one of the expected domain outcomes rather than a malfunction.
func IsBusinessRejection(err error) bool {
	return errors.Is(err, core.ErrValidation) ||
		errors.Is(err, core.ErrAccountNotFound) ||
		errors.Is(err, core.ErrAccountClosed) ||
		errors.Is(err, core.ErrInsufficientFunds)
}
