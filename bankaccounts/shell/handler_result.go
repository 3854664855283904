package shell

import "time"

// HandlerResult represents the outcome of a ledger command execution.
// It carries execution metadata (retry information) without coupling the command
// to specific observability implementations.
type HandlerResult struct {
	// NewVersion is the stream version after the append, zero if nothing was appended.
	NewVersion int64

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent in retry backoff delays.
	TotalRetryDelay time.Duration

	// LastErrorType describes the type of the final error encountered during retries.
	// Values: "none" (success), "concurrency_conflict", "context_canceled", "context_deadline_exceeded", "other"
	LastErrorType string

	// RetriesExhausted indicates whether max retry attempts were reached with a retryable error.
	RetriesExhausted bool
}

// NewSuccessResult creates a HandlerResult for successful operations.
func NewSuccessResult(newVersion int64, retryMetrics RetryMetrics) HandlerResult {
	result := newResult(retryMetrics)
	result.NewVersion = newVersion

	return result
}

// NewErrorResult creates a HandlerResult for failed operations.
// This is used when the command fails but still wants to report retry metadata.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return newResult(retryMetrics)
}

func newResult(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
