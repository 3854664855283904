package ledger

import (
	"context"
	"errors"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
)

var (
	// ErrNilEventStore is returned by NewService without an event store.
	ErrNilEventStore = errors.New("event store must not be nil")

	// ErrNonPositiveResolutionTimeout is returned for a zero or negative append outcome resolution timeout.
	ErrNonPositiveResolutionTimeout = errors.New("outcome resolution timeout must be positive")

	// ErrConcurrencyConflict is returned when a command still conflicts after all retry attempts.
	ErrConcurrencyConflict = errors.New("concurrency conflict persisted after all retries")

	// ErrTransferFailed is returned when the credit leg of a transfer failed and the debit was compensated.
	ErrTransferFailed = errors.New("transfer failed, debit was compensated")

	// ErrReconciliationRequired is returned when the compensation of a failed transfer failed too,
	// or when it is unknown whether a leg of the transfer was committed.
	// The debited funds may be stranded and need manual reconciliation.
	ErrReconciliationRequired = errors.New("transfer outcome inconsistent, reconciliation required")

	// ErrAppendOutcomeUnknown is returned when an append failed and reloading the stream
	// could not tell whether it was committed.
	ErrAppendOutcomeUnknown = errors.New("append outcome unknown")

	// ErrGeneratingIDFailed is returned when no new UUID could be generated.
	ErrGeneratingIDFailed = errors.New("generating id failed")

	errAccountIDInUse = errors.New("account id is already in use")
)

// Error kinds as reported by ErrorKind.
const (
	KindValidation             = "ValidationError"
	KindAccountNotFound        = "AccountNotFoundError"
	KindAccountClosed          = "AccountClosedError"
	KindInsufficientFunds      = "InsufficientFundsError"
	KindConcurrencyConflict    = "ConcurrencyConflictError"
	KindTransferFailed         = "TransferFailedError"
	KindReconciliationRequired = "ReconciliationRequiredError"
	KindAppendOutcomeUnknown   = "AppendOutcomeUnknownError"
	KindCanceled               = "CanceledError"
	KindTimeout                = "TimeoutError"
	KindInternal               = "InternalError"
)

// ErrorKind maps an error returned by the Service to the name of its kind, for an API layer
// that reports errors by name. It returns an empty string for nil.
//
// Saga outcomes take precedence over their causes: a failed transfer whose credit leg
// hit a closed account is a TransferFailedError.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrReconciliationRequired):
		return KindReconciliationRequired
	case errors.Is(err, ErrTransferFailed):
		return KindTransferFailed
	case errors.Is(err, ErrAppendOutcomeUnknown):
		return KindAppendOutcomeUnknown
	case errors.Is(err, core.ErrValidation):
		return KindValidation
	case errors.Is(err, core.ErrAccountNotFound):
		return KindAccountNotFound
	case errors.Is(err, core.ErrAccountClosed):
		return KindAccountClosed
	case errors.Is(err, core.ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrConcurrencyConflict), errors.Is(err, eventstore.ErrConcurrencyConflict):
		return KindConcurrencyConflict
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindInternal
	}
}
