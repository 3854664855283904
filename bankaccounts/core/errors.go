package core

import "errors"

var (
	// ErrValidation is returned for malformed command input. It is never retried.
	ErrValidation = errors.New("validation failed")

	// ErrAccountNotFound is returned when an account has no event stream.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountClosed is returned when a command targets a closed account.
	ErrAccountClosed = errors.New("account is closed")

	// ErrInsufficientFunds is returned when a withdrawal would breach the overdraft limit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrEmptyHistory is returned by Fold for an empty event sequence.
	ErrEmptyHistory = errors.New("event history is empty")

	// ErrCorruptHistory is returned by Fold for an event sequence that violates the account invariants.
	ErrCorruptHistory = errors.New("event history is corrupt")
)

var (
	errMissingAccountID     = errors.New("account id must not be empty")
	errEmptyFullName        = errors.New("full name must not be empty")
	errEmptyEmailAddress    = errors.New("email address must not be empty")
	errAmountNotPositive    = errors.New("amount must be greater than zero")
	errTooManyDecimalPlaces = errors.New("amount must not have more than two decimal places")
	errNegativeOverdraft    = errors.New("overdraft limit must not be negative")
	errSameAccountTransfer  = errors.New("debit and credit account must differ")
	errFirstEventNotOpened  = errors.New("first event is not AccountOpened")
	errVersionGap           = errors.New("event version does not follow the previous one")
	errForeignAccount       = errors.New("event belongs to another account")
	errEventAfterClose      = errors.New("event appended after the account was closed")
	errAccountOpenedTwice   = errors.New("AccountOpened on an existing account")
	errUnknownEvent         = errors.New("unknown event")
)
