package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FundsDepositedEventType is the event type identifier.
const FundsDepositedEventType = "FundsDeposited"

// FundsDeposited represents money credited to an account.
//
// Compensating marks the deposit that gives back the debit of a failed transfer.
type FundsDeposited struct {
	AccountID    uuid.UUID
	Version      Version
	Amount       decimal.Decimal
	Compensating bool `json:",omitempty"`
	OccurredAt   OccurredAt
}

// BuildFundsDeposited creates a new FundsDeposited event.
func BuildFundsDeposited(accountID uuid.UUID, version Version, amount decimal.Decimal, occurredAt time.Time) FundsDeposited {
	return FundsDeposited{
		AccountID:  accountID,
		Version:    version,
		Amount:     amount,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// BuildCompensatingFundsDeposited creates a FundsDeposited event that reverts the debit leg of a transfer.
func BuildCompensatingFundsDeposited(accountID uuid.UUID, version Version, amount decimal.Decimal, occurredAt time.Time) FundsDeposited {
	event := BuildFundsDeposited(accountID, version, amount, occurredAt)
	event.Compensating = true

	return event
}

// EventType returns the event type identifier.
func (e FundsDeposited) EventType() string {
	return FundsDepositedEventType
}

// HasOccurredAt returns when this event occurred.
func (e FundsDeposited) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// ForAccount returns the account id.
func (e FundsDeposited) ForAccount() uuid.UUID {
	return e.AccountID
}

// ProducesVersion returns the version after applying the event.
func (e FundsDeposited) ProducesVersion() Version {
	return e.Version
}
