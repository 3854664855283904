package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FundsWithdrawnEventType is the event type identifier.
const FundsWithdrawnEventType = "FundsWithdrawn"

// FundsWithdrawn represents money debited from an account, also as the debit leg of a transfer.
type FundsWithdrawn struct {
	AccountID  uuid.UUID
	Version    Version
	Amount     decimal.Decimal
	OccurredAt OccurredAt
}

// BuildFundsWithdrawn creates a new FundsWithdrawn event.
func BuildFundsWithdrawn(accountID uuid.UUID, version Version, amount decimal.Decimal, occurredAt time.Time) FundsWithdrawn {
	return FundsWithdrawn{
		AccountID:  accountID,
		Version:    version,
		Amount:     amount,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e FundsWithdrawn) EventType() string {
	return FundsWithdrawnEventType
}

// HasOccurredAt returns when this event occurred.
func (e FundsWithdrawn) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// ForAccount returns the account id.
func (e FundsWithdrawn) ForAccount() uuid.UUID {
	return e.AccountID
}

// ProducesVersion returns the version after applying the event.
func (e FundsWithdrawn) ProducesVersion() Version {
	return e.Version
}
