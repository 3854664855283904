package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OverdraftLimitSetEventType is the event type identifier.
const OverdraftLimitSetEventType = "OverdraftLimitSet"

// OverdraftLimitSet represents a new overdraft limit for an account.
type OverdraftLimitSet struct {
	AccountID  uuid.UUID
	Version    Version
	Limit      decimal.Decimal
	OccurredAt OccurredAt
}

// BuildOverdraftLimitSet creates a new OverdraftLimitSet event.
func BuildOverdraftLimitSet(accountID uuid.UUID, version Version, limit decimal.Decimal, occurredAt time.Time) OverdraftLimitSet {
	return OverdraftLimitSet{
		AccountID:  accountID,
		Version:    version,
		Limit:      limit,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e OverdraftLimitSet) EventType() string {
	return OverdraftLimitSetEventType
}

// HasOccurredAt returns when this event occurred.
func (e OverdraftLimitSet) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// ForAccount returns the account id.
func (e OverdraftLimitSet) ForAccount() uuid.UUID {
	return e.AccountID
}

// ProducesVersion returns the version after applying the event.
func (e OverdraftLimitSet) ProducesVersion() Version {
	return e.Version
}
