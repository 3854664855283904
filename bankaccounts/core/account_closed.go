package core

import (
	"time"

	"github.com/google/uuid"
)

// AccountClosedEventType is the event type identifier.
const AccountClosedEventType = "AccountClosed"

// AccountClosed represents the terminal state transition of an account.
type AccountClosed struct {
	AccountID  uuid.UUID
	Version    Version
	OccurredAt OccurredAt
}

// BuildAccountClosed creates a new AccountClosed event.
func BuildAccountClosed(accountID uuid.UUID, version Version, occurredAt time.Time) AccountClosed {
	return AccountClosed{
		AccountID:  accountID,
		Version:    version,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e AccountClosed) EventType() string {
	return AccountClosedEventType
}

// HasOccurredAt returns when this event occurred.
func (e AccountClosed) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// ForAccount returns the account id.
func (e AccountClosed) ForAccount() uuid.UUID {
	return e.AccountID
}

// ProducesVersion returns the version after applying the event.
func (e AccountClosed) ProducesVersion() Version {
	return e.Version
}
