package core

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// DomainEvent represents a business event that has happened to an account.
//
// The set of implementations is closed: AccountOpened, FundsDeposited, FundsWithdrawn,
// OverdraftLimitSet and AccountClosed.
type DomainEvent interface {
	// EventType returns the string identifier for this event type.
	EventType() string

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time

	// ForAccount returns the id of the account the event belongs to.
	ForAccount() uuid.UUID

	// ProducesVersion returns the account version after this event was applied.
	ProducesVersion() Version
}
