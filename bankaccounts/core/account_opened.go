package core

import (
	"time"

	"github.com/google/uuid"
)

// AccountOpenedEventType is the event type identifier.
const AccountOpenedEventType = "AccountOpened"

// AccountOpened represents the creation of an account. It is always the first event of a stream.
type AccountOpened struct {
	AccountID    uuid.UUID
	Version      Version
	FullName     string
	EmailAddress string
	OccurredAt   OccurredAt
}

// BuildAccountOpened creates a new AccountOpened event at version 1.
func BuildAccountOpened(accountID uuid.UUID, fullName string, emailAddress string, occurredAt time.Time) AccountOpened {
	return AccountOpened{
		AccountID:    accountID,
		Version:      1,
		FullName:     fullName,
		EmailAddress: emailAddress,
		OccurredAt:   ToOccurredAt(occurredAt),
	}
}

// EventType returns the event type identifier.
func (e AccountOpened) EventType() string {
	return AccountOpenedEventType
}

// HasOccurredAt returns when this event occurred.
func (e AccountOpened) HasOccurredAt() time.Time {
	return e.OccurredAt
}

// ForAccount returns the account id.
func (e AccountOpened) ForAccount() uuid.UUID {
	return e.AccountID
}

// ProducesVersion returns the version after applying the event.
func (e AccountOpened) ProducesVersion() Version {
	return e.Version
}
