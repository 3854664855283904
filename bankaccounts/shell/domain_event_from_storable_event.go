package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/core"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
)

var (
	// ErrMappingToDomainEventFailed is returned when domain event conversion fails.
	ErrMappingToDomainEventFailed = errors.New("mapping to domain event failed")

	// ErrMappingToDomainEventUnknownEventType is returned for unrecognized event types.
	ErrMappingToDomainEventUnknownEventType = errors.New("unknown event type")
)

// DomainEventsFrom converts multiple StorableEvents to DomainEvents.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent to its corresponding DomainEvent.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.AccountOpenedEventType:
		return unmarshalPayload[core.AccountOpened](storableEvent.PayloadJSON)

	case core.FundsDepositedEventType:
		return unmarshalPayload[core.FundsDeposited](storableEvent.PayloadJSON)

	case core.FundsWithdrawnEventType:
		return unmarshalPayload[core.FundsWithdrawn](storableEvent.PayloadJSON)

	case core.OverdraftLimitSetEventType:
		return unmarshalPayload[core.OverdraftLimitSet](storableEvent.PayloadJSON)

	case core.AccountClosedEventType:
		return unmarshalPayload[core.AccountClosed](storableEvent.PayloadJSON)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshalPayload[T core.DomainEvent](payloadJSON []byte) (core.DomainEvent, error) {
	payload := new(T)

	err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(payloadJSON, payload)
	if err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return *payload, nil
}
