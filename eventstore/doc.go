// Package eventstore provides the core abstractions and types for event sourcing
// with versioned per-aggregate event streams.
//
// This package defines the EventStore contract implemented by the different engines,
// the StorableEvent DTO, common error definitions, the dependency-free observability
// interfaces and the read-consistency context helpers.
//
// Key types:
//   - EventStore: Load and Append with optimistic concurrency on the stream version
//   - StorableEvent: Represents an event that can be stored and retrieved
//   - StorableEvents: Collection of storable events
//
// Common usage pattern:
//
//	version, events, err := store.Load(ctx, accountID.String())
//	if err != nil && !errors.Is(err, eventstore.ErrStreamNotFound) {
//		// handle error
//	}
//
//	newEvent, _ := eventstore.BuildStorableEvent(eventType, time.Now(), payload, metadata)
//	newVersion, err := store.Append(ctx, accountID.String(), version, newEvent)
//	if errors.Is(err, eventstore.ErrConcurrencyConflict) {
//		// somebody else appended first: load again and redo the decision
//	}
package eventstore
