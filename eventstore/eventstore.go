package eventstore

import "context"

// EventStore is the contract between an event-sourced application and its persistence engine.
//
// Each stream is an append-only, strictly ordered log. The version of a stream equals the number of
// events ever appended to it, which makes it usable as an optimistic-concurrency token.
type EventStore interface {
	// Load returns the current version of the stream together with all of its events in append order.
	// It returns ErrStreamNotFound if nothing was ever appended to the stream.
	Load(ctx context.Context, streamID StreamIDString) (StreamVersion, StorableEvents, error)

	// Append atomically appends one or multiple events, but only if the stream's current version
	// equals expectedVersion. Otherwise, nothing is appended and ErrConcurrencyConflict is returned.
	// On success, it returns the resulting stream version.
	Append(
		ctx context.Context,
		streamID StreamIDString,
		expectedVersion StreamVersion,
		event StorableEvent,
		additionalEvents ...StorableEvent,
	) (StreamVersion, error)
}
