package eventstore

import "context"

// ConsistencyLevel defines the read consistency requirements for EventStore.Load.
type ConsistencyLevel int

const (
	// StrongConsistency requires reads from the primary database. Every load that feeds
	// a decision (load-decide-append) must see the latest appended version, otherwise the
	// subsequent append is guaranteed to conflict.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica database. Only suitable for pure
	// read models, e.g. showing an account balance that may lag behind by a few events.
	EventualConsistency
)

// contextKey is a private type to prevent context key collisions.
type contextKey string

// ConsistencyLevelKey is the context key used to store consistency level preferences.
const ConsistencyLevelKey contextKey = "eventstore.consistency_level"

// WithStrongConsistency returns a context that signals EventStore operations
// must use the primary database.
//
// Example usage:
//
//	ctx = eventstore.WithStrongConsistency(ctx)
//	version, events, err := store.Load(ctx, streamID)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that signals EventStore loads
// may be served by a replica database.
//
// Example usage:
//
//	ctx = eventstore.WithEventualConsistency(ctx)
//	balance, err := ledger.GetBalance(ctx, accountID)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context.
// If no consistency level is set, it returns StrongConsistency.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

// String provides a string representation of ConsistencyLevel for logging and debugging.
func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
