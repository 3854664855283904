// Package memoryengine provides an in-process implementation of the eventstore.EventStore contract.
//
// It keeps every stream in a map guarded by a mutex, which gives the same optimistic-concurrency
// semantics as the Postgres engine: an append only succeeds if the stream's version still equals
// the expected version. It is meant for tests and demos; nothing survives a process restart.
package memoryengine

import (
	"context"
	"slices"
	"sync"

	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
)

const (
	logMsgEventsAppended      = "eventstore operation: events appended"
	logMsgConcurrencyConflict = "eventstore operation: concurrency conflict detected"
	logAttrStreamID           = "stream_id"
	logAttrEventCount         = "event_count"
	logAttrExpectedVersion    = "expected_version"
	logAttrActualVersion      = "actual_version"
)

// EventStore is an in-memory event store. The zero value is not usable, use NewEventStore.
type EventStore struct {
	mu      sync.RWMutex
	streams map[eventstore.StreamIDString]eventstore.StorableEvents
	logger  eventstore.Logger
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithLogger sets a logger which receives appends at info level and concurrency conflicts at info level.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.logger = logger
		return nil
	}
}

// NewEventStore creates an empty in-memory EventStore.
func NewEventStore(options ...Option) (*EventStore, error) {
	es := &EventStore{
		streams: make(map[eventstore.StreamIDString]eventstore.StorableEvents),
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Load returns the version and a copy of all events of the stream.
func (es *EventStore) Load(ctx context.Context, streamID eventstore.StreamIDString) (
	eventstore.StreamVersion,
	eventstore.StorableEvents,
	error,
) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	stream, ok := es.streams[streamID]
	if !ok || len(stream) == 0 {
		return 0, nil, eventstore.ErrStreamNotFound
	}

	return eventstore.StreamVersion(len(stream)), slices.Clone(stream), nil
}

// Append appends the events if the stream is still at expectedVersion.
func (es *EventStore) Append(
	ctx context.Context,
	streamID eventstore.StreamIDString,
	expectedVersion eventstore.StreamVersion,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) (eventstore.StreamVersion, error) {
	if err := eventstore.ValidateAppendInput(streamID, expectedVersion); err != nil {
		return 0, err
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	es.mu.Lock()
	defer es.mu.Unlock()

	stream := es.streams[streamID]
	actualVersion := eventstore.StreamVersion(len(stream))

	if actualVersion != expectedVersion {
		if es.logger != nil {
			es.logger.Info(
				logMsgConcurrencyConflict,
				logAttrStreamID, streamID,
				logAttrExpectedVersion, expectedVersion,
				logAttrActualVersion, actualVersion,
			)
		}

		return 0, eventstore.ErrConcurrencyConflict
	}

	es.streams[streamID] = append(stream, allEvents...)
	newVersion := actualVersion + eventstore.StreamVersion(len(allEvents))

	if es.logger != nil {
		es.logger.Info(logMsgEventsAppended, logAttrStreamID, streamID, logAttrEventCount, len(allEvents))
	}

	return newVersion, nil
}

// StreamCount returns the number of streams that have at least one event.
func (es *EventStore) StreamCount() int {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return len(es.streams)
}

// Ensure EventStore implements eventstore.EventStore.
var _ eventstore.EventStore = (*EventStore)(nil)
