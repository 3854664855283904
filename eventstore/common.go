package eventstore

import (
	"errors"
)

var ErrEmptyEventsTableName = errors.New("events table name must not be empty")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrEmptyStreamID = errors.New("stream id must not be empty")
var ErrNegativeExpectedVersion = errors.New("expected version must not be negative")
var ErrStreamNotFound = errors.New("stream not found")
var ErrConcurrencyConflict = errors.New("concurrency error, expected version does not match the stream version")

var ErrQueryingEventsFailed = errors.New("querying events failed")
var ErrScanningDBRowFailed = errors.New("scanning db row failed")
var ErrBuildingStorableEventFailed = errors.New("building storable event failed")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrAppendingEventFailed = errors.New("appending the event failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")

// StreamIDString identifies one event stream, e.g. the event history of a single aggregate.
type StreamIDString = string

// StreamVersion is the number of events that were ever appended to a stream.
// A stream that does not exist has version 0.
type StreamVersion = int64

// ValidateAppendInput checks the scalar input of an Append call that every engine must reject.
func ValidateAppendInput(streamID StreamIDString, expectedVersion StreamVersion) error {
	if streamID == "" {
		return ErrEmptyStreamID
	}

	if expectedVersion < 0 {
		return ErrNegativeExpectedVersion
	}

	return nil
}
