package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import

	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName          = "events"
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgIterateRowsFailed        = "failed to iterate database rows"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgLoadCompleted            = "load completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgSQLExecuted              = "executed sql for: "
	logMsgOperation                = "eventstore operation: "
	logAttrError                   = "error"
	logAttrQuery                   = "query"
	logAttrStreamID                = "stream_id"
	logAttrEventType               = "event_type"
	logAttrEventCount              = "event_count"
	logAttrDurationMS              = "duration_ms"
	logAttrExpectedEvents          = "expected_events"
	logAttrRowsAffected            = "rows_affected"
	logAttrExpectedVersion         = "expected_version"
	logAttrStreamVersion           = "stream_version"
	logAttrConflictSource          = "conflict_source"
	logActionLoad                  = "load"
	logActionAppend                = "append"
	conflictSourceVersionCheck     = "version_check"
	conflictSourceUniqueConstraint = "unique_constraint"
	colSequenceNumber              = "sequence_number"
	colStreamID                    = "stream_id"
	colStreamVersion               = "stream_version"
	colEventType                   = "event_type"
	colOccurredAt                  = "occurred_at"
	colPayload                     = "payload"
	colMetadata                    = "metadata"
	cteContext                     = "context"
	cteVals                        = "vals"
	dialectPostgres                = "postgres"
	aliasMaxVersion                = "max_version"
	castText                       = "?::text"
	castBigint                     = "?::bigint"
	castTimestamp                  = "?::timestamp with time zone"
	castJsonb                      = "?::jsonb"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
	queryDuration     = time.Duration
)

// EventStore is the PostgreSQL implementation of eventstore.EventStore.
//
// All streams live in one table. Each row carries its stream_id and stream_version, and a unique
// constraint on both columns backs the conditional insert used for optimistic concurrency.
type EventStore struct {
	db               adapters.DBAdapter
	eventTableName   string
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
	metricsCollector eventstore.MetricsCollector
	tracingCollector eventstore.TracingCollector
}

type queryResultRow struct {
	eventType     string
	occurredAt    time.Time
	payload       []byte
	metadata      []byte
	streamVersion eventstore.StreamVersion
}

// Load returns the version and all events of the given stream ordered by their stream version.
//
// It returns eventstore.ErrStreamNotFound if the stream has no events.
// Loads are served by the primary database unless the context allows eventual consistency
// and a replica was configured.
func (es *EventStore) Load(ctx context.Context, streamID eventstore.StreamIDString) (
	eventstore.StreamVersion,
	eventstore.StorableEvents,
	error,
) {
	if streamID == "" {
		return 0, nil, eventstore.ErrEmptyStreamID
	}

	tracing, ctx := es.startLoadTracing(ctx, streamID)
	metrics := es.startLoadMetrics(ctx)

	sqlQuery, buildQueryErr := es.buildSelectQuery(streamID)
	if buildQueryErr != nil {
		es.logError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr, logAttrStreamID, streamID)
		tracing.finishError(errorTypeBuildQuery, 0)
		metrics.recordError(errorTypeBuildQuery, 0)

		return 0, nil, buildQueryErr
	}

	rows, duration, queryErr := es.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		tracing.finishError(errorTypeDatabaseQuery, duration)
		metrics.recordError(errorTypeDatabaseQuery, duration)

		return 0, nil, queryErr
	}
	defer es.closeRows(ctx, rows)

	events, version, scanErr := es.processQueryResults(ctx, rows)
	if scanErr != nil {
		tracing.finishError(errorTypeRowScan, duration)
		metrics.recordError(errorTypeRowScan, duration)

		return 0, nil, scanErr
	}

	tracing.finishSuccess(len(events), version, duration)
	metrics.recordSuccess(len(events), duration)

	es.logOperation(
		ctx,
		logMsgLoadCompleted,
		logAttrStreamID, streamID,
		logAttrEventCount, len(events),
		logAttrStreamVersion, version,
		logAttrDurationMS, toMilliseconds(duration),
	)

	if len(events) == 0 {
		return 0, nil, eventstore.ErrStreamNotFound
	}

	return version, events, nil
}

// executeQuery executes the SQL query and returns rows with timing information.
func (es *EventStore) executeQuery(ctx context.Context, sqlQuery string) (
	adapters.DBRows,
	queryDuration,
	error,
) {
	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(ctx, sqlQuery, logActionLoad, duration)

	if queryErr != nil {
		es.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)

		return nil, duration, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}

	return rows, duration, nil
}

// closeRows closes database rows and logs any errors.
func (es *EventStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		es.logWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// processQueryResults converts database rows to storable events and returns the version of the last row.
func (es *EventStore) processQueryResults(ctx context.Context, rows adapters.DBRows) (
	eventstore.StorableEvents,
	eventstore.StreamVersion,
	error,
) {
	result := queryResultRow{}
	events := make(eventstore.StorableEvents, 0)
	version := eventstore.StreamVersion(0)

	for rows.Next() {
		rowScanErr := rows.Scan(&result.eventType, &result.occurredAt, &result.payload, &result.metadata, &result.streamVersion)
		if rowScanErr != nil {
			es.logError(ctx, logMsgScanRowFailed, rowScanErr)

			return nil, 0, errors.Join(eventstore.ErrScanningDBRowFailed, rowScanErr)
		}

		event, buildStorableErr := eventstore.BuildStorableEvent(result.eventType, result.occurredAt, result.payload, result.metadata)
		if buildStorableErr != nil {
			es.logError(ctx, logMsgBuildStorableEventFailed, buildStorableErr, logAttrEventType, result.eventType)

			return nil, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildStorableErr)
		}

		events = append(events, event)
		version = result.streamVersion
	}

	if iterErr := rows.Err(); iterErr != nil {
		es.logError(ctx, logMsgIterateRowsFailed, iterErr)

		return nil, 0, errors.Join(eventstore.ErrQueryingEventsFailed, iterErr)
	}

	return events, version, nil
}

// Append appends one or multiple events to the stream, but only if the stream is still at expectedVersion.
//
// The insert is conditional: a CTE reads the current max stream_version of the stream and the insert only
// produces rows if it equals expectedVersion. Two writers racing past that check are caught by the unique
// (stream_id, stream_version) constraint. Both cases return eventstore.ErrConcurrencyConflict.
//
// On success, the new stream version is returned.
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

	allEvents := eventstore.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	tracing, ctx := es.startAppendTracing(ctx, streamID, allEvents, expectedVersion)
	metrics := es.startAppendMetrics(ctx)

	sqlQuery, buildQueryErr := es.buildAppendQuery(ctx, streamID, allEvents, expectedVersion)
	if buildQueryErr != nil {
		tracing.finishError(errorTypeBuildQuery, 0)
		metrics.recordError(errorTypeBuildQuery, 0)

		return 0, buildQueryErr
	}

	rowsAffected, duration, execErr := es.executeAppendQuery(ctx, streamID, sqlQuery, expectedVersion)
	if execErr != nil {
		if errors.Is(execErr, eventstore.ErrConcurrencyConflict) {
			tracing.finishErrorWithAttrs(errorTypeConcurrencyConflict, map[string]string{
				spanAttrConflictSource: conflictSourceUniqueConstraint,
			})
			metrics.recordConcurrencyConflict()

			return 0, execErr
		}

		tracing.finishError(errorTypeDatabaseExec, duration)
		metrics.recordError(errorTypeDatabaseExec, duration)

		return 0, execErr
	}

	if err := es.validateAppendResult(ctx, streamID, rowsAffected, len(allEvents), expectedVersion); err != nil {
		tracing.finishErrorWithAttrs(errorTypeConcurrencyConflict, map[string]string{
			spanAttrConflictSource: conflictSourceVersionCheck,
			spanAttrRowsAffected:   fmt.Sprintf("%d", rowsAffected),
		})
		metrics.recordConcurrencyConflict()

		return 0, err
	}

	newVersion := expectedVersion + eventstore.StreamVersion(len(allEvents))

	tracing.finishAppendSuccess(rowsAffected, duration)
	metrics.recordSuccess(len(allEvents), duration)

	es.logOperation(
		ctx,
		logMsgEventsAppended,
		logAttrStreamID, streamID,
		logAttrEventCount, len(allEvents),
		logAttrStreamVersion, newVersion,
		logAttrDurationMS, toMilliseconds(duration),
	)

	return newVersion, nil
}

// buildAppendQuery builds the appropriate SQL query for single or multiple events.
func (es *EventStore) buildAppendQuery(
	ctx context.Context,
	streamID eventstore.StreamIDString,
	allEvents eventstore.StorableEvents,
	expectedVersion eventstore.StreamVersion,
) (sqlQueryString, error) {
	var sqlQuery sqlQueryString
	var buildQueryErr error

	switch len(allEvents) {
	case 1:
		sqlQuery, buildQueryErr = es.buildInsertQueryForSingleEvent(streamID, allEvents[0], expectedVersion)

	default:
		sqlQuery, buildQueryErr = es.buildInsertQueryForMultipleEvents(streamID, allEvents, expectedVersion)
	}

	if buildQueryErr != nil {
		es.logError(ctx, logMsgBuildInsertQueryFailed, buildQueryErr, logAttrStreamID, streamID, logAttrEventCount, len(allEvents))

		return "", buildQueryErr
	}

	return sqlQuery, nil
}

// executeAppendQuery executes the SQL append query and returns rows affected and duration.
// A unique violation on (stream_id, stream_version) is reported as eventstore.ErrConcurrencyConflict.
func (es *EventStore) executeAppendQuery(
	ctx context.Context,
	streamID eventstore.StreamIDString,
	sqlQuery string,
	expectedVersion eventstore.StreamVersion,
) (rowsAffectedInt64, queryDuration, error) {
	start := time.Now()
	tag, execErr := es.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(ctx, sqlQuery, logActionAppend, duration)

	if execErr != nil {
		if adapters.IsUniqueViolation(execErr) {
			es.logOperation(
				ctx,
				logMsgConcurrencyConflict,
				logAttrStreamID, streamID,
				logAttrExpectedVersion, expectedVersion,
				logAttrConflictSource, conflictSourceUniqueConstraint,
			)

			return 0, duration, eventstore.ErrConcurrencyConflict
		}

		es.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)

		return 0, duration, errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := tag.RowsAffected()
	if rowsAffectedErr != nil {
		es.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)

		return 0, duration, errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

// validateAppendResult detects a concurrency conflict from the number of inserted rows.
func (es *EventStore) validateAppendResult(
	ctx context.Context,
	streamID eventstore.StreamIDString,
	rowsAffected int64,
	expectedEventCount int,
	expectedVersion eventstore.StreamVersion,
) error {
	if rowsAffected < int64(expectedEventCount) {
		es.logOperation(
			ctx,
			logMsgConcurrencyConflict,
			logAttrStreamID, streamID,
			logAttrExpectedEvents, expectedEventCount,
			logAttrRowsAffected, rowsAffected,
			logAttrExpectedVersion, expectedVersion,
			logAttrConflictSource, conflictSourceVersionCheck,
		)

		return eventstore.ErrConcurrencyConflict
	}

	return nil
}

func (es *EventStore) buildSelectQuery(streamID eventstore.StreamIDString) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colStreamVersion).
		Where(goqu.C(colStreamID).Eq(streamID)).
		Order(goqu.I(colStreamVersion).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// buildMaxVersionCTE selects the current version of the stream, 0 for a new stream.
func (es *EventStore) buildMaxVersionCTE(builder goqu.DialectWrapper, streamID eventstore.StreamIDString) *goqu.SelectDataset {
	return builder.
		From(es.eventTableName).
		Select(goqu.COALESCE(goqu.MAX(colStreamVersion), 0).As(aliasMaxVersion)).
		Where(goqu.C(colStreamID).Eq(streamID))
}

func (es *EventStore) buildInsertQueryForSingleEvent(
	streamID eventstore.StreamIDString,
	event eventstore.StorableEvent,
	expectedVersion eventstore.StreamVersion,
) (sqlQueryString, error) {
	builder := goqu.Dialect(dialectPostgres)

	cteStmt := es.buildMaxVersionCTE(builder, streamID)

	selectStmt := builder.
		From(cteContext).
		Select(
			goqu.L(castText, streamID),
			goqu.L(castBigint, expectedVersion+1),
			goqu.L(castText, event.EventType),
			goqu.L(castTimestamp, event.OccurredAt),
			goqu.L(castJsonb, event.PayloadJSON),
			goqu.L(castJsonb, event.MetadataJSON),
		).
		Where(goqu.C(aliasMaxVersion).Eq(expectedVersion))

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colStreamID, colStreamVersion, colEventType, colOccurredAt, colPayload, colMetadata).
		FromQuery(selectStmt).
		With(cteContext, cteStmt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EventStore) buildInsertQueryForMultipleEvents(
	streamID eventstore.StreamIDString,
	events eventstore.StorableEvents,
	expectedVersion eventstore.StreamVersion,
) (sqlQueryString, error) {
	builder := goqu.Dialect(dialectPostgres)

	cteStmt := es.buildMaxVersionCTE(builder, streamID)

	// one SELECT per event, combined with UNION ALL
	valuesStmt := es.buildValuesSelect(builder, streamID, events[0], expectedVersion+1)
	for i := 1; i < len(events); i++ {
		valuesStmt = valuesStmt.UnionAll(
			es.buildValuesSelect(builder, streamID, events[i], expectedVersion+eventstore.StreamVersion(i)+1),
		)
	}

	valsStreamID := fmt.Sprintf("%s.%s", cteVals, colStreamID)
	valsStreamVersion := fmt.Sprintf("%s.%s", cteVals, colStreamVersion)
	valsEventType := fmt.Sprintf("%s.%s", cteVals, colEventType)
	valsOccurredAt := fmt.Sprintf("%s.%s", cteVals, colOccurredAt)
	valsPayload := fmt.Sprintf("%s.%s", cteVals, colPayload)
	valsMetadata := fmt.Sprintf("%s.%s", cteVals, colMetadata)

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colStreamID, colStreamVersion, colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(valsStreamID, valsStreamVersion, valsEventType, valsOccurredAt, valsPayload, valsMetadata).
				Where(goqu.C(aliasMaxVersion).Eq(expectedVersion)).
				Order(goqu.I(valsStreamVersion).Asc()),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EventStore) buildValuesSelect(
	builder goqu.DialectWrapper,
	streamID eventstore.StreamIDString,
	event eventstore.StorableEvent,
	version eventstore.StreamVersion,
) *goqu.SelectDataset {
	return builder.Select(
		goqu.L(castText, streamID).As(colStreamID),
		goqu.L(castBigint, version).As(colStreamVersion),
		goqu.L(castText, event.EventType).As(colEventType),
		goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
		goqu.L(castJsonb, event.PayloadJSON).As(colPayload),
		goqu.L(castJsonb, event.MetadataJSON).As(colMetadata),
	)
}

// Ensure EventStore implements eventstore.EventStore.
var _ eventstore.EventStore = (*EventStore)(nil)
