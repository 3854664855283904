package postgresengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var ErrCreatingSchemaFailed = errors.New("creating the events table failed")

const schemaTemplate = `CREATE TABLE IF NOT EXISTS %[1]s (
	sequence_number BIGSERIAL PRIMARY KEY,
	stream_id TEXT NOT NULL,
	stream_version BIGINT NOT NULL CHECK (stream_version > 0),
	event_type TEXT NOT NULL,
	occurred_at TIMESTAMP WITH TIME ZONE NOT NULL,
	payload JSONB NOT NULL,
	metadata JSONB NOT NULL,
	CONSTRAINT %[2]s UNIQUE (stream_id, stream_version)
)`

// SchemaSQL returns the DDL for the events table of this EventStore.
// The unique (stream_id, stream_version) constraint is required for the concurrency guarantees of Append.
func (es *EventStore) SchemaSQL() string {
	return fmt.Sprintf(
		schemaTemplate,
		pgx.Identifier{es.eventTableName}.Sanitize(),
		pgx.Identifier{es.eventTableName + "_stream_version_key"}.Sanitize(),
	)
}

// CreateSchema creates the events table if it does not exist yet.
func (es *EventStore) CreateSchema(ctx context.Context) error {
	if _, err := es.db.Exec(ctx, es.SchemaSQL()); err != nil {
		es.logError(ctx, ErrCreatingSchemaFailed.Error(), err)

		return errors.Join(ErrCreatingSchemaFailed, err)
	}

	return nil
}
