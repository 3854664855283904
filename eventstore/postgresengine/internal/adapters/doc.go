// Package adapters provide database adapter implementations for the PostgreSQL event store.
//
// The adapters hide the differences between pgxpool.Pool, sql.DB and sqlx.DB behind the
// DBAdapter interface. Each adapter optionally holds a replica connection, which is only used
// for queries whose context asks for eventstore.EventualConsistency.
package adapters
