// Package postgresengine provides a PostgreSQL implementation of the eventstore.EventStore interface.
//
// All streams share one events table. Every row carries the stream_id and its stream_version,
// and Append inserts conditionally: only if the stream's max stream_version equals the expected version.
// A unique constraint on (stream_id, stream_version) catches writers that race past that check.
//
// Key features:
//   - Multiple database adapter support (pgx.Pool, sql.DB, sqlx.DB)
//   - Atomic appends of one or multiple events with concurrency conflict detection
//   - Optional replica for loads under eventstore.EventualConsistency
//   - Configurable table name, logging, metrics and tracing
//
// Usage examples:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(
//		db,
//		postgresengine.WithTableName("account_events"),
//		postgresengine.WithLogger(slog.Default()),
//	)
//	_ = store.CreateSchema(ctx)
//
//	version, events, err := store.Load(ctx, streamID)
//	newVersion, err := store.Append(ctx, streamID, version, newEvent)
package postgresengine
