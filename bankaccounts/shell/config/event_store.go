package config

import (
	"context"
	"errors"

	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore/memoryengine"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore/postgresengine"
)

var ErrOpeningEventStoreFailed = errors.New("opening the event store failed")

// Observability bundles the optional observability dependencies handed to the event store.
type Observability struct {
	Logger           eventstore.Logger
	ContextualLogger eventstore.ContextualLogger
	Metrics          eventstore.MetricsCollector
	Tracing          eventstore.TracingCollector
}

// OpenedEventStore is an event store together with the function that releases its connections.
type OpenedEventStore struct {
	eventstore.EventStore
	Close func()
}

// OpenEventStore creates the configured event store.
// For PostgreSQL it connects with the configured adapter type, attaches the replica if one is configured
// and creates the events table when asked to.
func OpenEventStore(ctx context.Context, cfg Config, obs Observability) (OpenedEventStore, error) {
	if cfg.PersistenceModule == PersistenceMemory {
		var options []memoryengine.Option
		if obs.Logger != nil {
			options = append(options, memoryengine.WithLogger(obs.Logger))
		}

		store, err := memoryengine.NewEventStore(options...)
		if err != nil {
			return OpenedEventStore{}, errors.Join(ErrOpeningEventStoreFailed, err)
		}

		return OpenedEventStore{EventStore: store, Close: func() {}}, nil
	}

	store, closeFn, err := openPostgresEventStore(ctx, cfg, postgresOptions(cfg, obs))
	if err != nil {
		return OpenedEventStore{}, errors.Join(ErrOpeningEventStoreFailed, err)
	}

	if cfg.Postgres.CreateSchema {
		if schemaErr := store.CreateSchema(ctx); schemaErr != nil {
			closeFn()
			return OpenedEventStore{}, errors.Join(ErrOpeningEventStoreFailed, schemaErr)
		}
	}

	return OpenedEventStore{EventStore: store, Close: closeFn}, nil
}

func postgresOptions(cfg Config, obs Observability) []postgresengine.Option {
	options := []postgresengine.Option{postgresengine.WithTableName(cfg.EventsTableName)}

	if obs.Logger != nil {
		options = append(options, postgresengine.WithLogger(obs.Logger))
	}

	if obs.ContextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(obs.ContextualLogger))
	}

	if obs.Metrics != nil {
		options = append(options, postgresengine.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		options = append(options, postgresengine.WithTracing(obs.Tracing))
	}

	return options
}

//nolint:funlen
func openPostgresEventStore(
	ctx context.Context,
	cfg Config,
	options []postgresengine.Option,
) (*postgresengine.EventStore, func(), error) {
	primaryDSN := cfg.PostgresPrimaryDSN()

	switch cfg.AdapterType {
	case AdapterSQLDB:
		db, err := OpenSQLDB(ctx, primaryDSN)
		if err != nil {
			return nil, nil, err
		}

		closers := []func(){func() { _ = db.Close() }}

		if !cfg.HasReplica() {
			store, storeErr := postgresengine.NewEventStoreFromSQLDB(db, options...)
			return store, closeAll(closers), closeOnError(storeErr, closers)
		}

		replica, err := OpenSQLDB(ctx, cfg.PostgresReplicaDSN)
		if err != nil {
			closeAll(closers)()
			return nil, nil, err
		}

		closers = append(closers, func() { _ = replica.Close() })
		store, storeErr := postgresengine.NewEventStoreFromSQLDBAndReplica(db, replica, options...)

		return store, closeAll(closers), closeOnError(storeErr, closers)

	case AdapterSQLXDB:
		db, err := OpenSQLXDB(ctx, primaryDSN)
		if err != nil {
			return nil, nil, err
		}

		closers := []func(){func() { _ = db.Close() }}

		if !cfg.HasReplica() {
			store, storeErr := postgresengine.NewEventStoreFromSQLX(db, options...)
			return store, closeAll(closers), closeOnError(storeErr, closers)
		}

		replica, err := OpenSQLXDB(ctx, cfg.PostgresReplicaDSN)
		if err != nil {
			closeAll(closers)()
			return nil, nil, err
		}

		closers = append(closers, func() { _ = replica.Close() })
		store, storeErr := postgresengine.NewEventStoreFromSQLXAndReplica(db, replica, options...)

		return store, closeAll(closers), closeOnError(storeErr, closers)

	default:
		pool, err := OpenPGXPool(ctx, primaryDSN)
		if err != nil {
			return nil, nil, err
		}

		closers := []func(){pool.Close}

		if !cfg.HasReplica() {
			store, storeErr := postgresengine.NewEventStoreFromPGXPool(pool, options...)
			return store, closeAll(closers), closeOnError(storeErr, closers)
		}

		replica, err := OpenPGXPool(ctx, cfg.PostgresReplicaDSN)
		if err != nil {
			closeAll(closers)()
			return nil, nil, err
		}

		closers = append(closers, replica.Close)
		store, storeErr := postgresengine.NewEventStoreFromPGXPoolAndReplica(pool, replica, options...)

		return store, closeAll(closers), closeOnError(storeErr, closers)
	}
}

func closeAll(closers []func()) func() {
	return func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}
}

func closeOnError(err error, closers []func()) error {
	if err != nil {
		closeAll(closers)()
	}

	return err
}
