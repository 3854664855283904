package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell/config"
	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore/postgresengine"
)

const (
	envTestDSN     = "POSTGRES_TEST_DSN"
	envAdapterType = "ADAPTER_TYPE"
)

// Wrapper abstracts over the different database adapters.
type Wrapper interface {
	GetEventStore() *postgresengine.EventStore
	TableName() string
	Exec(ctx context.Context, query string) error
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing.
type PGXPoolWrapper struct {
	pool      *pgxpool.Pool
	es        *postgresengine.EventStore
	tableName string
}

func (w *PGXPoolWrapper) GetEventStore() *postgresengine.EventStore { return w.es }
func (w *PGXPoolWrapper) TableName() string                         { return w.tableName }
func (w *PGXPoolWrapper) Close()                                    { w.pool.Close() }

func (w *PGXPoolWrapper) Exec(ctx context.Context, query string) error {
	_, err := w.pool.Exec(ctx, query)
	return err
}

// SQLDBWrapper wraps sql.DB-based testing.
type SQLDBWrapper struct {
	db        *sql.DB
	es        *postgresengine.EventStore
	tableName string
}

func (w *SQLDBWrapper) GetEventStore() *postgresengine.EventStore { return w.es }
func (w *SQLDBWrapper) TableName() string                         { return w.tableName }
func (w *SQLDBWrapper) Close()                                    { _ = w.db.Close() }

func (w *SQLDBWrapper) Exec(ctx context.Context, query string) error {
	_, err := w.db.ExecContext(ctx, query)
	return err
}

// SQLXWrapper wraps sqlx.DB-based testing.
type SQLXWrapper struct {
	db        *sqlx.DB
	es        *postgresengine.EventStore
	tableName string
}

func (w *SQLXWrapper) GetEventStore() *postgresengine.EventStore { return w.es }
func (w *SQLXWrapper) TableName() string                         { return w.tableName }
func (w *SQLXWrapper) Close()                                    { _ = w.db.Close() }

func (w *SQLXWrapper) Exec(ctx context.Context, query string) error {
	_, err := w.db.ExecContext(ctx, query)
	return err
}

// CreateWrapper connects to the test database with the adapter selected by ADAPTER_TYPE,
// creates a uniquely named events table and registers its removal with t.Cleanup.
func CreateWrapper(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	dsn := os.Getenv(envTestDSN)
	if dsn == "" {
		t.Skipf("%s is not set, skipping PostgreSQL integration test", envTestDSN)
	}

	ctx := context.Background()
	tableName := "events_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	options = append([]postgresengine.Option{postgresengine.WithTableName(tableName)}, options...)

	wrapper := createWrapper(t, ctx, dsn, tableName, options)

	require.NoError(t, wrapper.GetEventStore().CreateSchema(ctx), "error creating the events table in test setup")

	t.Cleanup(func() {
		dropErr := wrapper.Exec(context.Background(), "DROP TABLE IF EXISTS "+pgx.Identifier{tableName}.Sanitize())
		wrapper.Close()
		require.NoError(t, dropErr, "error dropping the events table in test cleanup")
	})

	return wrapper
}

func createWrapper(
	t testing.TB,
	ctx context.Context, //nolint:revive
	dsn string,
	tableName string,
	options []postgresengine.Option,
) Wrapper {
	adapterType := strings.ToLower(os.Getenv(envAdapterType))

	switch adapterType {
	case config.AdapterPGXPool, "":
		pool, err := config.OpenPGXPool(ctx, dsn)
		require.NoError(t, err, "error connecting to DB pool in test setup")

		es, err := postgresengine.NewEventStoreFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating event store")

		return &PGXPoolWrapper{pool: pool, es: es, tableName: tableName}

	case config.AdapterSQLDB:
		db, err := config.OpenSQLDB(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")

		es, err := postgresengine.NewEventStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating event store")

		return &SQLDBWrapper{db: db, es: es, tableName: tableName}

	case config.AdapterSQLXDB:
		db, err := config.OpenSQLXDB(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")

		es, err := postgresengine.NewEventStoreFromSQLX(db, options...)
		require.NoError(t, err, "error creating event store")

		return &SQLXWrapper{db: db, es: es, tableName: tableName}

	default:
		panic(fmt.Sprintf("unsupported adapter type from env: %s", adapterType))
	}
}
