// Package postgreswrapper provides PostgreSQL event stores for integration tests.
//
// Each wrapper connects with the driver selected by ADAPTER_TYPE (pgx.pool, sql.db or sqlx.db) to the
// database given by POSTGRES_TEST_DSN, creates its own events table and drops it again when the test ends.
// Tests are skipped when POSTGRES_TEST_DSN is not set.
package postgreswrapper
