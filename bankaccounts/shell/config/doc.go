// Package config provides the process configuration of the bank accounts ledger.
//
// Configuration is read from environment variables. It selects the persistence module
// (in-memory or PostgreSQL), the PostgreSQL driver (pgx.Pool, sql.DB, sqlx.DB), the retry policy
// for concurrency conflicts, logging and tracing. The package also contains the factory functions
// that turn a Config into database connections, an event store and OpenTelemetry providers.
//
// This package is part of the shell (infrastructure) layer.
package config
