package config

import (
	"net/url"
	"strconv"
)

// PostgresPrimaryDSN builds the connection URL of the primary database.
func (c Config) PostgresPrimaryDSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Postgres.User, c.Postgres.Password),
		Host:     c.Postgres.Host + ":" + strconv.Itoa(c.Postgres.Port),
		Path:     "/" + c.Postgres.DBName,
		RawQuery: url.Values{"sslmode": []string{c.Postgres.SSLMode}}.Encode(),
	}

	return dsn.String()
}

// HasReplica reports whether reads with eventual consistency can go to a replica.
func (c Config) HasReplica() bool {
	return c.PostgresReplicaDSN != ""
}
