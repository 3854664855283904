package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/ledgerkit/bankaccounts-eventstore-go/bankaccounts/shell"
)

// Persistence modules.
const (
	PersistenceMemory   = "memory"
	PersistencePostgres = "postgres"
)

// Adapter types, named like the ADAPTER_TYPE values of the integration tests.
const (
	AdapterPGXPool = "pgx.pool"
	AdapterSQLDB   = "sql.db"
	AdapterSQLXDB  = "sqlx.db"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var (
	ErrParsingConfigFailed       = errors.New("parsing config from environment failed")
	ErrInvalidLogLevel           = errors.New("invalid log level")
	ErrInvalidLogFormat          = errors.New("invalid log format")
	ErrInvalidPersistenceModule  = errors.New("invalid persistence module")
	ErrInvalidAdapterType        = errors.New("invalid adapter type")
	ErrMissingPostgresConnection = errors.New("postgres host, user and database name must be set")
	ErrInvalidRetryConfig        = errors.New("invalid retry config")
)

// Config is the process configuration.
type Config struct {
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat          string `env:"LOG_FORMAT" envDefault:"text"`
	PersistenceModule  string `env:"PERSISTENCE_MODULE" envDefault:"memory"`
	AdapterType        string `env:"ADAPTER_TYPE" envDefault:"pgx.pool"`
	EventsTableName    string `env:"EVENTS_TABLE_NAME" envDefault:"events"`
	PostgresReplicaDSN string `env:"POSTGRES_REPLICA_DSN"`
	TracingStdout      bool   `env:"TRACING_STDOUT" envDefault:"false"`
	OTLPEndpoint       string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Retry    RetryConfig    `envPrefix:"RETRY_"`
}

// PostgresConfig holds the connection parameters of the primary database.
type PostgresConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	DBName   string `env:"DBNAME"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`

	// CreateSchema creates the events table on startup if it does not exist.
	CreateSchema bool `env:"CREATE_SCHEMA" envDefault:"false"`
}

// RetryConfig is the retry policy for concurrency conflicts.
type RetryConfig struct {
	MaxAttempts  int           `env:"MAX_ATTEMPTS" envDefault:"3"`
	BaseDelay    time.Duration `env:"BASE_DELAY" envDefault:"0s"`
	JitterFactor float64       `env:"JITTER_FACTOR" envDefault:"0.3"`
}

// Load reads the Config from the process environment and validates it.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrParsingConfigFailed, err)
	}

	return cfg, cfg.Validate()
}

// LoadFromMap reads the Config from the given variables instead of the process environment.
func LoadFromMap(variables map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: variables})
	if err != nil {
		return Config{}, errors.Join(ErrParsingConfigFailed, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks the values that the env tags cannot express.
func (c Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.LogFormat)
	}

	switch c.PersistenceModule {
	case PersistenceMemory:
	case PersistencePostgres:
		if err := c.validatePostgres(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPersistenceModule, c.PersistenceModule)
	}

	if c.Retry.MaxAttempts < 1 || c.Retry.BaseDelay < 0 || c.Retry.JitterFactor < 0 || c.Retry.JitterFactor > 1 {
		return fmt.Errorf("%w: %+v", ErrInvalidRetryConfig, c.Retry)
	}

	return nil
}

func (c Config) validatePostgres() error {
	switch c.AdapterType {
	case AdapterPGXPool, AdapterSQLDB, AdapterSQLXDB:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAdapterType, c.AdapterType)
	}

	if c.Postgres.Host == "" || c.Postgres.User == "" || c.Postgres.DBName == "" {
		return ErrMissingPostgresConnection
	}

	return nil
}

// SlogLevel maps LOG_LEVEL to a slog.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
}

// NewLogger creates a slog.Logger with the configured level and format.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}

	options := &slog.HandlerOptions{Level: level}

	if c.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, options))
	}

	return slog.New(slog.NewTextHandler(w, options))
}

// RetryOptions turns the retry policy into options for the ledger.
func (c Config) RetryOptions() []shell.RetryOption {
	return []shell.RetryOption{
		shell.WithMaxAttempts(c.Retry.MaxAttempts),
		shell.WithBaseDelay(c.Retry.BaseDelay),
		shell.WithJitterFactor(c.Retry.JitterFactor),
	}
}
