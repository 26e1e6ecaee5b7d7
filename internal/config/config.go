package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Tempo node configuration
	Tempo TempoConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Indexer configuration
	Indexer IndexerConfig

	// Logging configuration
	Log LogConfig
}

// TempoConfig holds Tempo RPC node connection settings
type TempoConfig struct {
	RPCURL         string        `envconfig:"TEMPO_RPC_URL" default:"https://rpc.moderato.tempo.xyz"`
	RequestTimeout time.Duration `envconfig:"TEMPO_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"TEMPO_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `envconfig:"TEMPO_RETRY_DELAY" default:"1s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"tempulse"`
	Password        string        `envconfig:"DB_PASSWORD" default:"tempulse"`
	Name            string        `envconfig:"DB_NAME" default:"tempulse"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"3000"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	CacheTTL        time.Duration `envconfig:"API_CACHE_TTL" default:"30s"`
}

// IndexerConfig holds indexer-specific settings
type IndexerConfig struct {
	MetricsPort int `envconfig:"INDEXER_METRICS_PORT" default:"8080"`

	// StartBlock is where indexing begins on a fresh database (0 for genesis).
	StartBlock int64 `envconfig:"INDEXER_START_BLOCK" default:"0"`

	// BatchSize is the number of blocks fetched per indexing tick.
	BatchSize int64 `envconfig:"INDEXER_BATCH_SIZE" default:"100"`

	// PollInterval is the sleep between ticks once caught up with the chain head.
	PollInterval time.Duration `envconfig:"INDEXER_POLL_INTERVAL" default:"2s"`

	// ErrorBackoff is the delay before retrying after a failed tick.
	ErrorBackoff time.Duration `envconfig:"INDEXER_ERROR_BACKOFF" default:"5s"`

	// TimestampWorkers bounds concurrent block-header lookups per batch.
	TimestampWorkers int `envconfig:"INDEXER_TIMESTAMP_WORKERS" default:"4"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
