package config

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/lib/pq"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the application configuration
type Config struct {
	Log      LogConfig
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Metrics  MetricsConfig
	Worker   WorkerConfig
}

// LogConfig selects the zap preset and level
type LogConfig struct {
	Env   string `env:"APP_ENV" envDefault:"development"`
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// ServerConfig is the HTTP server configuration
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// StorageConfig picks the event repository implementation
type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
}

// DatabaseConfig is the PostgreSQL configuration
type DatabaseConfig struct {
	URL            string `env:"DATABASE_URL"`
	Host           string `env:"DB_HOST" envDefault:"localhost"`
	Port           string `env:"DB_PORT" envDefault:"5432"`
	User           string `env:"DB_USER" envDefault:"postgres"`
	Password       string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName         string `env:"DB_NAME" envDefault:"events"`
	SSLMode        string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns   int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns   int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MigrationsPath string `env:"DB_MIGRATIONS_PATH" envDefault:"migrations"`
	AutoMigrate    bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// RedisConfig is the Redis configuration used for per-event mutation locks
type RedisConfig struct {
	Enabled        bool          `env:"REDIS_ENABLED" envDefault:"false"`
	URL            string        `env:"REDIS_URL"`
	Host           string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port           string        `env:"REDIS_PORT" envDefault:"6379"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB" envDefault:"0"`
	LockTTL        time.Duration `env:"EVENT_LOCK_TTL" envDefault:"10s"`
	LockRetries    int           `env:"EVENT_LOCK_RETRIES" envDefault:"3"`
	LockRetryDelay time.Duration `env:"EVENT_LOCK_RETRY_DELAY" envDefault:"100ms"`
}

// CORSConfig lists the frontend origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:4200"`
}

// MetricsConfig holds the /metrics basic auth credentials
type MetricsConfig struct {
	User     string `env:"METRICS_USER"`
	Password string `env:"METRICS_PASSWORD"`
}

// AuthEnabled reports whether /metrics requires basic auth
func (c *MetricsConfig) AuthEnabled() bool {
	return c.User != "" && c.Password != ""
}

// WorkerConfig configures background jobs
type WorkerConfig struct {
	StatsInterval time.Duration `env:"STATS_INTERVAL" envDefault:"1m"`
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.Storage.Driver {
	case StoragePostgres:
		if cfg.Database.URL != "" {
			if _, err := pq.ParseURL(cfg.Database.URL); err != nil {
				return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
			}
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return ":" + c.Port
}

// DSN returns the PostgreSQL connection string. DATABASE_URL is used as is;
// otherwise the DB_* pieces are escaped into a postgres:// URL.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Addr returns the Redis address
func (c *RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
