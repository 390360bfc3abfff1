package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Remote story store; optional
	Store StoreConfig

	// Local durable slot used when no remote store is configured
	Local LocalConfig

	// Write-path API settings
	API APIConfig

	// Story change notifications; optional
	Events EventsConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// StoreConfig holds the remote Postgres store settings. The store is only
// used when both the endpoint and the credential are present.
type StoreConfig struct {
	URL            string        `env:"STORE_URL"`
	Key            string        `env:"STORE_KEY"`
	MaxOpenConns   int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns   int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MaxLifetime    time.Duration `env:"DB_MAX_LIFETIME" envDefault:"5m"`
	MigrationsPath string        `env:"MIGRATIONS_PATH" envDefault:"./migrations"`
}

// LocalConfig holds the local slot settings
type LocalConfig struct {
	Path string `env:"LOCAL_STORE_PATH" envDefault:"./data/stories.db"`
	Key  string `env:"LOCAL_STORE_KEY" envDefault:"exotics-weekly-stories"`
}

// APIConfig holds write-path settings
type APIConfig struct {
	Key            string        `env:"STORIES_API_KEY"`
	DefaultLimit   int           `env:"LIST_DEFAULT_LIMIT" envDefault:"50"`
	MaxImportSize  int64         `env:"MAX_IMPORT_SIZE" envDefault:"10485760"` // 10MB
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

// EventsConfig holds RabbitMQ publisher settings
type EventsConfig struct {
	URL        string `env:"RABBITMQ_URL"`
	Exchange   string `env:"RABBITMQ_EXCHANGE" envDefault:"stories"`
	Queue      string `env:"RABBITMQ_QUEUE" envDefault:"story-events"`
	RoutingKey string `env:"RABBITMQ_ROUTING_KEY" envDefault:"story.changed"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "pretty"
	Env    string `env:"ENV"`
}

// Load reads configuration from the environment, after merging an optional
// .env file. Variables already set take precedence over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.API.DefaultLimit <= 0 {
		return fmt.Errorf("LIST_DEFAULT_LIMIT must be positive")
	}
	if c.Store.URL != "" {
		u, err := url.Parse(c.Store.URL)
		if err != nil {
			return fmt.Errorf("STORE_URL is invalid: %w", err)
		}
		if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			return fmt.Errorf("STORE_URL must use the postgres scheme, got %q", u.Scheme)
		}
	}
	if !c.Store.Configured() && c.Local.Path == "" {
		return fmt.Errorf("LOCAL_STORE_PATH is required when no remote store is configured")
	}
	return nil
}

// Configured reports whether the remote store should be used
func (c *StoreConfig) Configured() bool {
	return c.URL != "" && c.Key != ""
}

// GetDSN returns the PostgreSQL connection string with the store key
// applied as the password
func (c *StoreConfig) GetDSN() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return c.URL
	}
	user := "postgres"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.Key)
	return u.String()
}

// Host returns the store host for logging, without credentials
func (c *StoreConfig) Host() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return ""
	}
	return u.Host
}
