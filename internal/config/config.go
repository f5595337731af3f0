package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"` // development, staging, production

	// DatabaseURL overrides the individual DB_* settings when set
	DatabaseURL        string        `envconfig:"DATABASE_URL"`
	DBHost             string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort             int           `envconfig:"DB_PORT" default:"5432"`
	DBUser             string        `envconfig:"DB_USER"`
	DBPassword         string        `envconfig:"DB_PASSWORD"`
	DBName             string        `envconfig:"DB_NAME"`
	DBSSLMode          string        `envconfig:"DB_SSLMODE" default:"disable"`
	DBConnectTimeout   time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
	DBStatementTimeout time.Duration `envconfig:"DB_STATEMENT_TIMEOUT" default:"10s"`
	DBMaxOpenConns     int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns     int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	DBConnMaxLifetime  time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`

	AllowedOrigins    string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat         string `envconfig:"LOG_FORMAT" default:"json"`
	OpenAPIValidation bool   `envconfig:"OPENAPI_VALIDATION" default:"false"`
}

// Load loads configuration from a .env file (if any) and the environment, then validates it
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration for correctness and fills development defaults
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a number between 1 and 65535 (got %q)", c.Port)
	}

	if c.DatabaseURL != "" {
		if _, err := url.Parse(c.DatabaseURL); err != nil {
			return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
		}
		return nil
	}

	if c.DBPort < 1 || c.DBPort > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535 (got %d)", c.DBPort)
	}

	if c.IsProduction() {
		var missing []error
		if c.DBUser == "" {
			missing = append(missing, errors.New("DB_USER must be set in production"))
		}
		if c.DBPassword == "" {
			missing = append(missing, errors.New("DB_PASSWORD must be set in production"))
		}
		if c.DBName == "" {
			missing = append(missing, errors.New("DB_NAME must be set in production"))
		}
		if c.DBSSLMode == "disable" {
			missing = append(missing, errors.New("DB_SSLMODE must not be disable in production"))
		}
		return errors.Join(missing...)
	}

	// Development/staging: provide local defaults if not set
	if c.DBUser == "" {
		c.DBUser = "postgres"
	}
	if c.DBPassword == "" {
		c.DBPassword = "postgres"
	}
	if c.DBName == "" {
		c.DBName = "messages"
		slog.Info("using default database settings for development")
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:   "/" + c.DBName,
	}
	if c.DBUser != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	}

	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)
	if c.DBConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(c.DBConnectTimeout.Seconds())))
	}
	if c.DBStatementTimeout > 0 {
		// lib/pq forwards unknown keys to the server as run-time parameters
		q.Set("statement_timeout", strconv.FormatInt(c.DBStatementTimeout.Milliseconds(), 10))
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Pool returns the connection pool settings
func (c *Config) Pool() PoolSettings {
	return PoolSettings{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	}
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
