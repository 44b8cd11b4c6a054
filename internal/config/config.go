package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Dashboard DashboardConfig
	LogLevel  string
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	LogLevel     string
}

// RedisConfig holds the optional cache backend. An empty Addr disables caching.
type RedisConfig struct {
	Addr string
}

// AuthConfig carries the JWT verification settings.
type AuthConfig struct {
	JWTSecret   string
	JWTAudience string
}

// DashboardConfig tunes the aggregation endpoint.
type DashboardConfig struct {
	CacheTTL     time.Duration
	WarmSchedule string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// missing .env is fine, the process environment still applies
		_ = godotenv.Load()
	}

	shutdown, err := getenvDuration("SHUTDOWN_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getenvDuration("DASHBOARD_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, err
	}
	maxOpen, err := getenvInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	maxIdle, err := getenvInt("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:            getenvWithDefault("APP_ADDR", ":8080"),
			ShutdownTimeout: shutdown,
		},
		Database: DatabaseConfig{
			DSN:          getenvWithDefault("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=farms port=5432 sslmode=disable"),
			MaxOpenConns: maxOpen,
			MaxIdleConns: maxIdle,
			LogLevel:     getenvWithDefault("DB_LOG_LEVEL", "warn"),
		},
		Redis: RedisConfig{
			Addr: os.Getenv("REDIS_ADDR"),
		},
		Auth: AuthConfig{
			JWTSecret:   os.Getenv("JWT_SECRET"),
			JWTAudience: os.Getenv("JWT_AUDIENCE"),
		},
		Dashboard: DashboardConfig{
			CacheTTL:     cacheTTL,
			WarmSchedule: getenvWithDefault("DASHBOARD_WARM_SCHEDULE", "*/5 * * * *"),
		},
		LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	switch {
	case c.Server.Addr == "":
		return errors.New("APP_ADDR must not be empty")
	case c.Database.DSN == "":
		return errors.New("DATABASE_DSN must be provided")
	case strings.TrimSpace(c.Auth.JWTSecret) == "":
		return errors.New("JWT_SECRET must be provided")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Dashboard.CacheTTL < 0 {
		return errors.New("DASHBOARD_CACHE_TTL must not be negative")
	}
	if c.Database.MaxOpenConns <= 0 {
		return errors.New("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return errors.New("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return d, nil
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return n, nil
}
