package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// Config holds all server configuration, populated from the
// environment
type Config struct {
	// Addr is the HTTP listen address
	Addr string `env:"LEVELTRACK_ADDR" envDefault:":8080"`

	// StorageType selects the storage backend: memory, redis or
	// postgres
	StorageType string `env:"LEVELTRACK_STORAGE" envDefault:"memory"`

	// PostgresDSN is required when StorageType is postgres
	PostgresDSN string `env:"LEVELTRACK_POSTGRES_DSN"`

	// RedisURL is required when StorageType is redis
	RedisURL string `env:"LEVELTRACK_REDIS_URL"`

	// ExportDir is where snapshot artifacts are written
	ExportDir string `env:"LEVELTRACK_EXPORT_DIR" envDefault:"."`

	// ShutdownTimeout bounds graceful shutdown, including the drain
	// of in-flight background exports
	ShutdownTimeout time.Duration `env:"LEVELTRACK_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load parses configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
