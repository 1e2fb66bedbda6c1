// Package config loads the three environment variables this module
// reads directly (6. EXTERNAL INTERFACES): DATABASE_URL, DB_MAX_CONNECTIONS,
// and PORT. It parses and validates values only — selecting an
// EventStore backend or binding an HTTP listener is left to the caller.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the process-level configuration this module reads from the
// environment.
type Config struct {
	// DatabaseURL selects the persistent (Postgres) EventStore backend
	// when set; an empty value means the caller should use the
	// in-memory backend instead.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// DBMaxConnections bounds the Postgres connection pool.
	DBMaxConnections int `envconfig:"DB_MAX_CONNECTIONS" default:"10"`

	// Port is the HTTP listener port for any transport the caller binds.
	Port int `envconfig:"PORT" default:"3001"`
}

// UsePersistentStore reports whether DatabaseURL was set and the caller
// should construct the eventstore/postgres backend instead of
// eventstore/memory.
func (c Config) UsePersistentStore() bool {
	return c.DatabaseURL != ""
}

// Load reads a .env file if present (missing is not an error, matching
// the analytics-worker/migrate command pattern of tolerating no .env in
// production) and then parses Config from the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DBMaxConnections <= 0 {
		return nil, fmt.Errorf("DB_MAX_CONNECTIONS must be positive, got %d", cfg.DBMaxConnections)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	return &cfg, nil
}
