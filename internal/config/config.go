package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting of the server, read from the environment.
type Config struct {
	Addr        string `env:"CACHESTORE_ADDR"         envDefault:":8008"`
	DBPath      string `env:"CACHESTORE_DB_PATH"      envDefault:"cachestore.db"`
	DBLogLevel  string `env:"CACHESTORE_DB_LOG_LEVEL" envDefault:"warn"`
	LocalPrefix string `env:"CACHESTORE_LOCAL_PREFIX" envDefault:"__local_"`

	AdminUser     string `env:"CACHESTORE_ADMIN_USER"     envDefault:"admin"`
	AdminPassword string `env:"CACHESTORE_ADMIN_PASSWORD" envDefault:"admin"`

	JWT JWT

	OTelEndpoint string `env:"CACHESTORE_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"CACHESTORE_OTEL_ENABLED" envDefault:"true"`
}

// JWT configures token issuing for the admin API.
type JWT struct {
	Secret   string        `env:"JWT_SECRET"   envDefault:"development-insecure-secret-change-me"`
	Issuer   string        `env:"JWT_ISSUER"   envDefault:"cachestore"`
	Audience string        `env:"JWT_AUDIENCE" envDefault:"cachestore-clients"`
	TTL      time.Duration `env:"JWT_TTL"      envDefault:"24h"`
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
