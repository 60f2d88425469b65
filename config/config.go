// Package config loads hiring-pipeline settings from the environment with caarlos0/env.
package config

import (
	"os"
	"slices"
	"strings"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// AppConfig composes the per-concern configs in this package. Each file documents its variables:
// database.go covers Postgres, Redis and the catalog cache; http.go the server; engine.go the
// progression tunables; events.go the outbound sinks; observability.go metrics.
type AppConfig struct {
	// IsDev switches to text logs. DEV=true, or APP_ENV=development|dev.
	IsDev bool `env:"DEV" envDefault:"false"`

	// LogLevel is debug, info, warn or error. Anything else becomes info.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
	Cache    CacheConfig

	HTTP          HTTPConfig
	Engine        EngineConfig
	Events        EventsConfig
	Observability ObservabilityConfig
}

// Sanitize clamps loaded values into their supported ranges. Call it once after parsing.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Cache.Sanitize()
	c.Engine.Sanitize()
	c.Events.Sanitize()
	c.Observability.Sanitize()

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if !slices.Contains(logLevels, c.LogLevel) {
		c.LogLevel = "info"
	}

	if !c.IsDev {
		switch strings.ToLower(os.Getenv("APP_ENV")) {
		case "development", "dev":
			c.IsDev = true
		}
	}
}
