package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"hiring"`
	Password string `env:"PASSWORD"                envDefault:"hiring"`
	Name     string `env:"NAME"                    envDefault:"hiring"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
	MaxOpenConns         int  `env:"MAX_OPEN_CONNS"          envDefault:"20"`
}

// DSN returns the pgx connection string.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// String returns the DSN with the password redacted, for logs.
func (c DBConfig) String() string {
	return fmt.Sprintf("postgres://%s@%s/%s?sslmode=%s",
		c.User, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Name, c.SSLMode)
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// CacheConfig contains catalog cache configuration (Redis-based).
type CacheConfig struct {
	// Enabled turns on the Redis catalog cache. Without it every read goes to Postgres.
	Enabled bool `env:"CACHE_ENABLED" envDefault:"true"`
	// KeyPrefix namespaces cache keys.
	KeyPrefix string `env:"CACHE_KEY_PREFIX" envDefault:"hiring:"`
	// JobTTL bounds how stale a cached round catalog may be.
	JobTTL      time.Duration `env:"CACHE_JOB_TTL"      envDefault:"1m"`
	QuestionTTL time.Duration `env:"CACHE_QUESTION_TTL" envDefault:"10m"`
	// Parallelism caps concurrent question lookups per evaluation.
	Parallelism int `env:"CACHE_PARALLELISM" envDefault:"8"`
	// LoadTimeout bounds a repository read shared by concurrent callers.
	LoadTimeout time.Duration `env:"CACHE_LOAD_TIMEOUT" envDefault:"5s"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	c.KeyPrefix = strings.TrimSpace(c.KeyPrefix)
	if c.JobTTL <= 0 {
		c.JobTTL = time.Minute
	}
	if c.QuestionTTL <= 0 {
		c.QuestionTTL = 10 * time.Minute
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 8
	}
	if c.Parallelism > 64 {
		c.Parallelism = 64
	}
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = 5 * time.Second
	}
}
