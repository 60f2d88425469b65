package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/redis/go-redis/v9"
	"github.com/target/hiring-pipeline/config"
	"github.com/target/hiring-pipeline/internal/migrate"
)

const (
	connectTimeout     = 5 * time.Second
	defaultMaxOpenConn = 20
)

// DatabaseConfig contains configuration for database connections.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

// ConnectDB opens the Postgres pool and pings it. The pool is closed again when the ping fails.
func ConnectDB(cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DBConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	tunePool(db, cfg.DBConfig.MaxOpenConns)

	if err := pingWithTimeout(db.PingContext); err != nil {
		return nil, closeAfter(fmt.Errorf("ping database %s: %w", cfg.DBConfig, err), db.Close)
	}

	logInfo(cfg.Logger, "database connected", "dsn", cfg.DBConfig.String())
	return db, nil
}

func tunePool(db *sql.DB, maxOpen int) {
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConn
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(max(1, maxOpen/4))
	db.SetConnMaxLifetime(5 * time.Minute)
}

// ConnectRedis builds a direct, sentinel or cluster client from cfg and pings it.
//
//nolint:ireturn // the concrete client type depends on configuration.
func ConnectRedis(cfg DatabaseConfig) (redis.UniversalClient, error) {
	opts, mode, err := redisOptions(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}

	var client redis.UniversalClient
	if mode == "cluster" {
		client = redis.NewClusterClient(opts.Cluster())
	} else {
		client = redis.NewUniversalClient(opts)
	}

	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err := pingWithTimeout(ping); err != nil {
		return nil, closeAfter(fmt.Errorf("ping redis: %w", err), client.Close)
	}

	logInfo(cfg.Logger, "redis connected", "mode", mode, "addrs", strings.Join(opts.Addrs, ","))
	return client, nil
}

// redisOptions translates config into universal options. The mode is "direct", "sentinel" or "cluster".
// Credentials embedded in a redis:// URI override the plain password fields.
func redisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	opts := &redis.UniversalOptions{Password: cfg.Password, DB: cfg.DB}

	switch {
	case cfg.UseCluster:
		opts.Addrs = compact(cfg.ClusterNodes)
		if len(opts.Addrs) == 0 && strings.TrimSpace(cfg.URI) != "" {
			if err := applyURI(opts, cfg.URI); err != nil {
				return nil, "", err
			}
		}
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("redis cluster configuration requires at least one address")
		}
		// Cluster mode has no logical databases.
		opts.DB = 0
		return opts, "cluster", nil

	case cfg.UseSentinel:
		opts.Addrs = compact(cfg.SentinelNodes)
		if len(opts.Addrs) == 0 {
			return nil, "", errors.New("redis sentinel configuration requires at least one sentinel node")
		}
		opts.MasterName = cfg.SentinelMasterName
		opts.SentinelPassword = cfg.SentinelPassword
		return opts, "sentinel", nil

	default:
		if strings.TrimSpace(cfg.URI) == "" {
			return nil, "", errors.New("redis direct configuration requires a URI")
		}
		if err := applyURI(opts, cfg.URI); err != nil {
			return nil, "", err
		}
		return opts, "direct", nil
	}
}

// applyURI accepts either a bare host:port or a redis:// / rediss:// URL.
func applyURI(opts *redis.UniversalOptions, raw string) error {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "redis://") && !strings.HasPrefix(raw, "rediss://") {
		opts.Addrs = []string{raw}
		return nil
	}
	parsed, err := redis.ParseURL(raw)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	opts.Addrs = []string{parsed.Addr}
	opts.Username = parsed.Username
	if parsed.Password != "" {
		opts.Password = parsed.Password
	}
	opts.DB = parsed.DB
	opts.TLSConfig = parsed.TLSConfig
	return nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func pingWithTimeout(ping func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return ping(ctx)
}

// closeAfter releases a half-open connection and joins any close failure onto err.
func closeAfter(err error, closeFn func() error) error {
	if closeErr := closeFn(); closeErr != nil {
		return errors.Join(err, fmt.Errorf("close connection: %w", closeErr))
	}
	return err
}

func logInfo(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// RunMigrations applies pending schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	applied, err := migrate.New(db, logger).Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed", "applied", len(applied))
	}
	return nil
}
