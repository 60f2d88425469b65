// Command hiring-pipeline serves the round progression API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/target/hiring-pipeline/config"
	"github.com/target/hiring-pipeline/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // process entrypoint
	}
	logger := bootstrap.InitLogger(cfg)
	if err := run(ctx, &cfg, logger); err != nil {
		logger.ErrorContext(ctx, "hiring-pipeline stopped", "error", err)
		os.Exit(1) //nolint:forbidigo // process entrypoint
	}
}

// infra holds the connections shared by every service. Redis is nil when nothing needs it.
type infra struct {
	db    *sql.DB
	redis redis.UniversalClient
}

func (i infra) Close() error {
	var errs []error
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

func run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	logger.InfoContext(ctx, "starting hiring-pipeline",
		"database", cfg.Postgres.String(),
		"http_addr", cfg.HTTP.Addr,
		"event_sinks", cfg.Events.Sinks,
		"cache_enabled", cfg.Cache.Enabled,
	)

	deps, err := connect(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.ErrorContext(ctx, "release connections", "error", err)
		}
	}()

	if cfg.Postgres.RunMigrationsOnStart {
		if err := bootstrap.RunMigrations(ctx, deps.db, logger); err != nil {
			return err
		}
	} else {
		logger.InfoContext(ctx, "startup migrations disabled")
	}

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:      cfg,
		DB:          deps.db,
		RedisClient: deps.redis,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}

	return bootstrap.RunServicesWithShutdown(&bootstrap.ServiceOrchestrationConfig{
		Config:   cfg,
		Services: services,
		Logger:   logger,
	})
}

// connect dials Postgres, and Redis when the catalog cache or the redis event sink is on.
func connect(cfg *config.AppConfig, logger *slog.Logger) (infra, error) {
	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{DBConfig: cfg.Postgres, Logger: logger})
	if err != nil {
		return infra{}, fmt.Errorf("connect db: %w", err)
	}
	deps := infra{db: db}

	if !cfg.Cache.Enabled && !cfg.Events.Enabled(config.EventSinkRedis) {
		return deps, nil
	}

	deps.redis, err = bootstrap.ConnectRedis(bootstrap.DatabaseConfig{RedisConfig: cfg.Redis, Logger: logger})
	if err != nil {
		return infra{}, errors.Join(fmt.Errorf("connect redis: %w", err), deps.Close())
	}
	return deps, nil
}
