package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/hiring-pipeline/config"
	amqpsink "github.com/target/hiring-pipeline/internal/adapters/amqp"
	redissink "github.com/target/hiring-pipeline/internal/adapters/redis"
	"github.com/target/hiring-pipeline/internal/core"
	"github.com/target/hiring-pipeline/internal/data"
	"github.com/target/hiring-pipeline/internal/domain/model"
	httpx "github.com/target/hiring-pipeline/internal/http"
	"github.com/target/hiring-pipeline/internal/observability/notify"
	"github.com/target/hiring-pipeline/internal/observability/notify/slack"
	"github.com/target/hiring-pipeline/internal/observability/statsd"
	"github.com/target/hiring-pipeline/internal/service"
	"github.com/target/hiring-pipeline/internal/service/eventnotifier"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Progression   *service.ProgressionService
	Catalog       *service.CatalogService
	CatalogCache  *core.CatalogCache
	Events        *eventnotifier.Service
	Observability ObservabilityContainer
	// HealthChecks back the readiness endpoint.
	HealthChecks []httpx.HealthCheck

	closers []namedCloser
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.MetricsConfig
}

type namedCloser struct {
	name  string
	close func() error
}

// Close releases sink connections and the metrics socket.
func (c *ServiceContainer) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.closers[i].name, err))
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient // Optional: disables the catalog cache and the redis sink when nil
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Jobs         *data.JobRepo
	Questions    *data.QuestionRepo
	Assessments  *data.AssessmentRepo
	Applications *data.ApplicationRepo
	Cache        *data.RedisCacheRepo
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, rdb redis.UniversalClient, cacheCfg config.CacheConfig) *serviceRepositories {
	repos := &serviceRepositories{
		Jobs:         data.NewJobRepo(db),
		Questions:    data.NewQuestionRepo(db),
		Assessments:  data.NewAssessmentRepo(db),
		Applications: data.NewApplicationRepo(db),
	}
	if rdb != nil && cacheCfg.Enabled {
		repos.Cache = data.NewRedisCacheRepoWithPrefix(rdb, cacheCfg.KeyPrefix)
	}
	return repos
}

func (r *serviceRepositories) catalogRepos() core.CatalogRepos {
	return core.CatalogRepos{Jobs: r.Jobs, Questions: r.Questions, Assessments: r.Assessments}
}

// buildObservability configures the metrics adapter.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	out := ObservabilityContainer{MetricsConfig: cfg.Metrics}
	if !cfg.Metrics.IsEnabled() {
		return out
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return out
	}
	out.MetricsSink = client
	return out
}

// eventSinkDeps groups what buildEventSinks needs to construct each configured sink.
type eventSinkDeps struct {
	cfg    config.EventsConfig
	redis  redis.UniversalClient
	logger *slog.Logger
}

// buildEventSinks constructs the configured sinks. A sink that cannot be built is logged and skipped
// so that event delivery never blocks startup.
func buildEventSinks(deps eventSinkDeps) ([]eventnotifier.SinkRegistration, []namedCloser) {
	var (
		sinks   []eventnotifier.SinkRegistration
		closers []namedCloser
	)
	for _, name := range deps.cfg.Sinks {
		switch config.EventSink(name) {
		case config.EventSinkLog:
			sinks = append(sinks, eventnotifier.SinkRegistration{
				Name: name,
				Sink: notify.LogSink{Logger: deps.logger.With("component", "event_log")},
			})
		case config.EventSinkRedis:
			if deps.redis == nil {
				deps.logger.Warn("redis event sink configured without a redis client; skipping")
				continue
			}
			sinks = append(sinks, eventnotifier.SinkRegistration{
				Name: name,
				Sink: redissink.NewStreamSink(deps.redis, redissink.StreamSinkOptions{
					Stream: deps.cfg.RedisStream,
					MaxLen: deps.cfg.RedisStreamMax,
				}),
			})
		case config.EventSinkAMQP:
			pub, err := amqpsink.Dial(amqpsink.Config{
				URL:    deps.cfg.AMQPURL,
				Queue:  deps.cfg.AMQPQueue,
				Logger: deps.logger,
			})
			if err != nil {
				deps.logger.Error("failed to initialise amqp event sink", "error", err)
				continue
			}
			sinks = append(sinks, eventnotifier.SinkRegistration{Name: name, Sink: pub})
			closers = append(closers, namedCloser{name: "amqp publisher", close: pub.Close})
		case config.EventSinkSlack:
			client, err := slack.NewClient(slack.Config{
				WebhookURL:           deps.cfg.Slack.WebhookURL,
				Channel:              deps.cfg.Slack.Channel,
				Username:             deps.cfg.Slack.Username,
				Timeout:              deps.cfg.Timeout,
				RetryLimit:           deps.cfg.Slack.RetryLimit,
				ApplicationURLPrefix: deps.cfg.Slack.ApplicationURLPrefix,
				Kinds:                eventKinds(deps.cfg.Slack.Kinds),
			})
			if err != nil {
				deps.logger.Error("failed to initialise slack event sink", "error", err)
				continue
			}
			sinks = append(sinks, eventnotifier.SinkRegistration{Name: name, Sink: client})
		}
	}
	return sinks, closers
}

func eventKinds(raw []string) []model.EventKind {
	if len(raw) == 0 {
		return nil
	}
	out := make([]model.EventKind, 0, len(raw))
	for _, k := range raw {
		out = append(out, model.EventKind(k))
	}
	return out
}

// NewServices builds repositories, the catalog cache, event sinks and the domain services.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service dependencies and config are required")
	}
	if deps.DB == nil {
		return nil, errors.New("database is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	container := &ServiceContainer{}
	container.Observability = buildObservability(logger, cfg.Observability)
	if container.Observability.MetricsSink != nil {
		container.closers = append(container.closers, namedCloser{name: "statsd", close: container.Observability.MetricsSink.Close})
	}

	repos := buildRepositories(deps.DB, deps.RedisClient, cfg.Cache)
	cacheCfg := core.CatalogCacheConfig{
		JobTTL:      cfg.Cache.JobTTL,
		QuestionTTL: cfg.Cache.QuestionTTL,
		Parallelism: cfg.Cache.Parallelism,
		LoadTimeout: cfg.Cache.LoadTimeout,
	}
	if repos.Cache != nil {
		cacheCfg.Repo = repos.Cache
	}
	container.CatalogCache = core.NewCatalogCache(core.CatalogCacheOptions{
		Repos:  repos.catalogRepos(),
		Cache:  cacheCfg,
		Logger: logger,
	})

	sinks, closers := buildEventSinks(eventSinkDeps{cfg: cfg.Events, redis: deps.RedisClient, logger: logger})
	container.closers = append(container.closers, closers...)
	container.Events = eventnotifier.NewService(eventnotifier.Options{
		Logger:  logger,
		Sinks:   sinks,
		Timeout: cfg.Events.Timeout,
	})

	progressionCfg := service.ProgressionConfig{
		MaxSaveRetries:    cfg.Engine.MaxSaveRetries,
		DependencyTimeout: cfg.Engine.DependencyTimeout,
		ScheduleDueOffset: cfg.Engine.ScheduleDueOffset,
	}
	if container.Observability.MetricsSink != nil {
		progressionCfg.Metrics = container.Observability.MetricsSink
	}
	container.Progression = service.NewProgressionService(service.ProgressionServiceOptions{
		Stores: service.ProgressionStores{
			Catalog:      container.CatalogCache,
			Applications: repos.Applications,
			Events:       container.Events,
		},
		Config: progressionCfg,
		Logger: logger,
	})
	container.Catalog = service.NewCatalogService(service.CatalogServiceOptions{
		Repos:        repos.catalogRepos(),
		Invalidator:  container.CatalogCache,
		Applications: repos.Applications,
		Logger:       logger,
	})

	container.HealthChecks = []httpx.HealthCheck{{Name: "postgres", Check: deps.DB.PingContext}}
	if repos.Cache != nil {
		container.HealthChecks = append(container.HealthChecks, httpx.HealthCheck{Name: "redis", Check: repos.Cache.Health})
	}

	logger.Info("services initialised",
		"event_sinks", len(sinks),
		"catalog_cache", repos.Cache != nil,
		"metrics", container.Observability.MetricsSink != nil,
	)
	return container, nil
}

// ServiceOrchestrationConfig holds what RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts the HTTP server and blocks until a shutdown signal or a server failure.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("service orchestration config is incomplete")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return runUntilStopped(runConfig{
		server: NewHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		}),
		services:        cfg.Services,
		shutdownTimeout: cfg.Config.HTTP.ShutdownTimeout,
		stop:            quit,
		logger:          logger,
	})
}

type runConfig struct {
	server          *http.Server
	services        *ServiceContainer
	shutdownTimeout time.Duration
	stop            <-chan os.Signal
	logger          *slog.Logger
}

// runUntilStopped serves until stop fires or the server fails, then shuts down and releases sinks.
func runUntilStopped(cfg runConfig) error {
	errCh := make(chan error, 1)
	go func() {
		cfg.logger.Info("starting HTTP server", "addr", cfg.server.Addr)
		if err := cfg.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-cfg.stop:
		cfg.logger.Info("shutting down services...")
	case err, ok := <-errCh:
		if ok {
			cfg.logger.Error("HTTP server failed", "error", err)
			runErr = err
		}
	}

	if err := ShutdownHTTPServer(ShutdownConfig{
		Context: context.Background(),
		Server:  cfg.server,
		Timeout: cfg.shutdownTimeout,
		Logger:  cfg.logger,
	}); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("shutdown http server: %w", err))
	}
	if cfg.services != nil {
		if err := cfg.services.Close(); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}
	return runErr
}
