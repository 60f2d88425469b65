// Package core defines the ports of the hiring pipeline and the catalog read model shared by services.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/hiring-pipeline/internal/domain/model"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// CacheRepository defines the interface for caching operations.
// This follows the hexagonal architecture pattern where the core defines interfaces
// and the data layer provides implementations.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// CatalogRepos groups the catalog repositories behind the cache.
type CatalogRepos struct {
	Jobs        JobRepository
	Questions   QuestionRepository
	Assessments AssessmentRepository
}

// CatalogCacheConfig holds configuration for catalog caching.
type CatalogCacheConfig struct {
	// Repo is optional; without it every read goes to the repositories.
	Repo CacheRepository
	// JobTTL bounds how long a cached job (and its round order) may be served.
	JobTTL      time.Duration
	QuestionTTL time.Duration
	// Parallelism caps concurrent question lookups per call.
	Parallelism int
	// LoadTimeout bounds a repository load shared by concurrent callers of one key.
	LoadTimeout time.Duration
}

// CatalogCacheOptions bundles dependencies for NewCatalogCache.
type CatalogCacheOptions struct {
	Repos  CatalogRepos
	Cache  CatalogCacheConfig
	Logger *slog.Logger
}

// DefaultCatalogCacheConfig returns a CatalogCacheConfig with sensible defaults.
func DefaultCatalogCacheConfig() CatalogCacheConfig {
	return CatalogCacheConfig{
		JobTTL:      time.Minute,
		QuestionTTL: 10 * time.Minute,
		Parallelism: 8,
		LoadTimeout: 5 * time.Second,
	}
}

// CatalogCache is a read-through cache over jobs, questions and assessments.
// Cache failures are logged and fall back to the repositories; repository failures are returned.
type CatalogCache struct {
	repos  CatalogRepos
	cfg    CatalogCacheConfig
	logger *slog.Logger
	group  singleflight.Group
}

var _ CatalogReader = (*CatalogCache)(nil)

// NewCatalogCache creates a CatalogCache.
func NewCatalogCache(opts CatalogCacheOptions) *CatalogCache {
	if opts.Repos.Jobs == nil || opts.Repos.Questions == nil || opts.Repos.Assessments == nil {
		panic("catalog repositories are required")
	}
	cfg := opts.Cache
	def := DefaultCatalogCacheConfig()
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = def.JobTTL
	}
	if cfg.QuestionTTL <= 0 {
		cfg.QuestionTTL = def.QuestionTTL
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = def.Parallelism
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = def.LoadTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogCache{
		repos:  opts.Repos,
		cfg:    cfg,
		logger: logger.With("component", "catalog_cache"),
	}
}

// GetJob returns the job with its round catalog.
func (c *CatalogCache) GetJob(ctx context.Context, id string) (*model.Job, error) {
	return readThrough(ctx, c, jobKey(id), c.cfg.JobTTL, func(ctx context.Context) (*model.Job, error) {
		return c.repos.Jobs.GetByID(ctx, id)
	})
}

// GetAssessment returns the assessment by id.
func (c *CatalogCache) GetAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	return readThrough(ctx, c, assessmentKey(id), c.cfg.QuestionTTL, func(ctx context.Context) (*model.Assessment, error) {
		return c.repos.Assessments.GetByID(ctx, id)
	})
}

// GetQuestions loads ids concurrently. The first failing lookup cancels the rest.
func (c *CatalogCache) GetQuestions(ctx context.Context, ids []string) (map[string]model.Question, error) {
	results := make([]*model.Question, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Parallelism)
	for i, id := range ids {
		g.Go(func() error {
			q, err := readThrough(gctx, c, questionKey(id), c.cfg.QuestionTTL, func(ctx context.Context) (*model.Question, error) {
				return c.repos.Questions.GetByID(ctx, id)
			})
			if err != nil {
				return fmt.Errorf("question %s: %w", id, err)
			}
			if q == nil {
				return apperrors.NotFoundf("question %s not found", id)
			}
			results[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]model.Question, len(results))
	for _, q := range results {
		out[q.ID] = *q
	}
	return out, nil
}

// InvalidateJob drops the cached job.
func (c *CatalogCache) InvalidateJob(ctx context.Context, id string) error {
	return c.invalidate(ctx, jobKey(id))
}

// InvalidateQuestion drops the cached question.
func (c *CatalogCache) InvalidateQuestion(ctx context.Context, id string) error {
	return c.invalidate(ctx, questionKey(id))
}

// InvalidateAssessment drops the cached assessment.
func (c *CatalogCache) InvalidateAssessment(ctx context.Context, id string) error {
	return c.invalidate(ctx, assessmentKey(id))
}

func (c *CatalogCache) invalidate(ctx context.Context, key string) error {
	if c.cfg.Repo == nil {
		return nil
	}
	if _, err := c.cfg.Repo.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}

// readThrough serves key from the cache or loads it once per key across concurrent callers.
// The shared load runs detached from any single caller's context, bounded by LoadTimeout;
// each caller still gives up when its own ctx ends.
func readThrough[T any](
	ctx context.Context,
	c *CatalogCache,
	key string,
	ttl time.Duration,
	load func(context.Context) (*T, error),
) (*T, error) {
	if v, ok := cached[T](ctx, c, key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.LoadTimeout)
		defer cancel()
		loaded, err := load(lctx)
		if err != nil {
			return nil, err
		}
		c.store(lctx, key, loaded, ttl)
		return loaded, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	out, ok := res.Val.(*T)
	if !ok {
		return nil, fmt.Errorf("catalog cache: unexpected type %T for %s", res.Val, key)
	}
	return out, nil
}

func cached[T any](ctx context.Context, c *CatalogCache, key string) (*T, bool) {
	if c.cfg.Repo == nil {
		return nil, false
	}
	raw, err := c.cfg.Repo.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog cache get failed", "key", key, "error", err)
		return nil, false
	}
	if len(raw) == 0 {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.WarnContext(ctx, "catalog cache entry unreadable", "key", key, "error", err)
		return nil, false
	}
	return &v, true
}

func (c *CatalogCache) store(ctx context.Context, key string, v any, ttl time.Duration) {
	if c.cfg.Repo == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.WarnContext(ctx, "catalog cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.cfg.Repo.Set(ctx, key, raw, ttl); err != nil {
		c.logger.WarnContext(ctx, "catalog cache set failed", "key", key, "error", err)
	}
}

func jobKey(id string) string        { return "catalog:job:" + id }
func questionKey(id string) string   { return "catalog:question:" + id }
func assessmentKey(id string) string { return "catalog:assessment:" + id }
