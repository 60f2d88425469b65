package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/hiring-pipeline/internal/core"
	"github.com/target/hiring-pipeline/internal/domain/model"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
)

// catalogInvalidator drops cached catalog entries after a write.
type catalogInvalidator interface {
	InvalidateJob(ctx context.Context, id string) error
	InvalidateQuestion(ctx context.Context, id string) error
	InvalidateAssessment(ctx context.Context, id string) error
}

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	Repos       core.CatalogRepos  // Required
	Invalidator catalogInvalidator // Optional: typically *core.CatalogCache
	// Applications lets PutJob refuse round changes that would strand live applications.
	// Optional: without it such changes are only logged.
	Applications core.ApplicationLister
	Logger       *slog.Logger // Optional
}

// CatalogService manages jobs, questions and assessments.
type CatalogService struct {
	repos       core.CatalogRepos
	invalidator catalogInvalidator
	apps        core.ApplicationLister
	logger      *slog.Logger
	now         func() time.Time
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(opts CatalogServiceOptions) *CatalogService {
	if opts.Repos.Jobs == nil || opts.Repos.Questions == nil || opts.Repos.Assessments == nil {
		panic("catalog repositories are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		repos:       opts.Repos,
		invalidator: opts.Invalidator,
		apps:        opts.Applications,
		logger:      logger.With("component", "catalog_service"),
		now:         time.Now,
	}
}

// PutJob creates or replaces a job and its round catalog.
//
// Rounds may always be appended. Moving, inserting or removing rounds of a job that already has
// applications is a Conflict, since those applications hold positions into the old order.
func (s *CatalogService) PutJob(ctx context.Context, job *model.Job) (*model.Job, error) {
	if job == nil {
		return nil, apperrors.Validation("job is required")
	}
	if err := job.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job")
	}

	prev, err := s.repos.Jobs.GetByID(ctx, job.ID)
	switch {
	case err == nil:
		job.CreatedAt = prev.CreatedAt
		if !job.Rounds.Extends(prev.Rounds.Order()) {
			if err := s.checkReorderAllowed(ctx, job.ID); err != nil {
				return nil, err
			}
			s.logger.WarnContext(ctx, "job round order changed",
				"job_id", job.ID, "previous", prev.Rounds.Order(), "current", job.Rounds.Order())
		}
	case apperrors.IsNotFound(err):
		job.CreatedAt = s.now().UTC()
	default:
		return nil, fmt.Errorf("get job: %w", err)
	}
	job.UpdatedAt = s.now().UTC()

	if err := s.repos.Jobs.Upsert(ctx, job); err != nil {
		return nil, fmt.Errorf("upsert job: %w", err)
	}
	s.invalidate(ctx, "job", job.ID, func(inv catalogInvalidator) error { return inv.InvalidateJob(ctx, job.ID) })
	s.logger.InfoContext(ctx, "job saved", "job_id", job.ID, "rounds", job.Rounds.Len())
	return job, nil
}

func (s *CatalogService) checkReorderAllowed(ctx context.Context, jobID string) error {
	if s.apps == nil {
		return nil
	}
	opts := model.ApplicationListOptions{JobID: jobID, Limit: 1}
	opts.Normalize()
	page, err := s.apps.List(ctx, opts)
	if err != nil {
		return fmt.Errorf("count applications for job %s: %w", jobID, err)
	}
	if page.Total > 0 {
		return apperrors.Conflictf("job %s has %d applications; rounds may only be appended", jobID, page.Total)
	}
	return nil
}

// GetJob returns the stored job.
func (s *CatalogService) GetJob(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.repos.Jobs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// PutQuestion creates or replaces a question bank entry.
func (s *CatalogService) PutQuestion(ctx context.Context, q *model.Question) (*model.Question, error) {
	if q == nil {
		return nil, apperrors.Validation("question is required")
	}
	if err := q.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid question")
	}
	if err := s.repos.Questions.Upsert(ctx, q); err != nil {
		return nil, fmt.Errorf("upsert question: %w", err)
	}
	s.invalidate(ctx, "question", q.ID, func(inv catalogInvalidator) error { return inv.InvalidateQuestion(ctx, q.ID) })
	s.logger.DebugContext(ctx, "question saved", "question_id", q.ID, "type", q.Type)
	return q, nil
}

// PutAssessment creates or replaces an assessment.
func (s *CatalogService) PutAssessment(ctx context.Context, a *model.Assessment) (*model.Assessment, error) {
	if a == nil {
		return nil, apperrors.Validation("assessment is required")
	}
	if err := a.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid assessment")
	}
	if err := s.repos.Assessments.Upsert(ctx, a); err != nil {
		return nil, fmt.Errorf("upsert assessment: %w", err)
	}
	s.invalidate(ctx, "assessment", a.ID, func(inv catalogInvalidator) error { return inv.InvalidateAssessment(ctx, a.ID) })
	s.logger.DebugContext(ctx, "assessment saved", "assessment_id", a.ID, "questions", len(a.QuestionIDs))
	return a, nil
}

// invalidate is best-effort; stale entries expire with their TTL.
func (s *CatalogService) invalidate(ctx context.Context, kind, id string, fn func(catalogInvalidator) error) {
	if s.invalidator == nil {
		return
	}
	if err := fn(s.invalidator); err != nil {
		s.logger.WarnContext(ctx, "catalog cache invalidation failed", "kind", kind, "id", id, "error", err)
	}
}
