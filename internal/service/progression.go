package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/hiring-pipeline/internal/core"
	"github.com/target/hiring-pipeline/internal/domain/model"
	"github.com/target/hiring-pipeline/internal/domain/pipeline"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
	"github.com/target/hiring-pipeline/internal/observability/metrics"
	"github.com/target/hiring-pipeline/internal/observability/statsd"
)

// Defaults applied when ProgressionConfig leaves a field at zero.
const (
	DefaultMaxSaveRetries    = 3
	DefaultDependencyTimeout = 5 * time.Second
)

// ProgressionStores groups the ports the progression service reads and writes.
type ProgressionStores struct {
	Catalog      core.CatalogReader         // Required
	Applications core.ApplicationRepository // Required
	Events       core.EventEmitter          // Optional
}

// ProgressionConfig holds tunables and ambient collaborators.
type ProgressionConfig struct {
	// MaxSaveRetries is how many times a lost optimistic write is re-read and recomputed.
	MaxSaveRetries int
	// DependencyTimeout bounds catalog reads made while evaluating a submission.
	DependencyTimeout time.Duration
	// ScheduleDueOffset is the window given to a newly scheduled round.
	ScheduleDueOffset time.Duration
	Clock             core.Clock  // Optional, defaults to wall clock
	Metrics           statsd.Sink // Optional
}

// ProgressionServiceOptions groups dependencies for ProgressionService.
type ProgressionServiceOptions struct {
	Stores ProgressionStores
	Config ProgressionConfig
	Logger *slog.Logger
}

// ProgressionService runs submissions through the round progression engine and persists the
// resulting application with compare-and-swap semantics.
type ProgressionService struct {
	catalog core.CatalogReader
	apps    core.ApplicationRepository
	events  core.EventEmitter
	engine  *pipeline.Engine
	clock   core.Clock
	metrics statsd.Sink
	logger  *slog.Logger

	maxRetries int
	depTimeout time.Duration
}

// SubmissionResult is returned by the submission entrypoints.
type SubmissionResult struct {
	Application model.Application `json:"application"`
	// Result is the round result recorded (or found) for the submitted round.
	// It is nil when the application was created without an initial screening.
	Result *model.RoundResult `json:"result,omitempty"`
	// Duplicate is true when the round had already been recorded and nothing was written.
	Duplicate bool `json:"duplicate"`
	// Scheduled is the schedule created for the next round, if any.
	Scheduled *model.Schedule `json:"scheduled,omitempty"`
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// NewProgressionService constructs a ProgressionService.
func NewProgressionService(opts ProgressionServiceOptions) *ProgressionService {
	if opts.Stores.Catalog == nil {
		panic("CatalogReader is required")
	}
	if opts.Stores.Applications == nil {
		panic("ApplicationRepository is required")
	}

	cfg := opts.Config
	if cfg.MaxSaveRetries <= 0 {
		cfg.MaxSaveRetries = DefaultMaxSaveRetries
	}
	if cfg.DependencyTimeout <= 0 {
		cfg.DependencyTimeout = DefaultDependencyTimeout
	}
	var clock core.Clock = wallClock{}
	if cfg.Clock != nil {
		clock = cfg.Clock
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ProgressionService{
		catalog:    opts.Stores.Catalog,
		apps:       opts.Stores.Applications,
		events:     opts.Stores.Events,
		engine:     pipeline.NewEngine(pipeline.NewScheduleGenerator(cfg.ScheduleDueOffset)),
		clock:      clock,
		metrics:    cfg.Metrics,
		logger:     logger.With("component", "progression_service"),
		maxRetries: cfg.MaxSaveRetries,
		depTimeout: cfg.DependencyTimeout,
	}
}

// GetApplication returns the current application for (jobID, candidateID).
func (s *ProgressionService) GetApplication(ctx context.Context, jobID, candidateID string) (*model.Application, error) {
	if jobID == "" {
		return nil, apperrors.ValidationField("job_id", "job_id is required")
	}
	if candidateID == "" {
		return nil, apperrors.ValidationField("candidate_id", "candidate_id is required")
	}
	app, err := s.apps.Get(ctx, jobID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// ListApplications pages through a job's applications. Stores that cannot list return an empty page.
func (s *ProgressionService) ListApplications(
	ctx context.Context,
	opts model.ApplicationListOptions,
) (*model.ApplicationPage, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	lister, ok := s.apps.(core.ApplicationLister)
	if !ok {
		s.logger.DebugContext(ctx, "application store does not support listing, returning empty page")
		return &model.ApplicationPage{Applications: []model.Application{}, Limit: opts.Limit, Offset: opts.Offset}, nil
	}
	page, err := lister.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list applications for job %s: %w", opts.JobID, err)
	}
	return page, nil
}

// SubmitApplication creates the candidate's application and, when the first round is a
// screening round, evaluates it in the same write.
func (s *ProgressionService) SubmitApplication(
	ctx context.Context,
	req model.SubmitApplicationRequest,
) (*SubmissionResult, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := s.loadJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	// A retried application returns what was recorded the first time.
	if existing, ok, err := s.findApplication(ctx, req.JobID, req.CandidateID); err != nil {
		return nil, err
	} else if ok {
		return s.duplicateApplication(ctx, job, existing), nil
	}

	first, hasRounds := job.Rounds.At(0)
	screening, isScreening := first.(model.ScreeningRound)
	if !isScreening && len(req.Answers) > 0 {
		return nil, apperrors.ValidationField("answers", "the first round of this job does not accept answers at application time")
	}

	now := s.clock.Now()
	app := pipeline.NewApplication(*job, req.CandidateID, now)
	var recorded *model.RoundResult
	roundType := ""
	if hasRounds {
		roundType = string(first.Type())
	}

	if isScreening {
		questions, err := s.loadQuestions(ctx, screening.QuestionIDs)
		if err != nil {
			s.observe(metrics.RoundMetric{Operation: metrics.OpSubmitApplication, RoundType: roundType, Result: metrics.ResultError, Err: err})
			return nil, err
		}
		outcome, err := pipeline.EvaluateScreening(screening, questions, req.Answers)
		if err != nil {
			return nil, err
		}
		tr, err := s.engine.RecordScreening(app, screening, outcome, req.Answers, now)
		if err != nil {
			return nil, err
		}
		app = tr.Application
		recorded = &tr.Result
	}

	if err := s.apps.Create(ctx, &app); err != nil {
		if !isVersionConflict(err) {
			return nil, fmt.Errorf("create application: %w", err)
		}
		// Lost the race to a concurrent first submission.
		existing, ok, findErr := s.findApplication(ctx, req.JobID, req.CandidateID)
		if findErr != nil {
			return nil, findErr
		}
		if !ok {
			return nil, concurrencyError(err)
		}
		return s.duplicateApplication(ctx, job, existing), nil
	}

	res := &SubmissionResult{Application: app, Result: recorded}
	outcome := ""
	if recorded != nil {
		outcome = string(recorded.Status)
	}
	s.observe(metrics.RoundMetric{
		Operation: metrics.OpSubmitApplication,
		RoundType: roundType,
		Outcome:   outcome,
		Result:    metrics.ResultSuccess,
		Duration:  time.Since(start),
	})
	s.logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID,
		"job_id", app.JobID,
		"candidate_id", app.CandidateID,
		"status", app.Status,
	)

	payload := map[string]any{
		"application_id": app.ID,
		"job_id":         app.JobID,
		"status":         string(app.Status),
	}
	if recorded != nil && recorded.Score != nil {
		payload["score"] = *recorded.Score
	}
	s.emit(ctx, model.NewEvent(model.EventApplicationSubmitted, app.CandidateID, now, payload))
	return res, nil
}

// SubmitRoundAssessment evaluates a submission for a round after the application exists.
// Catalog reads happen before any write; a failed read aborts without persisting anything.
func (s *ProgressionService) SubmitRoundAssessment(
	ctx context.Context,
	req model.SubmitRoundRequest,
) (*SubmissionResult, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	roundID := *req.RoundID

	job, err := s.loadJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	pos, ok := job.Rounds.Position(roundID)
	if !ok {
		return nil, apperrors.NotFoundf("round %d not found in job %s", roundID, job.ID)
	}
	round, _ := job.Rounds.At(pos)
	observe := func(m metrics.RoundMetric) {
		m.Operation = metrics.OpSubmitRound
		m.RoundType = string(round.Type())
		m.Duration = time.Since(start)
		s.observe(m)
	}

	app, err := s.apps.Get(ctx, req.JobID, req.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	if prior, dup := app.Result(roundID); dup {
		observe(metrics.RoundMetric{Outcome: string(prior.Status), Result: metrics.ResultDuplicate})
		return &SubmissionResult{Application: *app, Result: &prior, Duplicate: true}, nil
	}
	if err := pipeline.CheckSubmittable(*app, job.Rounds); err != nil {
		return nil, err
	}

	eval, err := s.evaluate(ctx, round, req.Answers)
	if err != nil {
		observe(metrics.RoundMetric{Result: metrics.ResultError, Err: err})
		return nil, err
	}

	outcome := pipeline.RoundOutcome{
		RoundID:     roundID,
		Status:      eval.Status,
		Score:       eval.Score,
		Answers:     req.Answers,
		StartedAt:   req.StartedAt,
		CompletedAt: s.clock.Now(),
	}

	var tr pipeline.Transition
	for attempt := 0; ; attempt++ {
		tr, err = s.engine.CompleteRound(*app, job.Rounds, outcome)
		if errors.Is(err, pipeline.ErrDuplicateResult) {
			prior, _ := app.Result(roundID)
			observe(metrics.RoundMetric{Outcome: string(prior.Status), Result: metrics.ResultDuplicate})
			return &SubmissionResult{Application: *app, Result: &prior, Duplicate: true}, nil
		}
		if err != nil {
			return nil, err
		}

		next := tr.Application
		err = s.apps.Save(ctx, &next, app.Version)
		if err == nil {
			tr.Application = next
			break
		}
		if !isVersionConflict(err) {
			observe(metrics.RoundMetric{Result: metrics.ResultError, Err: err})
			return nil, fmt.Errorf("save application: %w", err)
		}
		if attempt >= s.maxRetries {
			err = concurrencyError(err)
			observe(metrics.RoundMetric{Result: metrics.ResultError, Err: err})
			return nil, err
		}
		metrics.EmitSaveRetry(s.metrics, metrics.OpSubmitRound, attempt+1)
		s.logger.DebugContext(ctx, "application changed during evaluation; retrying",
			"application_id", app.ID, "round_id", roundID, "attempt", attempt+1)

		if app, err = s.apps.Get(ctx, req.JobID, req.CandidateID); err != nil {
			return nil, fmt.Errorf("reload application: %w", err)
		}
	}

	observe(metrics.RoundMetric{Outcome: string(tr.Result.Status), Result: metrics.ResultSuccess, Advanced: tr.Advanced})
	s.logger.InfoContext(ctx, "round evaluated",
		"application_id", tr.Application.ID,
		"job_id", tr.Application.JobID,
		"round_id", roundID,
		"round_type", round.Type(),
		"round_status", tr.Result.Status,
		"status", tr.Application.Status,
		"active_round_index", tr.Application.ActiveRoundIndex,
		"advanced", tr.Advanced,
	)
	s.emitRoundEvents(ctx, tr)

	return &SubmissionResult{Application: tr.Application, Result: &tr.Result, Scheduled: tr.Scheduled}, nil
}

// SubmitRoundFeedback attaches a rating and comment to an existing round result.
// Repeating the call overwrites the earlier feedback; status and score never change.
func (s *ProgressionService) SubmitRoundFeedback(
	ctx context.Context,
	req model.SubmitFeedbackRequest,
) (*model.Application, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	roundID := *req.RoundID

	for attempt := 0; ; attempt++ {
		app, err := s.apps.Get(ctx, req.JobID, req.CandidateID)
		if err != nil {
			return nil, fmt.Errorf("get application: %w", err)
		}
		now := s.clock.Now()
		next, err := s.engine.AttachFeedback(*app, roundID, model.Feedback{
			Rating:      req.Rating,
			Comment:     req.Comment,
			SubmittedAt: now,
		})
		if err != nil {
			return nil, err
		}

		err = s.apps.Save(ctx, &next, app.Version)
		if err == nil {
			s.logger.InfoContext(ctx, "round feedback recorded",
				"application_id", next.ID, "round_id", roundID, "rating", req.Rating)
			s.emit(ctx, model.NewEvent(model.EventFeedbackRecorded, next.CandidateID, now, map[string]any{
				"application_id": next.ID,
				"job_id":         next.JobID,
				"round_id":       roundID,
				"rating":         req.Rating,
			}))
			return &next, nil
		}
		if !isVersionConflict(err) {
			return nil, fmt.Errorf("save application: %w", err)
		}
		if attempt >= s.maxRetries {
			return nil, concurrencyError(err)
		}
		metrics.EmitSaveRetry(s.metrics, metrics.OpSubmitFeedback, attempt+1)
	}
}

func (s *ProgressionService) duplicateApplication(ctx context.Context, job *model.Job, app *model.Application) *SubmissionResult {
	res := &SubmissionResult{Application: *app, Duplicate: true}
	if first, ok := job.Rounds.At(0); ok {
		if prior, found := app.Result(first.RoundID()); found {
			res.Result = &prior
		}
	}
	s.logger.DebugContext(ctx, "application already exists",
		"application_id", app.ID, "job_id", app.JobID, "candidate_id", app.CandidateID)
	return res
}

func (s *ProgressionService) findApplication(ctx context.Context, jobID, candidateID string) (*model.Application, bool, error) {
	app, err := s.apps.Get(ctx, jobID, candidateID)
	switch {
	case err == nil:
		return app, true, nil
	case apperrors.IsNotFound(err):
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("get application: %w", err)
	}
}

func (s *ProgressionService) evaluate(ctx context.Context, round model.Round, answers []model.Answer) (pipeline.Evaluation, error) {
	in := pipeline.Inputs{}
	if ar, ok := round.(model.AssessmentRound); ok {
		assessment, err := s.loadAssessment(ctx, ar.AssessmentID)
		if err != nil {
			return pipeline.Evaluation{}, err
		}
		in.Assessment = assessment
	}
	if round.Capabilities().RequiresQuestionBank {
		questions, err := s.loadQuestions(ctx, pipeline.QuestionIDs(round, in.Assessment))
		if err != nil {
			return pipeline.Evaluation{}, err
		}
		in.Questions = questions
	}
	return pipeline.Evaluate(round, in, answers)
}

func (s *ProgressionService) loadJob(ctx context.Context, id string) (*model.Job, error) {
	dctx, cancel := context.WithTimeout(ctx, s.depTimeout)
	defer cancel()
	job, err := s.catalog.GetJob(dctx, id)
	if err != nil {
		return nil, dependencyError(err, "job "+id)
	}
	return job, nil
}

func (s *ProgressionService) loadAssessment(ctx context.Context, id string) (*model.Assessment, error) {
	dctx, cancel := context.WithTimeout(ctx, s.depTimeout)
	defer cancel()
	a, err := s.catalog.GetAssessment(dctx, id)
	if err != nil {
		return nil, dependencyError(err, "assessment "+id)
	}
	return a, nil
}

func (s *ProgressionService) loadQuestions(ctx context.Context, ids []string) (map[string]model.Question, error) {
	if len(ids) == 0 {
		return map[string]model.Question{}, nil
	}
	dctx, cancel := context.WithTimeout(ctx, s.depTimeout)
	defer cancel()
	questions, err := s.catalog.GetQuestions(dctx, ids)
	if err != nil {
		return nil, dependencyError(err, "questions")
	}
	return questions, nil
}

func (s *ProgressionService) emitRoundEvents(ctx context.Context, tr pipeline.Transition) {
	app := tr.Application
	payload := map[string]any{
		"application_id":     app.ID,
		"job_id":             app.JobID,
		"round_id":           tr.Result.RoundID,
		"round_status":       string(tr.Result.Status),
		"status":             string(app.Status),
		"active_round_index": app.ActiveRoundIndex,
	}
	if tr.Result.Score != nil {
		payload["score"] = *tr.Result.Score
	}
	s.emit(ctx, model.NewEvent(model.EventRoundCompleted, app.CandidateID, tr.Result.CompletedAt, payload))

	if tr.Scheduled != nil {
		s.emit(ctx, model.NewEvent(model.EventRoundScheduled, app.CandidateID, tr.Scheduled.ScheduledAt, map[string]any{
			"application_id": app.ID,
			"job_id":         app.JobID,
			"round_id":       tr.Scheduled.RoundID,
			"due_date":       tr.Scheduled.DueDate,
		}))
	}
}

// emit delivers ev after the write has committed. Failures are logged and never returned.
func (s *ProgressionService) emit(ctx context.Context, ev model.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.WarnContext(ctx, "event emission failed",
			"event_id", ev.ID, "event_kind", ev.Kind, "recipient_id", ev.RecipientID, "error", err)
	}
}

func (s *ProgressionService) observe(m metrics.RoundMetric) {
	metrics.EmitRoundEvaluation(s.metrics, m)
}

func isVersionConflict(err error) bool {
	return errors.Is(err, core.ErrVersionConflict) || apperrors.IsConcurrency(err)
}

func concurrencyError(err error) error {
	return apperrors.Wrap(err, apperrors.ErrCodeConcurrency, "application was modified concurrently; retry the submission")
}

// dependencyError keeps NotFound visible to the caller and turns every other read failure into a
// retryable dependency failure.
func dependencyError(err error, what string) error {
	if apperrors.IsNotFound(err) || apperrors.IsValidation(err) {
		return err
	}
	return apperrors.Wrap(err, apperrors.ErrCodeDependency, what+" lookup failed")
}
