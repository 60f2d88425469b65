package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/target/hiring-pipeline/internal/domain/model"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
)

var (
	// ErrApplicationClosed is returned for submissions against a rejected or screened-out application.
	ErrApplicationClosed = apperrors.Conflict("application is closed")
	// ErrRoundOrderChanged is returned when rounds the application already knows about were moved or removed.
	ErrRoundOrderChanged = apperrors.Conflict("round order changed; migration required")
	// ErrDuplicateResult is returned when a result for the round is already recorded.
	ErrDuplicateResult = apperrors.Conflict("round result already recorded")
)

// RoundOutcome is an evaluated submission ready to be folded into an Application.
type RoundOutcome struct {
	RoundID     int64
	Status      model.RoundStatus
	Score       *int
	Answers     []model.Answer
	StartedAt   *time.Time
	CompletedAt time.Time
}

// Transition is the result of applying a RoundOutcome.
type Transition struct {
	Application model.Application
	Result      model.RoundResult
	// Advanced is true when the auto-proceed rule fired.
	Advanced bool
	// Scheduled is the schedule created for the next round, if any.
	Scheduled *model.Schedule
}

// Engine applies the round progression state machine.
type Engine struct {
	schedules *ScheduleGenerator
}

// NewEngine returns an Engine. A nil generator uses DefaultDueOffset.
func NewEngine(schedules *ScheduleGenerator) *Engine {
	if schedules == nil {
		schedules = NewScheduleGenerator(DefaultDueOffset)
	}
	return &Engine{schedules: schedules}
}

// NewApplication creates the application record for a candidate's first submission.
func NewApplication(job model.Job, candidateID string, now time.Time) model.Application {
	now = now.UTC()
	return model.Application{
		ID:               uuid.NewString(),
		JobID:            job.ID,
		CandidateID:      candidateID,
		Status:           model.ApplicationStatusSubmitted,
		ActiveRoundIndex: 0,
		RoundOrder:       job.Rounds.Order(),
		Results:          []model.RoundResult{},
		Schedules:        []model.Schedule{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// CheckSubmittable reports whether app can accept a round submission under catalog.
// Rounds appended to the job since the application was created are accepted.
func CheckSubmittable(app model.Application, catalog model.RoundCatalog) error {
	if app.Closed() {
		return ErrApplicationClosed
	}
	if !catalog.Extends(app.RoundOrder) {
		return ErrRoundOrderChanged
	}
	return nil
}

// RecordScreening stores the application-time screening result. The active round index stays at 0.
func (e *Engine) RecordScreening(
	app model.Application,
	round model.ScreeningRound,
	outcome ScreeningOutcome,
	answers []model.Answer,
	now time.Time,
) (Transition, error) {
	if _, dup := app.Result(round.ID); dup {
		return Transition{}, ErrDuplicateResult
	}
	now = now.UTC()
	result := model.RoundResult{
		RoundID:     round.ID,
		Status:      outcome.Status(),
		Answers:     cloneAnswers(answers),
		Score:       outcome.Score,
		CompletedAt: now,
	}

	next := app.Clone()
	next.Results = append(next.Results, result)
	next.Status = outcome.ApplicationStatus()
	next.UpdatedAt = now
	return Transition{Application: next, Result: result}, nil
}

// CompleteRound appends the result for outcome.RoundID and applies the progression rules:
//
//   - a matching schedule is marked Attempted;
//   - a pass on a non-final auto-proceed round moves the active index past the round and
//     schedules the next round when its type needs one;
//   - otherwise Passed and Pending keep the candidate In Progress and Failed rejects.
//
// The round order snapshot is refreshed to the catalog's current order.
// The active index never moves backwards.
func (e *Engine) CompleteRound(app model.Application, catalog model.RoundCatalog, outcome RoundOutcome) (Transition, error) {
	if err := CheckSubmittable(app, catalog); err != nil {
		return Transition{}, err
	}
	pos, ok := catalog.Position(outcome.RoundID)
	if !ok {
		return Transition{}, apperrors.NotFoundf("round %d not found", outcome.RoundID)
	}
	if _, dup := app.Result(outcome.RoundID); dup {
		return Transition{}, ErrDuplicateResult
	}
	round, _ := catalog.At(pos)

	completedAt := outcome.CompletedAt.UTC()
	result := model.RoundResult{
		RoundID:     outcome.RoundID,
		Status:      outcome.Status,
		Answers:     cloneAnswers(outcome.Answers),
		Score:       outcome.Score,
		CompletedAt: completedAt,
		TimeTaken:   elapsedSeconds(outcome.StartedAt, completedAt),
	}

	next := app.Clone()
	next.RoundOrder = catalog.Order()
	next.Results = append(next.Results, result)
	for i := range next.Schedules {
		if next.Schedules[i].RoundID == outcome.RoundID {
			next.Schedules[i].Status = model.ScheduleStatusAttempted
		}
	}
	next.UpdatedAt = completedAt

	tr := Transition{Result: result}
	if round.ProceedsAutomatically() && outcome.Status == model.RoundStatusPassed && !catalog.IsLast(pos) {
		tr.Advanced = true
		next.ActiveRoundIndex = max(next.ActiveRoundIndex, pos+1)
		next.Status = model.ApplicationStatusInProgress

		nextRound, _ := catalog.At(pos + 1)
		if !next.HasSchedule(nextRound.RoundID()) {
			if sched, ok := e.schedules.Generate(nextRound, completedAt); ok {
				next.Schedules = append(next.Schedules, sched)
				tr.Scheduled = &sched
			}
		}
	} else {
		next.Status = statusAfter(outcome.Status)
	}

	tr.Application = next
	return tr, nil
}

// AttachFeedback sets the feedback of the recorded result for roundID, replacing any earlier feedback.
func (e *Engine) AttachFeedback(app model.Application, roundID int64, fb model.Feedback) (model.Application, error) {
	idx := -1
	for i, r := range app.Results {
		if r.RoundID == roundID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Application{}, apperrors.NotFoundf("no result recorded for round %d", roundID)
	}

	next := app.Clone()
	fb.SubmittedAt = fb.SubmittedAt.UTC()
	next.Results[idx].Feedback = &fb
	next.UpdatedAt = fb.SubmittedAt
	return next, nil
}

func statusAfter(s model.RoundStatus) model.ApplicationStatus {
	if s == model.RoundStatusFailed {
		return model.ApplicationStatusRejected
	}
	return model.ApplicationStatusInProgress
}

func elapsedSeconds(startedAt *time.Time, completedAt time.Time) *int64 {
	if startedAt == nil || startedAt.IsZero() {
		return nil
	}
	secs := max(int64(completedAt.Sub(*startedAt)/time.Second), 0)
	return &secs
}

func cloneAnswers(in []model.Answer) []model.Answer {
	out := make([]model.Answer, len(in))
	copy(out, in)
	return out
}
