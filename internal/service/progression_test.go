package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/hiring-pipeline/internal/core"
	"github.com/target/hiring-pipeline/internal/domain/model"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
	"github.com/target/hiring-pipeline/internal/mocks"
	"github.com/target/hiring-pipeline/internal/testutil"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type progressionFixture struct {
	svc     *ProgressionService
	catalog *mocks.MockCatalogReader
	apps    *mocks.MockApplicationRepository
	events  *mocks.MockEventEmitter
}

func newProgressionFixture(t *testing.T) progressionFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := progressionFixture{
		catalog: mocks.NewMockCatalogReader(ctrl),
		apps:    mocks.NewMockApplicationRepository(ctrl),
		events:  mocks.NewMockEventEmitter(ctrl),
	}
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(fixedNow).AnyTimes()

	f.svc = NewProgressionService(ProgressionServiceOptions{
		Stores: ProgressionStores{Catalog: f.catalog, Applications: f.apps, Events: f.events},
		Config: ProgressionConfig{MaxSaveRetries: 2, DependencyTimeout: time.Second, Clock: clock},
	})
	return f
}

func ptr[T any](v T) *T { return &v }

func pipelineJob(autoProceed bool, criteria *int) *model.Job {
	return &model.Job{
		ID:        "job-1",
		CompanyID: "acme",
		Rounds: model.RoundCatalog{
			model.ScreeningRound{RoundBase: model.RoundBase{ID: 0}, QuestionIDs: []string{"s1", "s2", "s3", "s4"}},
			model.AssessmentRound{RoundBase: model.RoundBase{ID: 1, AutoProceed: autoProceed}, AssessmentID: "a-1", SelectionCriteria: criteria},
			model.AssessmentRound{RoundBase: model.RoundBase{ID: 2}, AssessmentID: "a-2"},
			model.AIInterviewRound{RoundBase: model.RoundBase{ID: 3}, TemplateID: "tpl"},
		},
	}
}

func screeningQuestions(strict bool) map[string]model.Question {
	out := map[string]model.Question{}
	for i := 1; i <= 4; i++ {
		id := fmt.Sprintf("s%d", i)
		out[id] = model.Question{ID: id, Type: model.QuestionTypeScreening, IsStrict: strict && i == 1, AcceptableAnswers: []string{"yes"}}
	}
	return out
}

func assessmentFixture() (*model.Assessment, map[string]model.Question) {
	return testutil.MCQBank("a-1", "m", 10)
}

func mcqAnswers(correct int) []model.Answer {
	a, _ := assessmentFixture()
	return testutil.MCQAnswers(a, correct)
}

func existingApplication(job *model.Job) *model.Application {
	return &model.Application{
		ID:          "app-1",
		JobID:       job.ID,
		CandidateID: "cand-1",
		Status:      model.ApplicationStatusScreeningPassed,
		RoundOrder:  job.Rounds.Order(),
		Results:     []model.RoundResult{{RoundID: 0, Status: model.RoundStatusPassed, Score: ptr(100)}},
		Version:     1,
	}
}

func expectSave(f progressionFixture, expected int64, captured *model.Application) *gomock.Call {
	return f.apps.EXPECT().Save(gomock.Any(), gomock.Any(), expected).
		DoAndReturn(func(_ context.Context, app *model.Application, v int64) error {
			app.Version = v + 1
			*captured = *app
			return nil
		})
}

func TestSubmitApplication_StrictScreeningFailure(t *testing.T) {
	f := newProgressionFixture(t)
	job := pipelineJob(false, nil)
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
	f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(nil, apperrors.NotFound("application not found"))
	f.catalog.EXPECT().GetQuestions(gomock.Any(), []string{"s1", "s2", "s3", "s4"}).Return(screeningQuestions(true), nil)

	var created model.Application
	f.apps.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, app *model.Application) error {
		app.Version = 1
		created = *app
		return nil
	})
	f.events.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev model.Event) error {
		assert.Equal(t, model.EventApplicationSubmitted, ev.Kind)
		assert.Equal(t, "cand-1", ev.RecipientID)
		return nil
	})

	res, err := f.svc.SubmitApplication(context.Background(), model.SubmitApplicationRequest{
		JobID:       "job-1",
		CandidateID: "cand-1",
		Answers: []model.Answer{
			{QuestionID: "s1", Answer: "no"},
			{QuestionID: "s2", Answer: "yes"},
			{QuestionID: "s3", Answer: "yes"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.ApplicationStatusScreeningFailed, res.Application.Status)
	require.NotNil(t, res.Result)
	assert.Equal(t, model.RoundStatusFailed, res.Result.Status)
	assert.Nil(t, res.Result.Score)
	assert.Equal(t, int64(1), created.Version)
	assert.Equal(t, 0, created.ActiveRoundIndex)
	assert.Equal(t, []int64{0, 1, 2, 3}, created.RoundOrder)
}

func TestSubmitApplication_LenientScreeningScore(t *testing.T) {
	f := newProgressionFixture(t)
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(pipelineJob(false, nil), nil)
	f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(nil, apperrors.NotFound("application not found"))
	f.catalog.EXPECT().GetQuestions(gomock.Any(), gomock.Any()).Return(screeningQuestions(false), nil)
	f.apps.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.events.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	res, err := f.svc.SubmitApplication(context.Background(), model.SubmitApplicationRequest{
		JobID:       "job-1",
		CandidateID: "cand-1",
		Answers: []model.Answer{
			{QuestionID: "s1", Answer: "yes"},
			{QuestionID: "s2", Answer: "yes"},
			{QuestionID: "s3", Answer: "yes"},
			{QuestionID: "s4", Answer: "no"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.ApplicationStatusScreeningPassed, res.Application.Status)
	require.NotNil(t, res.Result.Score)
	assert.Equal(t, 75, *res.Result.Score)
	assert.False(t, res.Duplicate)
}

func TestSubmitApplication_ValidationRejectedBeforeReads(t *testing.T) {
	f := newProgressionFixture(t)

	_, err := f.svc.SubmitApplication(context.Background(), model.SubmitApplicationRequest{JobID: "job-1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "candidate_id", apperrors.GetField(err))
}

func TestSubmitApplication_NonScreeningFirstRound(t *testing.T) {
	job := &model.Job{ID: "job-2", CompanyID: "acme", Rounds: model.RoundCatalog{
		model.AIInterviewRound{RoundBase: model.RoundBase{ID: 10}, TemplateID: "tpl"},
	}}

	t.Run("answers rejected", func(t *testing.T) {
		f := newProgressionFixture(t)
		f.catalog.EXPECT().GetJob(gomock.Any(), "job-2").Return(job, nil)
		f.apps.EXPECT().Get(gomock.Any(), "job-2", "cand-1").Return(nil, apperrors.NotFound("application not found"))

		_, err := f.svc.SubmitApplication(context.Background(), model.SubmitApplicationRequest{
			JobID: "job-2", CandidateID: "cand-1", Answers: []model.Answer{{QuestionID: "x", Answer: "y"}},
		})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("created as submitted", func(t *testing.T) {
		f := newProgressionFixture(t)
		f.catalog.EXPECT().GetJob(gomock.Any(), "job-2").Return(job, nil)
		f.apps.EXPECT().Get(gomock.Any(), "job-2", "cand-1").Return(nil, apperrors.NotFound("application not found"))
		f.apps.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.events.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.SubmitApplication(context.Background(), model.SubmitApplicationRequest{JobID: "job-2", CandidateID: "cand-1"})
		require.NoError(t, err)
		assert.Equal(t, model.ApplicationStatusSubmitted, res.Application.Status)
		assert.Nil(t, res.Result)
	})
}

func TestSubmitApplication_ExistingApplicationIsDuplicate(t *testing.T) {
	f := newProgressionFixture(t)
	job := pipelineJob(false, nil)
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
	f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(existingApplication(job), nil)

	res, err := f.svc.SubmitApplication(context.Background(), model.SubmitApplicationRequest{JobID: "job-1", CandidateID: "cand-1"})
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	require.NotNil(t, res.Result)
	assert.Equal(t, model.RoundStatusPassed, res.Result.Status)
}

func TestSubmitApplication_ConcurrentCreateReturnsWinner(t *testing.T) {
	f := newProgressionFixture(t)
	job := pipelineJob(false, nil)
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
	gomock.InOrder(
		f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(nil, apperrors.NotFound("application not found")),
		f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(existingApplication(job), nil),
	)
	f.catalog.EXPECT().GetQuestions(gomock.Any(), gomock.Any()).Return(screeningQuestions(false), nil)
	f.apps.EXPECT().Create(gomock.Any(), gomock.Any()).Return(core.ErrVersionConflict)

	res, err := f.svc.SubmitApplication(context.Background(), model.SubmitApplicationRequest{JobID: "job-1", CandidateID: "cand-1"})
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, "app-1", res.Application.ID)
}

func TestSubmitApplication_QuestionLookupFailureAborts(t *testing.T) {
	f := newProgressionFixture(t)
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(pipelineJob(false, nil), nil)
	f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(nil, apperrors.NotFound("application not found"))
	f.catalog.EXPECT().GetQuestions(gomock.Any(), gomock.Any()).Return(nil, context.DeadlineExceeded)

	_, err := f.svc.SubmitApplication(context.Background(), model.SubmitApplicationRequest{JobID: "job-1", CandidateID: "cand-1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsDependency(err))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestSubmitApplication_JobNotFound(t *testing.T) {
	f := newProgressionFixture(t)
	f.catalog.EXPECT().GetJob(gomock.Any(), "nope").Return(nil, apperrors.NotFound("job not found"))

	_, err := f.svc.SubmitApplication(context.Background(), model.SubmitApplicationRequest{JobID: "nope", CandidateID: "cand-1"})
	assert.True(t, apperrors.IsNotFound(err))
}

func expectAssessmentReads(f progressionFixture) {
	a, questions := assessmentFixture()
	f.catalog.EXPECT().GetAssessment(gomock.Any(), "a-1").Return(a, nil)
	f.catalog.EXPECT().GetQuestions(gomock.Any(), a.QuestionIDs).Return(questions, nil)
}

func TestSubmitRoundAssessment_AutoProceedSchedulesNextRound(t *testing.T) {
	f := newProgressionFixture(t)
	job := pipelineJob(true, ptr(70))
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
	f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(existingApplication(job), nil)
	expectAssessmentReads(f)

	var saved model.Application
	expectSave(f, 1, &saved)

	var kinds []model.EventKind
	f.events.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev model.Event) error {
		kinds = append(kinds, ev.Kind)
		return nil
	}).Times(2)

	started := fixedNow.Add(-10 * time.Minute)
	res, err := f.svc.SubmitRoundAssessment(context.Background(), model.SubmitRoundRequest{
		JobID: "job-1", RoundID: ptr(int64(1)), CandidateID: "cand-1", Answers: mcqAnswers(8), StartedAt: &started,
	})
	require.NoError(t, err)

	require.NotNil(t, res.Result)
	assert.Equal(t, 80, *res.Result.Score)
	assert.Equal(t, model.RoundStatusPassed, res.Result.Status)
	assert.Equal(t, int64(600), *res.Result.TimeTaken)
	assert.Equal(t, 2, res.Application.ActiveRoundIndex)
	assert.Equal(t, model.ApplicationStatusInProgress, res.Application.Status)
	assert.Equal(t, int64(2), res.Application.Version)
	require.NotNil(t, res.Scheduled)
	assert.Equal(t, fixedNow.Add(48*time.Hour), res.Scheduled.DueDate)
	assert.Equal(t, saved.Schedules, res.Application.Schedules)
	assert.Equal(t, []model.EventKind{model.EventRoundCompleted, model.EventRoundScheduled}, kinds)
}

func TestSubmitRoundAssessment_NoCriteriaParksPending(t *testing.T) {
	f := newProgressionFixture(t)
	job := pipelineJob(true, nil)
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
	f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(existingApplication(job), nil)
	expectAssessmentReads(f)
	var saved model.Application
	expectSave(f, 1, &saved)
	f.events.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	res, err := f.svc.SubmitRoundAssessment(context.Background(), model.SubmitRoundRequest{
		JobID: "job-1", RoundID: ptr(int64(1)), CandidateID: "cand-1", Answers: mcqAnswers(1),
	})
	require.NoError(t, err)

	assert.Equal(t, model.RoundStatusPending, res.Result.Status)
	assert.Equal(t, model.ApplicationStatusInProgress, saved.Status)
	assert.Equal(t, 0, saved.ActiveRoundIndex)
	assert.Nil(t, res.Scheduled)
}

func TestSubmitRoundAssessment_DuplicateIsNoop(t *testing.T) {
	f := newProgressionFixture(t)
	job := pipelineJob(true, ptr(70))
	app := existingApplication(job)
	app.Results = append(app.Results, model.RoundResult{RoundID: 1, Status: model.RoundStatusPassed, Score: ptr(90)})
	app.ActiveRoundIndex = 2
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
	f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(app, nil)

	res, err := f.svc.SubmitRoundAssessment(context.Background(), model.SubmitRoundRequest{
		JobID: "job-1", RoundID: ptr(int64(1)), CandidateID: "cand-1", Answers: mcqAnswers(8),
	})
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, 90, *res.Result.Score)
	assert.Equal(t, 2, res.Application.ActiveRoundIndex)
}

func TestSubmitRoundAssessment_RetriesVersionConflict(t *testing.T) {
	f := newProgressionFixture(t)
	job := pipelineJob(true, ptr(70))
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
	expectAssessmentReads(f)

	reloaded := existingApplication(job)
	reloaded.Version = 2
	gomock.InOrder(
		f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(existingApplication(job), nil),
		f.apps.EXPECT().Save(gomock.Any(), gomock.Any(), int64(1)).Return(core.ErrVersionConflict),
		f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(reloaded, nil),
		f.apps.EXPECT().Save(gomock.Any(), gomock.Any(), int64(2)).Return(nil),
	)
	f.events.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	res, err := f.svc.SubmitRoundAssessment(context.Background(), model.SubmitRoundRequest{
		JobID: "job-1", RoundID: ptr(int64(1)), CandidateID: "cand-1", Answers: mcqAnswers(9),
	})
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Len(t, res.Application.Results, 2)
}

func TestSubmitRoundAssessment_ConcurrentWriterRecordedSameRound(t *testing.T) {
	f := newProgressionFixture(t)
	job := pipelineJob(true, ptr(70))
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
	expectAssessmentReads(f)

	winner := existingApplication(job)
	winner.Version = 2
	winner.Results = append(winner.Results, model.RoundResult{RoundID: 1, Status: model.RoundStatusPassed, Score: ptr(90)})
	gomock.InOrder(
		f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(existingApplication(job), nil),
		f.apps.EXPECT().Save(gomock.Any(), gomock.Any(), int64(1)).Return(core.ErrVersionConflict),
		f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(winner, nil),
	)

	res, err := f.svc.SubmitRoundAssessment(context.Background(), model.SubmitRoundRequest{
		JobID: "job-1", RoundID: ptr(int64(1)), CandidateID: "cand-1", Answers: mcqAnswers(8),
	})
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, 90, *res.Result.Score)
}

func TestSubmitRoundAssessment_RetriesExhausted(t *testing.T) {
	f := newProgressionFixture(t)
	job := pipelineJob(true, ptr(70))
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
	expectAssessmentReads(f)
	f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(existingApplication(job), nil).Times(3)
	f.apps.EXPECT().Save(gomock.Any(), gomock.Any(), int64(1)).Return(core.ErrVersionConflict).Times(3)

	_, err := f.svc.SubmitRoundAssessment(context.Background(), model.SubmitRoundRequest{
		JobID: "job-1", RoundID: ptr(int64(1)), CandidateID: "cand-1", Answers: mcqAnswers(8),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConcurrency(err))
	assert.True(t, errors.Is(err, core.ErrVersionConflict))
}

func TestSubmitRoundAssessment_DependencyFailureWritesNothing(t *testing.T) {
	f := newProgressionFixture(t)
	job := pipelineJob(true, ptr(70))
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
	f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(existingApplication(job), nil)
	a, _ := assessmentFixture()
	f.catalog.EXPECT().GetAssessment(gomock.Any(), "a-1").Return(a, nil)
	f.catalog.EXPECT().GetQuestions(gomock.Any(), gomock.Any()).Return(nil, errors.New("question m3: connection refused"))

	_, err := f.svc.SubmitRoundAssessment(context.Background(), model.SubmitRoundRequest{
		JobID: "job-1", RoundID: ptr(int64(1)), CandidateID: "cand-1", Answers: mcqAnswers(8),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsDependency(err))
}

func TestSubmitRoundAssessment_Rejections(t *testing.T) {
	job := pipelineJob(true, ptr(70))

	t.Run("unknown round", func(t *testing.T) {
		f := newProgressionFixture(t)
		f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
		_, err := f.svc.SubmitRoundAssessment(context.Background(), model.SubmitRoundRequest{
			JobID: "job-1", RoundID: ptr(int64(42)), CandidateID: "cand-1",
		})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("missing application", func(t *testing.T) {
		f := newProgressionFixture(t)
		f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
		f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(nil, apperrors.NotFound("application not found"))
		_, err := f.svc.SubmitRoundAssessment(context.Background(), model.SubmitRoundRequest{
			JobID: "job-1", RoundID: ptr(int64(1)), CandidateID: "cand-1",
		})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("closed application", func(t *testing.T) {
		f := newProgressionFixture(t)
		app := existingApplication(job)
		app.Status = model.ApplicationStatusScreeningFailed
		f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
		f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(app, nil)
		_, err := f.svc.SubmitRoundAssessment(context.Background(), model.SubmitRoundRequest{
			JobID: "job-1", RoundID: ptr(int64(1)), CandidateID: "cand-1",
		})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("missing round id", func(t *testing.T) {
		f := newProgressionFixture(t)
		_, err := f.svc.SubmitRoundAssessment(context.Background(), model.SubmitRoundRequest{JobID: "job-1", CandidateID: "cand-1"})
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestSubmitRoundAssessment_EmitFailureDoesNotFailSubmission(t *testing.T) {
	f := newProgressionFixture(t)
	job := pipelineJob(false, nil)
	f.catalog.EXPECT().GetJob(gomock.Any(), "job-1").Return(job, nil)
	app := existingApplication(job)
	app.ActiveRoundIndex = 3
	f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(app, nil)
	var saved model.Application
	expectSave(f, 1, &saved)
	f.events.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable"))

	res, err := f.svc.SubmitRoundAssessment(context.Background(), model.SubmitRoundRequest{
		JobID: "job-1", RoundID: ptr(int64(3)), CandidateID: "cand-1",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoundStatusPending, res.Result.Status)
	assert.Len(t, saved.Results, 2)
}

func TestSubmitRoundFeedback(t *testing.T) {
	job := pipelineJob(false, nil)

	t.Run("no result for round", func(t *testing.T) {
		f := newProgressionFixture(t)
		f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(existingApplication(job), nil)

		_, err := f.svc.SubmitRoundFeedback(context.Background(), model.SubmitFeedbackRequest{
			JobID: "job-1", RoundID: ptr(int64(2)), CandidateID: "cand-1", Rating: 4,
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("attaches feedback", func(t *testing.T) {
		f := newProgressionFixture(t)
		f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(existingApplication(job), nil)
		var saved model.Application
		expectSave(f, 1, &saved)
		f.events.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		app, err := f.svc.SubmitRoundFeedback(context.Background(), model.SubmitFeedbackRequest{
			JobID: "job-1", RoundID: ptr(int64(0)), CandidateID: "cand-1", Rating: 4, Comment: "solid",
		})
		require.NoError(t, err)

		fb := app.Results[0].Feedback
		require.NotNil(t, fb)
		assert.Equal(t, 4, fb.Rating)
		assert.Equal(t, "solid", fb.Comment)
		assert.Equal(t, fixedNow, fb.SubmittedAt)
		assert.Equal(t, 100, *saved.Results[0].Score)
		assert.Equal(t, model.RoundStatusPassed, saved.Results[0].Status)
	})

	t.Run("rating out of range", func(t *testing.T) {
		f := newProgressionFixture(t)
		_, err := f.svc.SubmitRoundFeedback(context.Background(), model.SubmitFeedbackRequest{
			JobID: "job-1", RoundID: ptr(int64(0)), CandidateID: "cand-1", Rating: 0,
		})
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestGetApplication(t *testing.T) {
	f := newProgressionFixture(t)
	job := pipelineJob(false, nil)
	f.apps.EXPECT().Get(gomock.Any(), "job-1", "cand-1").Return(existingApplication(job), nil)

	app, err := f.svc.GetApplication(context.Background(), "job-1", "cand-1")
	require.NoError(t, err)
	assert.Equal(t, "app-1", app.ID)

	_, err = f.svc.GetApplication(context.Background(), "", "cand-1")
	assert.True(t, apperrors.IsValidation(err))
}

func TestNewProgressionService_RequiresStores(t *testing.T) {
	assert.Panics(t, func() { NewProgressionService(ProgressionServiceOptions{}) })
}

type listingStore struct {
	*mocks.MockApplicationRepository
	list func(ctx context.Context, opts model.ApplicationListOptions) (*model.ApplicationPage, error)
}

func (l listingStore) List(ctx context.Context, opts model.ApplicationListOptions) (*model.ApplicationPage, error) {
	return l.list(ctx, opts)
}

func TestListApplications(t *testing.T) {
	t.Run("delegates normalized options to listing store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		var got model.ApplicationListOptions
		store := listingStore{
			MockApplicationRepository: mocks.NewMockApplicationRepository(ctrl),
			list: func(_ context.Context, opts model.ApplicationListOptions) (*model.ApplicationPage, error) {
				got = opts
				return &model.ApplicationPage{Applications: []model.Application{{ID: "app-1"}}, Total: 1, Limit: opts.Limit}, nil
			},
		}
		svc := NewProgressionService(ProgressionServiceOptions{
			Stores: ProgressionStores{Catalog: mocks.NewMockCatalogReader(ctrl), Applications: store},
		})

		page, err := svc.ListApplications(context.Background(), model.ApplicationListOptions{JobID: " job-1 "})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, "job-1", got.JobID)
		assert.Equal(t, model.DefaultApplicationPageSize, got.Limit)
	})

	t.Run("store errors are wrapped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := listingStore{
			MockApplicationRepository: mocks.NewMockApplicationRepository(ctrl),
			list: func(context.Context, model.ApplicationListOptions) (*model.ApplicationPage, error) {
				return nil, apperrors.Wrap(errors.New("conn reset"), apperrors.ErrCodeDependency, "db")
			},
		}
		svc := NewProgressionService(ProgressionServiceOptions{
			Stores: ProgressionStores{Catalog: mocks.NewMockCatalogReader(ctrl), Applications: store},
		})

		_, err := svc.ListApplications(context.Background(), model.ApplicationListOptions{JobID: "job-1"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeDependency, apperrors.GetCode(err))
	})

	t.Run("store without listing returns empty page", func(t *testing.T) {
		f := newProgressionFixture(t)
		page, err := f.svc.ListApplications(context.Background(), model.ApplicationListOptions{JobID: "job-1", Limit: 5})
		require.NoError(t, err)
		assert.Empty(t, page.Applications)
		assert.Equal(t, 5, page.Limit)
	})

	t.Run("invalid options rejected", func(t *testing.T) {
		f := newProgressionFixture(t)
		_, err := f.svc.ListApplications(context.Background(), model.ApplicationListOptions{})
		assert.True(t, apperrors.IsValidation(err))
	})
}
