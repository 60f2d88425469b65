package devseed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/hiring-pipeline/internal/domain/model"
)

type recordingWriter struct {
	order     []string
	failJobID string
}

func (w *recordingWriter) PutQuestion(_ context.Context, q *model.Question) (*model.Question, error) {
	w.order = append(w.order, "question:"+q.ID)
	return q, nil
}

func (w *recordingWriter) PutAssessment(_ context.Context, a *model.Assessment) (*model.Assessment, error) {
	w.order = append(w.order, "assessment:"+a.ID)
	return a, nil
}

func (w *recordingWriter) PutJob(_ context.Context, job *model.Job) (*model.Job, error) {
	if job.ID == w.failJobID {
		return nil, errors.New("write failed")
	}
	w.order = append(w.order, "job:"+job.ID)
	return job, nil
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	require.Len(t, c.Jobs, 1)
	job, err := c.Jobs[0].Job()
	require.NoError(t, err)
	require.Len(t, job.Rounds, 3)

	assessment, ok := job.Rounds[1].(model.AssessmentRound)
	require.True(t, ok)
	assert.True(t, assessment.AutoProceed)
	require.NotNil(t, assessment.SelectionCriteria)
	assert.Equal(t, 60, *assessment.SelectionCriteria)

	for _, q := range c.Questions {
		assert.NoError(t, q.Validate(), q.ID)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := Load(strings.NewReader("jobs:\n  - id: j\n    compnay_id: typo\n"))
	require.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, c.Jobs)
}

func TestJobDoc_UnknownRoundType(t *testing.T) {
	c, err := Load(strings.NewReader(`
jobs:
  - id: j
    company_id: acme
    rounds:
      - id: 0
        type: whiteboard
`))
	if err != nil {
		assert.ErrorIs(t, err, model.ErrUnknownRoundType)
		return
	}
	_, err = c.Jobs[0].Job()
	assert.ErrorIs(t, err, model.ErrUnknownRoundType)
}

func TestApply_OrderAndFailures(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	c.Jobs = append(c.Jobs, JobDoc{ID: "broken", CompanyID: "acme"})

	w := &recordingWriter{failJobID: "broken"}
	summary, err := Apply(context.Background(), w, c, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 seed errors")
	assert.Equal(t, len(c.Questions), summary.Questions)
	assert.Equal(t, 1, summary.Assessments)
	assert.Equal(t, 1, summary.Jobs)
	assert.Equal(t, 1, summary.Failures)

	// Questions before assessments before jobs.
	last := w.order[len(w.order)-1]
	assert.Equal(t, "job:backend-engineer", last)
	assert.Equal(t, "assessment:go-quiz", w.order[len(c.Questions)])
}
