package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func sampleJob() Job {
	return Job{
		ID:        "job-1",
		CompanyID: "acme",
		Title:     "Backend Engineer",
		Rounds: RoundCatalog{
			ScreeningRound{RoundBase: RoundBase{ID: 0, Name: "Screening"}, QuestionIDs: []string{"q1", "q2"}},
			AssessmentRound{
				RoundBase:         RoundBase{ID: 1, Name: "Go quiz", AutoProceed: true},
				AssessmentID:      "a-1",
				SelectionCriteria: intPtr(70),
			},
			AIInterviewRound{RoundBase: RoundBase{ID: 2}, TemplateID: "tpl-1"},
		},
	}
}

func TestRoundCapabilities(t *testing.T) {
	tests := []struct {
		name  string
		round Round
		want  Capabilities
	}{
		{"screening", ScreeningRound{}, Capabilities{RequiresScoring: true, RequiresQuestionBank: true}},
		{"assessment", AssessmentRound{}, Capabilities{RequiresScoring: true, RequiresSchedule: true, RequiresQuestionBank: true}},
		{"ai interview", AIInterviewRound{}, Capabilities{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.round.Capabilities())
		})
	}
}

func TestRoundSpec_Round(t *testing.T) {
	t.Run("assessment requires assessment id", func(t *testing.T) {
		_, err := RoundSpec{ID: 1, Type: RoundTypeAssessment}.Round()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "assessment_id is required")
	})

	t.Run("selection criteria bounds", func(t *testing.T) {
		_, err := RoundSpec{ID: 1, Type: RoundTypeAssessment, AssessmentID: "a", SelectionCriteria: intPtr(120)}.Round()
		require.Error(t, err)
	})

	t.Run("ai interview requires template", func(t *testing.T) {
		_, err := RoundSpec{ID: 2, Type: RoundTypeAIInterview}.Round()
		require.Error(t, err)
	})

	t.Run("reserved type rejected", func(t *testing.T) {
		_, err := RoundSpec{ID: 3, Type: "video"}.Round()
		require.ErrorIs(t, err, ErrUnknownRoundType)
	})

	t.Run("spec round trip keeps fields", func(t *testing.T) {
		spec := RoundSpec{ID: 5, Type: RoundTypeAssessment, Name: "quiz", AutoProceed: true, AssessmentID: "a-9", SelectionCriteria: intPtr(60)}
		round, err := spec.Round()
		require.NoError(t, err)
		assert.Equal(t, spec, SpecOf(round))
	})
}

func TestRoundType_UnmarshalText(t *testing.T) {
	var rt RoundType
	require.NoError(t, rt.UnmarshalText([]byte(" Assessment ")))
	assert.Equal(t, RoundTypeAssessment, rt)
	assert.Error(t, rt.UnmarshalText([]byte("coding")))
}

func TestRoundCatalog(t *testing.T) {
	job := sampleJob()

	pos, ok := job.Rounds.Position(1)
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.False(t, job.Rounds.IsLast(pos))
	assert.True(t, job.Rounds.IsLast(2))

	_, ok = job.Rounds.Position(42)
	assert.False(t, ok)

	_, ok = job.Rounds.At(3)
	assert.False(t, ok)

	assert.Equal(t, []int64{0, 1, 2}, job.Rounds.Order())
	assert.True(t, job.Rounds.Extends([]int64{0, 1, 2}))
	assert.True(t, job.Rounds.Extends([]int64{0, 1}), "appended rounds keep earlier positions")
	assert.True(t, job.Rounds.Extends(nil))
	assert.False(t, job.Rounds.Extends([]int64{1, 0, 2}))
	assert.False(t, job.Rounds.Extends([]int64{0, 2}), "a removed or inserted round shifts positions")
	assert.False(t, job.Rounds.Extends([]int64{0, 1, 2, 3}))
}

func TestRoundCatalog_PositionDecoupledFromID(t *testing.T) {
	// Timestamp-style ids after a reorder: positions still follow slice order.
	catalog, err := CatalogFromSpecs([]RoundSpec{
		{ID: 1700000000300, Type: RoundTypeAIInterview, TemplateID: "t"},
		{ID: 1700000000100, Type: RoundTypeScreening},
	})
	require.NoError(t, err)

	pos, ok := catalog.Position(1700000000100)
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.True(t, catalog.IsLast(pos))
}

func TestCatalogFromSpecs_DuplicateIDs(t *testing.T) {
	_, err := CatalogFromSpecs([]RoundSpec{
		{ID: 1, Type: RoundTypeScreening},
		{ID: 1, Type: RoundTypeScreening},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate round id 1")
}

func TestJob_JSONRoundTrip(t *testing.T) {
	job := sampleJob()

	b, err := json.Marshal(job)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"type":"assessment"`)
	assert.Contains(t, string(b), `"selection_criteria":70`)

	var decoded Job
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, job.Rounds.Specs(), decoded.Rounds.Specs())
	assert.Equal(t, job.CompanyID, decoded.CompanyID)
}

func TestJob_UnmarshalRejectsUnknownRoundType(t *testing.T) {
	var job Job
	err := json.Unmarshal([]byte(`{"id":"j","company_id":"c","rounds":[{"id":0,"type":"whiteboard"}]}`), &job)
	require.ErrorIs(t, err, ErrUnknownRoundType)
}

func TestJob_Validate(t *testing.T) {
	job := sampleJob()
	require.NoError(t, job.Validate())

	missingCompany := sampleJob()
	missingCompany.CompanyID = ""
	assert.Error(t, missingCompany.Validate())

	dup := sampleJob()
	dup.Rounds = append(dup.Rounds, ScreeningRound{RoundBase: RoundBase{ID: 0}})
	assert.Error(t, dup.Validate())
}
