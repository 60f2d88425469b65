package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/hiring-pipeline/internal/domain/model"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Run("defaults to local test database port 55432", func(t *testing.T) {
		for _, k := range []string{"TEST_DB_HOST", "TEST_DB_PORT", "TEST_DB_USER", "TEST_DB_PASSWORD", "TEST_DB_NAME"} {
			t.Setenv(k, "")
		}
		cfg := DefaultTestDBConfig()
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, "55432", cfg.Port)
		assert.Equal(t, "hiring", cfg.User)
		assert.Equal(t, "hiring", cfg.DBName)
	})

	t.Run("respects TEST_DB_PORT", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "postgres")
		t.Setenv("TEST_DB_PORT", "5432")
		cfg := DefaultTestDBConfig()
		assert.Equal(t, "postgres", cfg.Host)
		assert.Equal(t, "5432", cfg.Port)
	})
}

func TestJobBuilder(t *testing.T) {
	job := NewJob("job-1").
		Screening("s1").
		Assessment("a-1", IntPtr(70), true).
		AIInterview("tpl").
		Build()

	require.NoError(t, job.Validate())
	assert.Equal(t, []int64{0, 1, 2}, job.Rounds.Order())
	round, ok := job.Rounds.At(1)
	require.True(t, ok)
	assert.Equal(t, model.RoundTypeAssessment, round.Type())
	assert.True(t, round.ProceedsAutomatically())
}

func TestMCQBank(t *testing.T) {
	a, questions := MCQBank("a-1", "m", 4)
	require.Len(t, questions, 4)
	answers := MCQAnswers(a, 3)
	assert.Equal(t, "A", answers[2].Answer)
	assert.Equal(t, "B", answers[3].Answer)
	assert.True(t, questions["m0"].IsCorrectChoice("A"))
}

func TestCleanupTablesOrder(t *testing.T) {
	assert.Equal(t, "applications", cleanupTables[0], "applications reference jobs and must be deleted first")
}
