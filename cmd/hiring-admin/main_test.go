package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/hiring-pipeline/config"
	"github.com/target/hiring-pipeline/internal/devseed"
	"github.com/target/hiring-pipeline/internal/domain/model"
	"github.com/target/hiring-pipeline/internal/migrate"
)

func TestIsLikelyRemoteHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"", false},
		{"localhost", false},
		{" LOCALHOST ", false},
		{"127.0.0.1", false},
		{"127.0.0.2", false},
		{"::1", false},
		{"db.local", false},
		{"10.0.0.5", true},
		{"postgres.prod.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, isLikelyRemoteHost(tt.host))
		})
	}
}

func newTestCommandContext(host, stdin string) (*commandContext, *bytes.Buffer) {
	var stderr bytes.Buffer
	cfg := config.AppConfig{}
	cfg.Postgres.Host = host
	return &commandContext{
		Ctx:    context.Background(),
		Config: cfg,
		Stdin:  strings.NewReader(stdin),
		Stdout: &bytes.Buffer{},
		Stderr: &stderr,
	}, &stderr
}

func TestGuardRemoteHost(t *testing.T) {
	t.Run("local host passes without prompt", func(t *testing.T) {
		cc, stderr := newTestCommandContext("localhost", "")
		remote, err := guardRemoteHost(cc, false, "seed")
		require.NoError(t, err)
		assert.False(t, remote)
		assert.Empty(t, stderr.String())
	})

	t.Run("remote host refused without flag", func(t *testing.T) {
		cc, _ := newTestCommandContext("db.example.com", "")
		remote, err := guardRemoteHost(cc, false, "seed")
		require.Error(t, err)
		assert.True(t, remote)
		assert.Contains(t, err.Error(), "--allow-remote")
	})

	t.Run("remote host confirmed by typing host", func(t *testing.T) {
		cc, stderr := newTestCommandContext("db.example.com", "db.example.com\n")
		remote, err := guardRemoteHost(cc, true, "seed")
		require.NoError(t, err)
		assert.True(t, remote)
		assert.Contains(t, stderr.String(), "WARNING")
	})

	t.Run("wrong confirmation aborts", func(t *testing.T) {
		cc, stderr := newTestCommandContext("db.example.com", "yes\n")
		_, err := guardRemoteHost(cc, true, "seed")
		require.EqualError(t, err, "aborted by user")
		assert.Contains(t, stderr.String(), "Remote safeguard check failed")
	})
}

func TestWithDatabase_RejectsNonPositiveTimeout(t *testing.T) {
	cc, _ := newTestCommandContext("localhost", "")
	err := withDatabase(cc, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--timeout")
}

func TestRenderMigrationStatus(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderMigrationStatus(&buf, []migrate.Migration{
		{Version: "0001_init.sql", Applied: true},
		{Version: "0002_next.sql"},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "VERSION")
	assert.Contains(t, lines[1], "0001_init.sql")
	assert.True(t, strings.HasSuffix(lines[1], "yes"))
	assert.True(t, strings.HasSuffix(lines[2], "no"))
}

func TestRenderSeedSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderSeedSummary(&buf, devseed.Summary{Questions: 8, Assessments: 1, Jobs: 1, Failures: 2}))
	assert.Equal(t, "Seeded 8 questions, 1 assessments, 1 jobs (2 failures)\n", buf.String())
}

func TestLoadCatalog_DefaultWhenNoFile(t *testing.T) {
	c, err := loadCatalog("  ")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Jobs)
}

func sampleApplication() *model.Application {
	score := 75
	taken := int64(95)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &model.Application{
		ID:               "app-1",
		JobID:            "backend-engineer",
		CandidateID:      "cand-7",
		Status:           model.ApplicationStatusInProgress,
		ActiveRoundIndex: 1,
		RoundOrder:       []int64{0, 1, 2},
		Results: []model.RoundResult{
			{RoundID: 0, Status: model.RoundStatusPassed, CompletedAt: now},
			{
				RoundID:     1,
				Status:      model.RoundStatusPassed,
				Score:       &score,
				TimeTaken:   &taken,
				CompletedAt: now,
				Feedback:    &model.Feedback{Rating: 4, SubmittedAt: now},
			},
		},
		Schedules: []model.Schedule{{
			RoundID:     1,
			ScheduledAt: now,
			DueDate:     now.Add(48 * time.Hour),
			Status:      model.ScheduleStatusAttempted,
		}},
		Version: 3,
	}
}

func TestRenderApplication(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderApplication(&buf, sampleApplication()))

	out := buf.String()
	assert.Contains(t, out, "Application app-1")
	assert.Contains(t, out, "Status: In Progress")
	assert.Contains(t, out, "Active round index: 1")
	assert.Contains(t, out, "1m35s")
	assert.Contains(t, out, "4/5")
	assert.Contains(t, out, "2026-03-03T12:00:00Z")
}

func TestRenderApplication_NoResults(t *testing.T) {
	app := &model.Application{ID: "app-2", Status: model.ApplicationStatusSubmitted}
	var buf bytes.Buffer
	require.NoError(t, renderApplication(&buf, app))
	assert.Contains(t, buf.String(), "(none)")
	assert.NotContains(t, buf.String(), "Schedules")
}

func TestRenderApplicationJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderApplicationJSON(&buf, sampleApplication()))

	var decoded model.Application
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "cand-7", decoded.CandidateID)
	assert.Equal(t, int64(3), decoded.Version)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "seed", "show-application", "list-applications"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestRenderApplicationPage(t *testing.T) {
	app := sampleApplication()
	app.UpdatedAt = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, renderApplicationPage(&buf, &model.ApplicationPage{
		Applications: []model.Application{*app},
		Total:        12,
		Limit:        1,
		Offset:       3,
	}))

	out := buf.String()
	assert.Contains(t, out, "CANDIDATE")
	assert.Contains(t, out, "cand-7")
	assert.Contains(t, out, "2026-03-02T08:00:00Z")
	assert.Contains(t, out, "Showing 1 of 12 (offset 3)")
}
