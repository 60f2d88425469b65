package pipeline

import (
	"time"

	"github.com/target/hiring-pipeline/internal/domain/model"
)

// DefaultDueOffset is how long a candidate has to attempt a newly scheduled round.
const DefaultDueOffset = 48 * time.Hour

// ScheduleGenerator creates deadline windows for rounds that require one.
type ScheduleGenerator struct {
	dueOffset time.Duration
}

// NewScheduleGenerator returns a generator using dueOffset, or DefaultDueOffset when dueOffset is not positive.
func NewScheduleGenerator(dueOffset time.Duration) *ScheduleGenerator {
	if dueOffset <= 0 {
		dueOffset = DefaultDueOffset
	}
	return &ScheduleGenerator{dueOffset: dueOffset}
}

// DueOffset returns the configured offset.
func (g *ScheduleGenerator) DueOffset() time.Duration {
	if g == nil {
		return DefaultDueOffset
	}
	return g.dueOffset
}

// Generate returns a Pending schedule for round starting at now. The bool is false when the
// round type does not use schedules.
func (g *ScheduleGenerator) Generate(round model.Round, now time.Time) (model.Schedule, bool) {
	if round == nil || !round.Capabilities().RequiresSchedule {
		return model.Schedule{}, false
	}
	now = now.UTC()
	return model.Schedule{
		RoundID:     round.RoundID(),
		ScheduledAt: now,
		DueDate:     now.Add(g.DueOffset()),
		Status:      model.ScheduleStatusPending,
	}, true
}
