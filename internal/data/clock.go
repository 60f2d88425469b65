package data

import (
	"sync"
	"time"

	"github.com/target/hiring-pipeline/internal/core"
)

var (
	_ core.Clock = SystemClock{}
	_ core.Clock = (*StepClock)(nil)
)

// SystemClock stamps rows with wall-clock time.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// StepClock returns start on the first call and advances by step on each later call.
type StepClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewStepClock returns a StepClock. A zero step yields a fixed clock.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{next: start, step: step}
}

// Now returns the current reading and advances the clock.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}
