package config

import "time"

// EngineConfig tunes the round progression service.
type EngineConfig struct {
	// MaxSaveRetries is how often a lost compare-and-swap is re-read and recomputed.
	MaxSaveRetries int `env:"ENGINE_MAX_SAVE_RETRIES" envDefault:"3"`
	// ScheduleDueOffset is the deadline window given to a newly reached round.
	ScheduleDueOffset time.Duration `env:"ENGINE_SCHEDULE_DUE_OFFSET" envDefault:"48h"`
	// DependencyTimeout bounds each catalog read made while evaluating a submission.
	DependencyTimeout time.Duration `env:"ENGINE_DEPENDENCY_TIMEOUT" envDefault:"5s"`
}

// Sanitize applies guardrails to engine configuration values.
func (c *EngineConfig) Sanitize() {
	if c.MaxSaveRetries < 0 {
		c.MaxSaveRetries = 0
	}
	if c.MaxSaveRetries > 10 {
		c.MaxSaveRetries = 10
	}
	if c.ScheduleDueOffset <= 0 {
		c.ScheduleDueOffset = 48 * time.Hour
	}
	if c.DependencyTimeout <= 0 {
		c.DependencyTimeout = 5 * time.Second
	}
}
