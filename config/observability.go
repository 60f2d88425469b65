package config

import "strings"

// ObservabilityConfig groups telemetry settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig
}

// Sanitize normalises nested configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
}

// MetricsConfig points progression counters and timings at a StatsD agent.
type MetricsConfig struct {
	Enabled       bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	// Prefix is prepended with a dot to every metric name.
	Prefix string `env:"OBSERVABILITY_METRICS_PREFIX" envDefault:"hiring_pipeline"`
}

// Sanitize trims values and turns metrics off without an address.
func (c *MetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), ".")
	c.Enabled = c.Enabled && c.StatsdAddress != ""
}

// IsEnabled reports whether metrics should be emitted.
func (c *MetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}
