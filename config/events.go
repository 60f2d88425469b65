package config

import (
	"slices"
	"strings"
	"time"
)

// EventSink names an outbound event destination.
type EventSink string

const (
	// EventSinkLog writes events to the application log.
	EventSinkLog EventSink = "log"
	// EventSinkRedis appends events to a Redis stream.
	EventSinkRedis EventSink = "redis"
	// EventSinkAMQP publishes events to a RabbitMQ queue.
	EventSinkAMQP EventSink = "amqp"
	// EventSinkSlack posts events to a Slack webhook.
	EventSinkSlack EventSink = "slack"
)

// EventsConfig controls where pipeline events are delivered.
type EventsConfig struct {
	Sinks []string `env:"EVENTS_SINKS" envDefault:"log"`
	// Timeout bounds each sink's delivery of one event.
	Timeout time.Duration `env:"EVENTS_TIMEOUT" envDefault:"5s"`

	RedisStream    string `env:"EVENTS_REDIS_STREAM"     envDefault:"hiring:events"`
	RedisStreamMax int64  `env:"EVENTS_REDIS_STREAM_MAX" envDefault:"100000"`

	AMQPURL   string `env:"EVENTS_AMQP_URL"`
	AMQPQueue string `env:"EVENTS_AMQP_QUEUE" envDefault:"hiring.events"`

	Slack SlackEventsConfig `envPrefix:"EVENTS_SLACK_"`
}

// SlackEventsConfig controls Slack webhook fan-out of pipeline events.
type SlackEventsConfig struct {
	WebhookURL           string   `env:"WEBHOOK_URL"`
	Channel              string   `env:"CHANNEL"`
	Username             string   `env:"USERNAME"               envDefault:"hiring-pipeline"`
	RetryLimit           int      `env:"RETRY_LIMIT"            envDefault:"2"`
	ApplicationURLPrefix string   `env:"APPLICATION_URL_PREFIX"`
	Kinds                []string `env:"KINDS"`
}

// Sanitize normalises sink names, drops unknown ones and disables sinks missing their settings.
func (c *EventsConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	c.AMQPURL = strings.TrimSpace(c.AMQPURL)
	c.Slack.WebhookURL = strings.TrimSpace(c.Slack.WebhookURL)
	if c.Slack.RetryLimit < 0 {
		c.Slack.RetryLimit = 0
	}

	var sinks []string
	for _, raw := range c.Sinks {
		name := EventSink(strings.ToLower(strings.TrimSpace(raw)))
		switch name {
		case EventSinkLog, EventSinkRedis:
		case EventSinkAMQP:
			if c.AMQPURL == "" {
				continue
			}
		case EventSinkSlack:
			if c.Slack.WebhookURL == "" {
				continue
			}
		default:
			continue
		}
		if !slices.Contains(sinks, string(name)) {
			sinks = append(sinks, string(name))
		}
	}
	c.Sinks = sinks
}

// Enabled reports whether sink survived sanitisation.
func (c *EventsConfig) Enabled(sink EventSink) bool {
	return slices.Contains(c.Sinks, string(sink))
}
