// Package amqp publishes pipeline events to a RabbitMQ queue.
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/target/hiring-pipeline/internal/domain/model"
	"github.com/target/hiring-pipeline/internal/observability/notify"
)

// DefaultQueue is the queue declared when none is configured.
const DefaultQueue = "hiring.events"

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Config configures a Publisher.
type Config struct {
	URL    string
	Queue  string
	Logger *slog.Logger
}

// Publisher sends events to a durable queue as persistent JSON messages.
type Publisher struct {
	conn   *amqp.Connection
	ch     channel
	queue  string
	logger *slog.Logger
	mu     sync.Mutex
}

var _ notify.Sink = (*Publisher)(nil)

// Dial connects to the broker and declares the queue.
func Dial(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("amqp url is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	p, err := newPublisher(ch, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, cfg Config) (*Publisher, error) {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultQueue
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("amqp declare queue %s: %w", queue, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		ch:     ch,
		queue:  q.Name,
		logger: logger.With("component", "amqp_publisher", "queue", q.Name),
	}, nil
}

// Publish sends ev to the queue. Channels are not safe for concurrent publishing, so calls are serialized.
func (p *Publisher) Publish(ctx context.Context, ev model.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         string(ev.Kind),
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	p.logger.DebugContext(ctx, "event published", "event_id", ev.ID, "event_kind", ev.Kind)
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
