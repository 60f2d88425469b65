// Package redis provides Redis-based adapters for the hiring pipeline.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/target/hiring-pipeline/internal/domain/model"
	"github.com/target/hiring-pipeline/internal/observability/notify"
)

// DefaultStream is the stream events are appended to when none is configured.
const DefaultStream = "hiring:events"

// StreamSink appends events to a Redis stream for the notification subsystem to consume.
type StreamSink struct {
	client redis.UniversalClient
	stream string
	maxLen int64
}

var _ notify.Sink = (*StreamSink)(nil)

// StreamSinkOptions configures a StreamSink.
type StreamSinkOptions struct {
	Stream string
	// MaxLen approximately caps the stream length. Zero leaves it unbounded.
	MaxLen int64
}

// NewStreamSink creates a StreamSink.
func NewStreamSink(client redis.UniversalClient, opts StreamSinkOptions) *StreamSink {
	stream := opts.Stream
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamSink{client: client, stream: stream, maxLen: opts.MaxLen}
}

// Stream returns the stream key.
func (s *StreamSink) Stream() string { return s.stream }

// Publish adds ev to the stream. The entry carries the event id, kind and recipient as
// fields next to the JSON encoded event.
func (s *StreamSink) Publish(ctx context.Context, ev model.Event) error {
	if ev.ID == "" {
		return errors.New("event ID cannot be empty")
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"id":        ev.ID,
			"kind":      string(ev.Kind),
			"recipient": ev.RecipientID,
			"event":     data,
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis xadd %s: %w", s.stream, err)
	}
	return nil
}

// Read decodes up to count entries from the start of the stream. It is used by tooling and tests.
func (s *StreamSink) Read(ctx context.Context, count int64) ([]model.Event, error) {
	msgs, err := s.client.XRangeN(ctx, s.stream, "-", "+", count).Result()
	if err != nil {
		return nil, fmt.Errorf("redis xrange %s: %w", s.stream, err)
	}
	out := make([]model.Event, 0, len(msgs))
	for _, m := range msgs {
		raw, ok := m.Values["event"].(string)
		if !ok {
			return nil, fmt.Errorf("stream entry %s has no event payload", m.ID)
		}
		var ev model.Event
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			return nil, fmt.Errorf("decode stream entry %s: %w", m.ID, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
