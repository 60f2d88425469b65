package notify

import (
	"context"
	"log/slog"

	"github.com/target/hiring-pipeline/internal/domain/model"
)

// LogSink writes events to a structured logger. It is the default sink when no broker is configured.
type LogSink struct {
	Logger *slog.Logger
}

// Publish implements Sink.
func (s LogSink) Publish(ctx context.Context, ev model.Event) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "pipeline event",
		"event_id", ev.ID,
		"event_kind", ev.Kind,
		"recipient_id", ev.RecipientID,
		"occurred_at", ev.OccurredAt,
		"payload", ev.Payload,
	)
	return nil
}
