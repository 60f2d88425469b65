// Package eventnotifier fans pipeline events out to every configured sink.
package eventnotifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/target/hiring-pipeline/internal/core"
	"github.com/target/hiring-pipeline/internal/domain/model"
	"github.com/target/hiring-pipeline/internal/observability/notify"
)

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the notifier.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
	// Timeout bounds each sink delivery. Zero means no extra bound beyond the caller's context.
	Timeout time.Duration
}

// Service delivers events to all registered sinks concurrently.
type Service struct {
	logger  *slog.Logger
	sinks   []SinkRegistration
	timeout time.Duration
}

var _ core.EventEmitter = (*Service)(nil)

// NewService constructs a notifier. Nil sinks are ignored.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		if entry.Name == "" {
			entry.Name = "sink"
		}
		sinks = append(sinks, entry)
	}

	return &Service{
		logger:  logger.With("component", "event_notifier"),
		sinks:   sinks,
		timeout: opts.Timeout,
	}
}

// Emit delivers ev to every sink and waits for all of them.
// Each failing sink is logged; the joined error is returned for the caller to record.
func (s *Service) Emit(ctx context.Context, ev model.Event) error {
	if len(s.sinks) == 0 {
		return nil
	}

	errs := make([]error, len(s.sinks))
	var wg sync.WaitGroup
	for i, entry := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sctx := ctx
			if s.timeout > 0 {
				var cancel context.CancelFunc
				sctx, cancel = context.WithTimeout(ctx, s.timeout)
				defer cancel()
			}
			if err := entry.Sink.Publish(sctx, ev); err != nil {
				s.logger.ErrorContext(ctx, "event delivery error",
					"sink", entry.Name,
					"event_id", ev.ID,
					"event_kind", ev.Kind,
					"error", err,
				)
				errs[i] = fmt.Errorf("%s: %w", entry.Name, err)
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return len(s.sinks) > 0
}
