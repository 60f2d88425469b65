// Package notify defines the destination contract for outbound pipeline events.
package notify

import (
	"context"

	"github.com/target/hiring-pipeline/internal/domain/model"
)

// Sink describes a destination capable of consuming pipeline events.
type Sink interface {
	Publish(ctx context.Context, ev model.Event) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, ev model.Event) error

// Publish implements the Sink interface.
func (f SinkFunc) Publish(ctx context.Context, ev model.Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, ev)
}
