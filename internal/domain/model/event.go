package model

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names an outbound notification emitted after a state change.
type EventKind string

const (
	// EventApplicationSubmitted is emitted when an application is created.
	EventApplicationSubmitted EventKind = "application_submitted"
	// EventRoundCompleted is emitted when a round result is recorded.
	EventRoundCompleted EventKind = "round_completed"
	// EventRoundScheduled is emitted when reaching a round creates a schedule.
	EventRoundScheduled EventKind = "round_scheduled"
	// EventFeedbackRecorded is emitted when feedback is attached to a round result.
	EventFeedbackRecorded EventKind = "feedback_recorded"
)

// Event is a best-effort notification for the delivery subsystem.
type Event struct {
	ID          string         `json:"id"`
	Kind        EventKind      `json:"kind"`
	RecipientID string         `json:"recipient_id"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// NewEvent builds an Event with a fresh id.
func NewEvent(kind EventKind, recipientID string, at time.Time, payload map[string]any) Event {
	return Event{
		ID:          uuid.NewString(),
		Kind:        kind,
		RecipientID: recipientID,
		OccurredAt:  at.UTC(),
		Payload:     payload,
	}
}
