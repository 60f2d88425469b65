// Package metrics defines the metric names and tag sets emitted by the pipeline services.
package metrics

import (
	"maps"
	"strconv"
	"time"

	obserrors "github.com/target/hiring-pipeline/internal/observability/errors"
	"github.com/target/hiring-pipeline/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess   = "success"
	ResultError     = "error"
	ResultDuplicate = "duplicate"
)

// Operation names used as the "operation" tag.
const (
	OpSubmitApplication = "submit_application"
	OpSubmitRound       = "submit_round"
	OpSubmitFeedback    = "submit_feedback"
)

// RoundMetric captures one evaluation for metric emission.
type RoundMetric struct {
	Operation string
	RoundType string
	// Outcome is the recorded round status, empty when evaluation failed.
	Outcome  string
	Result   string
	Advanced bool
	Duration time.Duration
	Err      error
}

// EmitRoundEvaluation emits the round.evaluation counter and duration timing.
func EmitRoundEvaluation(sink statsd.Sink, in RoundMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation":  in.Operation,
		"round_type": in.RoundType,
		"result":     in.Result,
	}
	if in.Outcome != "" {
		tags["outcome"] = in.Outcome
	}
	if in.Advanced {
		tags["advanced"] = "true"
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("round.evaluation", 1, tags)
	if in.Duration > 0 {
		sink.Timing("round.evaluation.duration", in.Duration, maps.Clone(tags))
	}
}

// EmitSaveRetry counts an optimistic write that lost the race and was retried.
func EmitSaveRetry(sink statsd.Sink, operation string, attempt int) {
	if sink == nil {
		return
	}
	sink.Count("application.save.retry", 1, map[string]string{
		"operation": operation,
		"attempt":   strconv.Itoa(attempt),
	})
}
