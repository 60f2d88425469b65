package model

import (
	"errors"
	"fmt"
	"strings"
)

// RoundType identifies the kind of a hiring round.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type RoundType string

const (
	// RoundTypeScreening is a questionnaire evaluated against acceptable answers.
	RoundTypeScreening RoundType = "screening"
	// RoundTypeAssessment is a scored assessment with an optional pass threshold.
	RoundTypeAssessment RoundType = "assessment"
	// RoundTypeAIInterview is an AI-led interview graded outside the engine.
	RoundTypeAIInterview RoundType = "ai-interview"
)

// Valid returns true if the RoundType is one the engine can evaluate.
func (t RoundType) Valid() bool {
	return t == RoundTypeScreening || t == RoundTypeAssessment || t == RoundTypeAIInterview
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *RoundType) UnmarshalText(text []byte) error {
	v := RoundType(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRoundType, string(v))
	}
	*t = v
	return nil
}

// Capabilities describes what the engine has to do for a round.
type Capabilities struct {
	// RequiresScoring is true when the engine computes a score for submissions.
	RequiresScoring bool
	// RequiresSchedule is true when reaching the round creates a deadline window.
	RequiresSchedule bool
	// RequiresQuestionBank is true when submissions reference stored questions.
	RequiresQuestionBank bool
}

// Round is one stage of a job's pipeline. The set of implementations is closed.
type Round interface {
	RoundID() int64
	RoundName() string
	Type() RoundType
	ProceedsAutomatically() bool
	Capabilities() Capabilities
	isRound()
}

// RoundBase carries the fields common to every round type.
type RoundBase struct {
	// ID is stable across edits and reorders; results are correlated by it.
	ID          int64
	Name        string
	AutoProceed bool
}

// RoundID returns the stable round identifier.
func (b RoundBase) RoundID() int64 { return b.ID }

// RoundName returns the display name.
func (b RoundBase) RoundName() string { return b.Name }

// ProceedsAutomatically reports whether a pass advances the candidate without operator action.
func (b RoundBase) ProceedsAutomatically() bool { return b.AutoProceed }

// ScreeningRound is a questionnaire round.
type ScreeningRound struct {
	RoundBase
	QuestionIDs []string
}

// Type implements Round.
func (ScreeningRound) Type() RoundType { return RoundTypeScreening }

// Capabilities implements Round.
func (ScreeningRound) Capabilities() Capabilities {
	return Capabilities{RequiresScoring: true, RequiresQuestionBank: true}
}

func (ScreeningRound) isRound() {}

// AssessmentRound links a stored Assessment and an optional pass percentage.
type AssessmentRound struct {
	RoundBase
	AssessmentID string
	// SelectionCriteria is the pass threshold in percent. Nil means results await manual review.
	SelectionCriteria *int
}

// Type implements Round.
func (AssessmentRound) Type() RoundType { return RoundTypeAssessment }

// Capabilities implements Round.
func (AssessmentRound) Capabilities() Capabilities {
	return Capabilities{RequiresScoring: true, RequiresSchedule: true, RequiresQuestionBank: true}
}

func (AssessmentRound) isRound() {}

// AIInterviewRound references an interview template. Submissions are not auto-scored.
type AIInterviewRound struct {
	RoundBase
	TemplateID string
}

// Type implements Round.
func (AIInterviewRound) Type() RoundType { return RoundTypeAIInterview }

// Capabilities implements Round.
func (AIInterviewRound) Capabilities() Capabilities { return Capabilities{} }

func (AIInterviewRound) isRound() {}

var (
	_ Round = ScreeningRound{}
	_ Round = AssessmentRound{}
	_ Round = AIInterviewRound{}
)

// RoundSpec is the flat, tagged wire and storage form of a Round.
type RoundSpec struct {
	ID                int64     `json:"id"                           yaml:"id"`
	Type              RoundType `json:"type"                         yaml:"type"`
	Name              string    `json:"name,omitempty"               yaml:"name,omitempty"`
	AutoProceed       bool      `json:"auto_proceed,omitempty"       yaml:"auto_proceed,omitempty"`
	QuestionIDs       []string  `json:"question_ids,omitempty"       yaml:"question_ids,omitempty"`
	AssessmentID      string    `json:"assessment_id,omitempty"      yaml:"assessment_id,omitempty"`
	SelectionCriteria *int      `json:"selection_criteria,omitempty" yaml:"selection_criteria,omitempty"`
	TemplateID        string    `json:"template_id,omitempty"        yaml:"template_id,omitempty"`
}

// ErrUnknownRoundType is returned when a RoundSpec names a reserved or disabled round type.
var ErrUnknownRoundType = errors.New("unknown round type")

// Round converts s into its typed Round.
//
//nolint:ireturn // Round is a closed sum type.
func (s RoundSpec) Round() (Round, error) {
	base := RoundBase{ID: s.ID, Name: s.Name, AutoProceed: s.AutoProceed}
	switch s.Type {
	case RoundTypeScreening:
		return ScreeningRound{RoundBase: base, QuestionIDs: append([]string(nil), s.QuestionIDs...)}, nil
	case RoundTypeAssessment:
		if strings.TrimSpace(s.AssessmentID) == "" {
			return nil, fmt.Errorf("round %d: assessment_id is required", s.ID)
		}
		if c := s.SelectionCriteria; c != nil && (*c < 0 || *c > 100) {
			return nil, fmt.Errorf("round %d: selection_criteria must be between 0 and 100", s.ID)
		}
		return AssessmentRound{RoundBase: base, AssessmentID: s.AssessmentID, SelectionCriteria: copyInt(s.SelectionCriteria)}, nil
	case RoundTypeAIInterview:
		if strings.TrimSpace(s.TemplateID) == "" {
			return nil, fmt.Errorf("round %d: template_id is required", s.ID)
		}
		return AIInterviewRound{RoundBase: base, TemplateID: s.TemplateID}, nil
	default:
		return nil, fmt.Errorf("round %d: %w %q", s.ID, ErrUnknownRoundType, s.Type)
	}
}

// SpecOf flattens a Round into its RoundSpec.
func SpecOf(r Round) RoundSpec {
	spec := RoundSpec{
		ID:          r.RoundID(),
		Type:        r.Type(),
		Name:        r.RoundName(),
		AutoProceed: r.ProceedsAutomatically(),
	}
	switch v := r.(type) {
	case ScreeningRound:
		spec.QuestionIDs = append([]string(nil), v.QuestionIDs...)
	case AssessmentRound:
		spec.AssessmentID = v.AssessmentID
		spec.SelectionCriteria = copyInt(v.SelectionCriteria)
	case AIInterviewRound:
		spec.TemplateID = v.TemplateID
	}
	return spec
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
