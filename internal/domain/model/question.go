package model

import (
	"errors"
	"slices"
)

// QuestionType categorizes questions in the bank.
type QuestionType string

const (
	// QuestionTypeMCQ is a multiple-choice question with a single correct answer.
	QuestionTypeMCQ QuestionType = "mcq"
	// QuestionTypeScreening is a screening question with a set of acceptable answers.
	QuestionTypeScreening QuestionType = "screening"
	// QuestionTypeSubjective is a free-text question graded by a human.
	QuestionTypeSubjective QuestionType = "subjective"
	// QuestionTypeCode is a coding question graded outside the engine.
	QuestionTypeCode QuestionType = "code"
)

// Valid returns true if the QuestionType is known.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMCQ, QuestionTypeScreening, QuestionTypeSubjective, QuestionTypeCode:
		return true
	default:
		return false
	}
}

// Question is an entry of the question bank.
type Question struct {
	ID     string       `json:"id"                           yaml:"id"                           db:"id"`
	Type   QuestionType `json:"type"                         yaml:"type"                         db:"type"`
	Prompt string       `json:"prompt,omitempty"             yaml:"prompt,omitempty"             db:"prompt"`
	// Options lists the choices shown for mcq and screening questions.
	Options []string `json:"options,omitempty"            yaml:"options,omitempty"            db:"options"`
	// AcceptableAnswers is the screening answer set. Empty means the question is not evaluated.
	AcceptableAnswers []string `json:"acceptable_answers,omitempty" yaml:"acceptable_answers,omitempty" db:"acceptable_answers"`
	// IsStrict marks a screening question whose wrong answer fails the whole screening.
	IsStrict      bool    `json:"is_strict,omitempty"          yaml:"is_strict,omitempty"          db:"is_strict"`
	CorrectAnswer *string `json:"correct_answer,omitempty"     yaml:"correct_answer,omitempty"     db:"correct_answer"`
}

// Evaluated reports whether the question has an acceptable answer set.
func (q Question) Evaluated() bool { return len(q.AcceptableAnswers) > 0 }

// Accepts reports whether answer is a member of the acceptable answer set.
func (q Question) Accepts(answer string) bool {
	return slices.Contains(q.AcceptableAnswers, answer)
}

// IsCorrectChoice reports whether answer is the stored correct answer of an mcq question.
func (q Question) IsCorrectChoice(answer string) bool {
	return q.Type == QuestionTypeMCQ && q.CorrectAnswer != nil && *q.CorrectAnswer == answer
}

// Validate checks the question definition.
func (q *Question) Validate() error {
	if q.ID == "" {
		return errors.New("question id is required")
	}
	if !q.Type.Valid() {
		return errors.New("invalid question type")
	}
	if q.Type == QuestionTypeMCQ && q.CorrectAnswer == nil {
		return errors.New("mcq question requires correct_answer")
	}
	return nil
}

// Assessment groups questions scored together in an assessment round.
type Assessment struct {
	ID          string   `json:"id"              yaml:"id"              db:"id"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty" db:"title"`
	QuestionIDs []string `json:"question_ids"    yaml:"question_ids"    db:"question_ids"`
}

// Validate checks the assessment definition.
func (a *Assessment) Validate() error {
	if a.ID == "" {
		return errors.New("assessment id is required")
	}
	seen := make(map[string]struct{}, len(a.QuestionIDs))
	for _, id := range a.QuestionIDs {
		if id == "" {
			return errors.New("assessment question id is empty")
		}
		if _, dup := seen[id]; dup {
			return errors.New("duplicate assessment question id " + id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
