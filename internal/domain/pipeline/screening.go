// Package pipeline holds the pure round-evaluation logic: the screening evaluator, the assessment
// scorer, the schedule generator and the progression engine that folds a round outcome into an
// Application. Nothing here performs I/O; callers load questions and persist the result.
package pipeline

import (
	"math"

	"github.com/target/hiring-pipeline/internal/domain/model"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
)

// ScreeningOutcome is the result of evaluating a screening submission.
type ScreeningOutcome struct {
	// Score is nil when evaluation halted on a strict miss.
	Score        *int
	FailedStrict bool
	// FailedQuestionID names the strict question that halted evaluation.
	FailedQuestionID string
	Correct          int
	Total            int
}

// Status maps the outcome onto a round status.
func (o ScreeningOutcome) Status() model.RoundStatus {
	if o.FailedStrict {
		return model.RoundStatusFailed
	}
	return model.RoundStatusPassed
}

// ApplicationStatus maps the outcome onto the status of an application screened at creation.
func (o ScreeningOutcome) ApplicationStatus() model.ApplicationStatus {
	if o.FailedStrict {
		return model.ApplicationStatusScreeningFailed
	}
	return model.ApplicationStatusScreeningPassed
}

// EvaluateScreening scores answers against the round's questions.
//
// Answers are walked in submission order. Questions without acceptable answers are skipped.
// The first wrong answer to a strict question stops evaluation and no score is produced.
// questions must contain every question referenced by answers.
func EvaluateScreening(
	round model.ScreeningRound,
	questions map[string]model.Question,
	answers []model.Answer,
) (ScreeningOutcome, error) {
	answers, err := scopeAnswers(round.QuestionIDs, answers)
	if err != nil {
		return ScreeningOutcome{}, err
	}

	out := ScreeningOutcome{Total: len(round.QuestionIDs)}
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			return ScreeningOutcome{}, apperrors.NotFoundf("question %s not found", a.QuestionID)
		}
		if !q.Evaluated() {
			continue
		}
		if q.Accepts(a.Answer) {
			out.Correct++
			continue
		}
		if q.IsStrict {
			out.FailedStrict = true
			out.FailedQuestionID = q.ID
			return out, nil
		}
	}

	score := percent(out.Correct, out.Total)
	out.Score = &score
	return out, nil
}

// percent returns round(correct/total*100), or 0 when total is 0.
func percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) * 100 / float64(total)))
}

// scopeAnswers drops repeated answers to the same question, keeping the first, and rejects
// answers to questions outside allowed.
func scopeAnswers(allowed []string, answers []model.Answer) ([]model.Answer, error) {
	inScope := make(map[string]struct{}, len(allowed))
	for _, id := range allowed {
		inScope[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(answers))
	out := make([]model.Answer, 0, len(answers))
	for _, a := range answers {
		if _, ok := inScope[a.QuestionID]; !ok {
			return nil, apperrors.ValidationField("question_id",
				"question "+a.QuestionID+" is not part of this round")
		}
		if _, dup := seen[a.QuestionID]; dup {
			continue
		}
		seen[a.QuestionID] = struct{}{}
		out = append(out, a)
	}
	return out, nil
}
