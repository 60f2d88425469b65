package pipeline

import (
	"github.com/target/hiring-pipeline/internal/domain/model"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
)

// AssessmentOutcome is the result of scoring an assessment submission.
type AssessmentOutcome struct {
	Score   int
	Correct int
	Total   int
	Status  model.RoundStatus
}

// ScoreAssessment counts correct multiple-choice answers against the assessment's question list.
// Other question types contribute nothing and are left for manual grading.
//
// With no selection criteria the status stays Pending so the candidate is never rejected by the
// scorer alone.
func ScoreAssessment(
	round model.AssessmentRound,
	assessment model.Assessment,
	questions map[string]model.Question,
	answers []model.Answer,
) (AssessmentOutcome, error) {
	if round.AssessmentID != assessment.ID {
		return AssessmentOutcome{}, apperrors.Internalf("round %d references assessment %s, got %s",
			round.ID, round.AssessmentID, assessment.ID)
	}
	answers, err := scopeAnswers(assessment.QuestionIDs, answers)
	if err != nil {
		return AssessmentOutcome{}, err
	}

	out := AssessmentOutcome{Total: len(assessment.QuestionIDs)}
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			return AssessmentOutcome{}, apperrors.NotFoundf("question %s not found", a.QuestionID)
		}
		if q.IsCorrectChoice(a.Answer) {
			out.Correct++
		}
	}

	out.Score = percent(out.Correct, out.Total)
	out.Status = Threshold(round.SelectionCriteria, out.Score)
	return out, nil
}

// Threshold applies an optional pass percentage to score.
func Threshold(criteria *int, score int) model.RoundStatus {
	switch {
	case criteria == nil:
		return model.RoundStatusPending
	case score >= *criteria:
		return model.RoundStatusPassed
	default:
		return model.RoundStatusFailed
	}
}
