package pipeline

import (
	"github.com/target/hiring-pipeline/internal/domain/model"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
)

// Inputs carries the question bank reads a round evaluation needs.
type Inputs struct {
	Questions  map[string]model.Question
	Assessment *model.Assessment
}

// Evaluation is the type-independent outcome of scoring a round submission.
type Evaluation struct {
	Status model.RoundStatus
	Score  *int
}

// QuestionIDs returns the question ids that must be loaded to evaluate round.
func QuestionIDs(round model.Round, assessment *model.Assessment) []string {
	switch r := round.(type) {
	case model.ScreeningRound:
		return r.QuestionIDs
	case model.AssessmentRound:
		if assessment != nil {
			return assessment.QuestionIDs
		}
	}
	return nil
}

// Evaluate scores answers for a round submitted after application time.
// ai-interview rounds are graded elsewhere and always come back Pending.
func Evaluate(round model.Round, in Inputs, answers []model.Answer) (Evaluation, error) {
	switch r := round.(type) {
	case model.ScreeningRound:
		out, err := EvaluateScreening(r, in.Questions, answers)
		if err != nil {
			return Evaluation{}, err
		}
		return Evaluation{Status: out.Status(), Score: out.Score}, nil
	case model.AssessmentRound:
		if in.Assessment == nil {
			return Evaluation{}, apperrors.NotFoundf("assessment %s not found", r.AssessmentID)
		}
		out, err := ScoreAssessment(r, *in.Assessment, in.Questions, answers)
		if err != nil {
			return Evaluation{}, err
		}
		score := out.Score
		return Evaluation{Status: out.Status, Score: &score}, nil
	case model.AIInterviewRound:
		return Evaluation{Status: model.RoundStatusPending}, nil
	default:
		return Evaluation{}, apperrors.Internalf("unsupported round type %T", round)
	}
}
