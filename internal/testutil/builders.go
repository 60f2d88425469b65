package testutil

import (
	"fmt"

	"github.com/target/hiring-pipeline/internal/domain/model"
)

// JobBuilder provides a fluent interface for building jobs with a round catalog for testing.
type JobBuilder struct {
	job    model.Job
	nextID int64
}

// NewJob creates a JobBuilder with sensible defaults and no rounds.
func NewJob(id string) *JobBuilder {
	return &JobBuilder{
		job: model.Job{
			ID:        id,
			CompanyID: "acme",
			Title:     "Software Engineer",
		},
	}
}

// WithCompany sets the company id.
func (b *JobBuilder) WithCompany(companyID string) *JobBuilder {
	b.job.CompanyID = companyID
	return b
}

// Screening appends a screening round over questionIDs.
func (b *JobBuilder) Screening(questionIDs ...string) *JobBuilder {
	b.job.Rounds = append(b.job.Rounds, model.ScreeningRound{
		RoundBase:   b.base("Screening", false),
		QuestionIDs: questionIDs,
	})
	return b
}

// Assessment appends an assessment round. criteria may be nil.
func (b *JobBuilder) Assessment(assessmentID string, criteria *int, autoProceed bool) *JobBuilder {
	b.job.Rounds = append(b.job.Rounds, model.AssessmentRound{
		RoundBase:         b.base("Assessment", autoProceed),
		AssessmentID:      assessmentID,
		SelectionCriteria: criteria,
	})
	return b
}

// AIInterview appends an AI interview round.
func (b *JobBuilder) AIInterview(templateID string) *JobBuilder {
	b.job.Rounds = append(b.job.Rounds, model.AIInterviewRound{
		RoundBase:  b.base("AI interview", false),
		TemplateID: templateID,
	})
	return b
}

// Build returns the job.
func (b *JobBuilder) Build() *model.Job {
	job := b.job
	return &job
}

// Round ids are assigned in append order starting at 0.
func (b *JobBuilder) base(name string, autoProceed bool) model.RoundBase {
	id := b.nextID
	b.nextID++
	return model.RoundBase{ID: id, Name: fmt.Sprintf("%s %d", name, id), AutoProceed: autoProceed}
}

// MCQBank returns n mcq questions with ids prefix0..prefix(n-1) whose correct answer is "A",
// plus the assessment grouping them.
func MCQBank(assessmentID, prefix string, n int) (*model.Assessment, map[string]model.Question) {
	a := &model.Assessment{ID: assessmentID}
	questions := make(map[string]model.Question, n)
	for i := range n {
		id := fmt.Sprintf("%s%d", prefix, i)
		a.QuestionIDs = append(a.QuestionIDs, id)
		questions[id] = model.Question{ID: id, Type: model.QuestionTypeMCQ, CorrectAnswer: StringPtr("A")}
	}
	return a, questions
}

// MCQAnswers answers every question of a, the first correct of them with "A" and the rest with "B".
func MCQAnswers(a *model.Assessment, correct int) []model.Answer {
	answers := make([]model.Answer, len(a.QuestionIDs))
	for i, id := range a.QuestionIDs {
		answer := "B"
		if i < correct {
			answer = "A"
		}
		answers[i] = model.Answer{QuestionID: id, Answer: answer}
	}
	return answers
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
