package model

import (
	"slices"
	"time"
)

// ApplicationStatus is the candidate's position in the pipeline state machine.
type ApplicationStatus string

const (
	// ApplicationStatusSubmitted is the status of a new application whose first round is not a screening.
	ApplicationStatusSubmitted ApplicationStatus = "Submitted"
	// ApplicationStatusScreeningPassed indicates the initial screening passed.
	ApplicationStatusScreeningPassed ApplicationStatus = "Screening Passed"
	// ApplicationStatusScreeningFailed indicates the initial screening failed.
	ApplicationStatusScreeningFailed ApplicationStatus = "Screening Failed"
	// ApplicationStatusInProgress indicates the candidate is moving through later rounds or awaits review.
	ApplicationStatusInProgress ApplicationStatus = "In Progress"
	// ApplicationStatusRejected is terminal.
	ApplicationStatusRejected ApplicationStatus = "Rejected"
)

// Valid returns true if the ApplicationStatus is known.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusScreeningPassed, ApplicationStatusScreeningFailed,
		ApplicationStatusInProgress, ApplicationStatusRejected:
		return true
	default:
		return false
	}
}

// RoundStatus is the outcome of one round attempt.
type RoundStatus string

const (
	// RoundStatusPending means the outcome awaits a human decision.
	RoundStatusPending RoundStatus = "Pending"
	// RoundStatusPassed means the candidate passed the round.
	RoundStatusPassed RoundStatus = "Passed"
	// RoundStatusFailed means the candidate failed the round.
	RoundStatusFailed RoundStatus = "Failed"
)

// ScheduleStatus tracks whether a scheduled round was attempted.
type ScheduleStatus string

const (
	// ScheduleStatusPending means the round has not been attempted yet.
	ScheduleStatusPending ScheduleStatus = "Pending"
	// ScheduleStatusAttempted means a submission for the round was recorded.
	ScheduleStatusAttempted ScheduleStatus = "Attempted"
)

// Answer is a candidate's answer to one question.
type Answer struct {
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
}

// Feedback is the rating and comment attached to a round result after the fact.
type Feedback struct {
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// RoundResult is the immutable outcome of one round attempt. Only Feedback may change after creation.
type RoundResult struct {
	RoundID     int64       `json:"round_id"`
	Status      RoundStatus `json:"status"`
	Answers     []Answer    `json:"answers"`
	Score       *int        `json:"score,omitempty"`
	CompletedAt time.Time   `json:"completed_at"`
	// TimeTaken is the number of seconds between the round start and the submission.
	TimeTaken *int64    `json:"time_taken,omitempty"`
	Feedback  *Feedback `json:"feedback,omitempty"`
}

// Schedule is a deadline window for a round the candidate has reached.
type Schedule struct {
	RoundID     int64          `json:"round_id"`
	ScheduledAt time.Time      `json:"scheduled_at"`
	DueDate     time.Time      `json:"due_date"`
	Status      ScheduleStatus `json:"status"`
}

// Application is one candidate's record for one job.
// Values are treated as immutable: transitions return a modified Clone.
type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"job_id"`
	CandidateID string            `json:"candidate_id"`
	Status      ApplicationStatus `json:"status"`
	// ActiveRoundIndex is a position into RoundOrder, never a round id.
	ActiveRoundIndex int `json:"active_round_index"`
	// RoundOrder is the job's round id order captured when the application was created.
	RoundOrder []int64       `json:"round_order"`
	Results    []RoundResult `json:"round_results"`
	Schedules  []Schedule    `json:"schedules"`
	// Version is the optimistic concurrency token; it increases on every successful save.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Result returns the recorded result for roundID.
func (a Application) Result(roundID int64) (RoundResult, bool) {
	for _, r := range a.Results {
		if r.RoundID == roundID {
			return r, true
		}
	}
	return RoundResult{}, false
}

// HasSchedule reports whether a schedule exists for roundID.
func (a Application) HasSchedule(roundID int64) bool {
	return slices.ContainsFunc(a.Schedules, func(s Schedule) bool { return s.RoundID == roundID })
}

// Closed reports whether the application no longer accepts round submissions.
func (a Application) Closed() bool {
	return a.Status == ApplicationStatusRejected || a.Status == ApplicationStatusScreeningFailed
}

// Clone returns a deep copy whose slices can be appended to without aliasing a.
func (a Application) Clone() Application {
	out := a
	out.RoundOrder = slices.Clone(a.RoundOrder)
	out.Schedules = slices.Clone(a.Schedules)
	out.Results = make([]RoundResult, len(a.Results))
	for i, r := range a.Results {
		out.Results[i] = r.clone()
	}
	return out
}

func (r RoundResult) clone() RoundResult {
	out := r
	out.Answers = slices.Clone(r.Answers)
	if r.Score != nil {
		v := *r.Score
		out.Score = &v
	}
	if r.TimeTaken != nil {
		v := *r.TimeTaken
		out.TimeTaken = &v
	}
	if r.Feedback != nil {
		fb := *r.Feedback
		out.Feedback = &fb
	}
	return out
}
