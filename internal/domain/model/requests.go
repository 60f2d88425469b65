package model

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
)

var validate = newValidator()

// newValidator reports fields by their json names so errors match the request body.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// SubmitApplicationRequest creates an application and evaluates an initial screening round.
type SubmitApplicationRequest struct {
	JobID       string   `json:"job_id"       validate:"required"`
	CandidateID string   `json:"candidate_id" validate:"required"`
	Answers     []Answer `json:"answers"      validate:"dive"`
}

// Validate checks required identifiers before any read happens.
func (r *SubmitApplicationRequest) Validate() error {
	r.Normalize()
	return structError(validate.Struct(r))
}

// Normalize trims identifiers.
func (r *SubmitApplicationRequest) Normalize() {
	r.JobID = strings.TrimSpace(r.JobID)
	r.CandidateID = strings.TrimSpace(r.CandidateID)
}

// SubmitRoundRequest records a candidate's submission for a non-initial round.
type SubmitRoundRequest struct {
	JobID       string   `json:"job_id"       validate:"required"`
	RoundID     *int64   `json:"round_id"     validate:"required"`
	CandidateID string   `json:"candidate_id" validate:"required"`
	Answers     []Answer `json:"answers"      validate:"dive"`
	// StartedAt is when the candidate opened the round. Optional.
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// Validate checks required identifiers before any read happens.
func (r *SubmitRoundRequest) Validate() error {
	r.JobID = strings.TrimSpace(r.JobID)
	r.CandidateID = strings.TrimSpace(r.CandidateID)
	return structError(validate.Struct(r))
}

// SubmitFeedbackRequest attaches a rating and comment to a recorded round result.
type SubmitFeedbackRequest struct {
	JobID       string `json:"job_id"       validate:"required"`
	RoundID     *int64 `json:"round_id"     validate:"required"`
	CandidateID string `json:"candidate_id" validate:"required"`
	Rating      int    `json:"rating"       validate:"min=1,max=5"`
	Comment     string `json:"comment"      validate:"max=2000"`
}

// Validate checks required identifiers and the rating range.
func (r *SubmitFeedbackRequest) Validate() error {
	r.JobID = strings.TrimSpace(r.JobID)
	r.CandidateID = strings.TrimSpace(r.CandidateID)
	return structError(validate.Struct(r))
}

// structError converts validator errors into a Validation AppError naming the first failing field.
func structError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			return apperrors.ValidationField(field, field+" is required")
		case "min", "max":
			return apperrors.ValidationField(field, field+" must be between the allowed bounds ("+fe.Tag()+"="+fe.Param()+")")
		default:
			return apperrors.ValidationField(field, field+" is invalid")
		}
	}
	return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid request")
}
