// Package httpx provides the JSON HTTP API of the hiring pipeline.
package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/target/hiring-pipeline/internal/domain/model"
	"github.com/target/hiring-pipeline/internal/service"
)

// ProgressionAPI is the subset of service.ProgressionService used by the handlers.
type ProgressionAPI interface {
	SubmitApplication(ctx context.Context, req model.SubmitApplicationRequest) (*service.SubmissionResult, error)
	SubmitRoundAssessment(ctx context.Context, req model.SubmitRoundRequest) (*service.SubmissionResult, error)
	SubmitRoundFeedback(ctx context.Context, req model.SubmitFeedbackRequest) (*model.Application, error)
	GetApplication(ctx context.Context, jobID, candidateID string) (*model.Application, error)
	ListApplications(ctx context.Context, opts model.ApplicationListOptions) (*model.ApplicationPage, error)
}

var _ ProgressionAPI = (*service.ProgressionService)(nil)

// ApplicationHandlers serves application and round submission endpoints.
type ApplicationHandlers struct {
	Svc ProgressionAPI
}

type applicationBody struct {
	CandidateID string         `json:"candidate_id"`
	Answers     []model.Answer `json:"answers"`
}

type roundSubmissionBody struct {
	CandidateID string         `json:"candidate_id"`
	Answers     []model.Answer `json:"answers"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
}

type feedbackBody struct {
	CandidateID string `json:"candidate_id"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
}

// SubmitApplication handles POST /api/jobs/{jobId}/applications.
// A first submission answers 201; a repeated one answers 200 with duplicate=true.
func (h *ApplicationHandlers) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathString(r, "jobId", "job_id")
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	var body applicationBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	res, err := h.Svc.SubmitApplication(r.Context(), model.SubmitApplicationRequest{
		JobID:       jobID,
		CandidateID: body.CandidateID,
		Answers:     body.Answers,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	WriteJSON(w, status, res)
}

// GetApplication handles GET /api/jobs/{jobId}/applications/{candidateId}.
func (h *ApplicationHandlers) GetApplication(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathString(r, "jobId", "job_id")
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	candidateID, err := pathString(r, "candidateId", "candidate_id")
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	app, err := h.Svc.GetApplication(r.Context(), jobID, candidateID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}

// ListApplications handles GET /api/jobs/{jobId}/applications.
// Query: status (repeatable or comma separated), pending_review, sort_by, sort_order, limit, offset.
func (h *ApplicationHandlers) ListApplications(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathString(r, "jobId", "job_id")
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	opts, err := parseListQuery(r)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	opts.JobID = jobID

	page, err := h.Svc.ListApplications(r.Context(), opts)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

// SubmitRound handles POST /api/jobs/{jobId}/rounds/{roundId}/submissions.
func (h *ApplicationHandlers) SubmitRound(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathString(r, "jobId", "job_id")
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	roundID, err := pathRoundID(r)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	var body roundSubmissionBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	res, err := h.Svc.SubmitRoundAssessment(r.Context(), model.SubmitRoundRequest{
		JobID:       jobID,
		RoundID:     &roundID,
		CandidateID: body.CandidateID,
		Answers:     body.Answers,
		StartedAt:   body.StartedAt,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// SubmitFeedback handles PUT /api/jobs/{jobId}/rounds/{roundId}/feedback.
func (h *ApplicationHandlers) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathString(r, "jobId", "job_id")
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	roundID, err := pathRoundID(r)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	var body feedbackBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	app, err := h.Svc.SubmitRoundFeedback(r.Context(), model.SubmitFeedbackRequest{
		JobID:       jobID,
		RoundID:     &roundID,
		CandidateID: body.CandidateID,
		Rating:      body.Rating,
		Comment:     body.Comment,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, app)
}
