package httpx

import (
	"context"
	"net/http"

	"github.com/target/hiring-pipeline/internal/domain/model"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
	"github.com/target/hiring-pipeline/internal/service"
)

// CatalogAPI is the subset of service.CatalogService used by the handlers.
type CatalogAPI interface {
	PutJob(ctx context.Context, job *model.Job) (*model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	PutQuestion(ctx context.Context, q *model.Question) (*model.Question, error)
	PutAssessment(ctx context.Context, a *model.Assessment) (*model.Assessment, error)
}

var _ CatalogAPI = (*service.CatalogService)(nil)

// CatalogHandlers serves job, question and assessment administration.
type CatalogHandlers struct {
	Svc CatalogAPI
}

// PutJob handles PUT /api/jobs/{jobId}.
func (h *CatalogHandlers) PutJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathString(r, "jobId", "id")
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	var job model.Job
	if !DecodeJSON(w, r, &job) {
		return
	}
	if err := matchPathID(&job.ID, id); err != nil {
		WriteServiceError(w, err)
		return
	}

	saved, err := h.Svc.PutJob(r.Context(), &job)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, saved)
}

// GetJob handles GET /api/jobs/{jobId}.
func (h *CatalogHandlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathString(r, "jobId", "id")
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	job, err := h.Svc.GetJob(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// PutQuestion handles PUT /api/questions/{questionId}.
func (h *CatalogHandlers) PutQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathString(r, "questionId", "id")
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	var q model.Question
	if !DecodeJSON(w, r, &q) {
		return
	}
	if err := matchPathID(&q.ID, id); err != nil {
		WriteServiceError(w, err)
		return
	}

	saved, err := h.Svc.PutQuestion(r.Context(), &q)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, saved)
}

// PutAssessment handles PUT /api/assessments/{assessmentId}.
func (h *CatalogHandlers) PutAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := pathString(r, "assessmentId", "id")
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	var a model.Assessment
	if !DecodeJSON(w, r, &a) {
		return
	}
	if err := matchPathID(&a.ID, id); err != nil {
		WriteServiceError(w, err)
		return
	}

	saved, err := h.Svc.PutAssessment(r.Context(), &a)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, saved)
}

// matchPathID fills an omitted body id from the path and rejects a mismatch.
func matchPathID(bodyID *string, pathID string) error {
	if *bodyID == "" {
		*bodyID = pathID
		return nil
	}
	if *bodyID != pathID {
		return apperrors.ValidationField("id", "id in body does not match path")
	}
	return nil
}
