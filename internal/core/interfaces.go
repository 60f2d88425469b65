package core

import (
	"context"
	"errors"
	"time"

	"github.com/target/hiring-pipeline/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// ErrVersionConflict is returned by ApplicationRepository writes when the stored version no longer
// matches the caller's expected version, or when Create finds an existing (job, candidate) row.
var ErrVersionConflict = errors.New("application version conflict")

// JobRepository reads and writes jobs together with their round catalog.
type JobRepository interface {
	GetByID(ctx context.Context, id string) (*model.Job, error)
	Upsert(ctx context.Context, job *model.Job) error
}

// QuestionRepository reads and writes question bank entries.
type QuestionRepository interface {
	GetByID(ctx context.Context, id string) (*model.Question, error)
	Upsert(ctx context.Context, q *model.Question) error
}

// AssessmentRepository reads and writes assessments.
type AssessmentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Assessment, error)
	Upsert(ctx context.Context, a *model.Assessment) error
}

// ApplicationRepository persists applications with optimistic concurrency.
type ApplicationRepository interface {
	// Get returns the application for (jobID, candidateID) or a NotFound error.
	Get(ctx context.Context, jobID, candidateID string) (*model.Application, error)
	// Create inserts app with version 1. ErrVersionConflict if the pair already exists.
	Create(ctx context.Context, app *model.Application) error
	// Save replaces the stored record when its version equals expectedVersion and
	// sets app.Version to expectedVersion+1. ErrVersionConflict otherwise.
	Save(ctx context.Context, app *model.Application, expectedVersion int64) error
}

// CatalogReader is the read side the progression engine needs from the catalog.
type CatalogReader interface {
	GetJob(ctx context.Context, id string) (*model.Job, error)
	// GetQuestions returns every requested question keyed by id, or the first lookup error.
	GetQuestions(ctx context.Context, ids []string) (map[string]model.Question, error)
	GetAssessment(ctx context.Context, id string) (*model.Assessment, error)
}

// EventEmitter delivers outbound notifications. Delivery is best-effort.
type EventEmitter interface {
	Emit(ctx context.Context, ev model.Event) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ApplicationLister pages through the applications of a job.
type ApplicationLister interface {
	List(ctx context.Context, opts model.ApplicationListOptions) (*model.ApplicationPage, error)
}
