package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/target/hiring-pipeline/internal/core"
	"github.com/target/hiring-pipeline/internal/data/pgxutil"
	"github.com/target/hiring-pipeline/internal/domain/model"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
)

var _ core.JobRepository = (*JobRepo)(nil)

// JobRepo stores jobs with their round catalog as an ordered JSONB array of round specs.
type JobRepo struct {
	DB    *sql.DB
	clock core.Clock
}

// NewJobRepo creates a new JobRepo.
func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{DB: db, clock: SystemClock{}}
}

// NewJobRepoWithClock creates a JobRepo that stamps rows from clock.
func NewJobRepoWithClock(db *sql.DB, clock core.Clock) *JobRepo {
	return &JobRepo{DB: db, clock: clock}
}

const jobGetByIDQuery = `
	SELECT id, company_id, title, rounds, created_at, updated_at
	FROM jobs
	WHERE id = $1`

// GetByID returns the job, or a NotFound error.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var (
		job    model.Job
		rounds []byte
	)
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, jobGetByIDQuery, id).Scan(
			&job.ID, &job.CompanyID, &job.Title, &rounds, &job.CreatedAt, &job.UpdatedAt,
		)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("job %s not found", id)
		}
		return nil, fmt.Errorf("get job: %w", apperrors.MapDBError(err))
	}

	var specs []model.RoundSpec
	if err := json.Unmarshal(rounds, &specs); err != nil {
		return nil, fmt.Errorf("decode rounds of job %s: %w", id, err)
	}
	if job.Rounds, err = model.CatalogFromSpecs(specs); err != nil {
		return nil, fmt.Errorf("rounds of job %s: %w", id, err)
	}
	return &job, nil
}

const jobUpsertQuery = `
	INSERT INTO jobs (id, company_id, title, rounds, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		company_id = EXCLUDED.company_id,
		title      = EXCLUDED.title,
		rounds     = EXCLUDED.rounds,
		updated_at = EXCLUDED.updated_at
	RETURNING created_at, updated_at`

// Upsert inserts or replaces the job. CreatedAt is preserved on update.
func (r *JobRepo) Upsert(ctx context.Context, job *model.Job) error {
	if job == nil {
		return errors.New("job is required")
	}
	rounds, err := json.Marshal(job.Rounds.Specs())
	if err != nil {
		return fmt.Errorf("encode rounds: %w", err)
	}
	now := r.clock.Now().UTC()
	created := job.CreatedAt
	if created.IsZero() {
		created = now
	}
	updated := job.UpdatedAt
	if updated.IsZero() {
		updated = now
	}

	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, jobUpsertQuery,
			job.ID, job.CompanyID, job.Title, rounds, created, updated,
		).Scan(&job.CreatedAt, &job.UpdatedAt)
	})
	if err != nil {
		return fmt.Errorf("upsert job: %w", apperrors.MapDBError(err))
	}
	return nil
}

// QuestionRepo stores the question bank.
type QuestionRepo struct {
	DB *sql.DB
}

var _ core.QuestionRepository = (*QuestionRepo)(nil)

// NewQuestionRepo creates a new QuestionRepo.
func NewQuestionRepo(db *sql.DB) *QuestionRepo {
	return &QuestionRepo{DB: db}
}

const questionGetByIDQuery = `
	SELECT id, type, prompt, options, acceptable_answers, is_strict, correct_answer
	FROM questions
	WHERE id = $1`

// GetByID returns the question, or a NotFound error.
func (r *QuestionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	var q *model.Question
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, questionGetByIDQuery, id)
		if err != nil {
			return err
		}
		q, err = pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Question])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("question %s not found", id)
		}
		return nil, fmt.Errorf("get question: %w", apperrors.MapDBError(err))
	}
	return q, nil
}

const questionUpsertQuery = `
	INSERT INTO questions (id, type, prompt, options, acceptable_answers, is_strict, correct_answer, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		type               = EXCLUDED.type,
		prompt             = EXCLUDED.prompt,
		options            = EXCLUDED.options,
		acceptable_answers = EXCLUDED.acceptable_answers,
		is_strict          = EXCLUDED.is_strict,
		correct_answer     = EXCLUDED.correct_answer,
		updated_at         = EXCLUDED.updated_at`

// Upsert inserts or replaces the question.
func (r *QuestionRepo) Upsert(ctx context.Context, q *model.Question) error {
	if q == nil {
		return errors.New("question is required")
	}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, questionUpsertQuery,
			q.ID, string(q.Type), q.Prompt, nonNil(q.Options), nonNil(q.AcceptableAnswers),
			q.IsStrict, q.CorrectAnswer, time.Now().UTC(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert question: %w", apperrors.MapDBError(err))
	}
	return nil
}

// AssessmentRepo stores assessments.
type AssessmentRepo struct {
	DB *sql.DB
}

var _ core.AssessmentRepository = (*AssessmentRepo)(nil)

// NewAssessmentRepo creates a new AssessmentRepo.
func NewAssessmentRepo(db *sql.DB) *AssessmentRepo {
	return &AssessmentRepo{DB: db}
}

// GetByID returns the assessment, or a NotFound error.
func (r *AssessmentRepo) GetByID(ctx context.Context, id string) (*model.Assessment, error) {
	var a *model.Assessment
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT id, title, question_ids FROM assessments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		a, err = pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[model.Assessment])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("assessment %s not found", id)
		}
		return nil, fmt.Errorf("get assessment: %w", apperrors.MapDBError(err))
	}
	return a, nil
}

// Upsert inserts or replaces the assessment.
func (r *AssessmentRepo) Upsert(ctx context.Context, a *model.Assessment) error {
	if a == nil {
		return errors.New("assessment is required")
	}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO assessments (id, title, question_ids, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				title        = EXCLUDED.title,
				question_ids = EXCLUDED.question_ids,
				updated_at   = EXCLUDED.updated_at`,
			a.ID, a.Title, nonNil(a.QuestionIDs), time.Now().UTC(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert assessment: %w", apperrors.MapDBError(err))
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
