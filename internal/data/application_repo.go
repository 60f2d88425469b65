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
	"github.com/target/hiring-pipeline/internal/data/database"
	"github.com/target/hiring-pipeline/internal/data/pgxutil"
	"github.com/target/hiring-pipeline/internal/domain/model"
	apperrors "github.com/target/hiring-pipeline/internal/errors"
)

var (
	_ core.ApplicationRepository = (*ApplicationRepo)(nil)
	_ core.ApplicationLister     = (*ApplicationRepo)(nil)
)

// ApplicationRepo persists applications. Every write is a compare-and-swap on the version column,
// so two concurrent evaluations of the same application can never both commit.
type ApplicationRepo struct {
	DB    *sql.DB
	clock core.Clock
}

// NewApplicationRepo creates a new ApplicationRepo.
func NewApplicationRepo(db *sql.DB) *ApplicationRepo {
	return &ApplicationRepo{DB: db, clock: SystemClock{}}
}

// NewApplicationRepoWithClock creates an ApplicationRepo that stamps rows from clock.
func NewApplicationRepoWithClock(db *sql.DB, clock core.Clock) *ApplicationRepo {
	return &ApplicationRepo{DB: db, clock: clock}
}

const applicationColumns = `id, job_id, candidate_id, status, active_round_index,
	round_order, round_results, schedules, version, created_at, updated_at`

// applicationSelectList reads the uuid primary key as text.
const applicationSelectList = `id::text AS id, job_id, candidate_id, status, active_round_index,
	round_order, round_results, schedules, version, created_at, updated_at`

const applicationSelect = `SELECT ` + applicationSelectList + ` FROM applications`

// pendingResultFilter matches a round_results array holding at least one Pending result.
var pendingResultFilter = `[{"status":"` + string(model.RoundStatusPending) + `"}]`

// applicationRow mirrors the applications table; the JSONB columns are decoded separately.
type applicationRow struct {
	ID               string    `db:"id"`
	JobID            string    `db:"job_id"`
	CandidateID      string    `db:"candidate_id"`
	Status           string    `db:"status"`
	ActiveRoundIndex int       `db:"active_round_index"`
	RoundOrder       []byte    `db:"round_order"`
	Results          []byte    `db:"round_results"`
	Schedules        []byte    `db:"schedules"`
	Version          int64     `db:"version"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// Get returns the application for (jobID, candidateID), or a NotFound error.
func (r *ApplicationRepo) Get(ctx context.Context, jobID, candidateID string) (*model.Application, error) {
	query := applicationSelect + ` WHERE job_id = $1 AND candidate_id = $2`

	var row applicationRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, jobID, candidateID)
		if err != nil {
			return err
		}
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[applicationRow])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("application for job %s and candidate %s not found", jobID, candidateID)
		}
		return nil, fmt.Errorf("get application: %w", apperrors.MapDBError(err))
	}
	return row.toModel()
}

// Create inserts app with version 1. A row for the same (job, candidate) yields core.ErrVersionConflict.
func (r *ApplicationRepo) Create(ctx context.Context, app *model.Application) error {
	if app == nil {
		return errors.New("application is required")
	}
	enc, err := encodeApplication(app)
	if err != nil {
		return err
	}
	now := r.clock.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = now
	}

	var affected int64
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			INSERT INTO applications (`+applicationColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $10)
			ON CONFLICT (job_id, candidate_id) DO NOTHING`,
			app.ID, app.JobID, app.CandidateID, string(app.Status), app.ActiveRoundIndex,
			enc.order, enc.results, enc.schedules, app.CreatedAt, app.UpdatedAt,
		)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("create application: %w", apperrors.MapDBError(err))
	}
	if affected == 0 {
		return core.ErrVersionConflict
	}
	app.Version = 1
	return nil
}

// Save replaces the stored application when its version still equals expectedVersion.
// On success app.Version becomes expectedVersion+1; otherwise core.ErrVersionConflict is returned
// and nothing is written.
func (r *ApplicationRepo) Save(ctx context.Context, app *model.Application, expectedVersion int64) error {
	if app == nil {
		return errors.New("application is required")
	}
	enc, err := encodeApplication(app)
	if err != nil {
		return err
	}
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = r.clock.Now().UTC()
	}

	var affected int64
	err = pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE applications SET
				status             = $3,
				active_round_index = $4,
				round_order        = $5,
				round_results      = $6,
				schedules          = $7,
				updated_at         = $8,
				version            = version + 1
			WHERE id = $1 AND version = $2`,
			app.ID, expectedVersion, string(app.Status), app.ActiveRoundIndex,
			enc.order, enc.results, enc.schedules, app.UpdatedAt,
		)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("save application: %w", apperrors.MapDBError(err))
	}
	if affected == 0 {
		return core.ErrVersionConflict
	}
	app.Version = expectedVersion + 1
	return nil
}

// List returns one page of the job's applications and the total matching count. Options must be validated.
func (r *ApplicationRepo) List(ctx context.Context, opts model.ApplicationListOptions) (*model.ApplicationPage, error) {
	conds := []database.Condition{database.WhereCond("job_id", database.Equal, opts.JobID)}
	if len(opts.Statuses) > 0 {
		statuses := make([]string, len(opts.Statuses))
		for i, s := range opts.Statuses {
			statuses[i] = string(s)
		}
		conds = append(conds, database.WhereCond("status", database.In, statuses))
	}
	if opts.PendingReview {
		conds = append(conds, database.WhereCond("round_results", database.Contains, pendingResultFilter))
	}

	listOpts := []database.ListQueryOption{
		database.WithSelect(applicationSelectList),
		database.WithOrderBy(opts.SortOrder, opts.SortBy, "id"),
		database.WithLimit(opts.Limit),
		database.WithOffset(opts.Offset),
	}
	countOpts := []database.ListQueryOption{database.WithCountOnly()}
	for _, c := range conds {
		listOpts = append(listOpts, database.WithCondition(c))
		countOpts = append(countOpts, database.WithCondition(c))
	}
	listQuery, listArgs := database.BuildListQuery(database.NewListQueryOptions("applications", listOpts...))
	countQuery, countArgs := database.BuildListQuery(database.NewListQueryOptions("applications", countOpts...))

	page := &model.ApplicationPage{Applications: []model.Application{}, Limit: opts.Limit, Offset: opts.Offset}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		if err := conn.QueryRow(ctx, countQuery, countArgs...).Scan(&page.Total); err != nil {
			return fmt.Errorf("count: %w", err)
		}
		rows, err := conn.Query(ctx, listQuery, listArgs...)
		if err != nil {
			return err
		}
		collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[applicationRow])
		if err != nil {
			return err
		}
		for _, row := range collected {
			app, err := row.toModel()
			if err != nil {
				return err
			}
			page.Applications = append(page.Applications, *app)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", apperrors.MapDBError(err))
	}
	return page, nil
}

type encodedApplication struct {
	order, results, schedules []byte
}

func encodeApplication(app *model.Application) (encodedApplication, error) {
	var (
		enc encodedApplication
		err error
	)
	if enc.order, err = json.Marshal(emptyIfNil(app.RoundOrder)); err != nil {
		return enc, fmt.Errorf("encode round order: %w", err)
	}
	if enc.results, err = json.Marshal(emptyIfNil(app.Results)); err != nil {
		return enc, fmt.Errorf("encode round results: %w", err)
	}
	if enc.schedules, err = json.Marshal(emptyIfNil(app.Schedules)); err != nil {
		return enc, fmt.Errorf("encode schedules: %w", err)
	}
	return enc, nil
}

func (row applicationRow) toModel() (*model.Application, error) {
	app := &model.Application{
		ID:               row.ID,
		JobID:            row.JobID,
		CandidateID:      row.CandidateID,
		Status:           model.ApplicationStatus(row.Status),
		ActiveRoundIndex: row.ActiveRoundIndex,
		Version:          row.Version,
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal(row.RoundOrder, &app.RoundOrder); err != nil {
		return nil, fmt.Errorf("decode round order of application %s: %w", row.ID, err)
	}
	if err := json.Unmarshal(row.Results, &app.Results); err != nil {
		return nil, fmt.Errorf("decode round results of application %s: %w", row.ID, err)
	}
	if err := json.Unmarshal(row.Schedules, &app.Schedules); err != nil {
		return nil, fmt.Errorf("decode schedules of application %s: %w", row.ID, err)
	}
	return app, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
