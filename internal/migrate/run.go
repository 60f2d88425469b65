// Package migrate applies the embedded SQL schema migrations.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration is one embedded migration file and whether it has been applied.
type Migration struct {
	Version string `json:"version"`
	Applied bool   `json:"applied"`
}

// Migrator applies migrations in lexical file order, each in its own transaction.
type Migrator struct {
	db     *sql.DB
	fsys   fs.FS
	logger *slog.Logger
}

// New returns a Migrator over the embedded migrations.
func New(db *sql.DB, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{db: db, fsys: migrationsFS, logger: logger.With("component", "migrations")}
}

// Run applies all pending migrations. It is safe to call multiple times.
func Run(ctx context.Context, db *sql.DB) error {
	_, err := New(db, nil).Up(ctx)
	return err
}

// Up applies pending migrations and returns the versions it applied.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	versions, err := m.versions()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, v := range versions {
		done, err := m.exists(ctx, v)
		if err != nil {
			return applied, err
		}
		if done {
			continue
		}
		if err := m.apply(ctx, v); err != nil {
			return applied, err
		}
		applied = append(applied, v)
	}
	return applied, nil
}

// Status reports every embedded migration and whether it has been applied.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	versions, err := m.versions()
	if err != nil {
		return nil, err
	}
	out := make([]Migration, 0, len(versions))
	for _, v := range versions {
		done, err := m.exists(ctx, v)
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Version: v, Applied: done})
	}
	return out, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

// versions lists migration versions (file names without .sql) in apply order.
func (m *Migrator) versions() ([]string, error) {
	entries, err := fs.ReadDir(m.fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			out = append(out, strings.TrimSuffix(e.Name(), ".sql"))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *Migrator) exists(ctx context.Context, version string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`
	if err := m.db.QueryRowContext(ctx, query, version).Scan(&exists); err != nil {
		return false, fmt.Errorf("check migration %s: %w", version, err)
	}
	return exists, nil
}

func (m *Migrator) apply(ctx context.Context, version string) error {
	sqlBytes, err := fs.ReadFile(m.fsys, "migrations/"+version+".sql")
	if err != nil {
		return fmt.Errorf("read migration %s: %w", version, err)
	}

	m.logger.InfoContext(ctx, "applying migration", "version", version)

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			m.logger.ErrorContext(ctx, "failed to rollback transaction", "err", rollbackErr, "version", version)
		}
	}()

	if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("exec migration %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", version, err)
	}
	return nil
}
