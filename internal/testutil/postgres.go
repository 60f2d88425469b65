// Package testutil provisions Postgres and Redis for integration tests and builds catalog fixtures.
//
// Integration tests skip when the infrastructure is unreachable, unless TEST_REQUIRE_DB,
// TEST_REQUIRE_REDIS or TEST_REQUIRE_INFRA is set, in which case they fail.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	// Registers the pgx database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/target/hiring-pipeline/internal/migrate"
)

// TestingTB is the subset of testing.TB the helpers need.
type TestingTB interface {
	Helper()
	Cleanup(func())
	Skip(args ...any)
	Skipf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// TestDBConfig locates the test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DefaultTestDBConfig reads TEST_DB_* variables. The port defaults to 55432, the docker compose test profile;
// CI sets TEST_DB_PORT=5432.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "55432"),
		User:     envOr("TEST_DB_USER", "hiring"),
		Password: envOr("TEST_DB_PASSWORD", "hiring"),
		DBName:   envOr("TEST_DB_NAME", "hiring"),
		SSLMode:  envOr("DB_SSL_MODE", "disable"),
	}
}

// DSN renders the connection URL, optionally pinned to a search_path.
func (c TestDBConfig) DSN(searchPath string) string {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	if searchPath != "" {
		q.Set("search_path", searchPath)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// cleanupTables lists tables children first so deletes never trip a foreign key.
var cleanupTables = []string{"applications", "assessments", "questions", "jobs"}

// probeDB pings the test database once per test binary.
var probeDB = sync.OnceValue(func() error {
	db, err := sql.Open("pgx", DefaultTestDBConfig().DSN(""))
	if err != nil {
		return err
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
})

// SkipIfNoTestDB skips t when the test database is unreachable.
func SkipIfNoTestDB(t TestingTB) {
	t.Helper()
	if err := probeDB(); err != nil {
		where := DefaultTestDBConfig().describe()
		if requireDB() {
			t.Fatalf("test database %s not available: %v", where, err)
		}
		t.Skipf("test database %s not available: %v", where, err)
	}
}

// WithAutoDB runs fn against a migrated database. With TEST_DB_EPHEMERAL set each test gets its
// own schema; otherwise the shared database is emptied before and after fn.
func WithAutoDB(t TestingTB, fn func(*sql.DB)) {
	t.Helper()
	if envBool("TEST_DB_EPHEMERAL") {
		fn(SetupEphemeralSchemaDB(t))
		return
	}
	fn(setupSharedDB(t))
}

func setupSharedDB(t TestingTB) *sql.DB {
	t.Helper()
	SkipIfNoTestDB(t)

	db := openDB(t, DefaultTestDBConfig().DSN(""))
	migrateOrFail(t, db)
	truncate(t, db)
	t.Cleanup(func() {
		truncate(t, db)
		closeQuietly(t, "test db", db)
	})
	return db
}

// SetupEphemeralSchemaDB migrates a fresh schema and drops it when t finishes.
func SetupEphemeralSchemaDB(t TestingTB) *sql.DB {
	t.Helper()
	SkipIfNoTestDB(t)

	cfg := DefaultTestDBConfig()
	admin := openDB(t, cfg.DSN(""))
	t.Cleanup(func() { closeQuietly(t, "admin db", admin) })

	schema := "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		t.Fatalf("create schema %s: %v", schema, err)
	}
	t.Logf("using ephemeral schema %s", schema)

	db := openDB(t, cfg.DSN(schema+",public"))
	db.SetMaxOpenConns(10)
	// Cleanups run last-in first-out: the schema handle closes before the drop.
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := admin.ExecContext(ctx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
	})
	t.Cleanup(func() { closeQuietly(t, "schema db", db) })

	migrateOrFail(t, db)
	return db
}

func openDB(t TestingTB, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatal("open test db:", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		closeQuietly(t, "test db", db)
		t.Fatal("ping test db:", err)
	}
	return db
}

func migrateOrFail(t TestingTB, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := migrate.New(db, nil).Up(ctx); err != nil {
		t.Fatal("run migrations:", err)
	}
}

func truncate(t TestingTB, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, table := range cleanupTables {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("clean table %s: %v", table, err)
		}
	}
}

func closeQuietly(t TestingTB, name string, c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		t.Logf("close %s: %v", name, err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

func requireDB() bool { return envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") }

func (c TestDBConfig) describe() string {
	return fmt.Sprintf("%s@%s/%s", c.User, net.JoinHostPort(c.Host, c.Port), c.DBName)
}
