package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/target/hiring-pipeline/internal/bootstrap"
	"github.com/target/hiring-pipeline/internal/core"
	"github.com/target/hiring-pipeline/internal/data"
	"github.com/target/hiring-pipeline/internal/devseed"
	"github.com/target/hiring-pipeline/internal/migrate"
	"github.com/target/hiring-pipeline/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load questions, assessments and jobs from a YAML catalog",
	Long: "Applies migrations and writes the catalog through the catalog service. " +
		"Without --file the bundled development catalog is used. " +
		"Cached catalog entries in Redis are invalidated when Redis is reachable.",
	RunE: runSeed,
}

var (
	seedFile        string
	seedTimeout     time.Duration
	seedAllowRemote bool
)

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Path to a catalog YAML file (defaults to the bundled development catalog)")
	seedCmd.Flags().DurationVar(&seedTimeout, "timeout", defaultCommandTimeout, "Maximum time to wait for seeding")
	seedCmd.Flags().BoolVar(&seedAllowRemote, "allow-remote", false, "Allow seeding a database host that does not look local")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(_ *cobra.Command, _ []string) error {
	catalog, err := loadCatalog(seedFile)
	if err != nil {
		return err
	}

	if _, guardErr := guardRemoteHost(cmdCtx, seedAllowRemote, "write catalog data to the configured database"); guardErr != nil {
		return guardErr
	}

	return withDatabase(cmdCtx, seedTimeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("ensuring database migrations are current")
		if _, migrateErr := migrate.New(db, cmdCtx.Logger).Up(ctx); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}

		svc, closeSvc := newSeedCatalogService(db)
		defer closeSvc()

		summary, seedErr := devseed.Apply(ctx, svc, catalog, cmdCtx.Logger)
		if printErr := renderSeedSummary(cmdCtx.Stdout, summary); printErr != nil {
			return printErr
		}
		if seedErr != nil {
			return fmt.Errorf("seed catalog: %w", seedErr)
		}
		cmdCtx.Logger.Info("catalog seeding completed successfully")
		return nil
	})
}

func loadCatalog(path string) (*devseed.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return devseed.Default()
	}
	return devseed.LoadFile(path)
}

// newSeedCatalogService builds a catalog service over the database, invalidating the shared
// Redis catalog cache when one is configured and reachable.
func newSeedCatalogService(db *sql.DB) (*service.CatalogService, func()) {
	repos := core.CatalogRepos{
		Jobs:        data.NewJobRepo(db),
		Questions:   data.NewQuestionRepo(db),
		Assessments: data.NewAssessmentRepo(db),
	}
	opts := service.CatalogServiceOptions{
		Repos:        repos,
		Applications: data.NewApplicationRepo(db),
		Logger:       cmdCtx.Logger,
	}
	closer := func() {}

	if cmdCtx.Config.Cache.Enabled {
		client, err := bootstrap.ConnectRedis(bootstrap.DatabaseConfig{
			RedisConfig: cmdCtx.Config.Redis,
			Logger:      cmdCtx.Logger,
		})
		if err != nil {
			cmdCtx.Logger.Warn("redis unavailable; cached catalog entries will expire on their own", "error", err)
		} else {
			opts.Invalidator = core.NewCatalogCache(core.CatalogCacheOptions{
				Repos:  repos,
				Cache:  core.CatalogCacheConfig{Repo: data.NewRedisCacheRepoWithPrefix(client, cmdCtx.Config.Cache.KeyPrefix)},
				Logger: cmdCtx.Logger,
			})
			closer = func() {
				if cerr := client.Close(); cerr != nil {
					cmdCtx.Logger.Warn("redis close failed", "error", cerr)
				}
			}
		}
	}

	return service.NewCatalogService(opts), closer
}

func renderSeedSummary(w io.Writer, s devseed.Summary) error {
	return writef(w, "Seeded %d questions, %d assessments, %d jobs (%d failures)\n",
		s.Questions, s.Assessments, s.Jobs, s.Failures)
}
