package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/target/hiring-pipeline/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List embedded migrations and whether they have been applied",
	RunE:  runMigrateStatus,
}

var migrateTimeout time.Duration

func init() {
	migrateCmd.PersistentFlags().DurationVar(&migrateTimeout, "timeout", defaultCommandTimeout, "Maximum time to wait for migrations")
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	return withDatabase(cmdCtx, migrateTimeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")
		applied, err := migrate.New(db, cmdCtx.Logger).Up(ctx)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		cmdCtx.Logger.Info("migrations completed successfully", "applied", len(applied))
		if len(applied) == 0 {
			return writeln(cmdCtx.Stdout, "Schema is up to date.")
		}
		for _, v := range applied {
			if err := writef(cmdCtx.Stdout, "applied %s\n", v); err != nil {
				return err
			}
		}
		return nil
	})
}

func runMigrateStatus(_ *cobra.Command, _ []string) error {
	return withDatabase(cmdCtx, migrateTimeout, func(ctx context.Context, db *sql.DB) error {
		status, err := migrate.New(db, cmdCtx.Logger).Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		return renderMigrationStatus(cmdCtx.Stdout, status)
	})
}

func renderMigrationStatus(w io.Writer, status []migrate.Migration) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "VERSION\tAPPLIED"); err != nil {
		return err
	}
	for _, m := range status {
		applied := "no"
		if m.Applied {
			applied = "yes"
		}
		if err := writef(tw, "%s\t%s\n", m.Version, applied); err != nil {
			return err
		}
	}
	return tw.Flush()
}
