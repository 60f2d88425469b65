package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/target/hiring-pipeline/internal/data"
	"github.com/target/hiring-pipeline/internal/domain/model"
)

var showApplicationCmd = &cobra.Command{
	Use:   "show-application",
	Short: "Print a candidate's application and round results",
	RunE:  runShowApplication,
}

var listApplicationsCmd = &cobra.Command{
	Use:   "list-applications",
	Short: "List a job's applications, newest activity first",
	RunE:  runListApplications,
}

var (
	listJobID         string
	listStatuses      []string
	listPendingReview bool
	listLimit         int
	listOffset        int
)

var (
	showJobID       string
	showCandidateID string
	showRawJSON     bool
	showTimeout     time.Duration
)

func init() {
	showApplicationCmd.Flags().StringVar(&showJobID, "job", "", "Job id (required)")
	showApplicationCmd.Flags().StringVar(&showCandidateID, "candidate", "", "Candidate id (required)")
	showApplicationCmd.Flags().BoolVar(&showRawJSON, "json", false, "Print the application as JSON")
	showApplicationCmd.Flags().DurationVar(&showTimeout, "timeout", 30*time.Second, "Maximum time to wait for the lookup")

	for _, name := range []string{"job", "candidate"} {
		if err := showApplicationCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	listApplicationsCmd.Flags().StringVar(&listJobID, "job", "", "Job id (required)")
	listApplicationsCmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Only these application statuses (repeatable)")
	listApplicationsCmd.Flags().BoolVar(&listPendingReview, "pending-review", false, "Only applications with a round awaiting manual review")
	listApplicationsCmd.Flags().IntVar(&listLimit, "limit", model.DefaultApplicationPageSize, "Page size")
	listApplicationsCmd.Flags().IntVar(&listOffset, "offset", 0, "Rows to skip")
	if err := listApplicationsCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}

	rootCmd.AddCommand(showApplicationCmd, listApplicationsCmd)
}

func runListApplications(_ *cobra.Command, _ []string) error {
	opts := model.ApplicationListOptions{
		JobID:         listJobID,
		PendingReview: listPendingReview,
		Limit:         listLimit,
		Offset:        listOffset,
	}
	for _, s := range listStatuses {
		opts.Statuses = append(opts.Statuses, model.ApplicationStatus(s))
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	return withDatabase(cmdCtx, showTimeout, func(ctx context.Context, db *sql.DB) error {
		page, err := data.NewApplicationRepo(db).List(ctx, opts)
		if err != nil {
			return err
		}
		return renderApplicationPage(cmdCtx.Stdout, page)
	})
}

func renderApplicationPage(w io.Writer, page *model.ApplicationPage) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "CANDIDATE\tSTATUS\tROUND\tRESULTS\tUPDATED"); err != nil {
		return err
	}
	for _, app := range page.Applications {
		if err := writef(tw, "%s\t%s\t%d\t%d\t%s\n",
			app.CandidateID, app.Status, app.ActiveRoundIndex, len(app.Results),
			app.UpdatedAt.UTC().Format(time.RFC3339),
		); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return writef(w, "\nShowing %d of %d (offset %d)\n", len(page.Applications), page.Total, page.Offset)
}

func runShowApplication(_ *cobra.Command, _ []string) error {
	return withDatabase(cmdCtx, showTimeout, func(ctx context.Context, db *sql.DB) error {
		app, err := data.NewApplicationRepo(db).Get(ctx, showJobID, showCandidateID)
		if err != nil {
			return err
		}
		if showRawJSON {
			return renderApplicationJSON(cmdCtx.Stdout, app)
		}
		return renderApplication(cmdCtx.Stdout, app)
	})
}

func renderApplicationJSON(w io.Writer, app *model.Application) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(app); err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	return nil
}

func renderApplication(w io.Writer, app *model.Application) error {
	if app == nil {
		return errors.New("application is required")
	}
	if err := writef(w,
		"Application %s\n  Job: %s\n  Candidate: %s\n  Status: %s\n  Active round index: %d\n  Version: %d\n",
		app.ID, app.JobID, app.CandidateID, app.Status, app.ActiveRoundIndex, app.Version,
	); err != nil {
		return err
	}

	if err := writeln(w, "\nRound results"); err != nil {
		return err
	}
	if len(app.Results) == 0 {
		if err := writeln(w, "(none)"); err != nil {
			return err
		}
	} else if err := renderResults(w, app.Results); err != nil {
		return err
	}

	if len(app.Schedules) == 0 {
		return nil
	}
	if err := writeln(w, "\nSchedules"); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "ROUND\tSTATUS\tDUE"); err != nil {
		return err
	}
	for _, s := range app.Schedules {
		if err := writef(tw, "%d\t%s\t%s\n", s.RoundID, s.Status, s.DueDate.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func renderResults(w io.Writer, results []model.RoundResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writeln(tw, "ROUND\tSTATUS\tSCORE\tTIME TAKEN\tFEEDBACK"); err != nil {
		return err
	}
	for _, r := range results {
		score := "-"
		if r.Score != nil {
			score = strconv.Itoa(*r.Score)
		}
		taken := "-"
		if r.TimeTaken != nil {
			taken = (time.Duration(*r.TimeTaken) * time.Second).String()
		}
		feedback := "-"
		if r.Feedback != nil {
			feedback = fmt.Sprintf("%d/5", r.Feedback.Rating)
		}
		if err := writef(tw, "%d\t%s\t%s\t%s\t%s\n", r.RoundID, r.Status, score, taken, feedback); err != nil {
			return err
		}
	}
	return tw.Flush()
}
