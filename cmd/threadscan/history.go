package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/threadscan/internal/config"
	"github.com/nao1215/threadscan/internal/database"
	"github.com/nao1215/threadscan/internal/model"
	"github.com/nao1215/threadscan/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command reads the runs recorded by scrape.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show recorded runs and compare them",
		Long: `History shows the runs recorded in the history database.

Without arguments it lists every scraped source. With a url it lists the runs
of that source, newest first.

--diff compares the two latest runs of a source and shows the comments of the
latest run that the previous run did not have. --run exports the comments of
one run to a document.

Examples:
  # List all scraped sources
  threadscan history

  # List the runs of one source
  threadscan history https://www.youtube.com/watch?v=VIDEO_ID

  # Show comments that are new since the previous run
  threadscan history --diff https://www.youtube.com/watch?v=VIDEO_ID

  # Show one run and export its comments as CSV
  threadscan history --run 12 --export run12.csv --format csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("diff", "d", false,
		"Show comments of the latest run that are absent from the previous run")
	cmd.Flags().Int64P("run", "r", 0, "Show a single run by ID")
	cmd.Flags().StringP("export", "e", "", "With --run, write the run's comments to this path")
	cmd.Flags().StringP("format", "f", config.FormatJSON, "Export format: json, csv or markdown")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

// historyOptions holds the flags of the history command.
type historyOptions struct {
	source string
	diff   bool
	runID  int64
	export string
	format string
	dbDir  string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	opts := historyOptions{}
	if len(args) > 0 {
		opts.source = args[0]
	}

	var err error
	if opts.diff, err = cmd.Flags().GetBool("diff"); err != nil {
		return err
	}
	if opts.runID, err = cmd.Flags().GetInt64("run"); err != nil {
		return err
	}
	if opts.export, err = cmd.Flags().GetString("export"); err != nil {
		return err
	}
	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return err
	}
	if opts.dbDir, err = cmd.Flags().GetString("db-dir"); err != nil {
		return err
	}

	// Validate arguments before opening the database.
	if opts.diff && opts.source == "" {
		return errors.New("--diff needs a url (run 'threadscan history' to list sources)")
	}
	if opts.export != "" && opts.runID == 0 {
		return errors.New("--export needs --run")
	}

	db, err := database.Open(opts.dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database (has anything been scraped yet?): %w", err)
	}
	defer db.Close()

	return showHistory(cmd.Context(), db, opts, report.NewTableWriter(cmd.OutOrStdout()))
}

func showHistory(ctx context.Context, db *database.HistoryDB, opts historyOptions, w *report.TableWriter) error {
	switch {
	case opts.runID != 0:
		return showRun(ctx, db, opts, w)
	case opts.diff:
		d, err := db.Diff(ctx, opts.source)
		if errors.Is(err, database.ErrNotEnoughRuns) {
			return fmt.Errorf("%w: scrape %s again to compare", err, opts.source)
		}
		if err != nil {
			return fmt.Errorf("failed to compare runs: %w", err)
		}
		w.WriteDiff(d)
		return nil
	case opts.source != "":
		runs, err := db.ListRuns(ctx, opts.source)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		w.WriteRuns(runs)
		return nil
	default:
		sources, err := db.ListSources(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sources: %w", err)
		}
		w.WriteSources(sources)
		return nil
	}
}

// showRun prints one run and optionally exports its comments.
func showRun(ctx context.Context, db *database.HistoryDB, opts historyOptions, w *report.TableWriter) error {
	run, err := db.GetRun(ctx, opts.runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %d not found", opts.runID)
	}
	w.WriteRun(run)

	if opts.export == "" {
		return nil
	}
	records, err := db.RunRecords(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to read comments: %w", err)
	}
	return exportRecords(opts.export, opts.format, records)
}

func exportRecords(path, format string, records []model.CommentRecord) error {
	sink, err := report.CreateFile(path, format)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := sink.Write(rec); err != nil {
			_ = sink.Close()
			return fmt.Errorf("failed to export comments: %w", err)
		}
	}
	return sink.Close()
}
