package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/threadscan/internal/config"
	"github.com/nao1215/threadscan/internal/database"
	tslog "github.com/nao1215/threadscan/internal/log"
	"github.com/nao1215/threadscan/internal/pipeline"
	"github.com/nao1215/threadscan/internal/source"
	"github.com/nao1215/threadscan/internal/traverse"
	"github.com/spf13/cobra"
)

// errFaulted is returned when at least one traversal ended on a fault.
// The output documents are complete up to the fault.
var errFaulted = errors.New("traversal ended on a fault")

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape the comments of a video page",
		Long: `Scrape opens a video page, expands every comment thread and writes the
comments to a document as they are read.

Watch pages (/watch?v=...) and short-form pages (/shorts/...) are supported.
The document is written incrementally, so an interrupted or failed run still
leaves a valid document with everything read so far.

Examples:
  # Scrape every comment of a video
  threadscan scrape https://www.youtube.com/watch?v=VIDEO_ID

  # Stop after 200 comments or 5 minutes, whichever comes first
  threadscan scrape -l 200 --minutes 5 https://www.youtube.com/watch?v=VIDEO_ID

  # Keep only threads mentioning Go, as CSV
  threadscan scrape --pattern "\bgo\b" --format csv -o go.csv https://www.youtube.com/watch?v=VIDEO_ID

  # Run the jobs of a jobs file (see 'threadscan init')
  threadscan scrape --jobs .threadscan.yaml

  # Replay a saved page without a browser
  threadscan scrape --snapshot page.html https://www.youtube.com/watch?v=VIDEO_ID`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScrapeCmd,
	}

	// Budget flags
	cmd.Flags().IntP("limit", "l", 0,
		"Maximum number of comments to read, replies included (default: unlimited)")
	cmd.Flags().Int("hours", 0, "Time limit, hours part")
	cmd.Flags().Int("minutes", 0, "Time limit, minutes part")
	cmd.Flags().Int("seconds", 0, "Time limit, seconds part (a time limit must total at least 30s)")
	cmd.Flags().Bool("strict-limit", false,
		"Stop inside a thread once the limit is reached instead of finishing the thread")

	// Filter flags
	cmd.Flags().StringP("pattern", "p", "",
		"Keep only threads matching this case-insensitive regular expression")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutput, "Output document path")
	cmd.Flags().StringP("format", "f", config.FormatJSON, "Output format: json, csv or markdown")
	cmd.Flags().String("summary-md", "", "Also write the run summary as Markdown to this path")

	// Logging flags
	cmd.Flags().Bool("log", false, "Enable debug logging and append it to the log file")
	cmd.Flags().String("log-file", config.DefaultLogFile, "Log file path used with --log")

	// Surface flags
	cmd.Flags().Bool("headless", true, "Run the browser without a window")
	cmd.Flags().Bool("skip-install", false, "Do not install the browser driver on first use")
	cmd.Flags().Duration("click-interval", config.DefaultClickInterval, "Minimum gap between two clicks")
	cmd.Flags().Duration("thread-timeout", 0,
		fmt.Sprintf("How long to wait for the next thread before finishing (default %s, shorter on shorts pages)",
			traverse.DefaultThreadTimeout))
	cmd.Flags().Duration("navigation-timeout", config.DefaultNavigationTimeout, "Page load timeout")
	cmd.Flags().String("snapshot", "", "Traverse a saved HTML page instead of opening a browser")

	// Jobs and history flags
	cmd.Flags().StringP("jobs", "c", "",
		"Jobs file to run (default: .threadscan.yaml in current or home directory when no url is given)")
	cmd.Flags().Bool("no-save", false, "Do not record the run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	configs, err := loadJobs(cfg)
	if err != nil {
		return err
	}

	// A single job fails fast on configuration errors. In a batch each job
	// reports its own error and the others still run.
	if len(configs) == 1 {
		if err := configs[0].Validate(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	logFile := ""
	if logEnabled, _ := cmd.Flags().GetBool("log"); logEnabled {
		logFile = cfg.LogFile
		cfg.Verbose = true
	}
	logger, closer, err := tslog.Setup(tslog.Options{
		Verbose: cfg.Verbose,
		File:    logFile,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	return runScrape(cmd.Context(), configs, scrapeEnv{
		logger: logger,
		open:   pipeline.NewSurfaceOpener(logger),
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	})
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	if len(args) > 0 {
		cfg.Source = args[0]
	}

	var err error
	if flags.Changed("limit") {
		limit, err := flags.GetInt("limit")
		if err != nil {
			return nil, err
		}
		cfg.SetLimit(limit)
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"hours", &cfg.Hours},
		{"minutes", &cfg.Minutes},
		{"seconds", &cfg.Seconds},
	}
	for _, f := range ints {
		if *f.dst, err = flags.GetInt(f.name); err != nil {
			return nil, err
		}
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"pattern", &cfg.Pattern},
		{"output", &cfg.Output},
		{"format", &cfg.Format},
		{"summary-md", &cfg.SummaryMarkdown},
		{"log-file", &cfg.LogFile},
		{"snapshot", &cfg.Snapshot},
		{"jobs", &cfg.JobsFilePath},
		{"db-dir", &cfg.DBDir},
	}
	for _, f := range strs {
		if *f.dst, err = flags.GetString(f.name); err != nil {
			return nil, err
		}
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"strict-limit", &cfg.StrictLimit},
		{"headless", &cfg.Headless},
		{"skip-install", &cfg.SkipInstall},
	}
	for _, f := range bools {
		if *f.dst, err = flags.GetBool(f.name); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"click-interval", &cfg.ClickInterval},
		{"thread-timeout", &cfg.ThreadTimeout},
		{"navigation-timeout", &cfg.NavigationTimeout},
	}
	for _, f := range durations {
		if *f.dst, err = flags.GetDuration(f.name); err != nil {
			return nil, err
		}
	}

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// loadJobs returns the configurations to run. A url argument runs one job.
// Otherwise the jobs file is used: the --jobs path, or a discovered one.
func loadJobs(cfg *config.Config) ([]*config.Config, error) {
	if cfg.Source != "" && cfg.JobsFilePath == "" {
		return []*config.Config{cfg}, nil
	}
	if cfg.Source != "" {
		return nil, errors.New("give either a url or --jobs, not both")
	}

	explicit := cfg.JobsFilePath != ""
	path := config.FindConfigFile(cfg.JobsFilePath)
	if path == "" {
		if explicit {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.JobsFilePath)
		}
		return nil, fmt.Errorf("configuration error: %w (give a url or a jobs file, see 'threadscan init')",
			config.ErrSourceRequired)
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs file %s: %w", path, err)
	}

	// Command line flags apply unless the file's defaults or a job override them.
	configs := file.Configs(cfg)
	if len(configs) == 0 {
		return nil, fmt.Errorf("jobs file %s has no jobs", path)
	}
	return configs, nil
}

// scrapeEnv holds what runScrape needs besides the job configurations.
type scrapeEnv struct {
	logger *slog.Logger
	open   pipeline.SurfaceOpener
	stdout io.Writer
	stderr io.Writer
}

// runScrape runs every configuration through the default pipeline.
func runScrape(ctx context.Context, configs []*config.Config, env scrapeEnv) error {
	// All jobs share the history setting of the command line.
	var db *database.HistoryDB
	if configs[0].SaveToDB {
		var err error
		db, err = database.Open(configs[0].DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		env.logger.Debug("database opened", "path", db.Path())
	}

	registry := source.DefaultRegistry()
	scrape := pipeline.NewScrapeStep(env.open,
		pipeline.WithHistory(db),
		pipeline.WithScrapeLogger(env.logger),
	)
	factory := func() *pipeline.Pipeline {
		return pipeline.DefaultPipeline(registry, scrape, env.stderr, pipeline.WithLogger(env.logger))
	}

	bp := pipeline.NewBatchProcessor(factory,
		pipeline.WithBatchLogger(env.logger),
		pipeline.WithOnComplete(func(job *pipeline.Job, index int) {
			if len(configs) == 1 {
				return
			}
			status := job.Run.EndReason.String()
			if job.Err != nil {
				status = "error: " + job.Err.Error()
			}
			fmt.Fprintf(env.stdout, "[%d/%d] %s: %s\n", index+1, len(configs), job.Config.Source, status)
		}),
	)

	jobs, err := bp.ProcessBatch(ctx, configs)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if len(jobs) == 1 {
		job := jobs[0]
		if job.Err != nil {
			return job.Err
		}
		if job.Faulted() {
			return fmt.Errorf("%w: %s", errFaulted, job.Run.Error)
		}
		fmt.Fprintf(env.stdout, "Wrote %d comments to %s\n", job.Run.Emitted, job.Run.Output)
		return nil
	}

	failed := 0
	for _, job := range jobs {
		if job.Faulted() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d jobs failed", errFaulted, failed, len(jobs))
	}
	return nil
}
