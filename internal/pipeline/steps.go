package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/nao1215/threadscan/internal/budget"
	"github.com/nao1215/threadscan/internal/config"
	"github.com/nao1215/threadscan/internal/database"
	"github.com/nao1215/threadscan/internal/filter"
	"github.com/nao1215/threadscan/internal/model"
	"github.com/nao1215/threadscan/internal/report"
	"github.com/nao1215/threadscan/internal/source"
	"github.com/nao1215/threadscan/internal/traverse"
)

// ResolveStep validates the job and picks the source variant.
// Every configuration error surfaces here, before a surface is opened.
type ResolveStep struct {
	registry *source.Registry
}

// NewResolveStep creates a ResolveStep using registry.
func NewResolveStep(registry *source.Registry) *ResolveStep {
	return &ResolveStep{registry: registry}
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve"
}

// Do executes the resolve step.
func (s *ResolveStep) Do(_ context.Context, job *Job) error {
	if err := job.Config.Validate(); err != nil {
		return err
	}

	variant, err := s.registry.Resolve(job.Config.Source)
	if err != nil {
		return err
	}
	job.Variant = variant
	job.Run.Variant = variant.Name

	f, err := filter.New(job.Config.Pattern)
	if err != nil {
		return err
	}
	job.Filter = f
	return nil
}

// ScrapeStep traverses the comment section and streams every emitted record
// to the output document and, when a database is set, to the run history.
type ScrapeStep struct {
	open   SurfaceOpener
	db     *database.HistoryDB
	logger *slog.Logger
}

// ScrapeStepOption configures a ScrapeStep.
type ScrapeStepOption func(*ScrapeStep)

// WithHistory records runs in db.
func WithHistory(db *database.HistoryDB) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.db = db
	}
}

// WithScrapeLogger sets a custom logger for the scrape step.
func WithScrapeLogger(logger *slog.Logger) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.logger = logger
	}
}

// NewScrapeStep creates a ScrapeStep that opens surfaces with open.
func NewScrapeStep(open SurfaceOpener, opts ...ScrapeStepOption) *ScrapeStep {
	s := &ScrapeStep{open: open, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ScrapeStep) Name() string {
	return "scrape"
}

// Do executes the scrape step. The output document is always completed,
// even when the surface cannot be opened or the traversal faults.
func (s *ScrapeStep) Do(ctx context.Context, job *Job) error {
	cfg, run := job.Config, job.Run

	sink, err := s.openSinks(ctx, job)
	if err != nil {
		return err
	}

	surf, err := s.open(ctx, cfg)
	if err != nil {
		err = fmt.Errorf("failed to open surface: %w", err)
		run.EndReason = model.EndReasonFault
		run.Error = err.Error()
		return errors.Join(err, sink.Close())
	}

	engine := job.Variant.NewEngine(cfg.Source, surf, EngineOptions(job, s.logger)...)

	var writeErr error
	for rec := range engine.Records(ctx) {
		if err := sink.Write(rec); err != nil {
			writeErr = fmt.Errorf("failed to write comment: %w", err)
			break
		}
	}

	fillRun(run, engine.Stats())
	if run.EndReason == model.EndReasonFault {
		s.logger.Warn("traversal ended on a fault", "source", cfg.Source, "error", run.Error)
	}

	if err := sink.Close(); err != nil {
		return errors.Join(writeErr, fmt.Errorf("failed to finish output: %w", err))
	}
	return writeErr
}

func (s *ScrapeStep) openSinks(ctx context.Context, job *Job) (report.Sink, error) {
	out, err := report.CreateFile(job.Config.Output, job.Config.Format)
	if err != nil {
		return nil, err
	}
	if s.db == nil || !job.Config.SaveToDB {
		return out, nil
	}

	recorder, err := s.db.BeginRun(ctx, job.Run)
	if err != nil {
		_ = out.Close()
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return report.NewMultiSink(out, recorder), nil
}

// EngineOptions translates the job configuration into traversal options.
func EngineOptions(job *Job, logger *slog.Logger) []traverse.Option {
	cfg := job.Config

	var bopts []budget.Option
	if cfg.Limit != nil {
		bopts = append(bopts, budget.WithMaxCount(*cfg.Limit))
	}
	if d := budget.DeadlineFrom(cfg.Hours, cfg.Minutes, cfg.Seconds); d > 0 {
		bopts = append(bopts, budget.WithDeadline(d))
	}

	opts := []traverse.Option{
		traverse.WithBudget(budget.New(bopts...)),
		traverse.WithTimeouts(timeouts(cfg, job.Variant.Timeouts)),
		traverse.WithStrictReplyBudget(cfg.StrictLimit),
		traverse.WithLogger(logger.With("source", cfg.Source, "variant", job.Variant.Name)),
	}
	if job.Filter != nil {
		opts = append(opts, traverse.WithFilter(job.Filter))
	}
	return opts
}

// timeouts merges the configured wait bounds with the variant's own. A bound
// that is configured always wins; an unset one yields to the variant, and
// bounds neither sets keep the traversal defaults.
func timeouts(cfg *config.Config, variant traverse.Timeouts) traverse.Timeouts {
	pick := func(value, override time.Duration) time.Duration {
		if value > 0 {
			return value
		}
		return override
	}
	return traverse.Timeouts{
		Thread:     pick(cfg.ThreadTimeout, variant.Thread),
		FirstReply: pick(cfg.FirstReplyTimeout, variant.FirstReply),
		ReplyProbe: pick(cfg.ReplyProbeTimeout, variant.ReplyProbe),
		LoadMore:   pick(cfg.LoadMoreTimeout, variant.LoadMore),
		Affordance: pick(cfg.AffordanceTimeout, variant.Affordance),
	}
}

func fillRun(run *model.Run, stats traverse.Stats) {
	run.StartedAt = stats.StartedAt
	run.FinishedAt = stats.FinishedAt
	run.PageTitle = stats.Page.Title
	run.AdvertisedCount = stats.Page.AdvertisedCount
	run.Parsed = stats.Parsed
	run.Emitted = stats.Emitted
	run.Suppressed = stats.Suppressed
	run.Threads = stats.Threads
	run.Replies = stats.Replies
	run.EndReason = stats.EndReason
	if stats.Err != nil {
		run.Error = stats.Err.Error()
	}
}

// SummaryStep prints the run summary and optionally writes it as Markdown.
type SummaryStep struct {
	output io.Writer
}

// NewSummaryStep creates a SummaryStep printing to output.
func NewSummaryStep(output io.Writer) *SummaryStep {
	return &SummaryStep{output: output}
}

// Name returns the step name.
func (s *SummaryStep) Name() string {
	return "summary"
}

// Do executes the summary step.
func (s *SummaryStep) Do(_ context.Context, job *Job) error {
	report.NewTableWriter(s.output).WriteRun(job.Run)

	path := job.Config.SummaryMarkdown
	if path == "" {
		return nil
	}
	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	if err := report.NewMarkdownSummaryWriter(f).WriteRun(job.Run); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return f.Close()
}

// DefaultPipeline builds the resolve, scrape and summary pipeline.
// summary may be nil to skip the summary step.
func DefaultPipeline(registry *source.Registry, scrape *ScrapeStep, summary io.Writer, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(NewResolveStep(registry), scrape)
	if summary != nil {
		p.AddStep(NewSummaryStep(summary))
	}
	return p
}
