package pipeline

import (
	"github.com/nao1215/threadscan/internal/budget"
	"github.com/nao1215/threadscan/internal/config"
	"github.com/nao1215/threadscan/internal/filter"
	"github.com/nao1215/threadscan/internal/model"
	"github.com/nao1215/threadscan/internal/source"
)

// Job is one source flowing through a pipeline.
type Job struct {
	// Config holds the options of this job.
	Config *config.Config

	// Run is filled in as the steps execute.
	Run *model.Run

	// Variant and Filter are set by ResolveStep.
	Variant source.Variant
	Filter  *filter.Evaluator

	// Performed lists the steps that completed.
	Performed []string

	// Err is the first error a step returned.
	Err error
}

// NewJob creates a Job for cfg. cfg is cloned.
func NewJob(cfg *config.Config) *Job {
	cfg = cfg.Clone()
	run := model.NewRun(cfg.Source)
	run.Pattern = cfg.Pattern
	run.Limit = cfg.Limit
	run.Deadline = budget.DeadlineFrom(cfg.Hours, cfg.Minutes, cfg.Seconds)
	run.Output = cfg.Output
	return &Job{Config: cfg, Run: run}
}

func (j *Job) fail(err error) {
	if j.Err == nil {
		j.Err = err
	}
	if j.Run.Error == "" {
		j.Run.Error = err.Error()
	}
}

// Faulted reports whether the job failed or its traversal ended on a fault.
func (j *Job) Faulted() bool {
	return j.Err != nil || j.Run.EndReason == model.EndReasonFault
}
