package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/threadscan/internal/config"
	"github.com/nao1215/threadscan/internal/model"
)

// mockStep is a test step that can be configured to succeed or fail.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, job *Job) error
	callCount atomic.Int32
}

func (m *mockStep) Name() string {
	return m.name
}

func (m *mockStep) Do(ctx context.Context, job *Job) error {
	m.callCount.Add(1)
	if m.doFunc != nil {
		return m.doFunc(ctx, job)
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJob(source string) *Job {
	cfg := config.NewConfig()
	cfg.Source = source
	return NewJob(cfg)
}

func TestNewJob(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Source = "https://www.youtube.com/watch?v=abc"
	cfg.Pattern = "go"
	cfg.SetLimit(25)
	cfg.Minutes = 2
	cfg.Output = "out.json"

	job := NewJob(cfg)

	if job.Config == cfg {
		t.Error("NewJob() should clone the configuration")
	}
	if job.Run.Source != cfg.Source || job.Run.Pattern != "go" || job.Run.Output != "out.json" {
		t.Errorf("unexpected run: %+v", job.Run)
	}
	if job.Run.Limit == nil || *job.Run.Limit != 25 {
		t.Errorf("run limit = %v, want 25", job.Run.Limit)
	}
	if job.Run.Deadline.Minutes() != 2 {
		t.Errorf("run deadline = %v, want 2m", job.Run.Deadline)
	}
	if job.Run.AdvertisedCount != -1 {
		t.Errorf("advertised count = %d, want -1", job.Run.AdvertisedCount)
	}
}

func TestPipeline(t *testing.T) {
	t.Parallel()

	t.Run("new pipeline has no steps", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
	})

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		step := func(name string) *mockStep {
			return &mockStep{name: name, doFunc: func(context.Context, *Job) error {
				order = append(order, name)
				return nil
			}}
		}

		p := New(WithLogger(discardLogger()))
		p.AddStep(step("a"))
		p.AddSteps(step("b"), step("c"))

		job := testJob("src")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		want := []string{"a", "b", "c"}
		if diff := cmp.Diff(want, order); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want, job.Performed); diff != "" {
			t.Errorf("performed mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want, p.StepNames()); diff != "" {
			t.Errorf("StepNames() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("boom")
		failing := &mockStep{name: "failing", doFunc: func(context.Context, *Job) error { return wantErr }}
		after := &mockStep{name: "after"}

		p := New(WithLogger(discardLogger()))
		p.AddSteps(failing, after)

		job := testJob("src")
		err := p.Execute(context.Background(), job)
		if !errors.Is(err, wantErr) {
			t.Fatalf("Execute() error = %v, want %v", err, wantErr)
		}
		if after.callCount.Load() != 0 {
			t.Error("step after the failure should not run")
		}
		if !errors.Is(job.Err, wantErr) || job.Run.Error != "boom" {
			t.Errorf("job error not recorded: %v / %q", job.Err, job.Run.Error)
		}
		if !job.Faulted() {
			t.Error("Faulted() = false, want true")
		}
	})

	t.Run("continue on error keeps the first error", func(t *testing.T) {
		t.Parallel()

		first := errors.New("first")
		p := New(WithLogger(discardLogger()), WithContinueOnError(true))
		p.AddSteps(
			&mockStep{name: "one", doFunc: func(context.Context, *Job) error { return first }},
			&mockStep{name: "two", doFunc: func(context.Context, *Job) error { return errors.New("second") }},
			&mockStep{name: "three"},
		)

		job := testJob("src")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !errors.Is(job.Err, first) {
			t.Errorf("job.Err = %v, want %v", job.Err, first)
		}
		if diff := cmp.Diff([]string{"three"}, job.Performed); diff != "" {
			t.Errorf("performed mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("cancelled context marks the run cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "never"}
		p := New(WithLogger(discardLogger()))
		p.AddStep(step)

		job := testJob("src")
		err := p.Execute(ctx, job)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Execute() error = %v, want context.Canceled", err)
		}
		if step.callCount.Load() != 0 {
			t.Error("step should not run after cancellation")
		}
		if job.Run.EndReason != model.EndReasonCancelled {
			t.Errorf("end reason = %v, want %v", job.Run.EndReason, model.EndReasonCancelled)
		}
	})
}
