package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/threadscan/internal/config"
)

func testConfigs(n int) []*config.Config {
	configs := make([]*config.Config, n)
	for i := range configs {
		cfg := config.NewConfig()
		cfg.Source = fmt.Sprintf("source-%d", i)
		configs[i] = cfg
	}
	return configs
}

func TestBatchProcessor(t *testing.T) {
	t.Parallel()

	t.Run("returns jobs in input order", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{name: "noop"})
			return p
		}
		bp := NewBatchProcessor(factory, WithBatchLogger(discardLogger()), WithConcurrency(3))

		jobs, err := bp.ProcessBatch(context.Background(), testConfigs(5))
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		if len(jobs) != 5 {
			t.Fatalf("expected 5 jobs, got %d", len(jobs))
		}
		for i, job := range jobs {
			if want := fmt.Sprintf("source-%d", i); job.Config.Source != want {
				t.Errorf("jobs[%d].Source = %q, want %q", i, job.Config.Source, want)
			}
		}
	})

	t.Run("a failing job does not stop the batch", func(t *testing.T) {
		t.Parallel()

		errBad := errors.New("bad source")
		factory := func() *Pipeline {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{name: "check", doFunc: func(_ context.Context, job *Job) error {
				if job.Config.Source == "source-1" {
					return errBad
				}
				return nil
			}})
			return p
		}
		bp := NewBatchProcessor(factory, WithBatchLogger(discardLogger()))

		jobs, err := bp.ProcessBatch(context.Background(), testConfigs(3))
		if err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		if jobs[0].Err != nil || jobs[2].Err != nil {
			t.Errorf("unexpected errors: %v, %v", jobs[0].Err, jobs[2].Err)
		}
		if !errors.Is(jobs[1].Err, errBad) {
			t.Errorf("jobs[1].Err = %v, want %v", jobs[1].Err, errBad)
		}
	})

	t.Run("default concurrency runs one job at a time", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int32
		factory := func() *Pipeline {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{name: "slow", doFunc: func(context.Context, *Job) error {
				n := running.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				running.Add(-1)
				return nil
			}})
			return p
		}
		bp := NewBatchProcessor(factory, WithBatchLogger(discardLogger()), WithConcurrency(0))

		if _, err := bp.ProcessBatch(context.Background(), testConfigs(4)); err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		if peak.Load() != 1 {
			t.Errorf("peak concurrency = %d, want 1", peak.Load())
		}
	})

	t.Run("callback sees every job", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		seen := map[int]string{}
		factory := func() *Pipeline {
			return New(WithLogger(discardLogger()))
		}
		bp := NewBatchProcessor(factory,
			WithBatchLogger(discardLogger()),
			WithConcurrency(2),
			WithOnComplete(func(job *Job, index int) {
				mu.Lock()
				defer mu.Unlock()
				seen[index] = job.Config.Source
			}),
		)

		if _, err := bp.ProcessBatch(context.Background(), testConfigs(3)); err != nil {
			t.Fatalf("ProcessBatch() error = %v", err)
		}
		if len(seen) != 3 || seen[2] != "source-2" {
			t.Errorf("callback results = %v", seen)
		}
	})

	t.Run("cancelled batch reports the cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		factory := func() *Pipeline {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{name: "noop"})
			return p
		}
		bp := NewBatchProcessor(factory, WithBatchLogger(discardLogger()))

		jobs, err := bp.ProcessBatch(ctx, testConfigs(2))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("ProcessBatch() error = %v, want context.Canceled", err)
		}
		for i, job := range jobs {
			if job.Err == nil {
				t.Errorf("jobs[%d] should carry the cancellation", i)
			}
		}
	})
}
