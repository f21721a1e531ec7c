package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/threadscan/internal/config"
	"github.com/nao1215/threadscan/internal/model"
)

const watchURL = "https://www.youtube.com/watch?v=abc"

var watchFixture = filepath.Join("..", "..", "internal", "source", "testdata", "watch.html")

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewScrapeCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}
		cfg, err := buildConfig(cmd, []string{watchURL})
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.Source != watchURL {
			t.Errorf("Source = %q", cfg.Source)
		}
		if cfg.Limit != nil {
			t.Errorf("Limit = %d, want unbounded", *cfg.Limit)
		}
		if cfg.Output != config.DefaultOutput || cfg.Format != config.FormatJSON {
			t.Errorf("output = %q (%s)", cfg.Output, cfg.Format)
		}
		if !cfg.SaveToDB || !cfg.Headless {
			t.Error("history and headless should be on by default")
		}
		if cfg.ThreadTimeout != 0 {
			t.Errorf("ThreadTimeout = %v, want unset", cfg.ThreadTimeout)
		}
	})

	t.Run("flags", func(t *testing.T) {
		t.Parallel()

		cmd := NewScrapeCmd()
		err := cmd.ParseFlags([]string{
			"-l", "0", "--minutes", "1", "--seconds", "30", "-p", "gopher",
			"-o", "out.csv", "-f", "csv", "--strict-limit", "--headless=false",
			"--no-save", "--thread-timeout", "3s", "--snapshot", "page.html",
		})
		if err != nil {
			t.Fatal(err)
		}
		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg.Limit == nil || *cfg.Limit != 0 {
			t.Errorf("explicit -l 0 should set a zero limit, got %v", cfg.Limit)
		}
		if cfg.Deadline() != 90*time.Second {
			t.Errorf("Deadline() = %v, want 1m30s", cfg.Deadline())
		}
		if cfg.Pattern != "gopher" || cfg.Output != "out.csv" || cfg.Format != config.FormatCSV {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if !cfg.StrictLimit || cfg.Headless || cfg.SaveToDB {
			t.Errorf("bool flags not applied: strict=%v headless=%v save=%v", cfg.StrictLimit, cfg.Headless, cfg.SaveToDB)
		}
		if cfg.ThreadTimeout != 3*time.Second || cfg.Snapshot != "page.html" {
			t.Errorf("surface flags not applied: %v %q", cfg.ThreadTimeout, cfg.Snapshot)
		}
	})
}

func TestLoadJobs(t *testing.T) {
	t.Parallel()

	t.Run("url runs one job", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Source = watchURL
		configs, err := loadJobs(cfg)
		if err != nil {
			t.Fatalf("loadJobs() error = %v", err)
		}
		if len(configs) != 1 || configs[0] != cfg {
			t.Errorf("unexpected configs: %v", configs)
		}
	})

	t.Run("url and jobs file conflict", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.Source = watchURL
		cfg.JobsFilePath = "jobs.yaml"
		if _, err := loadJobs(cfg); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("missing jobs file", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.JobsFilePath = filepath.Join(t.TempDir(), "missing.yaml")
		if _, err := loadJobs(cfg); !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("loadJobs() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("jobs file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "jobs.yaml")
		content := `
defaults:
  limit: 10
jobs:
  - source: https://www.youtube.com/watch?v=one
  - source: https://www.youtube.com/shorts/two
    limit: 3
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cfg := config.NewConfig()
		cfg.JobsFilePath = path
		configs, err := loadJobs(cfg)
		if err != nil {
			t.Fatalf("loadJobs() error = %v", err)
		}
		if len(configs) != 2 {
			t.Fatalf("expected 2 jobs, got %d", len(configs))
		}
		if *configs[0].Limit != 10 || *configs[1].Limit != 3 {
			t.Errorf("limits = %d, %d", *configs[0].Limit, *configs[1].Limit)
		}
		if configs[0].Output == configs[1].Output {
			t.Errorf("jobs share the output %q", configs[0].Output)
		}
	})
}

func TestScrapeCmd(t *testing.T) {
	t.Parallel()

	t.Run("scrapes a snapshot and records the run", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		out := filepath.Join(dir, "comments.json")
		stdout, stderr, err := execute(t, "scrape", watchURL,
			"--snapshot", watchFixture, "--db-dir", dir, "-o", out)
		if err != nil {
			t.Fatalf("scrape error = %v\n%s", err, stderr)
		}
		if !strings.Contains(stdout, "Wrote 5 comments") {
			t.Errorf("stdout = %q", stdout)
		}
		if !strings.Contains(stderr, "Learning Go") {
			t.Errorf("summary missing from stderr:\n%s", stderr)
		}

		data, err := os.ReadFile(out) //nolint:gosec // test path
		if err != nil {
			t.Fatal(err)
		}
		var doc model.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("invalid document: %v", err)
		}
		if doc.Total() != 5 {
			t.Errorf("document has %d comments, want 5", doc.Total())
		}

		histOut, _, err := execute(t, "history", "--db-dir", dir)
		if err != nil {
			t.Fatalf("history error = %v", err)
		}
		if !strings.Contains(histOut, watchURL) {
			t.Errorf("history does not list the source:\n%s", histOut)
		}
	})

	t.Run("configuration errors fail before scraping", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		out := filepath.Join(dir, "comments.json")
		_, _, err := execute(t, "scrape", watchURL, "--limit=-1",
			"--snapshot", watchFixture, "--db-dir", dir, "-o", out)
		if !errors.Is(err, config.ErrInvalidLimit) {
			t.Fatalf("scrape error = %v, want ErrInvalidLimit", err)
		}
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Error("no output should be written on a configuration error")
		}
	})

	t.Run("deadline under thirty seconds is rejected", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "scrape", watchURL, "--seconds", "10", "--no-save",
			"-o", filepath.Join(t.TempDir(), "c.json"))
		if !errors.Is(err, config.ErrDeadlineTooShort) {
			t.Errorf("scrape error = %v, want ErrDeadlineTooShort", err)
		}
	})

	t.Run("unsupported source", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, "scrape", "https://example.com/video", "--no-save",
			"--snapshot", watchFixture, "-o", filepath.Join(t.TempDir(), "c.json"))
		if err == nil {
			t.Error("expected an error for an unsupported source")
		}
	})
}
