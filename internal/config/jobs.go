package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Job holds the options of one entry in the jobs file.
// Zero values fall back to the file's defaults and then to the command line.
type Job struct {
	// Source is the URL to scrape. It is ignored in the defaults section.
	Source string `yaml:"source,omitempty"`

	// Limit is the maximum number of comments to read.
	Limit *int `yaml:"limit,omitempty"`

	// Pattern keeps only threads matching this regular expression.
	Pattern string `yaml:"pattern,omitempty"`

	// Hours, Minutes and Seconds add up to the time limit.
	Hours   int `yaml:"hours,omitempty"`
	Minutes int `yaml:"minutes,omitempty"`
	Seconds int `yaml:"seconds,omitempty"`

	// Output is the document path. When no job or default sets one, each job
	// writes to a numbered file next to the command line's output.
	Output string `yaml:"output,omitempty"`

	// Format is json, csv or markdown.
	Format string `yaml:"format,omitempty"`

	// StrictLimit stops inside a thread once the limit is reached.
	StrictLimit *bool `yaml:"strictLimit,omitempty"`
}

// File represents the structure of the .threadscan.yaml jobs file.
type File struct {
	// Defaults apply to every job unless the job overrides them.
	Defaults Job `yaml:"defaults,omitempty"`

	// Jobs are run in order, one at a time.
	Jobs []Job `yaml:"jobs,omitempty"`
}

// Apply copies the non-zero fields of j onto cfg.
func (j Job) Apply(cfg *Config) {
	if j.Source != "" {
		cfg.Source = j.Source
	}
	if j.Limit != nil {
		cfg.SetLimit(*j.Limit)
	}
	if j.Pattern != "" {
		cfg.Pattern = j.Pattern
	}
	if j.Hours != 0 || j.Minutes != 0 || j.Seconds != 0 {
		cfg.Hours, cfg.Minutes, cfg.Seconds = j.Hours, j.Minutes, j.Seconds
	}
	if j.Output != "" {
		cfg.Output = j.Output
	}
	if j.Format != "" {
		cfg.Format = j.Format
	}
	if j.StrictLimit != nil {
		cfg.StrictLimit = *j.StrictLimit
	}
}

// Configs builds one Config per job, starting from base, then the file
// defaults, then the job itself. base is not modified.
func (cf *File) Configs(base *Config) []*Config {
	configs := make([]*Config, 0, len(cf.Jobs))
	for i, job := range cf.Jobs {
		cfg := base.Clone()
		cf.Defaults.Apply(cfg)
		job.Source = strings.TrimSpace(job.Source)
		job.Apply(cfg)
		if job.Output == "" && cf.Defaults.Output == "" && len(cf.Jobs) > 1 {
			cfg.Output = numberedOutput(cfg.Output, cfg.Format, i+1)
		}
		configs = append(configs, cfg)
	}
	return configs
}

// numberedOutput turns "comments.json" into "comments-2.json", using the
// extension of format.
func numberedOutput(path, format string, n int) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s-%d%s", stem, n, Extension(format))
}

// Extension returns the file extension used for format.
func Extension(format string) string {
	switch format {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	default:
		return ".json"
	}
}
