package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "threadscan"

	// DefaultOutput is the file the comment document is written to.
	DefaultOutput = "comments.json"

	// DefaultLogFile is the log file used when file logging is enabled
	// without an explicit path.
	DefaultLogFile = "debug.log"

	// MinDeadline is the shortest time limit accepted. A thread can take
	// several seconds to load, so shorter limits stop before anything is read.
	MinDeadline = 30 * time.Second

	// DefaultNavigationTimeout bounds the initial page load.
	DefaultNavigationTimeout = 60 * time.Second

	// DefaultClickInterval is the minimum gap between two clicks in the browser.
	DefaultClickInterval = 500 * time.Millisecond

	// DefaultViewportWidth and DefaultViewportHeight size the browser window.
	// Comment threads render lazily, so a tall viewport loads more per scroll.
	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1080
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Formats returns the supported output formats.
func Formats() []string {
	return []string{FormatJSON, FormatCSV, FormatMarkdown}
}

// Config holds all options of one scrape run.
// It is populated from CLI flags or a jobs file entry and passed through the
// application rather than kept in global state.
type Config struct {
	// Source is the URL of the page whose comments are scraped.
	Source string

	// Limit is the maximum number of comments (threads plus replies) to read.
	// Nil means no count limit. Zero is valid and produces an empty document.
	Limit *int

	// Pattern is a regular expression matched case-insensitively against the
	// comment text. A thread is kept when its own text or any reply matches.
	// Empty keeps everything.
	Pattern string

	// Hours, Minutes and Seconds add up to the time limit of the run.
	// All zero means no time limit.
	Hours   int
	Minutes int
	Seconds int

	// StrictLimit stops reading replies as soon as Limit is reached instead of
	// finishing the current thread.
	StrictLimit bool

	// Output is the path of the comment document.
	Output string

	// Format selects the document format: json, csv or markdown.
	Format string

	// SummaryMarkdown, when set, is the path a Markdown run summary is written to.
	SummaryMarkdown string

	// Snapshot is the path of a saved HTML page to replay instead of opening
	// a browser.
	Snapshot string

	// Wait bounds used while traversing the comment section. Zero leaves the
	// bound to the source variant, or to the traversal defaults.
	ThreadTimeout     time.Duration
	FirstReplyTimeout time.Duration
	LoadMoreTimeout   time.Duration
	ReplyProbeTimeout time.Duration
	AffordanceTimeout time.Duration

	// NavigationTimeout bounds the initial page load.
	NavigationTimeout time.Duration

	// Headless runs the browser without a window.
	Headless bool

	// SkipInstall skips downloading the browser driver on start.
	SkipInstall bool

	// ClickInterval is the minimum gap between two clicks.
	ClickInterval time.Duration

	// ViewportWidth and ViewportHeight size the browser window.
	ViewportWidth  int
	ViewportHeight int

	// Verbose enables debug logging.
	Verbose bool

	// LogFile is the path debug logs are appended to. Empty logs to stderr only.
	LogFile string

	// JobsFilePath is the path of the jobs file.
	// If empty, the tool searches for .threadscan.yaml in the current
	// directory and then in the user's home directory.
	JobsFilePath string

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/threadscan on Linux).
	DBDir string

	// SaveToDB records every run and its comments in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Output:            DefaultOutput,
		Format:            FormatJSON,
		NavigationTimeout: DefaultNavigationTimeout,
		Headless:          true,
		ClickInterval:     DefaultClickInterval,
		ViewportWidth:     DefaultViewportWidth,
		ViewportHeight:    DefaultViewportHeight,
		DBDir:             XDGDataDir(),
		SaveToDB:          true,
	}
}

// Clone returns a copy of c that shares no pointers with it.
func (c *Config) Clone() *Config {
	out := *c
	if c.Limit != nil {
		limit := *c.Limit
		out.Limit = &limit
	}
	return &out
}

// SetLimit sets an explicit comment limit.
func (c *Config) SetLimit(n int) {
	c.Limit = &n
}

// Deadline returns the combined time limit. Zero means no time limit.
func (c *Config) Deadline() time.Duration {
	return time.Duration(c.Hours)*time.Hour +
		time.Duration(c.Minutes)*time.Minute +
		time.Duration(c.Seconds)*time.Second
}

// XDGDataDir returns the XDG data directory for threadscan.
// On Linux: ~/.local/share/threadscan
// On macOS: ~/Library/Application Support/threadscan
// On Windows: %LOCALAPPDATA%\threadscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for threadscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first rule that is violated, before any browser is started.
func (c *Config) Validate() error {
	if c.Source == "" {
		return ErrSourceRequired
	}

	if c.Hours < 0 || c.Minutes < 0 || c.Seconds < 0 {
		return ErrNegativeDuration
	}

	// A time limit that is given at all must be long enough to be useful.
	if (c.Hours != 0 || c.Minutes != 0 || c.Seconds != 0) && c.Deadline() < MinDeadline {
		return ErrDeadlineTooShort
	}

	if c.Limit != nil && *c.Limit < 0 {
		return ErrInvalidLimit
	}

	if !slices.Contains(Formats(), c.Format) {
		return ErrInvalidFormat
	}

	for _, d := range []time.Duration{
		c.ThreadTimeout, c.FirstReplyTimeout, c.LoadMoreTimeout,
		c.ReplyProbeTimeout, c.AffordanceTimeout, c.NavigationTimeout,
	} {
		if d < 0 {
			return ErrInvalidTimeout
		}
	}

	if c.ClickInterval < 0 {
		return ErrInvalidClickInterval
	}
	return nil
}
