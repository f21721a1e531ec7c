package model

import "time"

// EndReason explains why a traversal stopped.
type EndReason string

const (
	// EndReasonNone means the run has not finished yet.
	EndReasonNone EndReason = ""

	// EndReasonCount means the count limit was reached.
	EndReasonCount EndReason = "count"

	// EndReasonDeadline means the wall-clock deadline passed.
	EndReasonDeadline EndReason = "deadline"

	// EndReasonEndOfData means no further thread appeared on the surface.
	EndReasonEndOfData EndReason = "end-of-data"

	// EndReasonCancelled means the caller's context was cancelled.
	EndReasonCancelled EndReason = "cancelled"

	// EndReasonFault means an unexpected failure ended the run.
	EndReasonFault EndReason = "fault"
)

// String returns the reason as it is stored and displayed.
func (r EndReason) String() string {
	if r == EndReasonNone {
		return "running"
	}
	return string(r)
}

// Clean reports whether the run ended without a fault.
func (r EndReason) Clean() bool {
	return r != EndReasonFault && r != EndReasonNone
}

// Run is the outcome of one traversal of one source.
// It is filled in by the pipeline and saved to the history database.
type Run struct {
	// ID is the database identifier. Zero until the run is saved.
	ID int64 `json:"id,omitempty"`

	// Source is the source reference that was traversed.
	Source string `json:"source"`

	// Variant is the name of the source variant that handled Source.
	Variant string `json:"variant"`

	// Pattern is the filter pattern, empty when no filter was applied.
	Pattern string `json:"pattern,omitempty"`

	// Limit is the configured count limit. Nil means unbounded.
	Limit *int `json:"limit,omitempty"`

	// Deadline is the configured wall-clock budget. Zero means none.
	Deadline time.Duration `json:"deadline,omitempty"`

	// StartedAt and FinishedAt bound the traversal.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// PageTitle is the title the surface showed when the traversal started.
	PageTitle string `json:"page_title,omitempty"`

	// AdvertisedCount is the comment count shown by the surface, or -1.
	AdvertisedCount int `json:"advertised_count"`

	// Parsed counts threads and replies read, filtered or not.
	Parsed int `json:"parsed"`

	// Emitted counts records written to the output, replies included.
	Emitted int `json:"emitted"`

	// Suppressed counts threads discarded by the filter.
	Suppressed int `json:"suppressed"`

	// Threads and Replies split Parsed by depth.
	Threads int `json:"threads"`
	Replies int `json:"replies"`

	// EndReason tells why the traversal stopped.
	EndReason EndReason `json:"end_reason"`

	// Error holds the fault message when EndReason is EndReasonFault.
	Error string `json:"error,omitempty"`

	// Output is where the document was written.
	Output string `json:"output,omitempty"`
}

// NewRun creates a Run for the given source with no advertised count.
func NewRun(source string) *Run {
	return &Run{
		Source:          source,
		AdvertisedCount: -1,
	}
}

// Duration returns how long the traversal took.
// It is zero while the run is still in progress.
func (r *Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
