package reconcile

import (
	"fmt"
	"time"
)

// StoreTally counts what a run did to one annotation store.
type StoreTally struct {
	Location string `json:"location" yaml:"location"`
	// Documents is the number of distinct documents merged into the store.
	Documents int `json:"documents" yaml:"documents"`
	// PreviouslyAnnotated and PreviouslyUnannotated sum, over those
	// documents, the partition sizes found the first time the run touched
	// each document.
	PreviouslyAnnotated   int   `json:"previously_annotated" yaml:"previously_annotated"`
	PreviouslyUnannotated int   `json:"previously_unannotated" yaml:"previously_unannotated"`
	Added                 int   `json:"added" yaml:"added"`
	Failed                bool  `json:"failed" yaml:"failed"`
	Err                   error `json:"-" yaml:"-"`
}

// Error returns the failure message, if any.
func (t StoreTally) Error() string {
	if t.Err == nil {
		return ""
	}
	return t.Err.Error()
}

// Result is the outcome of a run.
type Result struct {
	// Stores holds one tally per distinct annotation store, in input order.
	Stores []StoreTally

	Metadata ResultMetadata

	Errors []error
}

// ResultMetadata describes the run.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// SystemOutputs lists the distinct system output locations read.
	SystemOutputs []string

	DryRun      bool
	Policy      FailurePolicy
	Parallelism int

	Stats ResultStatistics
}

// ResultStatistics counts documents across all system outputs.
type ResultStatistics struct {
	DocumentsProcessed int
	DocumentsSkipped   int
	ResponsesImported  int
	TotalTimeMs        int64
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{
		Errors: []error{},
		Metadata: ResultMetadata{
			StartTime:     time.Now(),
			SystemOutputs: []string{},
		},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	r.Metadata.Stats.TotalTimeMs = r.Metadata.Duration.Milliseconds()
}

// IsSuccess reports whether no error was recorded.
func (r *Result) IsSuccess() bool {
	return len(r.Errors) == 0
}

// TotalAdded returns the number of responses added across all stores.
func (r *Result) TotalAdded() int {
	total := 0
	for _, t := range r.Stores {
		total += t.Added
	}
	return total
}

// Store returns the tally for location.
func (r *Result) Store(location string) (StoreTally, bool) {
	for _, t := range r.Stores {
		if t.Location == location {
			return t, true
		}
	}
	return StoreTally{}, false
}

// FailedStores returns the locations of stores that failed.
func (r *Result) FailedStores() []string {
	var failed []string
	for _, t := range r.Stores {
		if t.Failed {
			failed = append(failed, t.Location)
		}
	}
	return failed
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	verb := "added"
	if r.Metadata.DryRun {
		verb = "would add"
	}
	summary := fmt.Sprintf("%d documents processed, %d skipped; %s %d responses across %d annotation stores",
		r.Metadata.Stats.DocumentsProcessed, r.Metadata.Stats.DocumentsSkipped,
		verb, r.TotalAdded(), len(r.Stores))
	if failed := r.FailedStores(); len(failed) > 0 {
		summary += fmt.Sprintf(" (%d failed)", len(failed))
	}
	if !r.IsSuccess() {
		summary += fmt.Sprintf("; %d errors", len(r.Errors))
	}
	return summary
}
