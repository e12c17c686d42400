package model

import "time"

// Run is the state of one fingerprinting pass over a single document.
// Pipeline steps fill it in order; report writers and the history database
// read it afterwards.
type Run struct {
	// Document is the path of the markup file. Output is written back here.
	Document string `json:"document"`

	// BaseOverride is the base directory requested by the user, if any.
	BaseOverride string `json:"-"`

	// Base is the directory references are resolved against.
	// Fixed before traversal starts.
	Base string `json:"base"`

	// Input is the original document content.
	Input []byte `json:"-"`

	// Output is the rewritten document content.
	Output []byte `json:"-"`

	// Assets holds one entry per matched element, in document order.
	Assets []AssetResult `json:"assets"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed_ns"`

	// Written is true once the rewritten document has been persisted.
	Written bool `json:"written"`

	// PerformedSteps lists the pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps"`

	// Err is the error that stopped the run, if any.
	Err error `json:"-"`

	// ErrorMessage is Err rendered for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewRun creates a Run for the given document and optional base override.
func NewRun(document, baseOverride string) *Run {
	return &Run{
		Document:       document,
		BaseOverride:   baseOverride,
		Assets:         make([]AssetResult, 0),
		PerformedSteps: make([]string, 0),
		StartedAt:      time.Now(),
	}
}

// AddAsset appends an asset outcome.
func (r *Run) AddAsset(a AssetResult) {
	r.Assets = append(r.Assets, a)
}

// Renamed returns the assets that were fingerprinted, in document order.
func (r *Run) Renamed() []AssetResult {
	return r.ByStatus(StatusRenamed)
}

// ByStatus returns the assets with the given status, in document order.
func (r *Run) ByStatus(status Status) []AssetResult {
	out := make([]AssetResult, 0)
	for _, a := range r.Assets {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

// Counts returns the number of assets per status.
func (r *Run) Counts() map[Status]int {
	counts := map[Status]int{
		StatusRenamed:   0,
		StatusUnchanged: 0,
		StatusSkipped:   0,
		StatusFailed:    0,
	}
	for _, a := range r.Assets {
		counts[a.Status]++
	}
	return counts
}

// Failed reports whether the run stopped with an error.
func (r *Run) Failed() bool {
	return r.Err != nil || r.ErrorMessage != ""
}

// SetError records the error that stopped the run.
func (r *Run) SetError(err error) {
	r.Err = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}
