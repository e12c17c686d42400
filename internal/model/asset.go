package model

import "strings"

// Kind identifies which tracked element pattern matched an asset reference.
type Kind string

const (
	// KindScript is a script element carrying a src attribute.
	KindScript Kind = "script"

	// KindStylesheet is a stylesheet link element carrying an href attribute.
	KindStylesheet Kind = "stylesheet"
)

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// Attribute returns the name of the attribute holding the reference.
func (k Kind) Attribute() string {
	if k == KindStylesheet {
		return "href"
	}
	return "src"
}

// Status is the outcome of processing one asset reference.
type Status string

const (
	// StatusRenamed means a fingerprinted copy was written and the
	// reference now points at it.
	StatusRenamed Status = "renamed"

	// StatusUnchanged means the reference already points at a file whose
	// name carries the fingerprint of its own content.
	StatusUnchanged Status = "unchanged"

	// StatusSkipped means the reference was left untouched, either because
	// it is not local or because processing it failed in tolerant mode.
	StatusSkipped Status = "skipped"

	// StatusFailed means processing failed in strict mode and aborted the run.
	StatusFailed Status = "failed"
)

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a stored status name back to a Status.
// Unknown names map to StatusSkipped.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(s)) {
	case StatusRenamed:
		return StatusRenamed
	case StatusUnchanged:
		return StatusUnchanged
	case StatusFailed:
		return StatusFailed
	default:
		return StatusSkipped
	}
}

// AssetResult records what happened to one matched element.
type AssetResult struct {
	// Kind is the element pattern that matched.
	Kind Kind `json:"kind"`

	// Reference is the attribute value as found in the document.
	Reference string `json:"reference"`

	// Path is the filesystem path the reference resolved to.
	// Empty for references that are not local.
	Path string `json:"path,omitempty"`

	// NewReference is the attribute value written back to the document.
	// Empty unless Status is StatusRenamed.
	NewReference string `json:"new_reference,omitempty"`

	// NewPath is where the fingerprinted copy was written.
	NewPath string `json:"new_path,omitempty"`

	// Fingerprint is the hex digest of the asset content.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Status is the outcome.
	Status Status `json:"status"`

	// Reason explains a skip or failure, or a non-fatal problem on an
	// otherwise renamed asset (such as an original that could not be removed).
	Reason string `json:"reason,omitempty"`

	// OriginalRemoved is true when the original file was deleted.
	OriginalRemoved bool `json:"original_removed"`
}

// NewName returns the last path element of NewReference.
func (a AssetResult) NewName() string {
	if i := strings.LastIndex(a.NewReference, "/"); i >= 0 {
		return a.NewReference[i+1:]
	}
	return a.NewReference
}
