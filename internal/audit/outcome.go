package audit

import "fmt"

// SkipReason says why an extension version produced no Finding
type SkipReason string

const (
	SkipNone               SkipReason = ""
	SkipManifestMissing    SkipReason = "manifest-missing"
	SkipManifestUnreadable SkipReason = "manifest-unreadable"
	SkipManifestInvalid    SkipReason = "manifest-invalid"
)

// Outcome is the per-item result of the pipeline: either a Finding or a skip
// with its reason. Skips are never fatal.
type Outcome struct {
	// Dir is the extension version directory or archive
	Dir     string
	Finding *Finding
	Skip    SkipReason
	Err     error
}

// Found wraps a Finding
func Found(dir string, f Finding) Outcome {
	return Outcome{Dir: dir, Finding: &f}
}

// Skipped records a skip
func Skipped(dir string, reason SkipReason, err error) Outcome {
	return Outcome{Dir: dir, Skip: reason, Err: err}
}

// OK reports whether a Finding was produced
func (o Outcome) OK() bool {
	return o.Finding != nil
}

func (o Outcome) String() string {
	if o.Finding != nil {
		return fmt.Sprintf("%s: %s %s", o.Dir, o.Finding.ExtensionID, o.Finding.Version)
	}
	if o.Err != nil {
		return fmt.Sprintf("%s: skipped (%s): %v", o.Dir, o.Skip, o.Err)
	}
	return fmt.Sprintf("%s: skipped (%s)", o.Dir, o.Skip)
}
