package audit

import (
	"go-extension-audit/internal/heuristics"
	"go-extension-audit/internal/manifest"
)

// Source identifies where an extension version was found
type Source struct {
	Browser      string
	Profile      string
	ProfileLabel string
	ExtensionID  string
	Version      string
	ManifestPath string
	// DisplayName is the resolved __MSG_ name, if any
	DisplayName string
}

// File is one content file of an extension version
type File struct {
	// Path is relative to the extension version root
	Path string
	Text string
}

// Evaluate builds the Finding for one extension version. It does no I/O and
// returns the same Finding for the same inputs.
func Evaluate(src Source, m *manifest.Manifest, files []File) Finding {
	name, ok := m.Text("name")
	if !ok {
		name = UnknownName
	}

	flagged := heuristics.Classify(m.Permissions()).Elements()
	if flagged == nil {
		flagged = []string{}
	}

	hits := []Hit{}
	for _, f := range files {
		if !heuristics.ScannableFile(f.Path) {
			continue
		}
		for _, label := range heuristics.ScanText(f.Text) {
			hits = append(hits, Hit{File: f.Path, Pattern: label})
		}
		if heuristics.HasLongBase64(f.Text) {
			hits = append(hits, Hit{File: f.Path, Pattern: heuristics.LongBase64Label})
		}
	}

	return Finding{
		Browser:            src.Browser,
		Profile:            src.Profile,
		ProfileLabel:       src.ProfileLabel,
		ExtensionID:        src.ExtensionID,
		Version:            src.Version,
		Name:               name,
		DisplayName:        src.DisplayName,
		FlaggedPermissions: flagged,
		Hits:               hits,
		Manifest: ManifestRef{
			Path: src.ManifestPath,
			Raw:  m.Raw(),
		},
	}
}
