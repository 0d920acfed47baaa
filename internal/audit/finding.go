// Package audit turns one extension version's manifest and content into a Finding.
package audit

import (
	"encoding/json"
)

// UnknownName is used when a manifest declares no name
const UnknownName = "<unknown>"

// Hit is one pattern label matched in one file
type Hit struct {
	// File is relative to the extension version root, with forward slashes
	File    string `json:"file"`
	Pattern string `json:"pattern"`
}

// ManifestRef points at the manifest a Finding was built from
type ManifestRef struct {
	Path string          `json:"path"`
	Raw  json.RawMessage `json:"raw"`
}

// Finding is the audit result for one extension version in one profile
type Finding struct {
	Browser            string      `json:"browser"`
	Profile            string      `json:"profile"`
	ProfileLabel       string      `json:"profile_label,omitempty"`
	ExtensionID        string      `json:"ext_id"`
	Version            string      `json:"version"`
	Name               string      `json:"name"`
	DisplayName        string      `json:"display_name,omitempty"`
	FlaggedPermissions []string    `json:"flagged_permissions"`
	Hits               []Hit       `json:"suspicious_hits"`
	Manifest           ManifestRef `json:"manifest"`
}

// Less orders findings by browser, profile, extension id and version, then
// manifest path
func (f Finding) Less(o Finding) bool {
	if f.Browser != o.Browser {
		return f.Browser < o.Browser
	}
	if f.Profile != o.Profile {
		return f.Profile < o.Profile
	}
	if f.ExtensionID != o.ExtensionID {
		return f.ExtensionID < o.ExtensionID
	}
	if f.Version != o.Version {
		return f.Version < o.Version
	}
	return f.Manifest.Path < o.Manifest.Path
}
