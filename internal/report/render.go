// Package report renders audit findings as report.json and findings.md.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go-extension-audit/internal/audit"
)

// MaxHitsShown caps the hits listed per extension in the Markdown report.
// The JSON report always carries every hit.
const MaxHitsShown = 10

const markdownTitle = "# Extension scan findings\n"

// Render builds the structured and human-readable documents for findings.
// Findings are rendered in the order given.
func Render(findings []audit.Finding) (structured, human []byte, err error) {
	structured, err = RenderJSON(findings)
	if err != nil {
		return nil, nil, err
	}
	return structured, RenderMarkdown(findings), nil
}

// RenderJSON returns findings as an indented JSON array
func RenderJSON(findings []audit.Finding) ([]byte, error) {
	if findings == nil {
		findings = []audit.Finding{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(findings); err != nil {
		return nil, fmt.Errorf("failed to encode findings: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderMarkdown returns one section per finding
func RenderMarkdown(findings []audit.Finding) []byte {
	lines := []string{markdownTitle}
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("## %s  — %s (profile: %s, version: %s)", f.Name, f.ExtensionID, f.Profile, f.Version))
		if f.Browser != "" {
			lines = append(lines, "- Browser: "+f.Browser)
		}
		if f.DisplayName != "" {
			lines = append(lines, "- Resolved name: "+f.DisplayName)
		}

		perms := "None"
		if len(f.FlaggedPermissions) > 0 {
			perms = strings.Join(f.FlaggedPermissions, ", ")
		}
		lines = append(lines, "- Flagged permissions: "+perms)

		if len(f.Hits) == 0 {
			lines = append(lines, "- Suspicious hits: None")
		} else {
			lines = append(lines, "- Suspicious hits:")
			for i, h := range f.Hits {
				if i == MaxHitsShown {
					break
				}
				lines = append(lines, fmt.Sprintf("  - %s: %s", h.File, h.Pattern))
			}
		}
		lines = append(lines, "\n")
	}
	return []byte(strings.Join(lines, "\n"))
}
