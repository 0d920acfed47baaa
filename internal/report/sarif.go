package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"go-extension-audit/internal/audit"
	"go-extension-audit/internal/heuristics"
	"go-extension-audit/internal/manifest"
)

const (
	toolName              = "go-extension-audit"
	permissionRuleID      = "suspicious-permission"
	permissionDescription = "Extension declares a permission on the suspicious-permission watch-list"
)

// ruleID turns a pattern label into a SARIF rule id
func ruleID(label string) string {
	id := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '.', r == '_':
			return '-'
		default:
			return -1
		}
	}, label)
	return "pattern-" + strings.Trim(id, "-")
}

// RenderSARIF returns findings as a SARIF 2.1.0 log. Each flagged permission
// and each hit becomes one result.
func RenderSARIF(findings []audit.Finding) ([]byte, error) {
	reportSarif, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, "")
	run.Tool.Driver.InformationURI = nil
	run.AddRule(permissionRuleID).
		WithDescription(permissionDescription).
		WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "warning"})
	for _, rule := range heuristics.Rules() {
		run.AddRule(ruleID(rule.Label)).
			WithDescription(fmt.Sprintf("Content matches %q (%s)", rule.Label, rule.Expr.String())).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "note"})
	}
	run.AddRule(ruleID(heuristics.LongBase64Label)).
		WithDescription("Content holds a long base64-looking blob").
		WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "note"})

	for _, f := range findings {
		for _, perm := range f.FlaggedPermissions {
			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(filepath.ToSlash(f.Manifest.Path))),
			)
			result := sarif.NewRuleResult(permissionRuleID).
				WithMessage(sarif.NewTextMessage(fmt.Sprintf("%s (%s %s, profile %s) declares %q", f.Name, f.ExtensionID, f.Version, f.Profile, perm))).
				WithLevel("warning").
				WithLocations([]*sarif.Location{location})
			run.AddResult(result)
		}

		base := strings.TrimSuffix(filepath.ToSlash(f.Manifest.Path), manifest.FileName)
		for _, h := range f.Hits {
			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(base + h.File)),
			)
			result := sarif.NewRuleResult(ruleID(h.Pattern)).
				WithMessage(sarif.NewTextMessage(fmt.Sprintf("%s (%s %s) matches %s", f.Name, f.ExtensionID, f.Version, h.Pattern))).
				WithLevel("note").
				WithLocations([]*sarif.Location{location})
			run.AddResult(result)
		}
	}
	reportSarif.AddRun(run)

	var buf bytes.Buffer
	if err := reportSarif.PrettyWrite(&buf); err != nil {
		return nil, fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return buf.Bytes(), nil
}
